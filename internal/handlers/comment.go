package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/authz"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type UpdateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentResponse struct {
	ID        uint      `json:"id"`
	TaskID    uint      `json:"task_id"`
	UserID    uint      `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func commentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		UserID:    comment.UserID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}
}

// ListComments returns a task's comments; visibility follows the task read
// rule.
func ListComments(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	taskID, err := utils.ParamID(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !authorize(ctx, actor, authz.ActionReadTask, authz.TaskRef(taskID)) {
		return
	}

	var comments []models.Comment

	if err := db.DB.Where("task_id = ?", taskID).Order("id").Find(&comments).Error; err != nil {
		log.Printf("Failed to list comments: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	response := make([]CommentResponse, 0, len(comments))

	for _, comment := range comments {
		response = append(response, commentResponse(comment))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateComment(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	taskID, err := utils.ParamID(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body CreateCommentRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !authorize(ctx, actor, authz.ActionCreateComment, authz.TaskRef(taskID)) {
		return
	}

	comment := models.Comment{
		TaskID: taskID,
		UserID: actor.ID,
		Text:   body.Text,
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		log.Printf("Failed to create comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	ctx.JSON(http.StatusCreated, commentResponse(comment))
}

func GetComment(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	commentID, err := utils.ParamID(ctx, "comment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comment models.Comment

	if err := db.DB.First(&comment, commentID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	// Visibility follows the parent task.
	if !authorize(ctx, actor, authz.ActionReadTask, authz.TaskRef(comment.TaskID)) {
		return
	}

	ctx.JSON(http.StatusOK, commentResponse(comment))
}

func UpdateComment(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	commentID, err := utils.ParamID(ctx, "comment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateCommentRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !authorize(ctx, actor, authz.ActionUpdateComment, authz.CommentRef(commentID)) {
		return
	}

	var comment models.Comment

	if err := db.DB.First(&comment, commentID).Error; err != nil {
		log.Printf("Failed to fetch comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		return
	}

	comment.Text = body.Text

	if err := db.DB.Save(&comment).Error; err != nil {
		log.Printf("Failed to update comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	ctx.JSON(http.StatusOK, commentResponse(comment))
}

func DeleteComment(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	commentID, err := utils.ParamID(ctx, "comment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !authorize(ctx, actor, authz.ActionDeleteComment, authz.CommentRef(commentID)) {
		return
	}

	result := db.DB.Delete(&models.Comment{}, commentID)

	if result.Error != nil {
		log.Printf("Failed to delete comment: %v", result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
