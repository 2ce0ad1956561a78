package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/authz"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/utils"
	"gorm.io/gorm"
)

type CreateAttachmentRequest struct {
	FileName string `json:"file_name" binding:"required"`
	FileURL  string `json:"file_url" binding:"required,url"`
}

type UpdateAttachmentRequest struct {
	FileName *string `json:"file_name"`
	FileURL  *string `json:"file_url" binding:"omitempty,url"`
}

type AttachmentResponse struct {
	ID         uint      `json:"id"`
	TaskID     uint      `json:"task_id"`
	FileName   string    `json:"file_name"`
	FileURL    string    `json:"file_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func attachmentResponse(attachment models.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:         attachment.ID,
		TaskID:     attachment.TaskID,
		FileName:   attachment.FileName,
		FileURL:    attachment.FileURL,
		UploadedAt: attachment.CreatedAt,
	}
}

func ListAttachments(ctx *gin.Context) {
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

	var attachments []models.Attachment

	if err := db.DB.Where("task_id = ?", taskID).Order("id").Find(&attachments).Error; err != nil {
		log.Printf("Failed to list attachments: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve attachments"})
		return
	}

	response := make([]AttachmentResponse, 0, len(attachments))

	for _, attachment := range attachments {
		response = append(response, attachmentResponse(attachment))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateAttachment(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	taskID, err := utils.ParamID(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body CreateAttachmentRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !authorize(ctx, actor, authz.ActionCreateAttachment, authz.TaskRef(taskID)) {
		return
	}

	attachment := models.Attachment{
		TaskID:   taskID,
		FileName: body.FileName,
		FileURL:  body.FileURL,
	}

	if err := db.DB.Create(&attachment).Error; err != nil {
		log.Printf("Failed to create attachment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create attachment"})
		return
	}

	ctx.JSON(http.StatusCreated, attachmentResponse(attachment))
}

func GetAttachment(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	attachmentID, err := utils.ParamID(ctx, "attachment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attachment, ok := fetchAttachment(ctx, attachmentID)

	if !ok {
		return
	}

	if !authorize(ctx, actor, authz.ActionReadTask, authz.TaskRef(attachment.TaskID)) {
		return
	}

	ctx.JSON(http.StatusOK, attachmentResponse(attachment))
}

// UpdateAttachment renames an attachment or repoints its URL. Gated by the
// owning manager rule, same as other task mutations.
func UpdateAttachment(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	attachmentID, err := utils.ParamID(ctx, "attachment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateAttachmentRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	attachment, ok := fetchAttachment(ctx, attachmentID)

	if !ok {
		return
	}

	if !authorize(ctx, actor, authz.ActionUpdateTask, authz.TaskRef(attachment.TaskID)) {
		return
	}

	if body.FileName != nil {
		if *body.FileName == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "File name cannot be empty"})
			return
		}
		attachment.FileName = *body.FileName
	}

	if body.FileURL != nil {
		attachment.FileURL = *body.FileURL
	}

	if err := db.DB.Save(&attachment).Error; err != nil {
		log.Printf("Failed to update attachment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update attachment"})
		return
	}

	ctx.JSON(http.StatusOK, attachmentResponse(attachment))
}

func DeleteAttachment(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	attachmentID, err := utils.ParamID(ctx, "attachment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attachment, ok := fetchAttachment(ctx, attachmentID)

	if !ok {
		return
	}

	if !authorize(ctx, actor, authz.ActionUpdateTask, authz.TaskRef(attachment.TaskID)) {
		return
	}

	if err := db.DB.Delete(&attachment).Error; err != nil {
		log.Printf("Failed to delete attachment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete attachment"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Attachment deleted successfully"})
}

func fetchAttachment(ctx *gin.Context, id uint) (models.Attachment, bool) {
	var attachment models.Attachment

	if err := db.DB.First(&attachment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		} else {
			log.Printf("Failed to fetch attachment: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return models.Attachment{}, false
	}

	return attachment, true
}
