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
	"github.com/taskhive-dev/taskhive/internal/notifications"
	"github.com/taskhive-dev/taskhive/internal/utils"
	"gorm.io/gorm"
)

type AddMemberRequest struct {
	UserID        uint   `json:"user_id" binding:"required"`
	RoleInProject string `json:"role_in_project" binding:"required"`
}

type MemberResponse struct {
	UserID        uint      `json:"user_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	RoleInProject string    `json:"role_in_project"`
	JoinedAt      time.Time `json:"joined_at"`
	IsOwner       bool      `json:"is_owner"`
}

// ListMembers returns the project roster. The owner is part of it whether or
// not an explicit membership row exists; the implicit entry is synthesized
// here, never stored.
func ListMembers(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	projectID, err := utils.ParamID(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !authorize(ctx, actor, authz.ActionReadProject, authz.ProjectRef(projectID)) {
		return
	}

	var project models.Project

	if err := db.DB.Preload("Owner").First(&project, projectID).Error; err != nil {
		log.Printf("Failed to fetch project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}

	var memberships []models.ProjectMembership

	if err := db.DB.Preload("User").Where("project_id = ?", projectID).Order("id").Find(&memberships).Error; err != nil {
		log.Printf("Failed to list members: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project members"})
		return
	}

	response := make([]MemberResponse, 0, len(memberships)+1)
	ownerListed := false

	for _, membership := range memberships {
		isOwner := membership.UserID == project.OwnerID
		if isOwner {
			ownerListed = true
		}
		response = append(response, MemberResponse{
			UserID:        membership.UserID,
			Name:          membership.User.Name,
			Email:         membership.User.Email,
			RoleInProject: membership.RoleInProject,
			JoinedAt:      membership.CreatedAt,
			IsOwner:       isOwner,
		})
	}

	if !ownerListed {
		response = append([]MemberResponse{{
			UserID:        project.OwnerID,
			Name:          project.Owner.Name,
			Email:         project.Owner.Email,
			RoleInProject: "Owner",
			JoinedAt:      project.CreatedAt,
			IsOwner:       true,
		}}, response...)
	}

	ctx.JSON(http.StatusOK, response)
}

func AddMember(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	projectID, err := utils.ParamID(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body AddMemberRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !authorize(ctx, actor, authz.ActionAddMember, authz.MembershipRef(projectID, body.UserID)) {
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		log.Printf("Failed to fetch project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}

	if project.OwnerID == body.UserID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project owner is already a member"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, body.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Printf("Failed to fetch user: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	membership := models.ProjectMembership{
		ProjectID:     projectID,
		UserID:        body.UserID,
		RoleInProject: body.RoleInProject,
	}

	// The composite unique index settles concurrent duplicate adds: exactly
	// one insert wins.
	if err := db.DB.Create(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this project"})
			return
		}
		log.Printf("Failed to add member: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add project member"})
		return
	}

	if _, err := notifications.Emit(notifications.MemberAdded{ProjectID: projectID, UserID: body.UserID}); err != nil {
		log.Printf("Failed to emit member-added notification: %v", err)
	}

	ctx.JSON(http.StatusCreated, MemberResponse{
		UserID:        membership.UserID,
		Name:          user.Name,
		Email:         user.Email,
		RoleInProject: membership.RoleInProject,
		JoinedAt:      membership.CreatedAt,
	})
}

func RemoveMember(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	projectID, err := utils.ParamID(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.ParamID(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !authorize(ctx, actor, authz.ActionRemoveMember, authz.MembershipRef(projectID, userID)) {
		return
	}

	var membership models.ProjectMembership

	if err := db.DB.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project member not found"})
		} else {
			log.Printf("Failed to fetch membership: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if err := db.DB.Delete(&membership).Error; err != nil {
		log.Printf("Failed to remove member: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove project member"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Project member removed successfully"})
}
