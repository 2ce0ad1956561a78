package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/authz"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/utils"
	"gorm.io/datatypes"
)

type CreateProjectRequest struct {
	Title          string          `json:"title" binding:"required"`
	Description    string          `json:"description"`
	StartDate      *datatypes.Date `json:"start_date"`
	EndDate        *datatypes.Date `json:"end_date"`
	Status         string          `json:"status"`
	DiscordWebhook string          `json:"discord_webhook"`
	SlackWebhook   string          `json:"slack_webhook"`
}

type UpdateProjectRequest struct {
	Title          *string         `json:"title"`
	Description    *string         `json:"description"`
	StartDate      *datatypes.Date `json:"start_date"`
	EndDate        *datatypes.Date `json:"end_date"`
	Status         *string         `json:"status"`
	DiscordWebhook *string         `json:"discord_webhook"`
	SlackWebhook   *string         `json:"slack_webhook"`
}

type ProjectResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	StartDate   *datatypes.Date `json:"start_date"`
	EndDate     *datatypes.Date `json:"end_date"`
	Status      string          `json:"status"`
	OwnerID     uint            `json:"owner_id"`
}

func projectResponse(project models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		StartDate:   project.StartDate,
		EndDate:     project.EndDate,
		Status:      project.Status,
		OwnerID:     project.OwnerID,
	}
}

func CreateProject(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	if !authorize(ctx, actor, authz.ActionCreateProject, authz.ProjectRef(0)) {
		return
	}

	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	status := body.Status

	if status == "" {
		status = models.ProjectStatusPlanned
	}

	if !models.ValidProjectStatus(status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project status"})
		return
	}

	project := models.Project{
		Title:          body.Title,
		Description:    body.Description,
		StartDate:      body.StartDate,
		EndDate:        body.EndDate,
		Status:         status,
		OwnerID:        actor.ID,
		DiscordWebhook: body.DiscordWebhook,
		SlackWebhook:   body.SlackWebhook,
	}

	if err := db.DB.Create(&project).Error; err != nil {
		log.Printf("Failed to create project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	ctx.JSON(http.StatusCreated, projectResponse(project))
}

func ListProjects(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	var projects []models.Project

	query := db.DB.Order("id")

	// Non-admins see only projects they own or belong to.
	if actor.Role != models.RoleAdmin {
		query = query.Where(
			"owner_id = ? OR id IN (?)",
			actor.ID,
			db.DB.Model(&models.ProjectMembership{}).Select("project_id").Where("user_id = ?", actor.ID),
		)
	}

	if err := query.Find(&projects).Error; err != nil {
		log.Printf("Failed to list projects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := make([]ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, projectResponse(project))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
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

	if err := db.DB.First(&project, projectID).Error; err != nil {
		log.Printf("Failed to fetch project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(project))
}

func UpdateProject(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	projectID, err := utils.ParamID(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !authorize(ctx, actor, authz.ActionUpdateProject, authz.ProjectRef(projectID)) {
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		log.Printf("Failed to fetch project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}

	if body.Title != nil {
		if *body.Title == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title cannot be empty"})
			return
		}
		project.Title = *body.Title
	}

	if body.Description != nil {
		project.Description = *body.Description
	}

	if body.StartDate != nil {
		project.StartDate = body.StartDate
	}

	if body.EndDate != nil {
		project.EndDate = body.EndDate
	}

	if body.Status != nil {
		if !models.ValidProjectStatus(*body.Status) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project status"})
			return
		}
		project.Status = *body.Status
	}

	if body.DiscordWebhook != nil {
		project.DiscordWebhook = *body.DiscordWebhook
	}

	if body.SlackWebhook != nil {
		project.SlackWebhook = *body.SlackWebhook
	}

	if err := db.DB.Save(&project).Error; err != nil {
		log.Printf("Failed to update project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(project))
}

func DeleteProject(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	projectID, err := utils.ParamID(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !authorize(ctx, actor, authz.ActionDeleteProject, authz.ProjectRef(projectID)) {
		return
	}

	if err := db.DB.Delete(&models.Project{}, projectID).Error; err != nil {
		log.Printf("Failed to delete project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
