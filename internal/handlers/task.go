package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/authz"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/notifications"
	"github.com/taskhive-dev/taskhive/internal/utils"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	ProjectID   uint       `json:"project_id" binding:"required"`
	AssignedTo  uint       `json:"assigned_to" binding:"required"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	ProjectID   *uint      `json:"project_id"`
	AssignedTo  *uint      `json:"assigned_to"`
}

type TaskResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	ProjectID   uint       `json:"project_id"`
	AssignedTo  uint       `json:"assigned_to"`
}

func taskResponse(task models.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		ProjectID:   task.ProjectID,
		AssignedTo:  task.AssignedTo,
	}
}

// ListTasks supports assigned_to, project_id and status query filters.
// Non-admins only see tasks in projects they own or belong to, plus tasks
// assigned to them directly.
func ListTasks(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	query := db.DB.Order("id")

	if raw := ctx.Query("assigned_to"); raw != "" {
		assignedTo, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "assigned_to must be an integer"})
			return
		}
		query = query.Where("assigned_to = ?", uint(assignedTo))
	}

	if raw := ctx.Query("project_id"); raw != "" {
		projectID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "project_id must be an integer"})
			return
		}
		query = query.Where("project_id = ?", uint(projectID))
	}

	if raw := ctx.Query("status"); raw != "" {
		status, valid := models.NormalizeTaskStatus(raw)
		if !valid {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task status"})
			return
		}
		query = query.Where("status = ?", status)
	}

	if actor.Role != models.RoleAdmin {
		ownedOrJoined := db.DB.Model(&models.Project{}).Select("id").Where(
			"owner_id = ? OR id IN (?)",
			actor.ID,
			db.DB.Model(&models.ProjectMembership{}).Select("project_id").Where("user_id = ?", actor.ID),
		)
		query = query.Where("assigned_to = ? OR project_id IN (?)", actor.ID, ownedOrJoined)
	}

	var tasks []models.Task

	if err := query.Find(&tasks).Error; err != nil {
		log.Printf("Failed to list tasks: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		response = append(response, taskResponse(task))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetTask(ctx *gin.Context) {
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

	var task models.Task

	if err := db.DB.First(&task, taskID).Error; err != nil {
		log.Printf("Failed to fetch task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	ctx.JSON(http.StatusOK, taskResponse(task))
}

func CreateTask(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !authorize(ctx, actor, authz.ActionCreateTask, authz.ProjectRef(body.ProjectID)) {
		return
	}

	status := models.TaskStatusTodo

	if body.Status != "" {
		normalized, valid := models.NormalizeTaskStatus(body.Status)
		if !valid {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task status"})
			return
		}
		status = normalized
	}

	priority := models.PriorityMedium

	if body.Priority != "" {
		if !models.ValidPriority(body.Priority) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task priority"})
			return
		}
		priority = body.Priority
	}

	var assignee models.User

	if err := db.DB.First(&assignee, body.AssignedTo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Assignee not found"})
		} else {
			log.Printf("Failed to fetch assignee: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	task := models.Task{
		Title:       body.Title,
		Description: body.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     body.DueDate,
		ProjectID:   body.ProjectID,
		AssignedTo:  body.AssignedTo,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		log.Printf("Failed to create task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	if _, err := notifications.Emit(notifications.TaskCreated{TaskID: task.ID}); err != nil {
		log.Printf("Failed to emit task-created notification: %v", err)
	}

	ctx.JSON(http.StatusCreated, taskResponse(task))
}

// UpdateTask applies a partial update. A request from the assignee that
// changes nothing but the status field is classified as a status update,
// which the policy grants the assignee; any other change requires the owning
// manager.
func UpdateTask(ctx *gin.Context) {
	actor, user, ok := currentActor(ctx)

	if !ok {
		return
	}

	taskID, err := utils.ParamID(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var task models.Task

	if err := db.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			log.Printf("Failed to fetch task: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	oldStatus := task.Status
	oldAssignee := task.AssignedTo

	newStatus := task.Status

	if body.Status != nil {
		normalized, valid := models.NormalizeTaskStatus(*body.Status)
		if !valid {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task status"})
			return
		}
		newStatus = normalized
	}

	statusChanged := newStatus != task.Status

	otherChanged := (body.Title != nil && *body.Title != task.Title) ||
		(body.Description != nil && *body.Description != task.Description) ||
		(body.Priority != nil && *body.Priority != task.Priority) ||
		(body.DueDate != nil && !equalTimePtr(body.DueDate, task.DueDate)) ||
		(body.ProjectID != nil && *body.ProjectID != task.ProjectID) ||
		(body.AssignedTo != nil && *body.AssignedTo != task.AssignedTo)

	action := authz.ActionUpdateTask
	byAssignee := false

	if statusChanged && !otherChanged && actor.ID == task.AssignedTo && actor.Role != models.RoleAdmin {
		action = authz.ActionUpdateTaskStatus
		byAssignee = true
	}

	if !authorize(ctx, actor, action, authz.TaskRef(taskID)) {
		return
	}

	// Moving a task to another project also requires authority over the
	// target project.
	if body.ProjectID != nil && *body.ProjectID != task.ProjectID {
		if !authorize(ctx, actor, authz.ActionCreateTask, authz.ProjectRef(*body.ProjectID)) {
			return
		}
		task.ProjectID = *body.ProjectID
	}

	reassigned := false

	if body.AssignedTo != nil && *body.AssignedTo != oldAssignee {
		var assignee models.User

		if err := db.DB.First(&assignee, *body.AssignedTo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Assignee not found"})
			} else {
				log.Printf("Failed to fetch assignee: %v", err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		task.AssignedTo = *body.AssignedTo
		reassigned = true
	}

	if body.Title != nil {
		if *body.Title == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title cannot be empty"})
			return
		}
		task.Title = *body.Title
	}

	if body.Description != nil {
		task.Description = *body.Description
	}

	if body.Priority != nil {
		if !models.ValidPriority(*body.Priority) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task priority"})
			return
		}
		task.Priority = *body.Priority
	}

	if body.DueDate != nil {
		task.DueDate = body.DueDate
	}

	task.Status = newStatus

	if err := db.DB.Save(&task).Error; err != nil {
		log.Printf("Failed to update task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	emitTaskUpdateNotifications(task, actor.ID, user.Name, oldStatus, statusChanged, byAssignee, reassigned)

	ctx.JSON(http.StatusOK, taskResponse(task))
}

func DeleteTask(ctx *gin.Context) {
	actor, _, ok := currentActor(ctx)

	if !ok {
		return
	}

	taskID, err := utils.ParamID(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !authorize(ctx, actor, authz.ActionDeleteTask, authz.TaskRef(taskID)) {
		return
	}

	if err := db.DB.Delete(&models.Task{}, taskID).Error; err != nil {
		log.Printf("Failed to delete task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// emitTaskUpdateNotifications fires the triggers a committed update matched.
// Failures are logged and swallowed: the mutation has already committed and
// notification delivery is a best-effort side channel.
func emitTaskUpdateNotifications(task models.Task, actorID uint, actorName, oldStatus string, statusChanged, byAssignee, reassigned bool) {
	if reassigned {
		if _, err := notifications.Emit(notifications.TaskReassigned{TaskID: task.ID, NewAssigneeID: task.AssignedTo}); err != nil {
			log.Printf("Failed to emit reassignment notification: %v", err)
		}
	}

	if !statusChanged {
		return
	}

	var trigger notifications.Trigger

	if byAssignee {
		trigger = notifications.StatusChangedByAssignee{
			TaskID:    task.ID,
			ActorID:   actorID,
			OldStatus: oldStatus,
			NewStatus: task.Status,
		}
	} else {
		trigger = notifications.StatusChangedByManager{TaskID: task.ID, ActorID: actorID}
	}

	if _, err := notifications.Emit(trigger); err != nil {
		log.Printf("Failed to emit status-change notification: %v", err)
	}

	var project models.Project

	if err := db.DB.First(&project, task.ProjectID).Error; err != nil {
		log.Printf("Failed to fetch project for webhooks: %v", err)
		return
	}

	if err := notifications.SendTaskStatusWebhooks(project, task, actorName, oldStatus); err != nil {
		log.Printf("Failed to send status webhooks: %v", err)
	}
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
