package notifications

import (
	"errors"
	"fmt"

	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

// GormStore resolves trigger references against the shared database handle.
type GormStore struct{}

func (GormStore) Project(id uint) (ProjectInfo, error) {
	var project models.Project

	if err := db.DB.Select("id", "title", "owner_id").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProjectInfo{}, fmt.Errorf("project %d not found", id)
		}
		return ProjectInfo{}, err
	}

	return ProjectInfo{ID: project.ID, Title: project.Title, OwnerID: project.OwnerID}, nil
}

func (GormStore) Task(id uint) (TaskInfo, error) {
	var task models.Task

	if err := db.DB.Select("id", "title", "status", "project_id", "assigned_to").First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaskInfo{}, fmt.Errorf("task %d not found", id)
		}
		return TaskInfo{}, err
	}

	return TaskInfo{
		ID:         task.ID,
		Title:      task.Title,
		Status:     task.Status,
		ProjectID:  task.ProjectID,
		AssignedTo: task.AssignedTo,
	}, nil
}

func (GormStore) UserName(id uint) (string, error) {
	var user models.User

	if err := db.DB.Select("id", "name").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("user %d not found", id)
		}
		return "", err
	}

	return user.Name, nil
}

func (GormStore) CreateNotifications(notifications []models.Notification) error {
	return db.DB.Create(&notifications).Error
}

var defaultNotifier = New(GormStore{})

// Default returns the database-backed notifier shared by the handlers.
func Default() *Notifier {
	return defaultNotifier
}

// Emit derives and stores notifications for a trigger using the default
// notifier.
func Emit(trigger Trigger) ([]models.Notification, error) {
	return defaultNotifier.Emit(trigger)
}
