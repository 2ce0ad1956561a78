package authz

import (
	"errors"

	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

// GormStore reads policy facts from the shared database handle.
type GormStore struct{}

func (GormStore) Project(id uint) (ProjectFacts, error) {
	var project models.Project

	if err := db.DB.Select("id", "owner_id").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProjectFacts{}, ErrNotFound
		}
		return ProjectFacts{}, err
	}

	return ProjectFacts{ID: project.ID, OwnerID: project.OwnerID}, nil
}

func (GormStore) Task(id uint) (TaskFacts, error) {
	var task models.Task

	if err := db.DB.Select("id", "project_id", "assigned_to").First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaskFacts{}, ErrNotFound
		}
		return TaskFacts{}, err
	}

	return TaskFacts{ID: task.ID, ProjectID: task.ProjectID, AssignedTo: task.AssignedTo}, nil
}

func (GormStore) Comment(id uint) (CommentFacts, error) {
	var comment models.Comment

	if err := db.DB.Select("id", "task_id", "user_id").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CommentFacts{}, ErrNotFound
		}
		return CommentFacts{}, err
	}

	return CommentFacts{ID: comment.ID, TaskID: comment.TaskID, UserID: comment.UserID}, nil
}

func (GormStore) IsMember(projectID, userID uint) (bool, error) {
	var count int64

	err := db.DB.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

var defaultChecker = New(GormStore{})

// Can evaluates the policy against the database-backed store.
func Can(actor Actor, action Action, res Resource) (Decision, error) {
	return defaultChecker.Can(actor, action, res)
}
