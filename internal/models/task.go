package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TaskStatusTodo       = "To-Do"
	TaskStatusInProgress = "In Progress"
	TaskStatusDone       = "Done"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

type Task struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:To-Do"`
	Priority    string `gorm:"not null;default:Medium"`
	DueDate     *time.Time
	ProjectID   uint `gorm:"not null;index"`
	AssignedTo  uint `gorm:"not null;index"`

	// Relationships
	Project     Project      `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignee    User         `gorm:"foreignKey:AssignedTo;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments    []Comment    `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Attachments []Attachment `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// NormalizeTaskStatus maps a submitted status, including the legacy aliases
// older clients still send, onto the canonical set. Returns false for values
// outside both sets; they are rejected, never stored.
func NormalizeTaskStatus(status string) (string, bool) {
	switch status {
	case TaskStatusTodo, "pending", "To-do", "todo":
		return TaskStatusTodo, true
	case TaskStatusInProgress, "in-progress", "in progress":
		return TaskStatusInProgress, true
	case TaskStatusDone, "completed":
		return TaskStatusDone, true
	}
	return "", false
}

func ValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
