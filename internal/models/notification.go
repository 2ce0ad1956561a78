package models

import "gorm.io/gorm"

// Notification type tags. Each is produced by exactly one trigger in the
// notifications package.
const (
	NotificationProjectAssignment = "project_assignment"
	NotificationNewTaskAssignment = "new_task_assignment"
	NotificationAssignmentChange  = "assignment_change"
	NotificationTaskStatusUpdate  = "task_status_update"
	NotificationStatusUpdate      = "status_update"
)

// Notification is append-only. Rows are created as a side effect of another
// entity's mutation and afterwards only the IsRead flag ever changes.
type Notification struct {
	gorm.Model

	UserID    uint   `gorm:"not null;index"`
	Message   string `gorm:"not null"`
	IsRead    bool   `gorm:"not null;default:false"`
	Type      string `gorm:"not null"`
	RelatedID uint   `gorm:"index"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
