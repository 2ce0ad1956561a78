package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ProjectStatusPlanned    = "planned"
	ProjectStatusInProgress = "in progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusOnHold     = "on hold"
)

type Project struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	StartDate   *datatypes.Date
	EndDate     *datatypes.Date
	Status      string `gorm:"not null;default:planned"`
	OwnerID     uint   `gorm:"not null;index"`

	// Optional outbound channels, posted to on task status changes.
	DiscordWebhook string
	SlackWebhook   string

	// Relationships
	Owner              User                `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ProjectMemberships []ProjectMembership `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tasks              []Task              `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func ValidProjectStatus(status string) bool {
	switch status {
	case ProjectStatusPlanned, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusOnHold:
		return true
	}
	return false
}
