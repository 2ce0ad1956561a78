package models

import "gorm.io/gorm"

// ProjectMembership links a user to a project. The project owner is treated
// as a member everywhere without a stored row; no owner row is ever inserted.
type ProjectMembership struct {
	gorm.Model

	UserID        uint   `gorm:"not null;uniqueIndex:idx_user_project"`
	ProjectID     uint   `gorm:"not null;uniqueIndex:idx_user_project"`
	RoleInProject string `gorm:"not null"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
