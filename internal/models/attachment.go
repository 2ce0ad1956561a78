package models

import "gorm.io/gorm"

type Attachment struct {
	gorm.Model

	TaskID   uint   `gorm:"not null;index"`
	FileName string `gorm:"not null"`
	FileURL  string `gorm:"not null"`

	// Relationships
	Task Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
