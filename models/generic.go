package models

import (
	"time"

	"gorm.io/gorm"
)

// Generic holds the columns shared by all models.
type Generic struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
