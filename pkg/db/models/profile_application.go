package models

import (
	"time"

	"github.com/google/uuid"
)

// ProfileApplication is written once per committed profile load.
type ProfileApplication struct {
	ID             uuid.UUID `gorm:"column:id;primaryKey"`
	StationID      string    `gorm:"column:station_id;not null"`
	ProfileName    string    `gorm:"column:profile_name;not null"`
	ProfileVersion string    `gorm:"column:profile_version;not null"`
	ItemsCreated   int       `gorm:"column:items_created;not null"`
	ItemsSkipped   int       `gorm:"column:items_skipped;not null"`
	AppliedAt      time.Time `gorm:"column:applied_at;not null"`
}

func (ProfileApplication) TableName() string { return "profile_applications" }
