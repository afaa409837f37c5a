package models

import "time"

// StationMetadata holds the identity of the single station this database serves.
type StationMetadata struct {
	StationID   string    `gorm:"column:station_id;primaryKey"`
	ProfileName string    `gorm:"column:profile_name;not null;default:''"`
	OrgCode     string    `gorm:"column:org_code;not null;default:''"`
	DisplayName string    `gorm:"column:display_name;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (StationMetadata) TableName() string { return "station_metadata" }
