package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mirs/station-backend/pkg/enums"
)

// InventoryEvent records an immutable change to a station inventory row.
type InventoryEvent struct {
	ID            uuid.UUID                `gorm:"column:id;primaryKey"`
	StationID     string                   `gorm:"column:station_id;not null"`
	Code          string                   `gorm:"column:code;not null"`
	EventType     enums.InventoryEventType `gorm:"column:event_type;not null"`
	Quantity      int                      `gorm:"column:quantity;not null;default:0"`
	BalanceAfter  int                      `gorm:"column:balance_after;not null"`
	ReservedAfter int                      `gorm:"column:reserved_after;not null"`
	Remarks       string                   `gorm:"column:remarks;not null;default:''"`
	BatchNumber   *string                  `gorm:"column:batch_number"`
	ExpiryDate    *string                  `gorm:"column:expiry_date"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
}

func (InventoryEvent) TableName() string { return "inventory_events" }
