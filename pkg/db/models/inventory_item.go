package models

import (
	"time"

	"github.com/mirs/station-backend/pkg/enums"
)

// InventoryItem is the station-owned stock record for one catalog code.
type InventoryItem struct {
	StationID     string           `gorm:"column:station_id;primaryKey"`
	Code          string           `gorm:"column:code;primaryKey"`
	CurrentStock  int              `gorm:"column:current_stock;not null;default:0"`
	ReservedStock int              `gorm:"column:reserved_stock;not null;default:0"`
	MinStock      int              `gorm:"column:min_stock;not null;default:0"`
	MaxStock      int              `gorm:"column:max_stock;not null;default:0"`
	ReorderPoint  int              `gorm:"column:reorder_point;not null;default:0"`
	Status        enums.ItemStatus `gorm:"column:status;not null;default:active"`
	SourceProfile *string          `gorm:"column:source_profile"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (InventoryItem) TableName() string { return "inventory_items" }

// Available is the stock that can still be dispensed or reserved.
func (i InventoryItem) Available() int {
	return i.CurrentStock - i.ReservedStock
}

// IsLowStock mirrors the low_stock list filter.
func (i InventoryItem) IsLowStock() bool {
	if i.CurrentStock < i.MinStock {
		return true
	}
	return i.ReorderPoint > 0 && i.CurrentStock <= i.ReorderPoint
}
