package inventory

import (
	"time"

	"github.com/mirs/station-backend/pkg/db/models"
)

// ItemDTO is the public shape of a station inventory row.
type ItemDTO struct {
	StationID     string    `json:"station_id"`
	Code          string    `json:"code"`
	CurrentStock  int       `json:"current_stock"`
	ReservedStock int       `json:"reserved_stock"`
	Available     int       `json:"available"`
	MinStock      int       `json:"min_stock"`
	MaxStock      int       `json:"max_stock"`
	ReorderPoint  int       `json:"reorder_point"`
	Status        string    `json:"status"`
	LowStock      bool      `json:"low_stock"`
	SourceProfile *string   `json:"source_profile,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ItemListResult is one keyset page of items.
type ItemListResult struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// EventDTO is one audit history entry.
type EventDTO struct {
	ID            string    `json:"id"`
	EventType     string    `json:"event_type"`
	Quantity      int       `json:"quantity"`
	BalanceAfter  int       `json:"balance_after"`
	ReservedAfter int       `json:"reserved_after"`
	Remarks       string    `json:"remarks,omitempty"`
	BatchNumber   *string   `json:"batch_number,omitempty"`
	ExpiryDate    *string   `json:"expiry_date,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// EventListResult is one page of events, newest first.
type EventListResult struct {
	Events     []EventDTO `json:"events"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// StatsDTO summarizes a station's inventory.
type StatsDTO struct {
	StationID     string `json:"station_id"`
	TotalItems    int64  `json:"total_items"`
	ActiveItems   int64  `json:"active_items"`
	InactiveItems int64  `json:"inactive_items"`
	LowStockItems int64  `json:"low_stock_items"`
	CurrentStock  int64  `json:"current_stock"`
	ReservedStock int64  `json:"reserved_stock"`
}

func toItemDTO(item models.InventoryItem) ItemDTO {
	return ItemDTO{
		StationID:     item.StationID,
		Code:          item.Code,
		CurrentStock:  item.CurrentStock,
		ReservedStock: item.ReservedStock,
		Available:     item.Available(),
		MinStock:      item.MinStock,
		MaxStock:      item.MaxStock,
		ReorderPoint:  item.ReorderPoint,
		Status:        item.Status.String(),
		LowStock:      item.Status.IsActive() && item.IsLowStock(),
		SourceProfile: item.SourceProfile,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

func toEventDTO(event models.InventoryEvent) EventDTO {
	return EventDTO{
		ID:            event.ID.String(),
		EventType:     event.EventType.String(),
		Quantity:      event.Quantity,
		BalanceAfter:  event.BalanceAfter,
		ReservedAfter: event.ReservedAfter,
		Remarks:       event.Remarks,
		BatchNumber:   event.BatchNumber,
		ExpiryDate:    event.ExpiryDate,
		CreatedAt:     event.CreatedAt,
	}
}
