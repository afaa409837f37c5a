package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mirs/station-backend/pkg/db/models"
	"github.com/mirs/station-backend/pkg/enums"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
)

// ExpiryLayout is the calendar date format of ExpiryDate.
const ExpiryLayout = "2006-01-02"

// MovementInput moves Quantity units of one item. BatchNumber and ExpiryDate
// are recorded on the event as given.
type MovementInput struct {
	StationID   string
	Code        string
	Quantity    int
	Remarks     string
	BatchNumber string
	ExpiryDate  string
}

func (in MovementInput) note() (eventNote, error) {
	note := eventNote{remarks: in.Remarks}
	if batch := strings.TrimSpace(in.BatchNumber); batch != "" {
		note.batch = &batch
	}
	if expiry := strings.TrimSpace(in.ExpiryDate); expiry != "" {
		if _, err := time.Parse(ExpiryLayout, expiry); err != nil {
			return eventNote{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "expiry_date must be YYYY-MM-DD").
				WithDetails(map[string]any{"expiry_date": expiry})
		}
		note.expiry = &expiry
	}
	return note, nil
}

// AdjustInput sets the counted stock of an item after a physical count.
type AdjustInput struct {
	StationID string
	Code      string
	NewCount  int
	Reason    string
}

func (s *service) Receive(ctx context.Context, input MovementInput) (*ItemDTO, error) {
	note, err := checkMovement(input)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, input.StationID, input.Code, enums.InventoryEventReceive, note, func(item *models.InventoryItem) (int, error) {
		if err := requireActive(item); err != nil {
			return 0, err
		}
		if input.Quantity > MaxQuantity-item.CurrentStock {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("receipt would take stock above %d", MaxQuantity)).
				WithDetails(map[string]any{
					"code":          item.Code,
					"requested":     input.Quantity,
					"current_stock": item.CurrentStock,
				})
		}
		item.CurrentStock += input.Quantity
		return input.Quantity, nil
	})
}

func (s *service) Dispense(ctx context.Context, input MovementInput) (*ItemDTO, error) {
	note, err := checkMovement(input)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, input.StationID, input.Code, enums.InventoryEventDispense, note, func(item *models.InventoryItem) (int, error) {
		if err := requireActive(item); err != nil {
			return 0, err
		}
		if input.Quantity > item.Available() {
			return 0, insufficient(item, input.Quantity, "insufficient available stock")
		}
		item.CurrentStock -= input.Quantity
		return input.Quantity, nil
	})
}

func (s *service) Reserve(ctx context.Context, input MovementInput) (*ItemDTO, error) {
	note, err := checkMovement(input)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, input.StationID, input.Code, enums.InventoryEventReserve, note, func(item *models.InventoryItem) (int, error) {
		if err := requireActive(item); err != nil {
			return 0, err
		}
		if input.Quantity > item.Available() {
			return 0, insufficient(item, input.Quantity, "insufficient available stock")
		}
		item.ReservedStock += input.Quantity
		return input.Quantity, nil
	})
}

func (s *service) Release(ctx context.Context, input MovementInput) (*ItemDTO, error) {
	note, err := checkMovement(input)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, input.StationID, input.Code, enums.InventoryEventRelease, note, func(item *models.InventoryItem) (int, error) {
		if err := requireActive(item); err != nil {
			return 0, err
		}
		if input.Quantity > item.ReservedStock {
			return 0, insufficient(item, input.Quantity, "release exceeds reserved stock")
		}
		item.ReservedStock -= input.Quantity
		return input.Quantity, nil
	})
}

// Adjust records the signed difference between the counted and the stored
// stock. A count below what is reserved is refused.
func (s *service) Adjust(ctx context.Context, input AdjustInput) (*ItemDTO, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment reason is required")
	}
	if input.NewCount < 0 || input.NewCount > MaxQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new count out of range").
			WithDetails(map[string]any{"new_count": input.NewCount, "max": MaxQuantity})
	}
	return s.mutate(ctx, input.StationID, input.Code, enums.InventoryEventAdjust, eventNote{remarks: reason}, func(item *models.InventoryItem) (int, error) {
		if err := requireActive(item); err != nil {
			return 0, err
		}
		if input.NewCount < item.ReservedStock {
			return 0, insufficient(item, input.NewCount, "new count is below reserved stock")
		}
		delta := input.NewCount - item.CurrentStock
		item.CurrentStock = input.NewCount
		return delta, nil
	})
}

func checkMovement(input MovementInput) (eventNote, error) {
	if input.Quantity <= 0 || input.Quantity > MaxQuantity {
		return eventNote{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", MaxQuantity)).
			WithDetails(map[string]any{"quantity": input.Quantity})
	}
	return input.note()
}

func requireActive(item *models.InventoryItem) error {
	if !item.Status.IsActive() {
		return stateConflict(item, "item is inactive")
	}
	return nil
}

func insufficient(item *models.InventoryItem, requested int, message string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, message).WithDetails(map[string]any{
		"station_id":     item.StationID,
		"code":           item.Code,
		"requested":      requested,
		"current_stock":  item.CurrentStock,
		"reserved_stock": item.ReservedStock,
		"available":      item.Available(),
	})
}
