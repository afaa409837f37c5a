package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mirs/station-backend/internal/catalog"
	"github.com/mirs/station-backend/pkg/db/models"
	"github.com/mirs/station-backend/pkg/enums"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/mirs/station-backend/pkg/metrics"
	"github.com/mirs/station-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the inventory rows of a station.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	GetItem(ctx context.Context, stationID, code string) (*ItemDTO, error)
	ListItems(ctx context.Context, input ListItemsInput) (*ItemListResult, error)
	DeactivateItem(ctx context.Context, stationID, code, remarks string) (*ItemDTO, error)
	UpdateThresholds(ctx context.Context, input UpdateThresholdsInput) (*ItemDTO, error)
	Stats(ctx context.Context, stationID string) (*StatsDTO, error)

	Receive(ctx context.Context, input MovementInput) (*ItemDTO, error)
	Dispense(ctx context.Context, input MovementInput) (*ItemDTO, error)
	Reserve(ctx context.Context, input MovementInput) (*ItemDTO, error)
	Release(ctx context.Context, input MovementInput) (*ItemDTO, error)
	Adjust(ctx context.Context, input AdjustInput) (*ItemDTO, error)

	ListEvents(ctx context.Context, input ListEventsInput) (*EventListResult, error)
}

// CreateItemInput holds a validated activation request. Thresholds left
// unset keep their stored values on reactivation and default to zero on
// insert.
type CreateItemInput struct {
	StationID  string
	Code       string
	Thresholds ThresholdPatch
	Remarks    string
}

// UpdateThresholdsInput changes the stocking levels of a live item.
type UpdateThresholdsInput struct {
	StationID  string
	Code       string
	Thresholds ThresholdPatch
}

// ListItemsInput filters a station item listing.
type ListItemsInput struct {
	StationID string
	Status    *enums.ItemStatus
	LowStock  bool
	pagination.Params
}

// ListEventsInput pages through the history of one item.
type ListEventsInput struct {
	StationID string
	Code      string
	pagination.Params
}

// ServiceParams wires the inventory service.
type ServiceParams struct {
	Repo    *Repository
	Tx      txRunner
	Gate    *Gate
	Metrics *metrics.InventoryMetrics
	Now     func() time.Time
}

type service struct {
	repo      *Repository
	tx        txRunner
	activator *Activator
	metrics   *metrics.InventoryMetrics
	now       func() time.Time
}

// NewService constructs the inventory service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Gate == nil {
		return nil, fmt.Errorf("validation gate required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		activator: NewActivator(params.Repo, params.Gate, params.Metrics, now),
		metrics:   params.Metrics,
		now:       now,
	}, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	var created *models.InventoryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		item, err := s.activator.WithTx(tx).Activate(ctx, ActivateInput{
			StationID:  input.StationID,
			Code:       input.Code,
			Thresholds: input.Thresholds,
			Remarks:    input.Remarks,
		})
		if err != nil {
			return err
		}
		created = item
		return nil
	})
	if err != nil {
		return nil, asDomainError(err, "create inventory item")
	}
	dto := toItemDTO(*created)
	return &dto, nil
}

func (s *service) GetItem(ctx context.Context, stationID, code string) (*ItemDTO, error) {
	stationID, code, err := normalizeKey(stationID, code)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.Get(ctx, stationID, code)
	if err != nil {
		return nil, err
	}
	dto := toItemDTO(*item)
	return &dto, nil
}

func (s *service) ListItems(ctx context.Context, input ListItemsInput) (*ItemListResult, error) {
	stationID := strings.TrimSpace(input.StationID)
	if stationID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "station_id is required")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	after, err := pagination.ParseCodeCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	rows, err := s.repo.List(ctx, ListFilter{
		StationID: stationID,
		Status:    input.Status,
		LowStock:  input.LowStock,
		AfterCode: after,
		Limit:     pagination.LimitWithBuffer(input.Limit),
	})
	if err != nil {
		return nil, err
	}

	result := &ItemListResult{Items: make([]ItemDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		result.NextCursor = pagination.EncodeCodeCursor(rows[len(rows)-1].Code)
	}
	for _, row := range rows {
		result.Items = append(result.Items, toItemDTO(row))
	}
	return result, nil
}

func (s *service) DeactivateItem(ctx context.Context, stationID, code, remarks string) (*ItemDTO, error) {
	return s.mutate(ctx, stationID, code, enums.InventoryEventDeactivate, eventNote{remarks: remarks}, func(item *models.InventoryItem) (int, error) {
		if !item.Status.IsActive() {
			return 0, stateConflict(item, "item is already inactive")
		}
		item.Status = enums.ItemStatusInactive
		return 0, nil
	})
}

// UpdateThresholds overlays the supplied levels onto an active item. Stock is
// untouched, so no event is appended.
func (s *service) UpdateThresholds(ctx context.Context, input UpdateThresholdsInput) (*ItemDTO, error) {
	if input.Thresholds.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no thresholds to update")
	}
	var updated *models.InventoryItem
	err := s.withItem(ctx, input.StationID, input.Code, func(repo *Repository, item *models.InventoryItem) error {
		if err := requireActive(item); err != nil {
			return err
		}
		merged := input.Thresholds.Over(thresholdsOf(item))
		if err := merged.Validate(); err != nil {
			return err
		}
		merged.applyTo(item)
		item.UpdatedAt = s.now().UTC()
		if err := repo.Update(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, asDomainError(err, "update inventory thresholds")
	}
	dto := toItemDTO(*updated)
	return &dto, nil
}

func (s *service) Stats(ctx context.Context, stationID string) (*StatsDTO, error) {
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "station_id is required")
	}
	stats, err := s.repo.Stats(ctx, stationID)
	if err != nil {
		return nil, err
	}
	return &StatsDTO{
		StationID:     stationID,
		TotalItems:    stats.Total,
		ActiveItems:   stats.Active,
		InactiveItems: stats.Total - stats.Active,
		LowStockItems: stats.LowStock,
		CurrentStock:  stats.CurrentStock,
		ReservedStock: stats.ReservedStock,
	}, nil
}

func (s *service) ListEvents(ctx context.Context, input ListEventsInput) (*EventListResult, error) {
	stationID, code, err := normalizeKey(input.StationID, input.Code)
	if err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if _, err := s.repo.Get(ctx, stationID, code); err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(input.Limit)
	rows, err := s.repo.ListEvents(ctx, stationID, code, cursor, pagination.LimitWithBuffer(input.Limit))
	if err != nil {
		return nil, err
	}

	result := &EventListResult{Events: make([]EventDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for _, row := range rows {
		result.Events = append(result.Events, toEventDTO(row))
	}
	return result, nil
}

// mutate loads the row inside a transaction, lets change modify it, then
// persists it with one event carrying the quantity change returns.
func (s *service) mutate(ctx context.Context, stationID, code string, eventType enums.InventoryEventType, note eventNote, change func(item *models.InventoryItem) (int, error)) (*ItemDTO, error) {
	var updated *models.InventoryItem
	err := s.withItem(ctx, stationID, code, func(repo *Repository, item *models.InventoryItem) error {
		quantity, err := change(item)
		if err != nil {
			return err
		}
		item.UpdatedAt = s.now().UTC()
		if err := repo.Update(ctx, item); err != nil {
			return err
		}
		if err := appendEvent(ctx, repo, s.metrics, item, eventType, quantity, note, item.UpdatedAt); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, asDomainError(err, fmt.Sprintf("%s inventory item", strings.ToLower(eventType.String())))
	}
	dto := toItemDTO(*updated)
	return &dto, nil
}

// withItem runs fn in a transaction holding the row lock for (stationID, code).
func (s *service) withItem(ctx context.Context, stationID, code string, fn func(repo *Repository, item *models.InventoryItem) error) error {
	stationID, code, err := normalizeKey(stationID, code)
	if err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.Get(ctx, stationID, code)
		if err != nil {
			return err
		}
		return fn(repo, item)
	})
}

func normalizeKey(stationID, code string) (string, string, error) {
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "station_id is required")
	}
	normalized, err := catalog.NormalizeCode(code)
	if err != nil {
		return "", "", err
	}
	return stationID, normalized, nil
}

func stateConflict(item *models.InventoryItem, message string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, message).WithDetails(map[string]any{
		"station_id":     item.StationID,
		"code":           item.Code,
		"status":         item.Status,
		"current_stock":  item.CurrentStock,
		"reserved_stock": item.ReservedStock,
	})
}

// asDomainError keeps typed errors as they are and wraps anything else
// (driver errors from commit, for instance) as a dependency failure.
func asDomainError(err error, action string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
