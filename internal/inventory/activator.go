package inventory

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mirs/station-backend/pkg/db/models"
	"github.com/mirs/station-backend/pkg/enums"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/mirs/station-backend/pkg/metrics"
	"gorm.io/gorm"
)

// MaxQuantity bounds every stock count and threshold. Counts are stored in
// 32-bit INTEGER columns on Postgres.
const MaxQuantity = math.MaxInt32

// Thresholds are the stocking levels of one inventory row.
type Thresholds struct {
	MinStock     int
	MaxStock     int
	ReorderPoint int
}

// Validate rejects negative or oversized levels and a ceiling below the floor
// or reorder point.
func (t Thresholds) Validate() error {
	if t.MinStock < 0 || t.MaxStock < 0 || t.ReorderPoint < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "thresholds must be non-negative").
			WithDetails(t.details())
	}
	if t.MinStock > MaxQuantity || t.MaxStock > MaxQuantity || t.ReorderPoint > MaxQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("thresholds must not exceed %d", MaxQuantity)).
			WithDetails(t.details())
	}
	if t.MaxStock > 0 && (t.MinStock > t.MaxStock || t.ReorderPoint > t.MaxStock) {
		return pkgerrors.New(pkgerrors.CodeValidation, "min_stock and reorder_point must not exceed max_stock").
			WithDetails(t.details())
	}
	return nil
}

// Patch returns a patch that sets every level.
func (t Thresholds) Patch() ThresholdPatch {
	return ThresholdPatch{MinStock: &t.MinStock, MaxStock: &t.MaxStock, ReorderPoint: &t.ReorderPoint}
}

func (t Thresholds) details() map[string]any {
	return map[string]any{
		"min_stock":     t.MinStock,
		"max_stock":     t.MaxStock,
		"reorder_point": t.ReorderPoint,
	}
}

func thresholdsOf(item *models.InventoryItem) Thresholds {
	return Thresholds{MinStock: item.MinStock, MaxStock: item.MaxStock, ReorderPoint: item.ReorderPoint}
}

func (t Thresholds) applyTo(item *models.InventoryItem) {
	item.MinStock = t.MinStock
	item.MaxStock = t.MaxStock
	item.ReorderPoint = t.ReorderPoint
}

// ThresholdPatch carries the levels a caller supplied. Nil fields keep the
// stored value.
type ThresholdPatch struct {
	MinStock     *int
	MaxStock     *int
	ReorderPoint *int
}

// IsEmpty reports whether the patch sets nothing.
func (p ThresholdPatch) IsEmpty() bool {
	return p.MinStock == nil && p.MaxStock == nil && p.ReorderPoint == nil
}

// Over overlays the supplied levels onto base.
func (p ThresholdPatch) Over(base Thresholds) Thresholds {
	if p.MinStock != nil {
		base.MinStock = *p.MinStock
	}
	if p.MaxStock != nil {
		base.MaxStock = *p.MaxStock
	}
	if p.ReorderPoint != nil {
		base.ReorderPoint = *p.ReorderPoint
	}
	return base
}

// ActivateInput describes one activation.
type ActivateInput struct {
	StationID       string
	Code            string
	Thresholds      ThresholdPatch
	InitialQuantity int
	SourceProfile   *string
	Remarks         string
}

// Activator turns gate admissions into rows and their opening events. It
// must run inside the caller's transaction; see WithTx.
type Activator struct {
	repo    *Repository
	gate    *Gate
	metrics *metrics.InventoryMetrics
	now     func() time.Time
}

// NewActivator wires the activation path.
func NewActivator(repo *Repository, gate *Gate, m *metrics.InventoryMetrics, now func() time.Time) *Activator {
	if now == nil {
		now = time.Now
	}
	return &Activator{repo: repo, gate: gate, metrics: m, now: now}
}

// WithTx binds the repository and gate to tx.
func (a *Activator) WithTx(tx *gorm.DB) *Activator {
	return &Activator{
		repo:    a.repo.WithTx(tx),
		gate:    a.gate.WithTx(tx),
		metrics: a.metrics,
		now:     a.now,
	}
}

// Activate admits the code through the gate and then inserts a new row, or
// reactivates an inactive one keeping its stock. Supplied thresholds replace
// the stored ones field by field.
func (a *Activator) Activate(ctx context.Context, input ActivateInput) (*models.InventoryItem, error) {
	// Over a zero base only the combinations invalid for every base fail.
	if err := input.Thresholds.Over(Thresholds{}).Validate(); err != nil {
		return nil, err
	}
	if input.InitialQuantity < 0 || input.InitialQuantity > MaxQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial quantity out of range").
			WithDetails(map[string]any{"initial_quantity": input.InitialQuantity, "max": MaxQuantity})
	}

	admission, err := a.gate.Admit(ctx, a.repo, input.StationID, input.Code)
	if err != nil {
		return nil, err
	}

	if admission.Existing != nil {
		return a.reactivate(ctx, admission.Existing, input)
	}
	return a.insert(ctx, admission, input)
}

func (a *Activator) insert(ctx context.Context, admission *Admission, input ActivateInput) (*models.InventoryItem, error) {
	now := a.now().UTC()
	item := &models.InventoryItem{
		StationID:     admission.StationID,
		Code:          admission.Entry.Code,
		CurrentStock:  input.InitialQuantity,
		Status:        enums.ItemStatusActive,
		SourceProfile: input.SourceProfile,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	input.Thresholds.Over(Thresholds{}).applyTo(item)
	if err := a.repo.Insert(ctx, item); err != nil {
		return nil, err
	}

	if err := a.record(ctx, item, enums.InventoryEventActivate, 0, input.Remarks, now); err != nil {
		return nil, err
	}
	if item.CurrentStock > 0 {
		if err := a.record(ctx, item, enums.InventoryEventReceive, item.CurrentStock, "initial quantity", now.Add(time.Microsecond)); err != nil {
			return nil, err
		}
	}
	return item, nil
}

func (a *Activator) reactivate(ctx context.Context, item *models.InventoryItem, input ActivateInput) (*models.InventoryItem, error) {
	merged := input.Thresholds.Over(thresholdsOf(item))
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	now := a.now().UTC()
	item.Status = enums.ItemStatusActive
	item.UpdatedAt = now
	merged.applyTo(item)
	if err := a.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	if err := a.record(ctx, item, enums.InventoryEventReactivate, 0, input.Remarks, now); err != nil {
		return nil, err
	}
	return item, nil
}

func (a *Activator) record(ctx context.Context, item *models.InventoryItem, eventType enums.InventoryEventType, quantity int, remarks string, at time.Time) error {
	return appendEvent(ctx, a.repo, a.metrics, item, eventType, quantity, eventNote{remarks: remarks}, at)
}

// eventNote is the free-form part of an event.
type eventNote struct {
	remarks string
	batch   *string
	expiry  *string
}

func appendEvent(ctx context.Context, repo *Repository, m *metrics.InventoryMetrics, item *models.InventoryItem, eventType enums.InventoryEventType, quantity int, note eventNote, at time.Time) error {
	event := &models.InventoryEvent{
		ID:            uuid.New(),
		StationID:     item.StationID,
		Code:          item.Code,
		EventType:     eventType,
		Quantity:      quantity,
		BalanceAfter:  item.CurrentStock,
		ReservedAfter: item.ReservedStock,
		Remarks:       note.remarks,
		BatchNumber:   note.batch,
		ExpiryDate:    note.expiry,
		CreatedAt:     at,
	}
	if err := repo.AppendEvent(ctx, event); err != nil {
		return err
	}
	m.ObserveEvent(eventType.String(), quantity)
	return nil
}
