package inventory

import (
	"context"
	"fmt"

	"github.com/mirs/station-backend/pkg/db"
	"github.com/mirs/station-backend/pkg/db/models"
	"github.com/mirs/station-backend/pkg/enums"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/mirs/station-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const lowStockWhere = "status = ? AND (current_stock < min_stock OR (reorder_point > 0 AND current_stock <= reorder_point))"

// Repository persists station inventory rows and their event history.
type Repository struct {
	db   *gorm.DB
	lock bool
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// WithTx returns a repository bound to the provided transaction. Rows read
// through it are locked until the transaction ends (SELECT ... FOR UPDATE;
// the SQLite dialector omits the clause and relies on its single writer).
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx, lock: true}
}

// Find returns the row for (stationID, code) or nil when none exists.
func (r *Repository) Find(ctx context.Context, stationID, code string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.findQuery(ctx, stationID, code).Take(&item).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find inventory item")
	}
	return &item, nil
}

func (r *Repository) findQuery(ctx context.Context, stationID, code string) *gorm.DB {
	q := r.db.WithContext(ctx).Where("station_id = ? AND code = ?", stationID, code)
	if r.lock {
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	return q
}

// Get is Find with a NotFound error for missing rows.
func (r *Repository) Get(ctx context.Context, stationID, code string) (*models.InventoryItem, error) {
	item, err := r.Find(ctx, stationID, code)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found").
			WithDetails(map[string]any{"station_id": stationID, "code": code})
	}
	return item, nil
}

// Insert creates a new row. A primary key collision means another writer
// activated the same code first.
func (r *Repository) Insert(ctx context.Context, item *models.InventoryItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return duplicateActivation(item.StationID, item.Code)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("insert inventory item (station_id=%s code=%s)", item.StationID, item.Code))
	}
	return nil
}

// Update writes the mutable columns of item, zero values included.
func (r *Repository) Update(ctx context.Context, item *models.InventoryItem) error {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("station_id = ? AND code = ?", item.StationID, item.Code).
		Updates(map[string]any{
			"current_stock":  item.CurrentStock,
			"reserved_stock": item.ReservedStock,
			"min_stock":      item.MinStock,
			"max_stock":      item.MaxStock,
			"reorder_point":  item.ReorderPoint,
			"status":         item.Status,
			"updated_at":     item.UpdatedAt,
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update inventory item")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found").
			WithDetails(map[string]any{"station_id": item.StationID, "code": item.Code})
	}
	return nil
}

// ListFilter narrows a station item listing.
type ListFilter struct {
	StationID string
	Status    *enums.ItemStatus
	LowStock  bool
	AfterCode string
	Limit     int
}

// List returns rows ordered by code, starting after AfterCode.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.InventoryItem, error) {
	q := r.db.WithContext(ctx).Where("station_id = ?", filter.StationID)
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.LowStock {
		q = q.Where(lowStockWhere, enums.ItemStatusActive)
	}
	if filter.AfterCode != "" {
		q = q.Where("code > ?", filter.AfterCode)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []models.InventoryItem
	if err := q.Order("code ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory items")
	}
	return rows, nil
}

// Count returns how many rows exist for the station.
func (r *Repository) Count(ctx context.Context, stationID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("station_id = ?", stationID).
		Count(&count).
		Error; err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count inventory items")
	}
	return count, nil
}

// StationStats are the aggregate counters of one station's rows.
type StationStats struct {
	Total         int64 `gorm:"column:total"`
	Active        int64 `gorm:"column:active"`
	LowStock      int64 `gorm:"column:low_stock"`
	CurrentStock  int64 `gorm:"column:current_stock"`
	ReservedStock int64 `gorm:"column:reserved_stock"`
}

// Stats aggregates the station's rows in one query. Low stock counts active
// rows only, matching the list filter.
func (r *Repository) Stats(ctx context.Context, stationID string) (*StationStats, error) {
	var stats StationStats
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS active,
			COALESCE(SUM(CASE WHEN `+lowStockWhere+` THEN 1 ELSE 0 END), 0) AS low_stock,
			COALESCE(SUM(current_stock), 0) AS current_stock,
			COALESCE(SUM(reserved_stock), 0) AS reserved_stock`,
			enums.ItemStatusActive, enums.ItemStatusActive).
		Where("station_id = ?", stationID).
		Scan(&stats).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate inventory items")
	}
	return &stats, nil
}

// AppendEvent inserts an audit row.
func (r *Repository) AppendEvent(ctx context.Context, event *models.InventoryEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("append %s event (station_id=%s code=%s)", event.EventType, event.StationID, event.Code))
	}
	return nil
}

// ListEvents returns the newest events first, continuing after cursor.
func (r *Repository) ListEvents(ctx context.Context, stationID, code string, cursor *pagination.Cursor, limit int) ([]models.InventoryEvent, error) {
	q := r.db.WithContext(ctx).Where("station_id = ? AND code = ?", stationID, code)
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []models.InventoryEvent
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory events")
	}
	return rows, nil
}

func duplicateActivation(stationID, code string) error {
	return pkgerrors.New(pkgerrors.CodeDuplicateActivation, "item already active for station").
		WithDetails(map[string]any{"station_id": stationID, "code": code})
}
