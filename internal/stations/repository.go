package stations

import (
	"context"

	"github.com/mirs/station-backend/pkg/db"
	"github.com/mirs/station-backend/pkg/db/models"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"gorm.io/gorm"
)

// Repository stores the station identity row.
type Repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Get returns the metadata for id or nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*models.StationMetadata, error) {
	var row models.StationMetadata
	if err := r.db.WithContext(ctx).Where("station_id = ?", id).Take(&row).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get station metadata")
	}
	return &row, nil
}

// First returns the oldest stored station or nil when none has been created.
func (r *Repository) First(ctx context.Context) (*models.StationMetadata, error) {
	var row models.StationMetadata
	if err := r.db.WithContext(ctx).Order("created_at ASC").Take(&row).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load station metadata")
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, row *models.StationMetadata) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "station already registered")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create station metadata")
	}
	return nil
}

// UpdateProfile records the profile most recently applied to the station.
func (r *Repository) UpdateProfile(ctx context.Context, id, profile string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.StationMetadata{}).
		Where("station_id = ?", id).
		Update("profile_name", profile).
		Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update station profile")
	}
	return nil
}
