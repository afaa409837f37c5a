package profiles

import (
	"context"

	"github.com/mirs/station-backend/pkg/db/models"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"gorm.io/gorm"
)

// ApplicationRepository records committed profile applications.
type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(conn *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: conn}
}

func (r *ApplicationRepository) WithTx(tx *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: tx}
}

func (r *ApplicationRepository) Insert(ctx context.Context, app *models.ProfileApplication) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert profile application")
	}
	return nil
}

// List returns the station's applications, newest first.
func (r *ApplicationRepository) List(ctx context.Context, stationID string) ([]models.ProfileApplication, error) {
	var rows []models.ProfileApplication
	err := r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		Order("applied_at DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list profile applications")
	}
	return rows, nil
}
