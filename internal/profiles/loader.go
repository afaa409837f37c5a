package profiles

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mirs/station-backend/internal/catalog"
	"github.com/mirs/station-backend/internal/inventory"
	"github.com/mirs/station-backend/pkg/db/models"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/mirs/station-backend/pkg/logger"
	"github.com/mirs/station-backend/pkg/metrics"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// LoaderParams wires a Loader.
type LoaderParams struct {
	Registry     *Registry
	Catalog      catalog.Store
	Items        *inventory.Repository
	Activator    *inventory.Activator
	Applications *ApplicationRepository
	Tx           txRunner
	Metrics      *metrics.ProfileMetrics
	Logger       *logger.Logger
	Now          func() time.Time
}

// Loader applies station profiles. An application is all or nothing.
type Loader struct {
	registry     *Registry
	catalog      catalog.Store
	items        *inventory.Repository
	activator    *inventory.Activator
	applications *ApplicationRepository
	tx           txRunner
	metrics      *metrics.ProfileMetrics
	logg         *logger.Logger
	now          func() time.Time
}

func NewLoader(params LoaderParams) (*Loader, error) {
	switch {
	case params.Registry == nil:
		return nil, fmt.Errorf("profile registry required")
	case params.Catalog == nil:
		return nil, fmt.Errorf("catalog store required")
	case params.Items == nil:
		return nil, fmt.Errorf("inventory repository required")
	case params.Activator == nil:
		return nil, fmt.Errorf("inventory activator required")
	case params.Applications == nil:
		return nil, fmt.Errorf("application repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Loader{
		registry:     params.Registry,
		catalog:      params.Catalog,
		items:        params.Items,
		activator:    params.Activator,
		applications: params.Applications,
		tx:           params.Tx,
		metrics:      params.Metrics,
		logg:         logg,
		now:          now,
	}, nil
}

// Registry exposes the profiles the loader knows about.
func (l *Loader) Registry() *Registry {
	return l.registry
}

// Apply provisions stationID from the named profile inside one transaction.
// Codes the station already has, active or not, are left untouched. Any
// failure rolls the whole application back and is reported as
// PROFILE_LOAD_FAILED.
func (l *Loader) Apply(ctx context.Context, profileName, stationID string) (*ApplyResult, error) {
	profile, err := l.registry.Get(strings.TrimSpace(profileName))
	if err != nil {
		return nil, err
	}
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "station_id is required")
	}

	ctx = l.logg.WithFields(ctx, map[string]any{"profile": profile.Name, "station_id": stationID})
	started := time.Now()

	result, failedCode, err := l.apply(ctx, profile, stationID)
	l.metrics.ObserveApply(profile.Name, err == nil, createdOf(result), time.Since(started))
	if err != nil {
		loadErr := profileLoadError(profile.Name, stationID, failedCode, err)
		l.logg.Error(ctx, "profile application rolled back", loadErr)
		return nil, loadErr
	}

	l.logg.Info(l.logg.WithFields(ctx, map[string]any{
		"created": result.Created,
		"skipped": result.Skipped,
	}), "profile applied")
	return result, nil
}

func (l *Loader) apply(ctx context.Context, profile *Profile, stationID string) (*ApplyResult, string, error) {
	appliedAt := l.now().UTC()
	result := &ApplyResult{
		Profile:   profile.Name,
		Version:   profile.Version,
		StationID: stationID,
		Items:     make([]ItemOutcome, 0, len(profile.Items)),
		AppliedAt: appliedAt,
	}
	source := profile.Name

	var failedCode string
	err := l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := catalog.BindTx(l.catalog, tx)
		items := l.items.WithTx(tx)
		activator := l.activator.WithTx(tx)

		for _, line := range profile.Items {
			failedCode = line.Code
			entry, err := store.Lookup(ctx, line.Code)
			if err != nil {
				return err
			}

			existing, err := items.Find(ctx, stationID, entry.Code)
			if err != nil {
				return err
			}
			if existing != nil {
				result.Skipped++
				result.Items = append(result.Items, ItemOutcome{Code: entry.Code, Outcome: OutcomeSkipped})
				continue
			}

			if _, err := activator.Activate(ctx, inventory.ActivateInput{
				StationID:       stationID,
				Code:            entry.Code,
				Thresholds:      line.Stock().Patch(),
				InitialQuantity: line.InitialQuantity,
				SourceProfile:   &source,
				Remarks:         "profile " + profile.Name,
			}); err != nil {
				return err
			}
			result.Created++
			result.Items = append(result.Items, ItemOutcome{Code: entry.Code, Outcome: OutcomeCreated})
		}
		failedCode = ""

		app := &models.ProfileApplication{
			ID:             uuid.New(),
			StationID:      stationID,
			ProfileName:    profile.Name,
			ProfileVersion: profile.Version,
			ItemsCreated:   result.Created,
			ItemsSkipped:   result.Skipped,
			AppliedAt:      appliedAt,
		}
		if err := l.applications.WithTx(tx).Insert(ctx, app); err != nil {
			return err
		}
		result.ApplicationID = app.ID.String()
		return nil
	})
	if err != nil {
		return nil, failedCode, err
	}
	return result, "", nil
}

// Verify checks every registered profile against the catalog and reports
// all missing codes together.
func (l *Loader) Verify(ctx context.Context) error {
	var errs error
	missing := map[string][]string{}
	for _, profile := range l.registry.List() {
		for _, code := range profile.Codes() {
			_, err := l.catalog.Lookup(ctx, code)
			switch {
			case err == nil:
			case pkgerrors.HasCode(err, pkgerrors.CodeNotFound):
				missing[profile.Name] = append(missing[profile.Name], code)
				errs = multierr.Append(errs, fmt.Errorf("profile %s: code %s is not in the catalog", profile.Name, code))
			default:
				return err
			}
		}
	}
	if errs == nil {
		return nil
	}
	for name := range missing {
		sort.Strings(missing[name])
	}
	return pkgerrors.Wrap(pkgerrors.CodeProfileLoad, errs, "profiles reference codes missing from the catalog").
		WithDetails(map[string]any{"missing": missing})
}

// Applications lists the station's setup history, newest first.
func (l *Loader) Applications(ctx context.Context, stationID string) ([]ApplicationDTO, error) {
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "station_id is required")
	}
	rows, err := l.applications.List(ctx, stationID)
	if err != nil {
		return nil, err
	}
	out := make([]ApplicationDTO, len(rows))
	for i, row := range rows {
		out[i] = toApplicationDTO(row)
	}
	return out, nil
}

func profileLoadError(profile, stationID, code string, cause error) error {
	details := map[string]any{
		"profile":    profile,
		"station_id": stationID,
		"cause":      string(pkgerrors.CodeOf(cause)),
	}
	if code != "" {
		details["code"] = code
	}
	return pkgerrors.Wrap(pkgerrors.CodeProfileLoad, cause, fmt.Sprintf("apply profile %s", profile)).
		WithDetails(details)
}

func createdOf(result *ApplyResult) int {
	if result == nil {
		return 0
	}
	return result.Created
}
