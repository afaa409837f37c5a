package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/mirs/station-backend/internal/catalog"
	"github.com/mirs/station-backend/pkg/db/models"
	"github.com/mirs/station-backend/pkg/enums"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/mirs/station-backend/pkg/metrics"
	"gorm.io/gorm"
)

// ActivationReader finds the existing row for a station and code, returning
// nil when there is none.
type ActivationReader interface {
	Find(ctx context.Context, stationID, code string) (*models.InventoryItem, error)
}

// Admission is a gate approval. Existing is the inactive row for the pair,
// if one is on record.
type Admission struct {
	StationID string
	Entry     *models.CatalogEntry
	Existing  *models.InventoryItem
}

// Gate is the only path by which a station may start stocking a code. Bind it
// to the caller's transaction so the existence check and the insert share it.
type Gate struct {
	catalog catalog.Store
	metrics *metrics.InventoryMetrics
}

// NewGate builds a gate over the injected catalog.
func NewGate(store catalog.Store, m *metrics.InventoryMetrics) (*Gate, error) {
	if store == nil {
		return nil, fmt.Errorf("catalog store required")
	}
	return &Gate{catalog: store, metrics: m}, nil
}

// WithTx returns a gate whose catalog reads run on tx.
func (g *Gate) WithTx(tx *gorm.DB) *Gate {
	return &Gate{catalog: catalog.BindTx(g.catalog, tx), metrics: g.metrics}
}

// Admit validates code for stationID. It fails with INVALID_CODE for empty or
// malformed codes, NOT_FOUND for codes outside the catalog and
// DUPLICATE_ACTIVATION when the station already has the code active.
func (g *Gate) Admit(ctx context.Context, items ActivationReader, stationID, code string) (*Admission, error) {
	admission, err := g.admit(ctx, items, stationID, code)
	g.metrics.ObserveGate(gateOutcome(err))
	return admission, err
}

func (g *Gate) admit(ctx context.Context, items ActivationReader, stationID, code string) (*Admission, error) {
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "station_id is required")
	}

	entry, err := g.catalog.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	existing, err := items.Find(ctx, stationID, entry.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == enums.ItemStatusActive {
		return nil, duplicateActivation(stationID, entry.Code)
	}

	return &Admission{StationID: stationID, Entry: entry, Existing: existing}, nil
}

func gateOutcome(err error) string {
	if err == nil {
		return metrics.OutcomeAdmitted
	}
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeInvalidCode, pkgerrors.CodeValidation:
		return metrics.OutcomeInvalid
	case pkgerrors.CodeNotFound:
		return metrics.OutcomeNotFound
	case pkgerrors.CodeDuplicateActivation:
		return metrics.OutcomeDuplicate
	default:
		return metrics.OutcomeError
	}
}
