package profiles

import (
	"context"
	"testing"
	"time"

	"github.com/mirs/station-backend/internal/catalog"
	"github.com/mirs/station-backend/internal/inventory"
	"github.com/mirs/station-backend/internal/testutil"
	"github.com/mirs/station-backend/pkg/db"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/mirs/station-backend/pkg/logger"
	"github.com/mirs/station-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const station = "BORP-01"

type loaderFixture struct {
	client *db.Client
	items  *inventory.Repository
	loader *Loader
}

func newLoaderFixture(t *testing.T, reg *Registry, fullCatalog bool) *loaderFixture {
	t.Helper()
	client := testutil.NewDB(t)
	store := catalog.NewRepository(client.DB())
	if fullCatalog {
		_, err := catalog.EnsureSeeded(context.Background(), store, "", logger.Nop())
		require.NoError(t, err)
	} else {
		testutil.SeedCatalog(t, client)
	}

	gate, err := inventory.NewGate(store, nil)
	require.NoError(t, err)
	items := inventory.NewRepository(client.DB())
	loader, err := NewLoader(LoaderParams{
		Registry:     reg,
		Catalog:      store,
		Items:        items,
		Activator:    inventory.NewActivator(items, gate, nil, nil),
		Applications: NewApplicationRepository(client.DB()),
		Tx:           client,
		Metrics:      metrics.NewProfileMetrics(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	return &loaderFixture{client: client, items: items, loader: loader}
}

func (f *loaderFixture) count(t *testing.T) int64 {
	t.Helper()
	n, err := f.items.Count(context.Background(), station)
	require.NoError(t, err)
	return n
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(
		Profile{
			Name:          "dressing_kit",
			Version:       "1.0.0",
			StationPrefix: "DK",
			Items: []Item{
				{Code: "GAUZE-4X4", Thresholds: Thresholds{MinStock: 10, MaxStock: 50, ReorderPoint: 15, InitialQuantity: 20}},
				{Code: "TAPE-1IN", Thresholds: Thresholds{MinStock: 2, MaxStock: 10, ReorderPoint: 3}},
			},
		},
		Profile{
			Name:          "broken",
			Version:       "1.0.0",
			StationPrefix: "BRK",
			Items: []Item{
				{Code: "GAUZE-2X2", Thresholds: Thresholds{MinStock: 1, MaxStock: 5, InitialQuantity: 2}},
				{Code: "PPE-001", Thresholds: Thresholds{MinStock: 1, MaxStock: 5}},
				{Code: "RETIRED-01", Thresholds: Thresholds{MinStock: 1, MaxStock: 5}},
			},
		},
	)
	require.NoError(t, err)
	return reg
}

func TestApplySurgicalStationThresholds(t *testing.T) {
	reg, err := LoadBuiltin()
	require.NoError(t, err)
	f := newLoaderFixture(t, reg, true)
	ctx := context.Background()

	result, err := f.loader.Apply(ctx, "surgical_station", station)
	require.NoError(t, err)
	profile, err := reg.Get("surgical_station")
	require.NoError(t, err)
	require.Equal(t, len(profile.Items), result.Created)
	require.Zero(t, result.Skipped)

	item, err := f.items.Get(ctx, station, "SURG-ASSET-01")
	require.NoError(t, err)
	require.Equal(t, 8, item.MinStock)
	require.Equal(t, 8, item.CurrentStock)
	require.NotNil(t, item.SourceProfile)
	require.Equal(t, "surgical_station", *item.SourceProfile)
}

func TestApplyTwiceMatchesApplyOnce(t *testing.T) {
	reg, err := LoadBuiltin()
	require.NoError(t, err)
	f := newLoaderFixture(t, reg, true)
	ctx := context.Background()

	first, err := f.loader.Apply(ctx, "surgical_station", station)
	require.NoError(t, err)
	afterFirst := f.count(t)

	second, err := f.loader.Apply(ctx, "surgical_station", station)
	require.NoError(t, err)
	require.Equal(t, afterFirst, f.count(t))
	require.Zero(t, second.Created)
	require.Equal(t, first.Created, second.Skipped)

	for _, outcome := range second.Items {
		require.Equal(t, OutcomeSkipped, outcome.Outcome)
	}

	apps, err := f.loader.Applications(ctx, station)
	require.NoError(t, err)
	require.Len(t, apps, 2)
}

func TestApplyNeverOverwritesLiveStock(t *testing.T) {
	f := newLoaderFixture(t, testRegistry(t), false)
	ctx := context.Background()

	_, err := f.loader.Apply(ctx, "dressing_kit", station)
	require.NoError(t, err)

	svc, err := inventory.NewService(inventory.ServiceParams{
		Repo: f.items,
		Tx:   f.client,
		Gate: mustGate(t, f.client),
	})
	require.NoError(t, err)
	_, err = svc.Dispense(ctx, inventory.MovementInput{StationID: station, Code: "GAUZE-4X4", Quantity: 7})
	require.NoError(t, err)
	_, err = svc.DeactivateItem(ctx, station, "TAPE-1IN", "")
	require.NoError(t, err)

	result, err := f.loader.Apply(ctx, "dressing_kit", station)
	require.NoError(t, err)
	require.Equal(t, 2, result.Skipped)

	gauze, err := f.items.Get(ctx, station, "GAUZE-4X4")
	require.NoError(t, err)
	require.Equal(t, 13, gauze.CurrentStock)

	tape, err := f.items.Get(ctx, station, "TAPE-1IN")
	require.NoError(t, err)
	require.Equal(t, "inactive", tape.Status.String())
}

func TestApplyIsAllOrNothing(t *testing.T) {
	f := newLoaderFixture(t, testRegistry(t), false)
	ctx := context.Background()

	_, err := f.loader.Apply(ctx, "broken", station)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeProfileLoad, pkgerrors.CodeOf(err))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	require.Equal(t, "broken", details["profile"])
	require.Equal(t, station, details["station_id"])
	require.Equal(t, "RETIRED-01", details["code"])

	require.Zero(t, f.count(t))
	apps, err := f.loader.Applications(ctx, station)
	require.NoError(t, err)
	require.Empty(t, apps)
}

func TestApplyIsPerStation(t *testing.T) {
	f := newLoaderFixture(t, testRegistry(t), false)
	ctx := context.Background()

	_, err := f.loader.Apply(ctx, "dressing_kit", station)
	require.NoError(t, err)
	_, err = f.loader.Apply(ctx, "dressing_kit", "LOG-01")
	require.NoError(t, err)

	n, err := f.items.Count(ctx, "LOG-01")
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestApplyRejectsUnknownProfileAndStation(t *testing.T) {
	f := newLoaderFixture(t, testRegistry(t), false)
	ctx := context.Background()

	_, err := f.loader.Apply(ctx, "does_not_exist", station)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = f.loader.Apply(ctx, "dressing_kit", "  ")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestApplyRecordsOpeningEvents(t *testing.T) {
	f := newLoaderFixture(t, testRegistry(t), false)
	ctx := context.Background()

	_, err := f.loader.Apply(ctx, "dressing_kit", station)
	require.NoError(t, err)

	events, err := f.items.ListEvents(ctx, station, "GAUZE-4X4", nil, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "RECEIVE", events[0].EventType.String())
	require.Equal(t, 20, events[0].Quantity)
	require.Equal(t, "ACTIVATE", events[1].EventType.String())

	events, err = f.items.ListEvents(ctx, station, "TAPE-1IN", nil, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestVerify(t *testing.T) {
	reg, err := LoadBuiltin()
	require.NoError(t, err)
	full := newLoaderFixture(t, reg, true)
	require.NoError(t, full.loader.Verify(context.Background()))

	partial := newLoaderFixture(t, testRegistry(t), false)
	err = partial.loader.Verify(context.Background())
	require.Equal(t, pkgerrors.CodeProfileLoad, pkgerrors.CodeOf(err))
	details := pkgerrors.As(err).Details().(map[string]any)
	require.Equal(t, map[string][]string{"broken": {"RETIRED-01"}}, details["missing"])
}

func TestApplicationsAreNewestFirst(t *testing.T) {
	f := newLoaderFixture(t, testRegistry(t), false)
	ctx := context.Background()

	base := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	calls := 0
	f.loader.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Hour)
	}

	_, err := f.loader.Apply(ctx, "dressing_kit", station)
	require.NoError(t, err)
	_, err = f.loader.Apply(ctx, "dressing_kit", station)
	require.NoError(t, err)

	apps, err := f.loader.Applications(ctx, station)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	require.Equal(t, 0, apps[0].ItemsCreated)
	require.Equal(t, 2, apps[1].ItemsCreated)
}

func mustGate(t *testing.T, client *db.Client) *inventory.Gate {
	t.Helper()
	gate, err := inventory.NewGate(catalog.NewRepository(client.DB()), nil)
	require.NoError(t, err)
	return gate
}
