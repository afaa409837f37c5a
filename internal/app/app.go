// Package app wires the station services shared by the api and provision binaries.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mirs/station-backend/internal/catalog"
	"github.com/mirs/station-backend/internal/inventory"
	"github.com/mirs/station-backend/internal/profiles"
	"github.com/mirs/station-backend/internal/stations"
	"github.com/mirs/station-backend/pkg/config"
	"github.com/mirs/station-backend/pkg/db"
	"github.com/mirs/station-backend/pkg/logger"
	"github.com/mirs/station-backend/pkg/metrics"
)

type Params struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         *db.Client
	Registerer prometheus.Registerer
}

// App holds the wired services of one station process.
type App struct {
	CatalogStore *catalog.Repository
	Catalog      catalog.Service
	Inventory    inventory.Service
	Registry     *profiles.Registry
	Loader       *profiles.Loader
	Stations     *stations.Service

	cfg  *config.Config
	logg *logger.Logger
}

func New(ctx context.Context, params Params) (*App, error) {
	if params.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	cfg := params.Config

	store := catalog.NewRepository(params.DB.DB())
	if cfg.Catalog.SeedOnBoot {
		if _, err := catalog.EnsureSeeded(ctx, store, cfg.Catalog.SeedPath, logg); err != nil {
			return nil, fmt.Errorf("seeding catalog: %w", err)
		}
	}
	catalogSvc, err := catalog.NewService(store)
	if err != nil {
		return nil, err
	}

	invMetrics := metrics.NewInventoryMetrics(params.Registerer)
	gate, err := inventory.NewGate(store, invMetrics)
	if err != nil {
		return nil, err
	}
	items := inventory.NewRepository(params.DB.DB())
	inventorySvc, err := inventory.NewService(inventory.ServiceParams{
		Repo:    items,
		Tx:      params.DB,
		Gate:    gate,
		Metrics: invMetrics,
	})
	if err != nil {
		return nil, err
	}

	registry, err := profiles.LoadBuiltin()
	if err != nil {
		return nil, fmt.Errorf("loading station profiles: %w", err)
	}
	loader, err := profiles.NewLoader(profiles.LoaderParams{
		Registry:     registry,
		Catalog:      store,
		Items:        items,
		Activator:    inventory.NewActivator(items, gate, invMetrics, nil),
		Applications: profiles.NewApplicationRepository(params.DB.DB()),
		Tx:           params.DB,
		Metrics:      metrics.NewProfileMetrics(params.Registerer),
		Logger:       logg,
	})
	if err != nil {
		return nil, err
	}

	stationSvc, err := stations.NewService(stations.NewRepository(params.DB.DB()), registry, logg)
	if err != nil {
		return nil, err
	}

	return &App{
		CatalogStore: store,
		Catalog:      catalogSvc,
		Inventory:    inventorySvc,
		Registry:     registry,
		Loader:       loader,
		Stations:     stationSvc,
		cfg:          cfg,
		logg:         logg,
	}, nil
}

// ResolveStation settles this deployment's station identity.
func (a *App) ResolveStation(ctx context.Context) (*stations.StationDTO, error) {
	return a.Stations.Resolve(ctx, stations.ResolveInput{
		ConfiguredID: a.cfg.Station.ID,
		ProfileName:  a.cfg.Station.Profile,
		OrgCode:      a.cfg.Station.OrgCode,
		DisplayName:  a.cfg.Station.DisplayName,
	})
}

// Provision applies profileName to stationID and remembers it on the station.
func (a *App) Provision(ctx context.Context, profileName, stationID string) (*profiles.ApplyResult, error) {
	result, err := a.Loader.Apply(ctx, profileName, stationID)
	if err != nil {
		return nil, err
	}
	if err := a.Stations.RecordProfile(ctx, stationID, result.Profile); err != nil {
		return nil, err
	}
	return result, nil
}

// AutoProvision applies the configured profile when the feature flag is on.
// It returns nil, nil when there is nothing to do.
func (a *App) AutoProvision(ctx context.Context, stationID string) (*profiles.ApplyResult, error) {
	profile := strings.TrimSpace(a.cfg.Station.Profile)
	if !a.cfg.FeatureFlags.AutoProvision || profile == "" {
		return nil, nil
	}
	return a.Provision(a.logg.WithProfile(ctx, profile), profile, stationID)
}
