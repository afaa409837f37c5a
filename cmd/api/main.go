package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/mirs/station-backend/api"
	"github.com/mirs/station-backend/api/routes"
	"github.com/mirs/station-backend/internal/app"
	"github.com/mirs/station-backend/pkg/config"
	"github.com/mirs/station-backend/pkg/db"
	"github.com/mirs/station-backend/pkg/instance"
	"github.com/mirs/station-backend/pkg/logger"
	"github.com/mirs/station-backend/pkg/metrics"
	"github.com/mirs/station-backend/pkg/migrate"
	"github.com/mirs/station-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	station, err := app.New(ctx, app.Params{Config: cfg, Logger: logg, DB: dbClient, Registerer: reg})
	if err != nil {
		return err
	}
	if err := station.Loader.Verify(ctx); err != nil {
		return err
	}

	identity, err := station.ResolveStation(ctx)
	if err != nil {
		return err
	}
	ctx = logg.WithStationID(ctx, identity.StationID)

	if result, err := station.AutoProvision(ctx, identity.StationID); err != nil {
		return err
	} else if result != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"profile": result.Profile,
			"created": result.Created,
			"skipped": result.Skipped,
		}), "station auto-provisioned")
	}

	deps := routes.Deps{
		StationID:   identity.StationID,
		DB:          dbClient,
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Catalog:     station.Catalog,
		Inventory:   station.Inventory,
		Profiles:    station.Loader,
		Provisioner: station,
		Stations:    station.Stations,
	}

	if cfg.Redis.Enabled() {
		redisClient, redisErr := redis.New(ctx, cfg.Redis, identity.StationID, logg)
		if redisErr != nil {
			return redisErr
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		deps.Redis = redisClient
		deps.Idempotency = redisClient
	}

	server := api.NewServer(cfg, routes.NewRouter(cfg, logg, deps))
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     server.Addr,
		"instance": instance.GetID(),
	})

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
		close(errCh)
	}()

	select {
	case serveErr := <-errCh:
		return serveErr
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
