package migrate

import (
	"context"
	"fmt"

	"github.com/mirs/station-backend/pkg/config"
	"github.com/mirs/station-backend/pkg/db"
	"github.com/mirs/station-backend/pkg/logger"
)

// MaybeRun applies pending migrations at boot when the feature flag is enabled.
// A station ships as a single binary, so unlike a shared deployment the flag
// defaults to on in every environment.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": client.Dialect()})
	logg.Info(ctx, "running goose migrations")

	if err := Up(ctx, sqlDB, client.Dialect()); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	version, err := Version(sqlDB, client.Dialect())
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	logg.Info(logg.WithField(ctx, "version", version), "goose migrations completed")
	return nil
}
