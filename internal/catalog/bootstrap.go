package catalog

import (
	"context"
	"strings"

	"github.com/mirs/station-backend/pkg/logger"
)

// EnsureSeeded loads the master list (embedded unless seedPath is set) and
// inserts codes the station database does not have yet.
func EnsureSeeded(ctx context.Context, repo *Repository, seedPath string, logg *logger.Logger) (*SeedResult, error) {
	seed, err := LoadSeedFile(seedPath)
	if err != nil {
		return nil, err
	}

	result, err := repo.Seed(ctx, seed.Entries)
	if err != nil {
		return nil, err
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"seed_version": seed.Version,
			"inserted":     result.Inserted,
			"unchanged":    result.Unchanged,
		})
		if len(result.Conflicts) > 0 {
			ctx = logg.WithField(ctx, "conflicts", strings.Join(result.Conflicts, ","))
			logg.Warn(ctx, "catalog seed differs from published entries; kept published definitions")
		} else {
			logg.Info(ctx, "catalog seeded")
		}
	}
	return result, nil
}
