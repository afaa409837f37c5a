// Command provision seeds the catalog and applies station profiles from the
// command line, for setting a station up before it goes into service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mirs/station-backend/internal/app"
	"github.com/mirs/station-backend/internal/catalog"
	"github.com/mirs/station-backend/internal/profiles"
	"github.com/mirs/station-backend/pkg/config"
	"github.com/mirs/station-backend/pkg/db"
	"github.com/mirs/station-backend/pkg/logger"
	"github.com/mirs/station-backend/pkg/migrate"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "provision"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "list", "command: list|show|seed|apply|verify|history")
	profile := flag.String("profile", "", "profile name (show/apply; defaults to MIRS_STATION_PROFILE)")
	stationID := flag.String("station", "", "station id (apply/history; defaults to the resolved station)")
	flag.Parse()

	// list and show read the embedded profiles only.
	switch *cmd {
	case "list":
		reg, err := profiles.LoadBuiltin()
		exitOn(err)
		printJSON(profiles.ToSummaries(reg.List()))
		return
	case "show":
		reg, err := profiles.LoadBuiltin()
		exitOn(err)
		p, err := reg.Get(strings.TrimSpace(*profile))
		exitOn(err)
		printJSON(profiles.ToDetailDTO(*p))
		return
	}

	cfg, err := config.Load()
	exitOn(err)
	logg = logger.New(logger.Options{
		ServiceName: "provision",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": *cmd})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	exitOn(err)
	defer dbClient.Close()
	exitOn(migrate.MaybeRun(ctx, cfg, logg, dbClient))

	// seed is explicit here; the app constructor must not seed a second time.
	seedOnBoot := cfg.Catalog.SeedOnBoot
	cfg.Catalog.SeedOnBoot = false
	station, err := app.New(ctx, app.Params{Config: cfg, Logger: logg, DB: dbClient})
	exitOn(err)

	switch *cmd {
	case "seed":
		result, err := catalog.EnsureSeeded(ctx, station.CatalogStore, cfg.Catalog.SeedPath, logg)
		exitOn(err)
		printJSON(result)

	case "verify":
		exitOn(station.Loader.Verify(ctx))
		fmt.Println("every profile code is in the catalog")

	case "apply":
		if seedOnBoot {
			_, err := catalog.EnsureSeeded(ctx, station.CatalogStore, cfg.Catalog.SeedPath, logg)
			exitOn(err)
		}
		name := strings.TrimSpace(*profile)
		if name == "" {
			name = strings.TrimSpace(cfg.Station.Profile)
		}
		if name == "" {
			exitOn(fmt.Errorf("missing -profile and %s", config.EnvStationProfile))
		}
		id, err := resolveStation(ctx, station, *stationID)
		exitOn(err)
		result, err := station.Provision(logg.WithStationID(ctx, id), name, id)
		exitOn(err)
		printJSON(result)

	case "history":
		id, err := resolveStation(ctx, station, *stationID)
		exitOn(err)
		apps, err := station.Loader.Applications(ctx, id)
		exitOn(err)
		printJSON(apps)

	default:
		exitOn(fmt.Errorf("unknown -cmd value: %s", *cmd))
	}
}

func resolveStation(ctx context.Context, station *app.App, flagID string) (string, error) {
	if id := strings.TrimSpace(flagID); id != "" {
		return id, nil
	}
	identity, err := station.ResolveStation(ctx)
	if err != nil {
		return "", err
	}
	return identity.StationID, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	exitOn(enc.Encode(v))
}

func exitOn(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "provision: %v\n", err)
	os.Exit(1)
}
