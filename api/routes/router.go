package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mirs/station-backend/api/controllers"
	"github.com/mirs/station-backend/api/middleware"
	"github.com/mirs/station-backend/internal/catalog"
	"github.com/mirs/station-backend/internal/inventory"
	"github.com/mirs/station-backend/pkg/config"
	"github.com/mirs/station-backend/pkg/logger"
	"github.com/mirs/station-backend/pkg/metrics"
	"github.com/mirs/station-backend/pkg/redis"
)

// Deps carries everything the router hands to controllers. Redis and
// Idempotency may be nil on stations that run without Redis.
type Deps struct {
	StationID   string
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency redis.IdempotencyStore
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Catalog     catalog.Service
	Inventory   inventory.Service
	Profiles    controllers.ProfileDirectory
	Provisioner controllers.Provisioner
	Stations    controllers.StationReader
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.StationContext(deps.StationID, logg),
			middleware.Idempotency(deps.Idempotency, logg),
		)

		r.Get("/station", controllers.Station(deps.Stations, logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", controllers.CatalogSearch(deps.Catalog, logg))
			r.Get("/categories", controllers.CatalogCategories(deps.Catalog, logg))
			r.Get("/{code}", controllers.CatalogLookup(deps.Catalog, logg))
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ListItems(deps.Inventory, logg))
			r.Post("/", controllers.CreateItem(deps.Inventory, logg))
			r.Get("/stats", controllers.ItemStats(deps.Inventory, logg))
			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", controllers.GetItem(deps.Inventory, logg))
				r.Put("/", controllers.UpdateThresholds(deps.Inventory, logg))
				r.Get("/events", controllers.ItemEvents(deps.Inventory, logg))
				r.Post("/deactivate", controllers.DeactivateItem(deps.Inventory, logg))
				r.Post("/receive", controllers.ReceiveStock(deps.Inventory, logg))
				r.Post("/dispense", controllers.DispenseStock(deps.Inventory, logg))
				r.Post("/adjust", controllers.AdjustStock(deps.Inventory, logg))
				r.Post("/reserve", controllers.ReserveStock(deps.Inventory, logg))
				r.Post("/release", controllers.ReleaseStock(deps.Inventory, logg))
			})
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", controllers.ListProfiles(deps.Profiles, logg))
			r.Get("/applications", controllers.ProfileApplications(deps.Profiles, logg))
			r.Get("/{name}", controllers.GetProfile(deps.Profiles, logg))
			r.Post("/{name}/apply", controllers.ApplyProfile(deps.Provisioner, logg))
		})
	})

	return r
}
