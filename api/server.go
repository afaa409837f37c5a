package api

import (
	"net/http"

	"github.com/mirs/station-backend/pkg/config"
)

// NewServer returns the HTTP server cmd/api runs around the router.
func NewServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}
}
