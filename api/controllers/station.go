package controllers

import (
	"context"
	"net/http"

	"github.com/mirs/station-backend/api/middleware"
	"github.com/mirs/station-backend/api/responses"
	"github.com/mirs/station-backend/internal/stations"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/mirs/station-backend/pkg/logger"
)

// StationReader loads the stored station identity.
type StationReader interface {
	Get(ctx context.Context, id string) (*stations.StationDTO, error)
}

// Station returns the identity of the station this process serves.
func Station(svc StationReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "station service unavailable"))
			return
		}
		station, err := svc.Get(r.Context(), middleware.StationIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, station)
	}
}
