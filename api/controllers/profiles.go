package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mirs/station-backend/api/middleware"
	"github.com/mirs/station-backend/api/responses"
	"github.com/mirs/station-backend/api/validators"
	"github.com/mirs/station-backend/internal/profiles"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/mirs/station-backend/pkg/logger"
)

// ProfileDirectory is the read side of station profiles.
type ProfileDirectory interface {
	Registry() *profiles.Registry
	Applications(ctx context.Context, stationID string) ([]profiles.ApplicationDTO, error)
}

// Provisioner applies a profile to a station and records it on the station.
type Provisioner interface {
	Provision(ctx context.Context, profileName, stationID string) (*profiles.ApplyResult, error)
}

type applyProfileRequest struct {
	StationID string `json:"station_id,omitempty" validate:"omitempty,max=64"`
}

func ListProfiles(svc ProfileDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile loader unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"profiles": profiles.ToSummaries(svc.Registry().List())})
	}
}

func GetProfile(svc ProfileDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile loader unavailable"))
			return
		}
		profile, err := svc.Registry().Get(chi.URLParam(r, "name"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profiles.ToDetailDTO(*profile))
	}
}

// ApplyProfile provisions the station from a named profile. Re-applying is
// safe; codes the station already carries are reported as skipped.
func ApplyProfile(svc Provisioner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile loader unavailable"))
			return
		}
		stationID := middleware.StationIDFromContext(r.Context())
		if stationID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "station context missing"))
			return
		}

		var req applyProfileRequest
		if err := validators.DecodeOptionalJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := middleware.CheckStation(stationID, req.StationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Provision(r.Context(), chi.URLParam(r, "name"), stationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProfileApplications lists the station's setup history, newest first.
func ProfileApplications(svc ProfileDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile loader unavailable"))
			return
		}
		apps, err := svc.Applications(r.Context(), middleware.StationIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"applications": apps})
	}
}
