package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mirs/station-backend/api/middleware"
	"github.com/mirs/station-backend/api/responses"
	"github.com/mirs/station-backend/api/validators"
	"github.com/mirs/station-backend/internal/inventory"
	"github.com/mirs/station-backend/pkg/enums"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/mirs/station-backend/pkg/logger"
	"github.com/mirs/station-backend/pkg/pagination"
)

// thresholdsRequest leaves omitted levels untouched.
type thresholdsRequest struct {
	MinStock     *int `json:"min_stock,omitempty" validate:"omitempty,gte=0,lte=2147483647"`
	MaxStock     *int `json:"max_stock,omitempty" validate:"omitempty,gte=0,lte=2147483647"`
	ReorderPoint *int `json:"reorder_point,omitempty" validate:"omitempty,gte=0,lte=2147483647"`
}

func (r thresholdsRequest) patch() inventory.ThresholdPatch {
	return inventory.ThresholdPatch{MinStock: r.MinStock, MaxStock: r.MaxStock, ReorderPoint: r.ReorderPoint}
}

type createItemRequest struct {
	Code      string `json:"code" validate:"required,max=64"`
	StationID string `json:"station_id,omitempty" validate:"omitempty,max=64"`
	thresholdsRequest
	Remarks string `json:"remarks,omitempty" validate:"omitempty,max=500"`
}

type deactivateRequest struct {
	Remarks string `json:"remarks,omitempty" validate:"omitempty,max=500"`
}

// CreateItem activates a catalog code for the station. Only codes accepted by
// the validation gate become inventory rows.
func CreateItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID, ok := requireStation(w, r, logg, svc != nil)
		if !ok {
			return
		}

		var req createItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := middleware.CheckStation(stationID, req.StationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), inventory.CreateItemInput{
			StationID:  stationID,
			Code:       req.Code,
			Thresholds: req.patch(),
			Remarks:    validators.SanitizeString(req.Remarks, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func GetItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID, ok := requireStation(w, r, logg, svc != nil)
		if !ok {
			return
		}
		item, err := svc.GetItem(r.Context(), stationID, chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ListItems pages through the station's items ordered by code.
func ListItems(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID, ok := requireStation(w, r, logg, svc != nil)
		if !ok {
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lowStock, err := validators.ParseQueryBool(r, "low_stock")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := inventory.ListItemsInput{StationID: stationID, LowStock: lowStock, Params: params}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseItemStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status").
					WithDetails(map[string]any{"field": "status"}))
				return
			}
			input.Status = &status
		}

		result, err := svc.ListItems(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// UpdateThresholds changes the stocking levels of an active item. At least one
// level must be supplied.
func UpdateThresholds(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID, ok := requireStation(w, r, logg, svc != nil)
		if !ok {
			return
		}
		var req thresholdsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.UpdateThresholds(r.Context(), inventory.UpdateThresholdsInput{
			StationID:  stationID,
			Code:       chi.URLParam(r, "code"),
			Thresholds: req.patch(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ItemStats(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID, ok := requireStation(w, r, logg, svc != nil)
		if !ok {
			return
		}
		stats, err := svc.Stats(r.Context(), stationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func DeactivateItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID, ok := requireStation(w, r, logg, svc != nil)
		if !ok {
			return
		}
		var req deactivateRequest
		if err := validators.DecodeOptionalJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.DeactivateItem(r.Context(), stationID, chi.URLParam(r, "code"), validators.SanitizeString(req.Remarks, 500))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemEvents returns an item's audit history, newest first.
func ItemEvents(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID, ok := requireStation(w, r, logg, svc != nil)
		if !ok {
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListEvents(r.Context(), inventory.ListEventsInput{
			StationID: stationID,
			Code:      chi.URLParam(r, "code"),
			Params:    params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func requireStation(w http.ResponseWriter, r *http.Request, logg *logger.Logger, ready bool) (string, bool) {
	if !ready {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
		return "", false
	}
	stationID := middleware.StationIDFromContext(r.Context())
	if stationID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "station context missing"))
		return "", false
	}
	return stationID, true
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
