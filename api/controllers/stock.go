package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mirs/station-backend/api/responses"
	"github.com/mirs/station-backend/api/validators"
	"github.com/mirs/station-backend/internal/inventory"
	"github.com/mirs/station-backend/pkg/logger"
)

// Quantities are capped at inventory.MaxQuantity.
type movementRequest struct {
	Quantity    int    `json:"quantity" validate:"gt=0,lte=2147483647"`
	Remarks     string `json:"remarks,omitempty" validate:"omitempty,max=500"`
	BatchNumber string `json:"batch_number,omitempty" validate:"omitempty,max=64"`
	ExpiryDate  string `json:"expiry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type adjustRequest struct {
	NewCount *int   `json:"new_count" validate:"required,gte=0,lte=2147483647"`
	Reason   string `json:"reason" validate:"required,max=500"`
}

type movementFunc func(ctx context.Context, input inventory.MovementInput) (*inventory.ItemDTO, error)

// ReceiveStock books units delivered to the station.
func ReceiveStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return stockMovement(svc, logg, func(s inventory.Service) movementFunc { return s.Receive })
}

// DispenseStock books units handed out; limited to available stock.
func DispenseStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return stockMovement(svc, logg, func(s inventory.Service) movementFunc { return s.Dispense })
}

func ReserveStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return stockMovement(svc, logg, func(s inventory.Service) movementFunc { return s.Reserve })
}

func ReleaseStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return stockMovement(svc, logg, func(s inventory.Service) movementFunc { return s.Release })
}

// AdjustStock records a physical count; reason is mandatory.
func AdjustStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID, ok := requireStation(w, r, logg, svc != nil)
		if !ok {
			return
		}
		var req adjustRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Adjust(r.Context(), inventory.AdjustInput{
			StationID: stationID,
			Code:      chi.URLParam(r, "code"),
			NewCount:  *req.NewCount,
			Reason:    validators.SanitizeString(req.Reason, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func stockMovement(svc inventory.Service, logg *logger.Logger, pick func(inventory.Service) movementFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID, ok := requireStation(w, r, logg, svc != nil)
		if !ok {
			return
		}
		var req movementRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := pick(svc)(r.Context(), inventory.MovementInput{
			StationID:   stationID,
			Code:        chi.URLParam(r, "code"),
			Quantity:    req.Quantity,
			Remarks:     validators.SanitizeString(req.Remarks, 500),
			BatchNumber: validators.SanitizeString(req.BatchNumber, 64),
			ExpiryDate:  req.ExpiryDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
