package middleware

import (
	"net/http"
	"strings"

	"github.com/mirs/station-backend/api/responses"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/mirs/station-backend/pkg/logger"
)

// StationHeader lets a client state which station it believes it is talking to.
const StationHeader = "X-Station-Id"

// StationContext pins every request to the single station this process
// serves. A request that names another station through the header or the
// station_id query parameter is refused.
func StationContext(stationID string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, claimed := range []string{r.Header.Get(StationHeader), r.URL.Query().Get("station_id")} {
				if err := CheckStation(stationID, claimed); err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			}

			ctx := WithStationID(r.Context(), stationID)
			if logg != nil {
				ctx = logg.WithStationID(ctx, stationID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CheckStation accepts an empty claim or one equal to the served station.
func CheckStation(served, claimed string) error {
	claimed = strings.TrimSpace(claimed)
	if claimed == "" || claimed == served {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "request targets another station").
		WithDetails(map[string]any{"station_id": claimed})
}
