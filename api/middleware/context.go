package middleware

import "context"

type contextKey string

const ctxStationID contextKey = "station_id"

// StationIDFromContext returns the station id injected by StationContext.
func StationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxStationID).(string); ok {
		return v
	}
	return ""
}

// WithStationID injects the station identifier into the context for downstream handlers.
func WithStationID(ctx context.Context, stationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStationID, stationID)
}
