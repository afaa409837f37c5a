package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirs/station-backend/api/middleware"
	"github.com/mirs/station-backend/internal/profiles"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/mirs/station-backend/pkg/logger"
)

type fakeProvisioner struct {
	calls []string
	err   error
}

func (f *fakeProvisioner) Provision(_ context.Context, profileName, stationID string) (*profiles.ApplyResult, error) {
	f.calls = append(f.calls, profileName+"@"+stationID)
	if f.err != nil {
		return nil, f.err
	}
	return &profiles.ApplyResult{Profile: profileName, StationID: stationID, Created: 3}, nil
}

func serveApply(t *testing.T, p Provisioner, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/profiles/{name}/apply", ApplyProfile(p, logger.Nop()))

	req := httptest.NewRequest(http.MethodPost, "/profiles/surgical_station/apply", strings.NewReader(body))
	req = req.WithContext(middleware.WithStationID(req.Context(), "BORP-VGH-01"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestApplyProfileProvisionsStation(t *testing.T) {
	p := &fakeProvisioner{}

	rec := serveApply(t, p, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"surgical_station@BORP-VGH-01"}, p.calls)
	assert.Contains(t, rec.Body.String(), `"created":3`)

	rec = serveApply(t, p, `{"station_id":"LOG-DNO-01"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, p.calls, 1)
}

func TestApplyProfileReportsProvisionFailure(t *testing.T) {
	p := &fakeProvisioner{err: pkgerrors.New(pkgerrors.CodeDependency, "update station profile")}

	rec := serveApply(t, p, "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "DEPENDENCY_ERROR")
}
