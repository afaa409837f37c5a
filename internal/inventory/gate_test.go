package inventory

import (
	"context"
	"testing"

	"github.com/mirs/station-backend/internal/catalog"
	"github.com/mirs/station-backend/internal/testutil"
	"github.com/mirs/station-backend/pkg/db/models"
	"github.com/mirs/station-backend/pkg/enums"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/mirs/station-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type fakeItems map[string]*models.InventoryItem

func (f fakeItems) Find(_ context.Context, stationID, code string) (*models.InventoryItem, error) {
	return f[stationID+"/"+code], nil
}

func TestGateAdmit(t *testing.T) {
	items := fakeItems{
		station + "/GAUZE-4X4": {StationID: station, Code: "GAUZE-4X4", Status: enums.ItemStatusActive},
		station + "/TAPE-1IN":  {StationID: station, Code: "TAPE-1IN", Status: enums.ItemStatusInactive, CurrentStock: 3},
	}
	gate, err := NewGate(catalog.NewMemoryStore(testutil.Catalog()...), nil)
	require.NoError(t, err)

	cases := []struct {
		name      string
		stationID string
		code      string
		wantErr   pkgerrors.Code
	}{
		{name: "admits catalog code", stationID: station, code: "PPE-001"},
		{name: "admits inactive row", stationID: station, code: "TAPE-1IN"},
		{name: "same code on another station", stationID: "LOG-01", code: "GAUZE-4X4"},
		{name: "active duplicate", stationID: station, code: "GAUZE-4X4", wantErr: pkgerrors.CodeDuplicateActivation},
		{name: "absent code", stationID: station, code: "FAKE-CODE", wantErr: pkgerrors.CodeNotFound},
		{name: "empty code", stationID: station, code: "", wantErr: pkgerrors.CodeInvalidCode},
		{name: "missing station", stationID: "", code: "PPE-001", wantErr: pkgerrors.CodeValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			admission, err := gate.Admit(context.Background(), items, tc.stationID, tc.code)
			if tc.wantErr != "" {
				require.Equal(t, tc.wantErr, pkgerrors.CodeOf(err))
				require.Nil(t, admission)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.code, admission.Entry.Code)
		})
	}

	admission, err := gate.Admit(context.Background(), items, station, "TAPE-1IN")
	require.NoError(t, err)
	require.NotNil(t, admission.Existing)
	require.Equal(t, 3, admission.Existing.CurrentStock)
}

func TestGateCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	gate, err := NewGate(catalog.NewMemoryStore(testutil.Catalog()...), metrics.NewInventoryMetrics(reg))
	require.NoError(t, err)

	ctx := context.Background()
	_, _ = gate.Admit(ctx, fakeItems{}, station, "PPE-001")
	_, _ = gate.Admit(ctx, fakeItems{}, station, "FAKE-CODE")
	_, _ = gate.Admit(ctx, fakeItems{}, station, "FAKE-CODE")

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "mirs_validation_gate_decisions_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" {
					counts[label.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}
	require.Equal(t, map[string]float64{
		metrics.OutcomeAdmitted: 1,
		metrics.OutcomeNotFound: 2,
	}, counts)
}
