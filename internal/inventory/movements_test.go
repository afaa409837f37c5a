package inventory

import (
	"context"
	"math"
	"sync"
	"testing"

	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestQuantitiesAreBounded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := "GAUZE-2X2"

	_, err := f.svc.CreateItem(ctx, CreateItemInput{StationID: station, Code: code})
	require.NoError(t, err)
	_, err = f.svc.Receive(ctx, MovementInput{StationID: station, Code: code, Quantity: 5})
	require.NoError(t, err)

	_, err = f.svc.Receive(ctx, MovementInput{StationID: station, Code: code, Quantity: math.MaxInt})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	require.False(t, pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).Retryable)

	_, err = f.svc.Receive(ctx, MovementInput{StationID: station, Code: code, Quantity: MaxQuantity})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err), "5 + MaxQuantity overflows the column")

	item, err := f.svc.Receive(ctx, MovementInput{StationID: station, Code: code, Quantity: MaxQuantity - 5})
	require.NoError(t, err)
	require.Equal(t, MaxQuantity, item.CurrentStock)

	_, err = f.svc.Receive(ctx, MovementInput{StationID: station, Code: code, Quantity: 1})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = f.svc.Reserve(ctx, MovementInput{StationID: station, Code: code, Quantity: math.MaxInt})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = f.svc.Adjust(ctx, AdjustInput{StationID: station, Code: code, NewCount: math.MaxInt, Reason: "recount"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	item, err = f.svc.Adjust(ctx, AdjustInput{StationID: station, Code: code, NewCount: 40, Reason: "recount"})
	require.NoError(t, err)
	require.Equal(t, 40, item.CurrentStock)
}

func TestReceiveRecordsBatchAndExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := "MED-EMER-002"

	_, err := f.svc.CreateItem(ctx, CreateItemInput{StationID: station, Code: code})
	require.NoError(t, err)

	_, err = f.svc.Receive(ctx, MovementInput{
		StationID:   station,
		Code:        code,
		Quantity:    20,
		BatchNumber: " LOT-2025-07 ",
		ExpiryDate:  "2027-03-31",
	})
	require.NoError(t, err)

	_, err = f.svc.Receive(ctx, MovementInput{StationID: station, Code: code, Quantity: 1, ExpiryDate: "31/03/2027"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = f.svc.Dispense(ctx, MovementInput{StationID: station, Code: code, Quantity: 2})
	require.NoError(t, err)

	events, err := f.svc.ListEvents(ctx, ListEventsInput{StationID: station, Code: code})
	require.NoError(t, err)
	require.Len(t, events.Events, 3)

	dispense, receipt := events.Events[0], events.Events[1]
	require.Nil(t, dispense.BatchNumber)
	require.Nil(t, dispense.ExpiryDate)
	require.Equal(t, "RECEIVE", receipt.EventType)
	require.NotNil(t, receipt.BatchNumber)
	require.Equal(t, "LOT-2025-07", *receipt.BatchNumber)
	require.NotNil(t, receipt.ExpiryDate)
	require.Equal(t, "2027-03-31", *receipt.ExpiryDate)
}

func TestConcurrentDispensesDoNotLoseUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := "PPE-001"

	_, err := f.svc.CreateItem(ctx, CreateItemInput{StationID: station, Code: code})
	require.NoError(t, err)
	_, err = f.svc.Receive(ctx, MovementInput{StationID: station, Code: code, Quantity: 10})
	require.NoError(t, err)

	const workers = 6
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Dispense(ctx, MovementInput{StationID: station, Code: code, Quantity: 2})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case pkgerrors.HasCode(err, pkgerrors.CodeStateConflict):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 5, ok)
	require.Equal(t, 1, rejected)
	item, err := f.svc.GetItem(ctx, station, code)
	require.NoError(t, err)
	require.Zero(t, item.CurrentStock)
}
