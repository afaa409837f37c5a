package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mirs/station-backend/pkg/db/models"
)

func dryRunPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=mirs dbname=mirs sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return conn
}

func TestFindLocksRowInsideTransaction(t *testing.T) {
	conn := dryRunPostgres(t)
	ctx := context.Background()

	locked := conn.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return NewRepository(tx).WithTx(tx).findQuery(ctx, station, "GAUZE-4X4").Take(&models.InventoryItem{})
	})
	require.Contains(t, locked, "FOR UPDATE")

	plain := conn.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return NewRepository(tx).findQuery(ctx, station, "GAUZE-4X4").Take(&models.InventoryItem{})
	})
	require.NotContains(t, plain, "FOR UPDATE")
}

func TestLockedFindRunsOnSQLite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateItem(ctx, CreateItemInput{StationID: station, Code: "TAPE-1IN"})
	require.NoError(t, err)

	err = f.client.WithTx(ctx, func(tx *gorm.DB) error {
		item, err := f.repo.WithTx(tx).Find(ctx, station, "TAPE-1IN")
		require.NotNil(t, item)
		return err
	})
	require.NoError(t, err)
}
