// Package testutil opens throwaway station databases for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/mirs/station-backend/pkg/db"
	"github.com/mirs/station-backend/pkg/db/models"
	"github.com/mirs/station-backend/pkg/migrate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB returns a migrated, private in-memory SQLite database. The pool is
// pinned to one connection like a production station.
func NewDB(t *testing.T) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.Up(context.Background(), sqlDB, db.DialectSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db.Open(conn)
}

// Catalog is a small fixed catalog used across package tests.
func Catalog() []models.CatalogEntry {
	return []models.CatalogEntry{
		{Code: "GAUZE-4X4", Name: "Sterile Gauze 4x4", Category: "Dressings", Unit: "PK", Specification: "10 sheets per pack"},
		{Code: "GAUZE-2X2", Name: "Sterile Gauze 2x2", Category: "Dressings", Unit: "PK"},
		{Code: "TAPE-1IN", Name: "Breathable Tape 1 inch", Category: "Dressings", Unit: "RL"},
		{Code: "SURG-ASSET-01", Name: "ASSET Instrument Set", Category: "Surgical Instruments", Unit: "SET"},
		{Code: "SURG-KIT-01", Name: "Basic Surgical Set I", Category: "Surgical Instruments", Unit: "SET"},
		{Code: "MED-EMER-001", Name: "Epinephrine 1:1000", Category: "Emergency Drugs", Unit: "Amp", Specification: "1mg/ml"},
		{Code: "MED-EMER-002", Name: "Atropine 1mg/ml", Category: "Emergency Drugs", Unit: "Amp"},
		{Code: "PPE-001", Name: "Surgical Mask", Category: "PPE", Unit: "BX"},
	}
}

// SeedCatalog inserts entries directly, bypassing seed validation.
func SeedCatalog(t *testing.T, client *db.Client, entries ...models.CatalogEntry) {
	t.Helper()
	if len(entries) == 0 {
		entries = Catalog()
	}
	if err := client.DB().Create(&entries).Error; err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
}
