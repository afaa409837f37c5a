package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// CatalogEntry is an approved item definition from the master catalog.
// Stations only read these rows.
type CatalogEntry struct {
	Code          string    `gorm:"column:code;primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	Category      string    `gorm:"column:category;not null"`
	Unit          string    `gorm:"column:unit;not null;default:EA"`
	Specification string    `gorm:"column:specification;not null;default:''"`
	SearchName    string    `gorm:"column:search_name;not null;default:''" json:"-"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CatalogEntry) TableName() string { return "catalog_items" }

// FoldSearchText is the case folding shared by catalog search in SQL and in
// memory. SQLite's lower() only folds ASCII, so names are folded here and
// stored in search_name.
func FoldSearchText(s string) string {
	return strings.ToLower(s)
}

// BeforeSave keeps search_name in step with name.
func (e *CatalogEntry) BeforeSave(*gorm.DB) error {
	e.SearchName = FoldSearchText(e.Name)
	return nil
}

// SameDefinition reports whether two entries carry identical metadata.
func (e CatalogEntry) SameDefinition(other CatalogEntry) bool {
	return e.Code == other.Code &&
		e.Name == other.Name &&
		e.Category == other.Category &&
		e.Unit == other.Unit &&
		e.Specification == other.Specification
}
