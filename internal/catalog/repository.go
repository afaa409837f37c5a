package catalog

import (
	"context"
	"iter"

	"github.com/mirs/station-backend/pkg/db"
	"github.com/mirs/station-backend/pkg/db/models"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"gorm.io/gorm"
)

// DefaultSearchBatch is how many rows a search pulls per round trip.
const DefaultSearchBatch = 100

const rankedSelect = `catalog_items.*, CASE
	WHEN lower(code) = ? THEN 0
	WHEN lower(code) LIKE ? ESCAPE '\' THEN 1
	WHEN search_name LIKE ? ESCAPE '\' THEN 2
	WHEN lower(code) LIKE ? ESCAPE '\' THEN 3
	ELSE 4
END AS relevance`

const matchWhere = `(lower(code) LIKE ? ESCAPE '\' OR search_name LIKE ? ESCAPE '\')`

type rankedRow struct {
	models.CatalogEntry `gorm:"embedded"`
	Relevance           int `gorm:"column:relevance"`
}

// Repository is the relational catalog store.
type Repository struct {
	db        *gorm.DB
	batchSize int
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn, batchSize: DefaultSearchBatch}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx, batchSize: r.batchSize}
}

// WithBatchSize overrides the search page size.
func (r *Repository) WithBatchSize(n int) *Repository {
	if n <= 0 {
		n = DefaultSearchBatch
	}
	return &Repository{db: r.db, batchSize: n}
}

func (r *Repository) Lookup(ctx context.Context, code string) (*models.CatalogEntry, error) {
	normalized, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	var entry models.CatalogEntry
	if err := r.db.WithContext(ctx).Where("code = ?", normalized).Take(&entry).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, notFound(normalized)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup catalog entry")
	}
	return &entry, nil
}

// Search pages through matches in fixed batches. No connection is held while
// the consumer handles a batch, and ranging the sequence again re-runs the query.
func (r *Repository) Search(ctx context.Context, q Query) iter.Seq2[models.CatalogEntry, error] {
	q = q.normalized()
	return func(yield func(models.CatalogEntry, error) bool) {
		for offset := 0; ; offset += r.batchSize {
			batch, err := r.searchPage(ctx, q, offset, r.batchSize)
			if err != nil {
				yield(models.CatalogEntry{}, err)
				return
			}
			for _, entry := range batch {
				if !yield(entry, nil) {
					return
				}
			}
			if len(batch) < r.batchSize {
				return
			}
		}
	}
}

func (r *Repository) searchPage(ctx context.Context, q Query, offset, limit int) ([]models.CatalogEntry, error) {
	tx := r.db.WithContext(ctx).Model(&models.CatalogEntry{})
	if q.Term != "" {
		escaped := escapeLike(q.Term)
		prefix := escaped + "%"
		contains := "%" + escaped + "%"
		tx = tx.Select(rankedSelect, q.Term, prefix, prefix, contains).
			Where(matchWhere, contains, contains)
	} else {
		tx = tx.Select("catalog_items.*, 0 AS relevance")
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}

	var rows []rankedRow
	if err := tx.Order("relevance").Order("code").Limit(limit).Offset(offset).Scan(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search catalog")
	}

	entries := make([]models.CatalogEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.CatalogEntry
	}
	return entries, nil
}

func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	if err := r.db.WithContext(ctx).
		Model(&models.CatalogEntry{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).
		Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list catalog categories")
	}
	return categories, nil
}

// Count returns the number of catalog rows.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CatalogEntry{}).Count(&count).Error; err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count catalog entries")
	}
	return count, nil
}

// SeedResult summarizes a seed run.
type SeedResult struct {
	Inserted  int
	Unchanged int
	Conflicts []string
}

// Seed inserts entries whose code is not yet present. Published codes are
// immutable: an existing code with different metadata is reported in
// Conflicts and left as is.
func (r *Repository) Seed(ctx context.Context, entries []models.CatalogEntry) (*SeedResult, error) {
	result := &SeedResult{Conflicts: []string{}}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			var existing models.CatalogEntry
			err := tx.Where("code = ?", entry.Code).Take(&existing).Error
			switch {
			case err == nil:
				if existing.SameDefinition(entry) {
					result.Unchanged++
				} else {
					result.Conflicts = append(result.Conflicts, entry.Code)
				}
			case db.IsNotFound(err):
				row := entry
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				result.Inserted++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed catalog")
	}
	return result, nil
}

// BindTx joins store to tx when it is database backed. Other stores are
// returned unchanged.
func BindTx(store Store, tx *gorm.DB) Store {
	if repo, ok := store.(*Repository); ok && tx != nil {
		return repo.WithTx(tx)
	}
	return store
}
