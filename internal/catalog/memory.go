package catalog

import (
	"context"
	"iter"
	"sort"

	"github.com/mirs/station-backend/pkg/db/models"
)

// MemoryStore is a fixed in-memory catalog for tests and offline tooling.
type MemoryStore struct {
	entries map[string]models.CatalogEntry
	sorted  []models.CatalogEntry
}

// NewMemoryStore copies entries; later entries with a repeated code win.
func NewMemoryStore(entries ...models.CatalogEntry) *MemoryStore {
	byCode := make(map[string]models.CatalogEntry, len(entries))
	for _, entry := range entries {
		byCode[entry.Code] = entry
	}
	sorted := make([]models.CatalogEntry, 0, len(byCode))
	for _, entry := range byCode {
		sorted = append(sorted, entry)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })
	return &MemoryStore{entries: byCode, sorted: sorted}
}

func (m *MemoryStore) Lookup(_ context.Context, code string) (*models.CatalogEntry, error) {
	normalized, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	entry, ok := m.entries[normalized]
	if !ok {
		return nil, notFound(normalized)
	}
	return &entry, nil
}

func (m *MemoryStore) Search(ctx context.Context, q Query) iter.Seq2[models.CatalogEntry, error] {
	q = q.normalized()
	return func(yield func(models.CatalogEntry, error) bool) {
		type ranked struct {
			entry models.CatalogEntry
			rank  int
		}
		matches := []ranked{}
		for _, entry := range m.sorted {
			if q.Category != "" && entry.Category != q.Category {
				continue
			}
			if r := rank(entry, q.Term); r != rankNoMatch {
				matches = append(matches, ranked{entry: entry, rank: r})
			}
		}
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].rank < matches[j].rank })

		for _, match := range matches {
			if err := ctx.Err(); err != nil {
				yield(models.CatalogEntry{}, err)
				return
			}
			if !yield(match.entry, nil) {
				return
			}
		}
	}
}

func (m *MemoryStore) Categories(context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	categories := []string{}
	for _, entry := range m.sorted {
		if _, ok := seen[entry.Category]; ok {
			continue
		}
		seen[entry.Category] = struct{}{}
		categories = append(categories, entry.Category)
	}
	sort.Strings(categories)
	return categories, nil
}
