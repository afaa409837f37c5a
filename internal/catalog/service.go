package catalog

import (
	"context"
	"fmt"

	pkgerrors "github.com/mirs/station-backend/pkg/errors"
)

const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 200
)

// Service is the read-only query surface used by selection interfaces and
// provisioning tools. It is safe for concurrent use.
type Service interface {
	Search(ctx context.Context, input SearchInput) (*SearchResult, error)
	Categories(ctx context.Context) ([]string, error)
	Lookup(ctx context.Context, code string) (*EntryDTO, error)
}

// SearchInput holds the validated search parameters.
type SearchInput struct {
	Term     string
	Category string
	Limit    int
}

type service struct {
	store Store
}

// NewService constructs the catalog query service over an injected store.
func NewService(store Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("catalog store required")
	}
	return &service{store: store}, nil
}

func normalizeSearchLimit(limit int) int {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return limit
}

func (s *service) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	limit := normalizeSearchLimit(input.Limit)

	entries, err := Collect(s.store.Search(ctx, Query{Term: input.Term, Category: input.Category}), limit+1)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{Items: make([]EntryDTO, 0, len(entries))}
	if len(entries) > limit {
		entries = entries[:limit]
		result.Truncated = true
	}
	for _, entry := range entries {
		result.Items = append(result.Items, toEntryDTO(entry))
	}
	return result, nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	return s.store.Categories(ctx)
}

func (s *service) Lookup(ctx context.Context, code string) (*EntryDTO, error) {
	entry, err := s.store.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog code not found")
	}
	dto := toEntryDTO(*entry)
	return &dto, nil
}
