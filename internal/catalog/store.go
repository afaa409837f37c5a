package catalog

import (
	"context"
	"iter"
	"regexp"
	"strings"

	"github.com/mirs/station-backend/pkg/db/models"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
)

// MaxCodeLength bounds catalog codes.
const MaxCodeLength = 50

var codePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,49}$`)

// Store answers membership and search queries over the master catalog.
// Implementations never mutate catalog rows on behalf of a station.
type Store interface {
	Lookup(ctx context.Context, code string) (*models.CatalogEntry, error)
	Search(ctx context.Context, q Query) iter.Seq2[models.CatalogEntry, error]
	Categories(ctx context.Context) ([]string, error)
}

// Query filters a catalog search. An empty Term matches every entry.
type Query struct {
	Term     string
	Category string
}

func (q Query) normalized() Query {
	return Query{
		Term:     models.FoldSearchText(strings.TrimSpace(q.Term)),
		Category: strings.TrimSpace(q.Category),
	}
}

// NormalizeCode trims code and checks it against the catalog code format.
func NormalizeCode(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeInvalidCode, "code is required").
			WithDetails(map[string]any{"code": code})
	}
	if !codePattern.MatchString(trimmed) {
		return "", pkgerrors.New(pkgerrors.CodeInvalidCode, "code is malformed").
			WithDetails(map[string]any{"code": trimmed, "max_length": MaxCodeLength})
	}
	return trimmed, nil
}

func notFound(code string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "catalog code not found").
		WithDetails(map[string]any{"code": code})
}

// Collect drains a search sequence, stopping after limit entries when limit > 0.
func Collect(seq iter.Seq2[models.CatalogEntry, error], limit int) ([]models.CatalogEntry, error) {
	out := []models.CatalogEntry{}
	for entry, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
