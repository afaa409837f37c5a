package catalog

import (
	"context"
	"testing"

	"github.com/mirs/station-backend/internal/testutil"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestNewServiceRequiresStore(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestServiceSearchLimits(t *testing.T) {
	svc, err := NewService(NewMemoryStore(testutil.Catalog()...))
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), SearchInput{Limit: 3})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	require.True(t, result.Truncated)

	result, err = svc.Search(context.Background(), SearchInput{Term: "gauze"})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	require.False(t, result.Truncated)
	require.Equal(t, "GAUZE-2X2", result.Items[0].Code)

	require.Equal(t, DefaultSearchLimit, normalizeSearchLimit(0))
	require.Equal(t, MaxSearchLimit, normalizeSearchLimit(5000))
}

func TestServiceLookupAndCategories(t *testing.T) {
	svc, err := NewService(NewMemoryStore(testutil.Catalog()...))
	require.NoError(t, err)

	entry, err := svc.Lookup(context.Background(), "MED-EMER-001")
	require.NoError(t, err)
	require.Equal(t, "Amp", entry.Unit)

	_, err = svc.Lookup(context.Background(), "FAKE-CODE")
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 4)
}
