package tickers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "tickers-test-*")
	require.NoError(t, err)
	store, err := Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		os.RemoveAll(dir)
	})
	return store
}

func TestStore_AddAndList(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "aapl"))
	require.NoError(t, s.Add(ctx, "MSFT"))
	require.NoError(t, s.Add(ctx, " googl "))

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL"}, got)
}

func TestStore_DuplicateReturnsErrExists(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "AAPL"))
	assert.ErrorIs(t, s.Add(ctx, "aapl"), ErrExists)
}

func TestStore_EmptySymbolRejected(t *testing.T) {
	s := setupStore(t)

	assert.Error(t, s.Add(context.Background(), "   "))
}

func TestStore_Search(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for _, sym := range []string{"AAPL", "MSFT", "AMD"} {
		require.NoError(t, s.Add(ctx, sym))
	}

	got, err := s.Search(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "AMD"}, got)

	got, err = s.Search(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_Remove(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "AAPL"))
	require.NoError(t, s.Remove(ctx, "aapl"))

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Removing an unknown symbol is a no-op.
	assert.NoError(t, s.Remove(ctx, "TSLA"))
}
