package watchlist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakmalw/cense/internal/common"
	"github.com/lakmalw/cense/internal/models"
	"github.com/lakmalw/cense/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	base := t.TempDir()
	config := common.NewDefaultConfig()
	config.Storage.Ledger.Path = filepath.Join(base, "ledger")
	config.Storage.History.Path = filepath.Join(base, "history")

	logger := common.NewSilentLogger()
	manager, err := storage.NewManager(logger, config)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	return NewService(manager, logger)
}

func TestAddAndListItems(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, models.WatchlistItem{Symbol: "tkyo.n0000", CompanyName: "Tokyo Cement"})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "TKYO.N0000", item.Symbol)

	items, err := svc.GetWatchlist(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestAddItemRejectsDuplicateSymbol(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, models.WatchlistItem{Symbol: "TKYO.N0000"})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, models.WatchlistItem{Symbol: "TKYO.N0000"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, models.WatchlistItem{Symbol: "TKYO.N0000"})
	require.NoError(t, err)

	item.Notes = "watching for entry below 45"
	updated, err := svc.UpdateItem(ctx, *item)
	require.NoError(t, err)
	assert.Equal(t, "watching for entry below 45", updated.Notes)

	require.NoError(t, svc.RemoveItem(ctx, item.ID))
	err = svc.RemoveItem(ctx, item.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.UpdateItem(ctx, *item)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSummary(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Contains(t, summary, "empty")

	_, err = svc.AddItem(ctx, models.WatchlistItem{Symbol: "TKYO.N0000", CompanyName: "Tokyo Cement", Notes: "cement demand"})
	require.NoError(t, err)

	summary, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.Contains(t, summary, "TKYO.N0000 (Tokyo Cement): cement demand")
}
