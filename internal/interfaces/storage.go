package interfaces

import (
	"context"

	"github.com/lakmalw/cense/internal/models"
)

// LedgerStore persists ledger state: investments, transactions, dividends,
// and the watchlist.
type LedgerStore interface {
	GetInvestments(ctx context.Context) ([]models.Investment, error)
	SaveInvestments(ctx context.Context, investments []models.Investment) error

	GetTransactions(ctx context.Context) ([]models.Transaction, error)
	SaveTransactions(ctx context.Context, transactions []models.Transaction) error

	GetCashBalance(ctx context.Context) (float64, bool, error)
	SaveCashBalance(ctx context.Context, balance float64) error

	// SaveTrade persists investments, the cash balance, and the transaction
	// log in a single atomic write, so a cash mutation never partially commits.
	SaveTrade(ctx context.Context, investments []models.Investment, balance float64, transactions []models.Transaction) error

	GetDividends(ctx context.Context) ([]models.LoggedDividend, error)
	SaveDividends(ctx context.Context, dividends []models.LoggedDividend) error

	GetWatchlist(ctx context.Context) ([]models.WatchlistItem, error)
	SaveWatchlist(ctx context.Context, items []models.WatchlistItem) error
}

// HistoryStore persists the daily snapshot history as a single JSON document.
// Load falls back to an empty list on missing or unparseable data.
type HistoryStore interface {
	LoadHistory() []models.PortfolioSnapshot
	SaveHistory(snapshots []models.PortfolioSnapshot) error
}

// StorageManager coordinates the storage areas.
type StorageManager interface {
	LedgerStore() LedgerStore
	HistoryStore() HistoryStore
	Close() error
}
