// Package interfaces defines service contracts for Cense
package interfaces

import (
	"context"

	"github.com/lakmalw/cense/internal/models"
)

// LedgerService owns holdings, cash, transactions, dividends, and the daily
// snapshot history. Every mutation either applies in full or not at all, and
// appends exactly one transaction per cash-balance change.
type LedgerService interface {
	// AddInvestment purchases a new holding, debiting cash
	AddInvestment(ctx context.Context, inv models.Investment) (*models.Investment, error)

	// UpdateInvestment replaces a holding record wholesale; no cash effect
	UpdateInvestment(ctx context.Context, inv models.Investment) (*models.Investment, error)

	// SellInvestment marks a holding Sold at salePrice, crediting proceeds
	SellInvestment(ctx context.Context, id string, salePrice float64) (*models.Investment, error)

	// DeleteInvestment removes a holding; Active deletions refund cost
	DeleteInvestment(ctx context.Context, id string) error

	// GetInvestments returns all holdings
	GetInvestments(ctx context.Context) ([]models.Investment, error)

	// AddFunds credits the cash balance
	AddFunds(ctx context.Context, amount float64) error

	// WithdrawFunds debits the cash balance, rejecting overdrafts
	WithdrawFunds(ctx context.Context, amount float64) error

	// GetTransactions returns the transaction log, most recent first
	GetTransactions(ctx context.Context) ([]models.Transaction, error)

	// Dashboard recomputes derived metrics and appends today's snapshot
	// if one is not already recorded
	Dashboard(ctx context.Context) (*models.DashboardData, error)

	// GetHistory returns the retained snapshot history, oldest first
	GetHistory(ctx context.Context) ([]models.PortfolioSnapshot, error)

	// RefreshPrices applies a symbol→price map to Active holdings and
	// returns (updated, notFound) counts
	RefreshPrices(ctx context.Context, prices map[string]float64) (int, int, error)

	// LogDividend records a dividend receipt; no cash effect
	LogDividend(ctx context.Context, div models.LoggedDividend) (*models.LoggedDividend, error)

	// ListDividends returns all logged dividends
	ListDividends(ctx context.Context) ([]models.LoggedDividend, error)

	// RemoveDividend deletes a logged dividend
	RemoveDividend(ctx context.Context, id string) error

	// Summary renders a compact text description of the portfolio for
	// embedding in advisor prompts
	Summary(ctx context.Context) (string, error)
}

// WatchlistService manages the tracked-but-not-held stock list.
type WatchlistService interface {
	GetWatchlist(ctx context.Context) ([]models.WatchlistItem, error)
	AddItem(ctx context.Context, item models.WatchlistItem) (*models.WatchlistItem, error)
	UpdateItem(ctx context.Context, item models.WatchlistItem) (*models.WatchlistItem, error)
	RemoveItem(ctx context.Context, id string) error

	// Summary renders a compact text description for advisor prompts
	Summary(ctx context.Context) (string, error)
}

// DocumentKind identifies the decoder used for an uploaded document.
type DocumentKind string

const (
	DocCSV DocumentKind = "csv"
	DocPDF DocumentKind = "pdf"
)

// DocumentSlot names the three upload slots.
type DocumentSlot string

const (
	SlotTradingSummary   DocumentSlot = "trading-summary"
	SlotMarketIndex      DocumentSlot = "market-index"
	SlotPersonalizedNews DocumentSlot = "personalized-news"
)

// DocumentService extracts text from uploaded files and holds the extracted
// text per slot for prompt context and price refresh.
type DocumentService interface {
	// ExtractText decodes a file: CSV as UTF-8 text, PDF page-by-page
	ExtractText(data []byte, kind DocumentKind) (string, error)

	// StoreUpload validates, extracts, and retains a document for a slot
	StoreUpload(slot DocumentSlot, filename, contentType string, data []byte) error

	// SlotText returns the extracted text for a slot, "" if absent
	SlotText(slot DocumentSlot) string

	// SlotName returns the uploaded filename for a slot, "" if absent
	SlotName(slot DocumentSlot) string

	// CombinedContext builds the labelled, truncated document context block
	// embedded in advisor prompts
	CombinedContext() string

	// ParsePriceTable extracts symbol→price from trading-summary CSV text
	ParsePriceTable(csvText string) (map[string]float64, error)
}

// AdvisorService runs the AI panels. Each trigger returns the request
// sequence number; results land asynchronously in the panel state and a
// stale response never overwrites a newer one.
type AdvisorService interface {
	// Trigger starts a panel request and returns its sequence number
	Trigger(ctx context.Context, panel string, input map[string]interface{}) (uint64, error)

	// PanelState returns the current state for a panel
	PanelState(panel string) (*models.PanelState, error)

	// Panels lists the known panel names
	Panels() []string

	// Chat appends a user message and returns the model reply
	Chat(ctx context.Context, message string) (*models.ChatMessage, error)

	// ChatHistory returns the conversation so far
	ChatHistory() []models.ChatMessage
}
