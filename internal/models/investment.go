// Package models defines data structures for Cense
package models

import (
	"strings"
	"time"
)

// InvestmentStatus tracks the lifecycle of a holding
type InvestmentStatus string

const (
	StatusActive  InvestmentStatus = "Active"
	StatusSold    InvestmentStatus = "Sold"
	StatusPending InvestmentStatus = "Pending"
)

// Investment represents a single buy lot of a CSE stock, tracked from
// purchase through sale or deletion.
type Investment struct {
	ID                 string           `json:"id"`
	Symbol             string           `json:"symbol"` // CSE symbol, e.g. "LIOC.N0000"
	CompanyName        string           `json:"company_name"`
	Sector             string           `json:"sector"`
	BuyDate            string           `json:"buy_date"` // YYYY-MM-DD
	Quantity           int64            `json:"quantity"`
	BuyPrice           float64          `json:"buy_price"`
	CurrentMarketPrice float64          `json:"current_market_price"` // fixed to sale price once Sold
	PERCurrent         string           `json:"per_current,omitempty"`
	PER5YrAvg          string           `json:"per_5yr_avg,omitempty"`
	LiquidityDailyVol  string           `json:"liquidity_daily_vol,omitempty"`
	BuyPointRationale  string           `json:"buy_point_rationale,omitempty"`
	TargetSellPrice    float64          `json:"target_sell_price,omitempty"`
	TargetSellDate     string           `json:"target_sell_date,omitempty"`
	ExitPointRationale string           `json:"exit_point_rationale,omitempty"`
	Status             InvestmentStatus `json:"status"`
	Notes              string           `json:"notes,omitempty"`
}

// Cost returns the total purchase cost of the lot.
func (i Investment) Cost() float64 {
	return float64(i.Quantity) * i.BuyPrice
}

// MarketValue returns the current value of the lot at the last known price.
func (i Investment) MarketValue() float64 {
	return float64(i.Quantity) * i.CurrentMarketPrice
}

// UnrealizedPnL returns the gain or loss on the lot at the last known price.
func (i Investment) UnrealizedPnL() float64 {
	return i.MarketValue() - i.Cost()
}

// UnrealizedPnLPct returns the gain or loss as a percentage of cost, 0 if cost is 0.
func (i Investment) UnrealizedPnLPct() float64 {
	cost := i.Cost()
	if cost <= 0 {
		return 0
	}
	return i.UnrealizedPnL() / cost * 100
}

// NormalizedSymbol returns the symbol uppercased and trimmed for map lookups.
func (i Investment) NormalizedSymbol() string {
	return strings.ToUpper(strings.TrimSpace(i.Symbol))
}

// TransactionType categorizes cash ledger entries
type TransactionType string

const (
	TxBuy           TransactionType = "Buy"
	TxSell          TransactionType = "Sell"
	TxAddFunds      TransactionType = "Add Funds"
	TxWithdrawFunds TransactionType = "Withdraw Funds"
	TxDeleteRefund  TransactionType = "Delete Active Investment (Refund)"
)

// Transaction is an immutable, append-only audit record of a cash mutation.
// Amount is signed: positive for additions to cash, negative for outflows.
type Transaction struct {
	ID           string          `json:"id"`
	Date         time.Time       `json:"date"`
	Type         TransactionType `json:"type"`
	Description  string          `json:"description"`
	Amount       float64         `json:"amount"`
	InvestmentID string          `json:"investment_id,omitempty"`
}

// PortfolioSnapshot records the total active-holdings value for one calendar day.
type PortfolioSnapshot struct {
	Date       string  `json:"date"` // YYYY-MM-DD
	TotalValue float64 `json:"totalValue"`
}

// MaxSnapshotHistory caps the retained snapshot history; oldest entries are
// dropped first once the cap is exceeded.
const MaxSnapshotHistory = 90

// DashboardData is the derived metrics view. It is recomputed on every ledger
// mutation and never stored as source of truth.
type DashboardData struct {
	TotalPortfolioValue     float64      `json:"total_portfolio_value"` // active holdings only
	TotalInvestmentCost     float64      `json:"total_investment_cost"` // active holdings only
	UnrealizedPnL           float64      `json:"unrealized_pnl"`
	UnrealizedPnLPercentage float64      `json:"unrealized_pnl_percentage"`
	RealizedPnL             float64      `json:"realized_pnl"`
	CashBalance             float64      `json:"cash_balance"`
	NumberOfHoldings        int          `json:"number_of_holdings"`
	TopPerformers           []Investment `json:"top_performers"`
	WorstPerformers         []Investment `json:"worst_performers"`
}

// LoggedDividend records a dividend receipt against an investment.
// Dividends are informational only and have no cash-balance effect.
type LoggedDividend struct {
	ID             string  `json:"id"`
	InvestmentID   string  `json:"investment_id"`
	Symbol         string  `json:"symbol"`
	CompanyName    string  `json:"company_name"`
	Quantity       int64   `json:"quantity"`
	AmountPerShare float64 `json:"amount_per_share"`
	ExDividendDate string  `json:"ex_dividend_date,omitempty"`
	PaymentDate    string  `json:"payment_date"`
	Notes          string  `json:"notes,omitempty"`
}

// WatchlistItem is a stock the user tracks without holding.
type WatchlistItem struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name,omitempty"`
	Notes       string `json:"notes,omitempty"`
}
