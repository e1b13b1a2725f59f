// Package ledger provides the portfolio ledger service: holdings, cash,
// transactions, dividends, and the daily snapshot history.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lakmalw/cense/internal/common"
	"github.com/lakmalw/cense/internal/interfaces"
	"github.com/lakmalw/cense/internal/models"
)

const topPerformerCount = 3

// Service implements LedgerService. A single mutex serializes all mutations
// so every operation observes and produces a consistent ledger state.
type Service struct {
	mu          sync.Mutex
	storage     interfaces.StorageManager
	logger      *common.Logger
	currency    string
	initialCash float64
}

// NewService creates a new ledger service. initialCash seeds the cash
// balance the first time the ledger is opened.
func NewService(storage interfaces.StorageManager, logger *common.Logger, currency string, initialCash float64) *Service {
	return &Service{
		storage:     storage,
		logger:      logger,
		currency:    currency,
		initialCash: initialCash,
	}
}

// loadCash returns the cash balance, seeding the opening balance on first use.
func (s *Service) loadCash(ctx context.Context) (float64, error) {
	balance, found, err := s.storage.LedgerStore().GetCashBalance(ctx)
	if err != nil {
		return 0, err
	}
	if !found {
		if err := s.storage.LedgerStore().SaveCashBalance(ctx, s.initialCash); err != nil {
			return 0, err
		}
		s.logger.Info().Float64("balance", s.initialCash).Str("currency", s.currency).Msg("Seeded opening cash balance")
		return s.initialCash, nil
	}
	return balance, nil
}

// prependedTransactions returns the transaction log with a new entry at its
// head. The caller persists it together with the rest of the mutation.
func (s *Service) prependedTransactions(ctx context.Context, txType models.TransactionType, description string, amount float64, investmentID string) ([]models.Transaction, error) {
	transactions, err := s.storage.LedgerStore().GetTransactions(ctx)
	if err != nil {
		return nil, err
	}
	tx := models.Transaction{
		ID:           uuid.New().String(),
		Date:         time.Now(),
		Type:         txType,
		Description:  description,
		Amount:       amount,
		InvestmentID: investmentID,
	}
	return append([]models.Transaction{tx}, transactions...), nil
}

func validateInvestment(inv models.Investment) error {
	if strings.TrimSpace(inv.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", models.ErrValidation)
	}
	if inv.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", models.ErrValidation)
	}
	if inv.BuyPrice <= 0 {
		return fmt.Errorf("%w: buy price must be positive", models.ErrValidation)
	}
	return nil
}

// AddInvestment purchases a new holding, debiting its full cost from cash.
func (s *Service) AddInvestment(ctx context.Context, inv models.Investment) (*models.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateInvestment(inv); err != nil {
		return nil, err
	}

	cash, err := s.loadCash(ctx)
	if err != nil {
		return nil, err
	}
	cost := inv.Cost()
	if cost > cash {
		return nil, fmt.Errorf("%w: need %.2f %s, have %.2f", models.ErrInsufficientFunds, cost, s.currency, cash)
	}

	inv.ID = uuid.New().String()
	inv.Symbol = strings.ToUpper(strings.TrimSpace(inv.Symbol))
	if inv.Status == "" {
		inv.Status = models.StatusActive
	}
	if inv.CurrentMarketPrice <= 0 {
		inv.CurrentMarketPrice = inv.BuyPrice
	}
	if inv.BuyDate == "" {
		inv.BuyDate = time.Now().Format("2006-01-02")
	}

	investments, err := s.storage.LedgerStore().GetInvestments(ctx)
	if err != nil {
		return nil, err
	}
	investments = append(investments, inv)

	description := fmt.Sprintf("Bought %d of %s @ %.2f", inv.Quantity, inv.Symbol, inv.BuyPrice)
	transactions, err := s.prependedTransactions(ctx, models.TxBuy, description, -cost, inv.ID)
	if err != nil {
		return nil, err
	}
	if err := s.storage.LedgerStore().SaveTrade(ctx, investments, cash-cost, transactions); err != nil {
		return nil, err
	}

	s.logger.Info().Str("symbol", inv.Symbol).Int64("quantity", inv.Quantity).Float64("cost", cost).Msg("Investment added")
	return &inv, nil
}

// UpdateInvestment replaces a holding record wholesale. Cash is untouched.
func (s *Service) UpdateInvestment(ctx context.Context, inv models.Investment) (*models.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateInvestment(inv); err != nil {
		return nil, err
	}

	investments, err := s.storage.LedgerStore().GetInvestments(ctx)
	if err != nil {
		return nil, err
	}
	for i := range investments {
		if investments[i].ID == inv.ID {
			inv.Symbol = strings.ToUpper(strings.TrimSpace(inv.Symbol))
			investments[i] = inv
			if err := s.storage.LedgerStore().SaveInvestments(ctx, investments); err != nil {
				return nil, err
			}
			return &inv, nil
		}
	}
	return nil, fmt.Errorf("%w: investment %s", models.ErrNotFound, inv.ID)
}

// SellInvestment marks an Active holding Sold at salePrice and credits the
// proceeds. The sale price becomes the holding's market price permanently,
// fixing its realized gain.
func (s *Service) SellInvestment(ctx context.Context, id string, salePrice float64) (*models.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if salePrice <= 0 {
		return nil, fmt.Errorf("%w: sale price must be positive", models.ErrValidation)
	}

	investments, err := s.storage.LedgerStore().GetInvestments(ctx)
	if err != nil {
		return nil, err
	}

	for i := range investments {
		if investments[i].ID != id {
			continue
		}
		if investments[i].Status != models.StatusActive {
			return nil, fmt.Errorf("%w: investment %s is not active", models.ErrValidation, id)
		}

		investments[i].Status = models.StatusSold
		investments[i].CurrentMarketPrice = salePrice
		sold := investments[i]
		proceeds := float64(sold.Quantity) * salePrice

		cash, err := s.loadCash(ctx)
		if err != nil {
			return nil, err
		}
		description := fmt.Sprintf("Sold %d of %s @ %.2f", sold.Quantity, sold.Symbol, salePrice)
		transactions, err := s.prependedTransactions(ctx, models.TxSell, description, proceeds, sold.ID)
		if err != nil {
			return nil, err
		}
		if err := s.storage.LedgerStore().SaveTrade(ctx, investments, cash+proceeds, transactions); err != nil {
			return nil, err
		}

		s.logger.Info().Str("symbol", sold.Symbol).Float64("proceeds", proceeds).Msg("Investment sold")
		return &sold, nil
	}
	return nil, fmt.Errorf("%w: investment %s", models.ErrNotFound, id)
}

// DeleteInvestment removes a holding. Deleting an Active holding refunds its
// full purchase cost; deleting a Sold holding erases the record only.
func (s *Service) DeleteInvestment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	investments, err := s.storage.LedgerStore().GetInvestments(ctx)
	if err != nil {
		return err
	}

	for i := range investments {
		if investments[i].ID != id {
			continue
		}
		removed := investments[i]
		investments = append(investments[:i], investments[i+1:]...)

		if removed.Status == models.StatusActive {
			refund := removed.Cost()
			cash, err := s.loadCash(ctx)
			if err != nil {
				return err
			}
			description := fmt.Sprintf("Deleted %s, refunded %.2f", removed.Symbol, refund)
			transactions, err := s.prependedTransactions(ctx, models.TxDeleteRefund, description, refund, removed.ID)
			if err != nil {
				return err
			}
			if err := s.storage.LedgerStore().SaveTrade(ctx, investments, cash+refund, transactions); err != nil {
				return err
			}
		} else if err := s.storage.LedgerStore().SaveInvestments(ctx, investments); err != nil {
			return err
		}

		s.logger.Info().Str("symbol", removed.Symbol).Str("status", string(removed.Status)).Msg("Investment deleted")
		return nil
	}
	return fmt.Errorf("%w: investment %s", models.ErrNotFound, id)
}

// GetInvestments returns all holdings.
func (s *Service) GetInvestments(ctx context.Context) ([]models.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.LedgerStore().GetInvestments(ctx)
}

// AddFunds credits the cash balance.
func (s *Service) AddFunds(ctx context.Context, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}
	cash, err := s.loadCash(ctx)
	if err != nil {
		return err
	}
	investments, err := s.storage.LedgerStore().GetInvestments(ctx)
	if err != nil {
		return err
	}
	transactions, err := s.prependedTransactions(ctx, models.TxAddFunds, fmt.Sprintf("Added %.2f %s to cash", amount, s.currency), amount, "")
	if err != nil {
		return err
	}
	return s.storage.LedgerStore().SaveTrade(ctx, investments, cash+amount, transactions)
}

// WithdrawFunds debits the cash balance, rejecting overdrafts.
func (s *Service) WithdrawFunds(ctx context.Context, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}
	cash, err := s.loadCash(ctx)
	if err != nil {
		return err
	}
	if amount > cash {
		return fmt.Errorf("%w: withdrawal %.2f exceeds balance %.2f", models.ErrInsufficientFunds, amount, cash)
	}
	investments, err := s.storage.LedgerStore().GetInvestments(ctx)
	if err != nil {
		return err
	}
	transactions, err := s.prependedTransactions(ctx, models.TxWithdrawFunds, fmt.Sprintf("Withdrew %.2f %s from cash", amount, s.currency), -amount, "")
	if err != nil {
		return err
	}
	return s.storage.LedgerStore().SaveTrade(ctx, investments, cash-amount, transactions)
}

// GetTransactions returns the transaction log, most recent first.
func (s *Service) GetTransactions(ctx context.Context) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.LedgerStore().GetTransactions(ctx)
}

// Dashboard recomputes derived portfolio metrics from the ledger and records
// today's snapshot when one is not already present.
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	investments, err := s.storage.LedgerStore().GetInvestments(ctx)
	if err != nil {
		return nil, err
	}
	cash, err := s.loadCash(ctx)
	if err != nil {
		return nil, err
	}

	data := computeDashboard(investments, cash)
	s.recordSnapshot(data.TotalPortfolioValue)
	return data, nil
}

// computeDashboard derives metrics from the holdings list. Active holdings
// drive value, cost, and unrealized figures; Sold holdings drive realized P/L
// via their fixed sale price.
func computeDashboard(investments []models.Investment, cash float64) *models.DashboardData {
	data := &models.DashboardData{CashBalance: cash}

	var active []models.Investment
	for _, inv := range investments {
		switch inv.Status {
		case models.StatusActive:
			active = append(active, inv)
			data.TotalPortfolioValue += inv.MarketValue()
			data.TotalInvestmentCost += inv.Cost()
		case models.StatusSold:
			data.RealizedPnL += inv.UnrealizedPnL()
		}
	}

	data.NumberOfHoldings = len(active)
	data.UnrealizedPnL = data.TotalPortfolioValue - data.TotalInvestmentCost
	if data.TotalInvestmentCost > 0 {
		data.UnrealizedPnLPercentage = data.UnrealizedPnL / data.TotalInvestmentCost * 100
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].UnrealizedPnLPct() > active[j].UnrealizedPnLPct()
	})
	n := len(active)
	top := topPerformerCount
	if n < top {
		top = n
	}
	data.TopPerformers = append([]models.Investment{}, active[:top]...)
	for i := n - 1; i >= n-top; i-- {
		data.WorstPerformers = append(data.WorstPerformers, active[i])
	}
	return data
}

// recordSnapshot appends today's total value unless today is already
// recorded, then trims the history to the retention cap. Snapshot failures
// are logged and swallowed so they never fail a dashboard read.
func (s *Service) recordSnapshot(totalValue float64) {
	today := time.Now().Format("2006-01-02")
	history := s.storage.HistoryStore().LoadHistory()

	if len(history) > 0 && history[len(history)-1].Date == today {
		return
	}
	history = append(history, models.PortfolioSnapshot{Date: today, TotalValue: totalValue})
	if len(history) > models.MaxSnapshotHistory {
		history = history[len(history)-models.MaxSnapshotHistory:]
	}
	if err := s.storage.HistoryStore().SaveHistory(history); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to save portfolio snapshot")
	}
}

// GetHistory returns the retained snapshot history, oldest first.
func (s *Service) GetHistory(ctx context.Context) ([]models.PortfolioSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.HistoryStore().LoadHistory(), nil
}

// RefreshPrices applies a symbol to price map to Active holdings. Sold
// holdings keep their sale price. A holding counts as updated only when its
// price actually changes. Returns updated and not-found counts.
func (s *Service) RefreshPrices(ctx context.Context, prices map[string]float64) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	investments, err := s.storage.LedgerStore().GetInvestments(ctx)
	if err != nil {
		return 0, 0, err
	}

	updated, notFound := 0, 0
	for i := range investments {
		if investments[i].Status != models.StatusActive {
			continue
		}
		price, ok := prices[investments[i].NormalizedSymbol()]
		if !ok {
			notFound++
			continue
		}
		if price != investments[i].CurrentMarketPrice {
			investments[i].CurrentMarketPrice = price
			updated++
		}
	}

	if updated > 0 {
		if err := s.storage.LedgerStore().SaveInvestments(ctx, investments); err != nil {
			return 0, 0, err
		}
	}
	s.logger.Info().Int("updated", updated).Int("not_found", notFound).Msg("Prices refreshed")
	return updated, notFound, nil
}

// LogDividend records a dividend receipt. Dividends are informational and do
// not move cash.
func (s *Service) LogDividend(ctx context.Context, div models.LoggedDividend) (*models.LoggedDividend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(div.Symbol) == "" {
		return nil, fmt.Errorf("%w: symbol is required", models.ErrValidation)
	}
	if div.AmountPerShare <= 0 {
		return nil, fmt.Errorf("%w: amount per share must be positive", models.ErrValidation)
	}
	if div.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", models.ErrValidation)
	}

	div.ID = uuid.New().String()
	div.Symbol = strings.ToUpper(strings.TrimSpace(div.Symbol))
	if div.PaymentDate == "" {
		div.PaymentDate = time.Now().Format("2006-01-02")
	}

	dividends, err := s.storage.LedgerStore().GetDividends(ctx)
	if err != nil {
		return nil, err
	}
	dividends = append(dividends, div)
	if err := s.storage.LedgerStore().SaveDividends(ctx, dividends); err != nil {
		return nil, err
	}
	return &div, nil
}

// ListDividends returns all logged dividends.
func (s *Service) ListDividends(ctx context.Context) ([]models.LoggedDividend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.LedgerStore().GetDividends(ctx)
}

// RemoveDividend deletes a logged dividend.
func (s *Service) RemoveDividend(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dividends, err := s.storage.LedgerStore().GetDividends(ctx)
	if err != nil {
		return err
	}
	for i := range dividends {
		if dividends[i].ID == id {
			dividends = append(dividends[:i], dividends[i+1:]...)
			return s.storage.LedgerStore().SaveDividends(ctx, dividends)
		}
	}
	return fmt.Errorf("%w: dividend %s", models.ErrNotFound, id)
}

// Summary renders a compact text description of the portfolio for embedding
// in advisor prompts.
func (s *Service) Summary(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	investments, err := s.storage.LedgerStore().GetInvestments(ctx)
	if err != nil {
		return "", err
	}
	cash, err := s.loadCash(ctx)
	if err != nil {
		return "", err
	}

	data := computeDashboard(investments, cash)

	var b strings.Builder
	fmt.Fprintf(&b, "Cash balance: %.2f %s\n", data.CashBalance, s.currency)
	fmt.Fprintf(&b, "Active holdings value: %.2f %s (cost %.2f, unrealized P/L %.2f)\n",
		data.TotalPortfolioValue, s.currency, data.TotalInvestmentCost, data.UnrealizedPnL)
	fmt.Fprintf(&b, "Realized P/L: %.2f %s\n", data.RealizedPnL, s.currency)

	b.WriteString("Holdings:\n")
	hasActive := false
	for _, inv := range investments {
		if inv.Status != models.StatusActive {
			continue
		}
		hasActive = true
		fmt.Fprintf(&b, "- %s (%s, %s): %d shares, bought @ %.2f, now %.2f, P/L %.2f (%.1f%%)\n",
			inv.Symbol, inv.CompanyName, inv.Sector, inv.Quantity, inv.BuyPrice,
			inv.CurrentMarketPrice, inv.UnrealizedPnL(), inv.UnrealizedPnLPct())
	}
	if !hasActive {
		b.WriteString("- none\n")
	}

	for _, inv := range investments {
		if inv.Status == models.StatusSold {
			fmt.Fprintf(&b, "Sold: %s, %d shares, bought @ %.2f, sold @ %.2f, realized %.2f\n",
				inv.Symbol, inv.Quantity, inv.BuyPrice, inv.CurrentMarketPrice, inv.UnrealizedPnL())
		}
	}

	return b.String(), nil
}

var _ interfaces.LedgerService = (*Service)(nil)
