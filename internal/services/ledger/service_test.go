package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

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

	return NewService(manager, logger, config.Currency, config.InitialCash)
}

func TestBuySellRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Opening balance
	data, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40000.0, data.CashBalance)

	// Buy 180 LIOC.N0000 @ 110 = 19,800
	inv, err := svc.AddInvestment(ctx, models.Investment{
		Symbol: "LIOC.N0000", CompanyName: "Lanka IOC", Sector: "Energy",
		Quantity: 180, BuyPrice: 110,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, models.StatusActive, inv.Status)
	assert.Equal(t, 110.0, inv.CurrentMarketPrice)

	data, err = svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 20200.0, data.CashBalance, 0.001)
	assert.InDelta(t, 19800.0, data.TotalPortfolioValue, 0.001)
	assert.Equal(t, 1, data.NumberOfHoldings)

	// Sell at 115: proceeds 20,700, realized 900
	sold, err := svc.SellInvestment(ctx, inv.ID, 115)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSold, sold.Status)
	assert.Equal(t, 115.0, sold.CurrentMarketPrice)

	data, err = svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 40900.0, data.CashBalance, 0.001)
	assert.InDelta(t, 900.0, data.RealizedPnL, 0.001)
	assert.Equal(t, 0, data.NumberOfHoldings)
}

func TestBuyRejectsOverdraft(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddInvestment(ctx, models.Investment{
		Symbol: "COMB.N0000", Quantity: 1000, BuyPrice: 100,
	})
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	// State untouched
	investments, err := svc.GetInvestments(ctx)
	require.NoError(t, err)
	assert.Empty(t, investments)

	transactions, err := svc.GetTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestAddInvestmentValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []models.Investment{
		{Symbol: "", Quantity: 10, BuyPrice: 100},
		{Symbol: "LIOC.N0000", Quantity: 0, BuyPrice: 100},
		{Symbol: "LIOC.N0000", Quantity: 10, BuyPrice: -5},
	}
	for _, inv := range cases {
		_, err := svc.AddInvestment(ctx, inv)
		assert.ErrorIs(t, err, models.ErrValidation)
	}
}

func TestDeleteActiveRefunds(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	inv, err := svc.AddInvestment(ctx, models.Investment{Symbol: "TKYO.N0000", Quantity: 100, BuyPrice: 50})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteInvestment(ctx, inv.ID))

	data, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 40000.0, data.CashBalance, 0.001)

	transactions, err := svc.GetTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, models.TxDeleteRefund, transactions[0].Type)
	assert.InDelta(t, 5000.0, transactions[0].Amount, 0.001)

	// Double delete is a not-found, with no second refund
	err = svc.DeleteInvestment(ctx, inv.ID)
	require.ErrorIs(t, err, models.ErrNotFound)

	data, err = svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 40000.0, data.CashBalance, 0.001)
}

func TestDeleteSoldHasNoCashEffect(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	inv, err := svc.AddInvestment(ctx, models.Investment{Symbol: "LIOC.N0000", Quantity: 180, BuyPrice: 110})
	require.NoError(t, err)
	_, err = svc.SellInvestment(ctx, inv.ID, 115)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteInvestment(ctx, inv.ID))

	data, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 40900.0, data.CashBalance, 0.001)
	assert.Equal(t, 0.0, data.RealizedPnL)
}

func TestSellRequiresActive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	inv, err := svc.AddInvestment(ctx, models.Investment{Symbol: "LIOC.N0000", Quantity: 10, BuyPrice: 100})
	require.NoError(t, err)
	_, err = svc.SellInvestment(ctx, inv.ID, 120)
	require.NoError(t, err)

	_, err = svc.SellInvestment(ctx, inv.ID, 130)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.SellInvestment(ctx, "missing", 130)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFundsOperations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddFunds(ctx, 10000))
	require.NoError(t, svc.WithdrawFunds(ctx, 5000))

	err := svc.WithdrawFunds(ctx, 1000000)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	err = svc.AddFunds(ctx, -5)
	assert.ErrorIs(t, err, models.ErrValidation)

	data, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 45000.0, data.CashBalance, 0.001)
}

// Replaying the signed transaction amounts over the opening balance must
// land on the current cash balance exactly.
func TestTransactionReplayMatchesBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	inv, err := svc.AddInvestment(ctx, models.Investment{Symbol: "LIOC.N0000", Quantity: 180, BuyPrice: 110})
	require.NoError(t, err)
	require.NoError(t, svc.AddFunds(ctx, 2500))
	_, err = svc.SellInvestment(ctx, inv.ID, 115)
	require.NoError(t, err)
	require.NoError(t, svc.WithdrawFunds(ctx, 1200))

	inv2, err := svc.AddInvestment(ctx, models.Investment{Symbol: "TKYO.N0000", Quantity: 50, BuyPrice: 40})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteInvestment(ctx, inv2.ID))

	transactions, err := svc.GetTransactions(ctx)
	require.NoError(t, err)

	replayed := 40000.0
	for _, tx := range transactions {
		replayed += tx.Amount
	}

	data, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.InDelta(t, data.CashBalance, replayed, 0.001)
}

func TestRefreshPrices(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	active, err := svc.AddInvestment(ctx, models.Investment{Symbol: "LIOC.N0000", Quantity: 100, BuyPrice: 110})
	require.NoError(t, err)
	sold, err := svc.AddInvestment(ctx, models.Investment{Symbol: "TKYO.N0000", Quantity: 50, BuyPrice: 40})
	require.NoError(t, err)
	_, err = svc.SellInvestment(ctx, sold.ID, 45)
	require.NoError(t, err)

	updated, notFound, err := svc.RefreshPrices(ctx, map[string]float64{
		"LIOC.N0000": 115.5,
		"TKYO.N0000": 48,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.Equal(t, 0, notFound)

	investments, err := svc.GetInvestments(ctx)
	require.NoError(t, err)
	for _, inv := range investments {
		switch inv.ID {
		case active.ID:
			assert.Equal(t, 115.5, inv.CurrentMarketPrice)
		case sold.ID:
			// Sold holdings keep their sale price
			assert.Equal(t, 45.0, inv.CurrentMarketPrice)
		}
	}

	updated, notFound, err = svc.RefreshPrices(ctx, map[string]float64{"COMB.N0000": 90})
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
	assert.Equal(t, 1, notFound)

	// Re-applying the current price is not an update
	updated, notFound, err = svc.RefreshPrices(ctx, map[string]float64{"LIOC.N0000": 115.5})
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
	assert.Equal(t, 0, notFound)
}

func TestSnapshotAppendedOncePerDay(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	_, err = svc.Dashboard(ctx)
	require.NoError(t, err)

	history, err := svc.GetHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, time.Now().Format("2006-01-02"), history[0].Date)
}

func TestSnapshotHistoryCapped(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Pre-seed a full history of past days
	seeded := make([]models.PortfolioSnapshot, models.MaxSnapshotHistory)
	for i := range seeded {
		date := time.Now().AddDate(0, 0, i-models.MaxSnapshotHistory).Format("2006-01-02")
		seeded[i] = models.PortfolioSnapshot{Date: date, TotalValue: float64(1000 + i)}
	}
	require.NoError(t, svc.storage.HistoryStore().SaveHistory(seeded))

	_, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	history, err := svc.GetHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, models.MaxSnapshotHistory)
	// Oldest entry dropped, today appended
	assert.Equal(t, seeded[1].Date, history[0].Date)
	assert.Equal(t, time.Now().Format("2006-01-02"), history[len(history)-1].Date)
}

func TestDividends(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	div, err := svc.LogDividend(ctx, models.LoggedDividend{
		Symbol: "LIOC.N0000", Quantity: 180, AmountPerShare: 2.5,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, div.ID)
	assert.NotEmpty(t, div.PaymentDate)

	// No cash effect
	data, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 40000.0, data.CashBalance, 0.001)

	dividends, err := svc.ListDividends(ctx)
	require.NoError(t, err)
	require.Len(t, dividends, 1)

	require.NoError(t, svc.RemoveDividend(ctx, div.ID))
	err = svc.RemoveDividend(ctx, div.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSummaryIncludesHoldings(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddInvestment(ctx, models.Investment{
		Symbol: "LIOC.N0000", CompanyName: "Lanka IOC", Sector: "Energy",
		Quantity: 180, BuyPrice: 110,
	})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Contains(t, summary, "LIOC.N0000")
	assert.Contains(t, summary, "Cash balance: 20200.00 LKR")
}

func TestDashboardTopAndWorstPerformers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	symbols := []struct {
		symbol string
		buy    float64
		now    float64
	}{
		{"AAAA.N0000", 100, 130},
		{"BBBB.N0000", 100, 110},
		{"CCCC.N0000", 100, 90},
		{"DDDD.N0000", 100, 70},
	}
	for _, s := range symbols {
		inv, err := svc.AddInvestment(ctx, models.Investment{Symbol: s.symbol, Quantity: 10, BuyPrice: s.buy})
		require.NoError(t, err)
		_, _, err = svc.RefreshPrices(ctx, map[string]float64{s.symbol: s.now})
		require.NoError(t, err)
		_ = inv
	}

	data, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, data.TopPerformers, 3)
	require.Len(t, data.WorstPerformers, 3)
	assert.Equal(t, "AAAA.N0000", data.TopPerformers[0].Symbol)
	assert.Equal(t, "DDDD.N0000", data.WorstPerformers[0].Symbol)
}
