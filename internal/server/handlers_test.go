package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakmalw/cense/internal/app"
	"github.com/lakmalw/cense/internal/common"
	"github.com/lakmalw/cense/internal/interfaces"
	"github.com/lakmalw/cense/internal/models"
)

// mockLedger is a canned LedgerService for handler tests.
type mockLedger struct {
	investments []models.Investment
	err         error
}

func (m *mockLedger) AddInvestment(_ context.Context, inv models.Investment) (*models.Investment, error) {
	if m.err != nil {
		return nil, m.err
	}
	inv.ID = "inv-new"
	return &inv, nil
}

func (m *mockLedger) UpdateInvestment(_ context.Context, inv models.Investment) (*models.Investment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &inv, nil
}

func (m *mockLedger) SellInvestment(_ context.Context, id string, salePrice float64) (*models.Investment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Investment{ID: id, Status: models.StatusSold, CurrentMarketPrice: salePrice}, nil
}

func (m *mockLedger) DeleteInvestment(_ context.Context, id string) error { return m.err }

func (m *mockLedger) GetInvestments(_ context.Context) ([]models.Investment, error) {
	return m.investments, m.err
}

func (m *mockLedger) AddFunds(_ context.Context, amount float64) error      { return m.err }
func (m *mockLedger) WithdrawFunds(_ context.Context, amount float64) error { return m.err }

func (m *mockLedger) GetTransactions(_ context.Context) ([]models.Transaction, error) {
	return []models.Transaction{{ID: "tx-1", Type: models.TxBuy}}, m.err
}

func (m *mockLedger) Dashboard(_ context.Context) (*models.DashboardData, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.DashboardData{CashBalance: 40000, NumberOfHoldings: len(m.investments)}, nil
}

func (m *mockLedger) GetHistory(_ context.Context) ([]models.PortfolioSnapshot, error) {
	return []models.PortfolioSnapshot{{Date: "2026-08-29", TotalValue: 19800}, {Date: "2026-08-30", TotalValue: 20000}}, m.err
}

func (m *mockLedger) RefreshPrices(_ context.Context, prices map[string]float64) (int, int, error) {
	return len(prices), 0, m.err
}

func (m *mockLedger) LogDividend(_ context.Context, div models.LoggedDividend) (*models.LoggedDividend, error) {
	if m.err != nil {
		return nil, m.err
	}
	div.ID = "div-new"
	return &div, nil
}

func (m *mockLedger) ListDividends(_ context.Context) ([]models.LoggedDividend, error) {
	return nil, m.err
}

func (m *mockLedger) RemoveDividend(_ context.Context, id string) error { return m.err }

func (m *mockLedger) Summary(_ context.Context) (string, error) { return "Cash balance: 40000", m.err }

// mockWatchlist is a canned WatchlistService.
type mockWatchlist struct {
	err error
}

func (m *mockWatchlist) GetWatchlist(_ context.Context) ([]models.WatchlistItem, error) {
	return []models.WatchlistItem{{ID: "w-1", Symbol: "TKYO.N0000"}}, m.err
}

func (m *mockWatchlist) AddItem(_ context.Context, item models.WatchlistItem) (*models.WatchlistItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	item.ID = "w-new"
	return &item, nil
}

func (m *mockWatchlist) UpdateItem(_ context.Context, item models.WatchlistItem) (*models.WatchlistItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &item, nil
}

func (m *mockWatchlist) RemoveItem(_ context.Context, id string) error { return m.err }
func (m *mockWatchlist) Summary(_ context.Context) (string, error)     { return "Watchlist: empty", m.err }

// mockDocs is a canned DocumentService.
type mockDocs struct {
	slotText map[interfaces.DocumentSlot]string
	slotName map[interfaces.DocumentSlot]string
	prices   map[string]float64
	storeErr error
	parseErr error
}

func (m *mockDocs) ExtractText(data []byte, kind interfaces.DocumentKind) (string, error) {
	return string(data), nil
}

func (m *mockDocs) StoreUpload(slot interfaces.DocumentSlot, filename, contentType string, data []byte) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	if m.slotText == nil {
		m.slotText = map[interfaces.DocumentSlot]string{}
		m.slotName = map[interfaces.DocumentSlot]string{}
	}
	m.slotText[slot] = string(data)
	m.slotName[slot] = filename
	return nil
}

func (m *mockDocs) SlotText(slot interfaces.DocumentSlot) string { return m.slotText[slot] }
func (m *mockDocs) SlotName(slot interfaces.DocumentSlot) string { return m.slotName[slot] }
func (m *mockDocs) CombinedContext() string                      { return "" }

func (m *mockDocs) ParsePriceTable(csvText string) (map[string]float64, error) {
	return m.prices, m.parseErr
}

// mockAdvisor is a canned AdvisorService.
type mockAdvisor struct {
	triggerErr error
}

func (m *mockAdvisor) Trigger(_ context.Context, panel string, input map[string]interface{}) (uint64, error) {
	if m.triggerErr != nil {
		return 0, m.triggerErr
	}
	return 7, nil
}

func (m *mockAdvisor) PanelState(panel string) (*models.PanelState, error) {
	if panel != "risk-assessment" {
		return nil, fmt.Errorf("%w: panel %q", models.ErrNotFound, panel)
	}
	return &models.PanelState{Panel: panel, Seq: 7}, nil
}

func (m *mockAdvisor) Panels() []string { return []string{"risk-assessment"} }

func (m *mockAdvisor) Chat(_ context.Context, message string) (*models.ChatMessage, error) {
	return &models.ChatMessage{ID: "msg-1", Role: "model", Text: "reply to " + message}, nil
}

func (m *mockAdvisor) ChatHistory() []models.ChatMessage { return nil }

type mocks struct {
	ledger    *mockLedger
	watchlist *mockWatchlist
	docs      *mockDocs
	advisor   *mockAdvisor
}

func newTestServer(t *testing.T) (*Server, *mocks) {
	t.Helper()
	m := &mocks{
		ledger:    &mockLedger{},
		watchlist: &mockWatchlist{},
		docs:      &mockDocs{},
		advisor:   &mockAdvisor{},
	}
	a := &app.App{
		Config:           common.NewDefaultConfig(),
		Logger:           common.NewSilentLogger(),
		LedgerService:    m.ledger,
		WatchlistService: m.watchlist,
		DocumentService:  m.docs,
		AdvisorService:   m.advisor,
	}
	return NewServer(a), m
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestDashboardEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var data models.DashboardData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, 40000.0, data.CashBalance)
}

func TestAddInvestment(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/investments", models.Investment{
		Symbol: "LIOC.N0000", Quantity: 180, BuyPrice: 110,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "inv-new")
}

func TestAddInvestmentInsufficientFunds(t *testing.T) {
	s, m := newTestServer(t)
	m.ledger.err = models.ErrInsufficientFunds
	rec := doRequest(t, s, http.MethodPost, "/api/investments", models.Investment{
		Symbol: "LIOC.N0000", Quantity: 180, BuyPrice: 110,
	})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestSellInvestment(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/investments/inv-1/sell", map[string]float64{"sale_price": 115})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sold")
}

func TestDeleteInvestmentNotFound(t *testing.T) {
	s, m := newTestServer(t)
	m.ledger.err = models.ErrNotFound
	rec := doRequest(t, s, http.MethodDelete, "/api/investments/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvestmentMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPatch, "/api/investments", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestFundsEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/funds/add", map[string]float64{"amount": 5000})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/funds/withdraw", map[string]float64{"amount": 5000})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWithdrawOverdraft(t *testing.T) {
	s, m := newTestServer(t)
	m.ledger.err = models.ErrInsufficientFunds
	rec := doRequest(t, s, http.MethodPost, "/api/funds/withdraw", map[string]float64{"amount": 999999})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestTransactionsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/transactions", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tx-1")
}

func TestWatchlistEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/watchlist", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "TKYO.N0000")

	rec = doRequest(t, s, http.MethodPost, "/api/watchlist", models.WatchlistItem{Symbol: "LIOC.N0000"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodDelete, "/api/watchlist/w-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDocumentUploadAndStatus(t *testing.T) {
	s, _ := newTestServer(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "summary.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Symbol,Last Trade (Rs.)\nLIOC.N0000,115.50\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/trading-summary", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/documents/trading-summary", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"uploaded":true`)
}

func TestPricesRefreshWithoutUpload(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/prices/refresh", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPricesRefresh(t *testing.T) {
	s, m := newTestServer(t)
	m.docs.slotText = map[interfaces.DocumentSlot]string{interfaces.SlotTradingSummary: "Symbol,Last Trade (Rs.)\nLIOC.N0000,115.50\n"}
	m.docs.slotName = map[interfaces.DocumentSlot]string{interfaces.SlotTradingSummary: "summary.csv"}
	m.docs.prices = map[string]float64{"LIOC.N0000": 115.50}

	rec := doRequest(t, s, http.MethodPost, "/api/prices/refresh", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"updated":1`)
}

func TestAdvisorTriggerAndState(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/advisor/risk-assessment", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"seq":7`)

	rec = doRequest(t, s, http.MethodGet, "/api/advisor/risk-assessment", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/advisor/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdvisorUnavailable(t *testing.T) {
	s, m := newTestServer(t)
	m.advisor.triggerErr = models.ErrModelUnavailable
	rec := doRequest(t, s, http.MethodPost, "/api/advisor/risk-assessment", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdvisorChat(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/advisor/chat", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reply to hi")
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorrelationIDHeader(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc123", rec.Header().Get("X-Correlation-ID"))
}

func TestHistoryEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/portfolio/history", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "2026-08-30"))
}

func TestHistoryChartPNG(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/portfolio/chart", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}
