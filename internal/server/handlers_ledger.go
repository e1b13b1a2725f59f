package server

import (
	"context"
	"net/http"

	"github.com/lakmalw/cense/internal/interfaces"
	"github.com/lakmalw/cense/internal/models"
	"github.com/lakmalw/cense/internal/services/ledger"
)

// handleDashboard handles GET /api/dashboard.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	data, err := s.app.LedgerService.Dashboard(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, data)
}

// handleHistory handles GET /api/portfolio/history.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	history, err := s.app.LedgerService.GetHistory(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, history)
}

// handleHistoryChart handles GET /api/portfolio/chart, returning a PNG.
func (s *Server) handleHistoryChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	history, err := s.app.LedgerService.GetHistory(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	png, err := ledger.RenderHistoryChart(history)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleSectorChart handles GET /api/portfolio/sectors, returning a PNG.
func (s *Server) handleSectorChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	investments, err := s.app.LedgerService.GetInvestments(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	png, err := ledger.RenderSectorChart(investments)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleInvestments handles GET and POST /api/investments.
func (s *Server) handleInvestments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		investments, err := s.app.LedgerService.GetInvestments(r.Context())
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, investments)
	case http.MethodPost:
		var inv models.Investment
		if !DecodeJSON(w, r, &inv) {
			return
		}
		created, err := s.app.LedgerService.AddInvestment(r.Context(), inv)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, created)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleInvestmentByID handles PUT and DELETE /api/investments/{id}.
func (s *Server) handleInvestmentByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPut:
		var inv models.Investment
		if !DecodeJSON(w, r, &inv) {
			return
		}
		inv.ID = id
		updated, err := s.app.LedgerService.UpdateInvestment(r.Context(), inv)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := s.app.LedgerService.DeleteInvestment(r.Context(), id); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})
	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}

// handleInvestmentSell handles POST /api/investments/{id}/sell.
func (s *Server) handleInvestmentSell(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		SalePrice float64 `json:"sale_price"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	sold, err := s.app.LedgerService.SellInvestment(r.Context(), id, req.SalePrice)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sold)
}

// handleAddFunds handles POST /api/funds/add.
func (s *Server) handleAddFunds(w http.ResponseWriter, r *http.Request) {
	s.handleFunds(w, r, s.app.LedgerService.AddFunds)
}

// handleWithdrawFunds handles POST /api/funds/withdraw.
func (s *Server) handleWithdrawFunds(w http.ResponseWriter, r *http.Request) {
	s.handleFunds(w, r, s.app.LedgerService.WithdrawFunds)
}

func (s *Server) handleFunds(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, amount float64) error) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Amount float64 `json:"amount"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := op(r.Context(), req.Amount); err != nil {
		WriteServiceError(w, err)
		return
	}
	data, err := s.app.LedgerService.Dashboard(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, data)
}

// handleTransactions handles GET /api/transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	transactions, err := s.app.LedgerService.GetTransactions(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, transactions)
}

// handleDividends handles GET and POST /api/dividends.
func (s *Server) handleDividends(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		dividends, err := s.app.LedgerService.ListDividends(r.Context())
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, dividends)
	case http.MethodPost:
		var div models.LoggedDividend
		if !DecodeJSON(w, r, &div) {
			return
		}
		created, err := s.app.LedgerService.LogDividend(r.Context(), div)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, created)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleDividendByID handles DELETE /api/dividends/{id}.
func (s *Server) handleDividendByID(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	if err := s.app.LedgerService.RemoveDividend(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// handlePricesRefresh handles POST /api/prices/refresh. It parses the
// uploaded trading summary and applies the prices to active holdings.
func (s *Server) handlePricesRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	csvText := s.app.DocumentService.SlotText(interfaces.SlotTradingSummary)
	if csvText == "" {
		WriteError(w, http.StatusBadRequest, "Trading summary CSV not uploaded")
		return
	}

	prices, err := s.app.DocumentService.ParsePriceTable(csvText)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if len(prices) == 0 {
		WriteError(w, http.StatusBadRequest, "No valid stock prices found in the trading summary")
		return
	}

	updated, notFound, err := s.app.LedgerService.RefreshPrices(r.Context(), prices)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{
		"parsed":    len(prices),
		"updated":   updated,
		"not_found": notFound,
	})
}
