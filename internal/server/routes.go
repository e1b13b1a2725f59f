package server

import (
	"net/http"
	"strings"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)

	// Dashboard and history
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/portfolio/history", s.handleHistory)
	mux.HandleFunc("/api/portfolio/chart", s.handleHistoryChart)
	mux.HandleFunc("/api/portfolio/sectors", s.handleSectorChart)

	// Investments
	mux.HandleFunc("/api/investments/", s.routeInvestments)
	mux.HandleFunc("/api/investments", s.handleInvestments)

	// Cash
	mux.HandleFunc("/api/funds/add", s.handleAddFunds)
	mux.HandleFunc("/api/funds/withdraw", s.handleWithdrawFunds)
	mux.HandleFunc("/api/transactions", s.handleTransactions)

	// Dividends
	mux.HandleFunc("/api/dividends/", s.routeDividends)
	mux.HandleFunc("/api/dividends", s.handleDividends)

	// Watchlist
	mux.HandleFunc("/api/watchlist/", s.routeWatchlist)
	mux.HandleFunc("/api/watchlist", s.handleWatchlist)

	// Documents and prices
	mux.HandleFunc("/api/documents/", s.routeDocuments)
	mux.HandleFunc("/api/prices/refresh", s.handlePricesRefresh)

	// Advisor
	mux.HandleFunc("/api/advisor/chat", s.handleAdvisorChat)
	mux.HandleFunc("/api/advisor/chat/history", s.handleAdvisorChatHistory)
	mux.HandleFunc("/api/advisor/", s.routeAdvisor)
	mux.HandleFunc("/api/advisor", s.handleAdvisorPanels)
}

// routeInvestments dispatches /api/investments/{id} and /api/investments/{id}/sell.
func (s *Server) routeInvestments(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/investments/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "investment id is required in path")
		return
	}

	if strings.HasSuffix(path, "/sell") {
		s.handleInvestmentSell(w, r, strings.TrimSuffix(path, "/sell"))
		return
	}
	if strings.Contains(path, "/") {
		WriteError(w, http.StatusNotFound, "Unknown investment route")
		return
	}
	s.handleInvestmentByID(w, r, path)
}

// routeDividends dispatches /api/dividends/{id}.
func (s *Server) routeDividends(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/dividends/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "dividend id is required in path")
		return
	}
	s.handleDividendByID(w, r, id)
}

// routeWatchlist dispatches /api/watchlist/{id}.
func (s *Server) routeWatchlist(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/watchlist/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "watchlist id is required in path")
		return
	}
	s.handleWatchlistByID(w, r, id)
}

// routeDocuments dispatches /api/documents/{slot}.
func (s *Server) routeDocuments(w http.ResponseWriter, r *http.Request) {
	slot := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	if slot == "" || strings.Contains(slot, "/") {
		WriteError(w, http.StatusBadRequest, "document slot is required in path")
		return
	}
	s.handleDocumentSlot(w, r, slot)
}

// routeAdvisor dispatches /api/advisor/{panel}.
func (s *Server) routeAdvisor(w http.ResponseWriter, r *http.Request) {
	panel := strings.TrimPrefix(r.URL.Path, "/api/advisor/")
	if panel == "" || strings.Contains(panel, "/") {
		WriteError(w, http.StatusBadRequest, "panel name is required in path")
		return
	}
	s.handleAdvisorPanel(w, r, panel)
}
