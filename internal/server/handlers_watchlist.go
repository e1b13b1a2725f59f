package server

import (
	"net/http"

	"github.com/lakmalw/cense/internal/models"
)

// handleWatchlist handles GET and POST /api/watchlist.
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.app.WatchlistService.GetWatchlist(r.Context())
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, items)
	case http.MethodPost:
		var item models.WatchlistItem
		if !DecodeJSON(w, r, &item) {
			return
		}
		created, err := s.app.WatchlistService.AddItem(r.Context(), item)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, created)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleWatchlistByID handles PUT and DELETE /api/watchlist/{id}.
func (s *Server) handleWatchlistByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPut:
		var item models.WatchlistItem
		if !DecodeJSON(w, r, &item) {
			return
		}
		item.ID = id
		updated, err := s.app.WatchlistService.UpdateItem(r.Context(), item)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := s.app.WatchlistService.RemoveItem(r.Context(), id); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})
	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}
