package server

import (
	"net/http"
)

// handleAdvisorPanels handles GET /api/advisor, listing the panel names.
func (s *Server) handleAdvisorPanels(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"panels": s.app.AdvisorService.Panels(),
	})
}

// handleAdvisorPanel handles POST (trigger) and GET (state) on
// /api/advisor/{panel}.
func (s *Server) handleAdvisorPanel(w http.ResponseWriter, r *http.Request, panel string) {
	switch r.Method {
	case http.MethodGet:
		state, err := s.app.AdvisorService.PanelState(panel)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, state)
	case http.MethodPost:
		input := map[string]interface{}{}
		if r.ContentLength > 0 {
			if !DecodeJSON(w, r, &input) {
				return
			}
		}
		seq, err := s.app.AdvisorService.Trigger(r.Context(), panel, input)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusAccepted, map[string]interface{}{
			"panel": panel,
			"seq":   seq,
		})
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleAdvisorChat handles POST /api/advisor/chat.
func (s *Server) handleAdvisorChat(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	reply, err := s.app.AdvisorService.Chat(r.Context(), req.Message)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, reply)
}

// handleAdvisorChatHistory handles GET /api/advisor/chat/history.
func (s *Server) handleAdvisorChatHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.AdvisorService.ChatHistory())
}
