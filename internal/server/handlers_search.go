package server

import (
	"net/http"

	"github.com/bobmcallan/moverwatch/internal/models"
)

type searchResponse struct {
	Query   string                `json:"query"`
	Results []models.SearchResult `json:"results"`
}

// handleSearch handles GET /api/search?q=.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	WriteJSON(w, http.StatusOK, searchResponse{
		Query:   q,
		Results: s.app.SearchService.Search(r.Context(), q),
	})
}

// handleSuggest handles GET /api/search/suggest?q=.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	WriteJSON(w, http.StatusOK, searchResponse{
		Query:   q,
		Results: s.app.SearchService.Suggest(r.Context(), q),
	})
}
