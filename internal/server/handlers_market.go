package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bobmcallan/moverwatch/internal/models"
)

// handleMovers handles GET /api/market/movers?force=.
// Never fails: the service falls back to a static dataset.
func (s *Server) handleMovers(w http.ResponseWriter, r *http.Request) {
	result := s.app.StockDataService.FetchMovers(r.Context(), QueryBool(r, "force"))
	WriteJSON(w, http.StatusOK, result)
}

// handleFundamentals handles GET /api/market/stocks/{symbol}/fundamentals.
func (s *Server) handleFundamentals(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	f, err := s.app.StockDataService.FetchFundamentals(r.Context(), symbol, QueryBool(r, "force"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, f)
}

// handleChart handles GET /api/market/stocks/{symbol}/chart?period=.
// period defaults to 1M; values outside ChartPeriods are rejected.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	period := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("period")))
	if period == "" {
		period = models.Period1M
	}
	if !models.IsValidPeriod(period) {
		WriteErrorWithCode(w, http.StatusBadRequest,
			"unsupported period "+period+" (supported: "+strings.Join(models.ChartPeriods, ", ")+")",
			"invalid_request")
		return
	}

	series, err := s.app.StockDataService.FetchChart(r.Context(), symbol, period, QueryBool(r, "force"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, series)
}

// handleQuote handles GET /api/market/stocks/{symbol}/quote.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	q, err := s.app.StockDataService.FetchQuote(r.Context(), symbol, QueryBool(r, "force"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, q)
}
