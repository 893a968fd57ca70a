package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bobmcallan/moverwatch/internal/common"
)

// registerRoutes sets up all REST API routes on the router.
func (s *Server) registerRoutes() {
	r := s.router

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		// System
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)

		// Market data
		r.Get("/market/movers", s.handleMovers)
		r.Route("/market/stocks/{symbol}", func(r chi.Router) {
			r.Get("/fundamentals", s.handleFundamentals)
			r.Get("/chart", s.handleChart)
			r.Get("/quote", s.handleQuote)
		})

		// Search
		r.Get("/search", s.handleSearch)
		r.Get("/search/suggest", s.handleSuggest)

		// Wishlists
		r.Route("/wishlists", func(r chi.Router) {
			r.Get("/", s.handleWishlistList)
			r.Post("/", s.handleWishlistCreate)
			r.Delete("/", s.handleWishlistClear)
			r.Get("/stocks", s.handleWishlistStocks)
			r.Get("/containing/{symbol}", s.handleWishlistContaining)
			r.Post("/prices", s.handleWishlistPrices)
			r.Post("/refresh", s.handleWishlistRefresh)
			r.Delete("/{id}", s.handleWishlistDelete)
			r.Post("/{id}/stocks", s.handleWishlistAddStock)
			r.Delete("/{id}/stocks/{symbol}", s.handleWishlistRemoveStock)
		})

		// Cache
		r.Get("/cache", s.handleCacheStats)
		r.Delete("/cache", s.handleCacheClear)
		r.Post("/cache/expired", s.handleCacheClearExpired)
	})
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}
