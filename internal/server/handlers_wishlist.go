package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bobmcallan/moverwatch/internal/models"
	"github.com/bobmcallan/moverwatch/internal/services/stockdata"
)

type createWishlistRequest struct {
	Name string `json:"name"`
}

type priceUpdatesRequest struct {
	Updates []models.PriceUpdate `json:"updates"`
}

// handleWishlistList handles GET /api/wishlists.
func (s *Server) handleWishlistList(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"wishlists": s.app.WishlistService.List(r.Context()),
	})
}

// handleWishlistCreate handles POST /api/wishlists.
func (s *Server) handleWishlistCreate(w http.ResponseWriter, r *http.Request) {
	var req createWishlistRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	wl, err := s.app.WishlistService.Create(r.Context(), req.Name)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, wl)
}

// handleWishlistClear handles DELETE /api/wishlists.
func (s *Server) handleWishlistClear(w http.ResponseWriter, r *http.Request) {
	if err := s.app.WishlistService.ClearAll(r.Context()); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// handleWishlistDelete handles DELETE /api/wishlists/{id}.
func (s *Server) handleWishlistDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.app.WishlistService.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// handleWishlistAddStock handles POST /api/wishlists/{id}/stocks.
// A missing name is filled from the search catalog, then the names table.
func (s *Server) handleWishlistAddStock(w http.ResponseWriter, r *http.Request) {
	var stock models.StockInput
	if !DecodeJSON(w, r, &stock) {
		return
	}

	if symbol := stock.ResolvedSymbol(); symbol != "" && strings.TrimSpace(stock.Name) == "" {
		if entry, ok := s.app.SearchService.Lookup(symbol); ok {
			stock.Name = entry.Name
		} else {
			stock.Name = stockdata.ResolveName(strings.ToUpper(symbol))
		}
	}

	wl, err := s.app.WishlistService.AddStock(r.Context(), chi.URLParam(r, "id"), stock)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, wl)
}

// handleWishlistRemoveStock handles DELETE /api/wishlists/{id}/stocks/{symbol}.
func (s *Server) handleWishlistRemoveStock(w http.ResponseWriter, r *http.Request) {
	wl, err := s.app.WishlistService.RemoveStock(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "symbol"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, wl)
}

// handleWishlistStocks handles GET /api/wishlists/stocks.
func (s *Server) handleWishlistStocks(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stocks": s.app.WishlistService.AllStocksFlattened(r.Context()),
	})
}

// handleWishlistContaining handles GET /api/wishlists/containing/{symbol}.
func (s *Server) handleWishlistContaining(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":       symbol,
		"wishlist_ids": s.app.WishlistService.FindListsContaining(r.Context(), symbol),
	})
}

// handleWishlistPrices handles POST /api/wishlists/prices.
func (s *Server) handleWishlistPrices(w http.ResponseWriter, r *http.Request) {
	var req priceUpdatesRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	updated, err := s.app.WishlistService.ApplyPriceUpdates(r.Context(), req.Updates)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// handleWishlistRefresh handles POST /api/wishlists/refresh.
func (s *Server) handleWishlistRefresh(w http.ResponseWriter, r *http.Request) {
	updated, err := s.app.StockDataService.RefreshWishlistPrices(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"updated": updated})
}
