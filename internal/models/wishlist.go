package models

import "time"

// Wishlist is a named, user-curated list of stocks
type Wishlist struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Stocks    []WishlistStock `json:"stocks"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// WishlistStock is a display snapshot of a stock at the time it was added or last updated
type WishlistStock struct {
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Change      string    `json:"change"`
	AddedAt     time.Time `json:"added_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// FindBySymbol returns the stock and its index, or nil and -1.
// Symbols compare case-sensitively.
func (w *Wishlist) FindBySymbol(symbol string) (*WishlistStock, int) {
	for i := range w.Stocks {
		if w.Stocks[i].Symbol == symbol {
			return &w.Stocks[i], i
		}
	}
	return nil, -1
}

// HasSymbol reports whether the list holds symbol
func (w *Wishlist) HasSymbol(symbol string) bool {
	_, idx := w.FindBySymbol(symbol)
	return idx >= 0
}

// StockInput is a stock as handed in by a caller. Either Symbol or Ticker
// identifies it; Symbol wins when both are set.
type StockInput struct {
	Symbol string `json:"symbol,omitempty"`
	Ticker string `json:"ticker,omitempty"`
	Name   string `json:"name"`
	Price  string `json:"price"`
	Change string `json:"change"`
}

// ResolvedSymbol returns Symbol, falling back to Ticker
func (s StockInput) ResolvedSymbol() string {
	if s.Symbol != "" {
		return s.Symbol
	}
	return s.Ticker
}

// PriceUpdate carries a fresh price/change for a symbol across all wishlists
type PriceUpdate struct {
	Symbol string `json:"symbol,omitempty"`
	Ticker string `json:"ticker,omitempty"`
	Price  string `json:"price"`
	Change string `json:"change"`
}

// ResolvedSymbol returns Symbol, falling back to Ticker
func (u PriceUpdate) ResolvedSymbol() string {
	if u.Symbol != "" {
		return u.Symbol
	}
	return u.Ticker
}

// FlattenedStock is a wishlist stock annotated with its owning list
type FlattenedStock struct {
	WishlistStock
	WishlistID   string `json:"wishlist_id"`
	WishlistName string `json:"wishlist_name"`
}
