package stockdata

import (
	"context"
	"time"

	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/models"
)

// RefreshWishlistPrices fetches a quote for every distinct wishlist symbol that
// was not refreshed within the quote TTL and applies the prices to all lists.
// Symbols whose quote cannot be fetched are skipped. Returns stocks updated.
func (s *Service) RefreshWishlistPrices(ctx context.Context) (int, error) {
	if s.wishlists == nil {
		return 0, nil
	}
	start := time.Now()

	// a symbol is due when any of its occurrences is older than the quote TTL
	due := make(map[string]bool)
	var order []string
	for _, st := range s.wishlists.AllStocksFlattened(ctx) {
		if _, seen := due[st.Symbol]; !seen {
			order = append(order, st.Symbol)
			due[st.Symbol] = false
		}
		if !common.IsFresh(st.LastUpdated, common.FreshnessQuote) {
			due[st.Symbol] = true
		}
	}

	var updates []models.PriceUpdate
	for _, symbol := range order {
		if !due[symbol] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		q, err := s.FetchQuote(ctx, symbol, false)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Price refresh: quote unavailable")
			continue
		}
		updates = append(updates, models.PriceUpdate{
			Symbol: symbol,
			Price:  q.Price,
			Change: q.ChangePercent,
		})
	}

	if len(updates) == 0 {
		return 0, nil
	}

	n, err := s.wishlists.ApplyPriceUpdates(ctx, updates)
	if err != nil {
		return 0, err
	}

	s.logger.Info().
		Int("symbols", len(updates)).
		Int("stocks", n).
		Dur("elapsed", time.Since(start)).
		Msg("Price refresh: complete")
	return n, nil
}
