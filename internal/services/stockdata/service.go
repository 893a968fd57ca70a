// Package stockdata orchestrates market data reads: cache first, gateway second,
// stale cache and finally a built-in dataset when the upstream is unavailable.
package stockdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/interfaces"
	"github.com/bobmcallan/moverwatch/internal/models"
)

// Cache keys
const (
	keyMovers = "market_movers"
)

func fundamentalsKey(symbol string) string {
	return "fundamentals_" + symbol
}

func chartKey(symbol, period string) string {
	return "chart_" + symbol + "_" + period
}

func quoteKey(symbol string) string {
	return "quote_" + symbol
}

// Compile-time interface check
var _ interfaces.StockDataService = (*Service)(nil)

// Service implements StockDataService
type Service struct {
	gateway   interfaces.MarketDataGateway
	cache     interfaces.Cache
	wishlists interfaces.WishlistService
	logger    *common.Logger
	now       func() time.Time // injectable clock for testing
}

// NewService creates a new stock data service.
// wishlists may be nil, in which case RefreshWishlistPrices is a no-op.
func NewService(gateway interfaces.MarketDataGateway, cache interfaces.Cache, wishlists interfaces.WishlistService, logger *common.Logger) *Service {
	return &Service{
		gateway:   gateway,
		cache:     cache,
		wishlists: wishlists,
		logger:    logger,
		now:       time.Now,
	}
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// readThrough runs the shared freshness policy for one category:
// fresh cache, then live (cached on success), then stale cache.
// The fresh lookup must not evict, or the stale tier has nothing left to serve.
// The returned error is the live failure when no cache tier could serve.
func readThrough[T any](ctx context.Context, s *Service, key string, ttl time.Duration, force bool, live func(context.Context) (*T, error)) (*T, models.DataSource, error) {
	if !force {
		var cached T
		if _, ok := s.cache.Peek(ctx, key, &cached); ok {
			s.logger.Debug().Str("key", key).Msg("Serving from cache")
			return &cached, models.SourceCache, nil
		}
	}

	result, err := safely(func() (*T, error) { return live(ctx) })
	if err == nil {
		s.cache.Set(ctx, key, result, ttl)
		return result, models.SourceLive, nil
	}

	var stale T
	if entry, ok := s.cache.GetStaleOrFresh(ctx, key, &stale); ok {
		s.logger.Warn().
			Err(err).
			Str("key", key).
			Dur("age", entry.Age(s.now())).
			Msg("Live fetch failed, serving stale cache")
		return &stale, models.SourceStaleCache, nil
	}

	s.logger.Warn().Err(err).Str("key", key).Msg("Live fetch failed and no cached copy exists")
	return nil, "", err
}

// safely converts a panic inside reshape code into an error so the fallback tiers still run
func safely[T any](fn func() (*T, error)) (res *T, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &FormatError{Op: "reshape", Msg: fmt.Sprintf("panic: %v", r)}
		}
	}()
	return fn()
}
