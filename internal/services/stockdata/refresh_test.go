package stockdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/moverwatch/internal/cache"
	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/interfaces"
	"github.com/bobmcallan/moverwatch/internal/models"
	"github.com/bobmcallan/moverwatch/internal/storage/memory"
)

// stubWishlists serves a fixed flattened view and records applied updates
type stubWishlists struct {
	interfaces.WishlistService
	stocks  []models.FlattenedStock
	applied []models.PriceUpdate
}

func (s *stubWishlists) AllStocksFlattened(context.Context) []models.FlattenedStock {
	return s.stocks
}

func (s *stubWishlists) ApplyPriceUpdates(_ context.Context, updates []models.PriceUpdate) (int, error) {
	s.applied = append(s.applied, updates...)
	return len(updates), nil
}

func flat(symbol string, updated time.Time) models.FlattenedStock {
	return models.FlattenedStock{WishlistStock: models.WishlistStock{Symbol: symbol, LastUpdated: updated}}
}

func TestRefreshWishlistPrices(t *testing.T) {
	gw := newFakeGateway()
	gw.respond("GLOBAL_QUOTE", quoteBody("AAPL", "186.2", "1.2", "0.65%"))

	old := time.Now().Add(-time.Hour)
	wl := &stubWishlists{stocks: []models.FlattenedStock{
		flat("AAPL", old),
		flat("AAPL", old),
		flat("MSFT", time.Now()), // refreshed moments ago
	}}

	svc := NewService(gw, cache.New(memory.NewStore(), common.NewSilentLogger()), wl, common.NewSilentLogger())
	n, err := svc.RefreshWishlistPrices(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, 1, gw.callCount(), "one quote per distinct due symbol")
	require.Len(t, wl.applied, 1)
	assert.Equal(t, models.PriceUpdate{Symbol: "AAPL", Price: "$186.20", Change: "0.65%"}, wl.applied[0])
}

func TestRefreshWishlistPrices_SkipsFailedQuotes(t *testing.T) {
	gw := newFakeGateway()
	gw.fail("GLOBAL_QUOTE", models.ErrorKindRateLimit, "API rate limit reached: wait")

	wl := &stubWishlists{stocks: []models.FlattenedStock{flat("AAPL", time.Time{})}}
	svc := NewService(gw, cache.New(memory.NewStore(), common.NewSilentLogger()), wl, common.NewSilentLogger())

	n, err := svc.RefreshWishlistPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, wl.applied)
}

func TestRefreshWishlistPrices_NoWishlistService(t *testing.T) {
	f := newFixture(t)
	n, err := f.svc.RefreshWishlistPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, f.gateway.callCount())
}
