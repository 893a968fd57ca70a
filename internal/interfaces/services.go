package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/moverwatch/internal/models"
)

// Cache is a TTL-tagged response cache layered over a KeyValueStore.
// All operations are best-effort: failures are logged and treated as misses.
type Cache interface {
	// Set stores payload under key for ttl
	Set(ctx context.Context, key string, payload any, ttl time.Duration)

	// Get decodes a fresh entry into dest. A stale entry is evicted and reported absent.
	Get(ctx context.Context, key string, dest any) (*models.CacheEntry, bool)

	// Peek decodes a fresh entry into dest. A stale entry is reported absent and kept.
	Peek(ctx context.Context, key string, dest any) (*models.CacheEntry, bool)

	// GetStaleOrFresh decodes any entry into dest regardless of age, without eviction.
	GetStaleOrFresh(ctx context.Context, key string, dest any) (*models.CacheEntry, bool)

	Remove(ctx context.Context, key string)
	ClearAll(ctx context.Context) int
	ClearExpired(ctx context.Context) int
	Stats(ctx context.Context) models.CacheStats
}

// StockDataService orchestrates cache-first, gateway-second reads with stale fallback
type StockDataService interface {
	// FetchMovers returns top gainers (plus losers and most active). It never fails:
	// the last resort is a built-in fallback dataset.
	FetchMovers(ctx context.Context, force bool) *models.MoversResult

	// FetchFundamentals returns the company overview for symbol
	FetchFundamentals(ctx context.Context, symbol string, force bool) (*models.Fundamentals, error)

	// FetchChart returns price history for symbol over period
	FetchChart(ctx context.Context, symbol, period string, force bool) (*models.ChartSeries, error)

	// FetchQuote returns the latest quote for symbol
	FetchQuote(ctx context.Context, symbol string, force bool) (*models.QuoteSnapshot, error)

	// RefreshWishlistPrices fetches quotes for every wishlist symbol and applies them
	RefreshWishlistPrices(ctx context.Context) (int, error)
}

// WishlistService manages persisted wishlists
type WishlistService interface {
	List(ctx context.Context) []models.Wishlist
	Create(ctx context.Context, name string) (*models.Wishlist, error)
	Delete(ctx context.Context, id string) (bool, error)
	AddStock(ctx context.Context, id string, stock models.StockInput) (*models.Wishlist, error)
	RemoveStock(ctx context.Context, id, symbol string) (*models.Wishlist, error)
	FindListsContaining(ctx context.Context, symbol string) []string
	AllStocksFlattened(ctx context.Context) []models.FlattenedStock
	ApplyPriceUpdates(ctx context.Context, updates []models.PriceUpdate) (int, error)
	ClearAll(ctx context.Context) error
}

// SearchService matches queries against the static stock catalog
type SearchService interface {
	Search(ctx context.Context, query string) []models.SearchResult
	Suggest(ctx context.Context, partial string) []models.SearchResult
	Lookup(symbol string) (models.CatalogEntry, bool)
}
