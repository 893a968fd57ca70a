package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/moverwatch/internal/app"
	"github.com/bobmcallan/moverwatch/internal/cache"
	"github.com/bobmcallan/moverwatch/internal/clients/alphavantage"
	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/models"
	"github.com/bobmcallan/moverwatch/internal/services/search"
	"github.com/bobmcallan/moverwatch/internal/services/stockdata"
	"github.com/bobmcallan/moverwatch/internal/services/wishlist"
	"github.com/bobmcallan/moverwatch/internal/storage/memory"
)

// upstream is a canned Alpha Vantage endpoint keyed by the function parameter
type upstream struct {
	mu     sync.Mutex
	bodies map[string]string
	status map[string]int
}

func (u *upstream) set(function string, status int, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.bodies[function] = body
	u.status[function] = status
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fn := r.URL.Query().Get("function")
	body, ok := u.bodies[fn]
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(u.status[fn])
	w.Write([]byte(body))
}

type testEnv struct {
	server   *Server
	handler  http.Handler
	upstream *upstream
	store    *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	up := &upstream{bodies: map[string]string{}, status: map[string]int{}}
	ts := httptest.NewServer(up)
	t.Cleanup(ts.Close)

	logger := common.NewSilentLogger()
	store := memory.NewStore()
	responseCache := cache.New(store, logger)
	gateway := alphavantage.NewClient("test-key",
		alphavantage.WithBaseURL(ts.URL),
		alphavantage.WithRateLimit(0),
		alphavantage.WithTimeout(2*time.Second),
	)
	wishlists := wishlist.NewService(store, logger)

	a := &app.App{
		Config:           common.NewDefaultConfig(),
		Logger:           logger,
		Store:            store,
		Cache:            responseCache,
		Gateway:          gateway,
		StockDataService: stockdata.NewService(gateway, responseCache, wishlists, logger),
		WishlistService:  wishlists,
		SearchService:    search.NewService(responseCache, logger),
		StartupTime:      time.Now(),
	}

	s := NewServer(a)
	return &testEnv{server: s, handler: s.Handler(), upstream: up, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

const moversBody = `{
	"metadata": "Top gainers, losers, and most actively traded US tickers",
	"last_updated": "2024-03-15 16:15:59 US/Eastern",
	"top_gainers": [
		{"ticker": "AAPL", "price": "185.5", "change_amount": "3.9", "change_percentage": "2.15%", "volume": "52345678"},
		{"ticker": "ZZZT", "price": "1.234", "change_amount": "0.5", "change_percentage": "68.1%", "volume": "1000"}
	],
	"top_losers": [],
	"most_actively_traded": []
}`

func TestHealthAndVersion(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rr)["status"])

	rr = env.do(t, http.MethodGet, "/api/version", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, common.GetVersion(), decode[map[string]any](t, rr)["version"])
}

func TestMovers_Live(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.set(alphavantage.FunctionTopGainersLosers, http.StatusOK, moversBody)

	rr := env.do(t, http.MethodGet, "/api/market/movers", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	result := decode[models.MoversResult](t, rr)
	assert.Equal(t, models.SourceLive, result.Source)
	require.Len(t, result.Stocks, 2)
	assert.Equal(t, "Apple Inc.", result.Stocks[0].Name)
	assert.Equal(t, "$185.50", result.Stocks[0].Price)
	assert.Equal(t, "ZZZT Corp.", result.Stocks[1].Name)

	// Second call is served from cache
	rr = env.do(t, http.MethodGet, "/api/market/movers", nil)
	assert.Equal(t, models.SourceCache, decode[models.MoversResult](t, rr).Source)

	// force bypasses the fresh cache
	rr = env.do(t, http.MethodGet, "/api/market/movers?force=true", nil)
	assert.Equal(t, models.SourceLive, decode[models.MoversResult](t, rr).Source)
}

func TestMovers_FallbackWhenRateLimited(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.set(alphavantage.FunctionTopGainersLosers, http.StatusOK,
		`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`)

	rr := env.do(t, http.MethodGet, "/api/market/movers", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	result := decode[models.MoversResult](t, rr)
	assert.Equal(t, models.SourceFallback, result.Source)
	require.Len(t, result.Stocks, 4)
	assert.Equal(t, "AAPL", result.Stocks[0].Ticker)
}

func TestFundamentals(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.set(alphavantage.FunctionOverview, http.StatusOK,
		`{"Symbol": "IBM", "Name": "International Business Machines", "Sector": "TECHNOLOGY", "PERatio": "22.4"}`)

	rr := env.do(t, http.MethodGet, "/api/market/stocks/ibm/fundamentals", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	f := decode[models.Fundamentals](t, rr)
	assert.Equal(t, "IBM", f.Symbol)
	assert.Equal(t, "22.4", f.PERatio)
	assert.Equal(t, models.SourceLive, f.Source)
}

func TestFundamentals_EmptyOverviewIsBadGateway(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.set(alphavantage.FunctionOverview, http.StatusOK, `{}`)

	rr := env.do(t, http.MethodGet, "/api/market/stocks/NOPE/fundamentals", nil)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "bad_upstream_data", decode[ErrorResponse](t, rr).Code)
}

func TestFundamentals_GatewayFailureIsUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.set(alphavantage.FunctionOverview, http.StatusOK, `{"Information": "Please subscribe to a premium plan."}`)

	rr := env.do(t, http.MethodGet, "/api/market/stocks/IBM/fundamentals", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, string(models.ErrorKindRateLimit), decode[ErrorResponse](t, rr).Code)
}

func TestChart(t *testing.T) {
	env := newTestEnv(t)

	today := time.Now().UTC()
	series := map[string]map[string]string{}
	for i := 0; i < 3; i++ {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		series[day] = map[string]string{
			"1. open": "100.0", "2. high": "101.0", "3. low": "99.0", "4. close": "100.5", "5. volume": "1000",
		}
	}
	body, err := json.Marshal(map[string]any{"Time Series (Daily)": series})
	require.NoError(t, err)
	env.upstream.set(alphavantage.FunctionTimeSeriesDaily, http.StatusOK, string(body))

	rr := env.do(t, http.MethodGet, "/api/market/stocks/AAPL/chart?period=1w", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	chart := decode[models.ChartSeries](t, rr)
	assert.Equal(t, "AAPL", chart.Symbol)
	assert.Equal(t, models.Period1W, chart.Period)
	assert.Len(t, chart.Points, 3)
	assert.True(t, chart.Points[0].Date.Before(chart.Points[2].Date))
}

func TestChart_DefaultPeriodAndValidation(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.set(alphavantage.FunctionTimeSeriesDaily, http.StatusOK, `{"Time Series (Daily)": {}}`)

	rr := env.do(t, http.MethodGet, "/api/market/stocks/AAPL/chart?period=2D", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[ErrorResponse](t, rr).Error, "unsupported period")

	// Empty series under the expected label
	rr = env.do(t, http.MethodGet, "/api/market/stocks/AAPL/chart", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.Period1M, decode[models.ChartSeries](t, rr).Period)
}

func TestQuote(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.set(alphavantage.FunctionGlobalQuote, http.StatusOK, `{"Global Quote": {
		"01. symbol": "MSFT", "05. price": "378.9000", "07. latest trading day": "2024-03-15",
		"09. change": "5.4100", "10. change percent": "1.4486%"}}`)

	rr := env.do(t, http.MethodGet, "/api/market/stocks/MSFT/quote", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	q := decode[models.QuoteSnapshot](t, rr)
	assert.Equal(t, "$378.90", q.Price)
	assert.Equal(t, "1.45%", q.ChangePercent)
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/search?q=app", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[searchResponse](t, rr)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "APPN", resp.Results[0].Symbol)
	assert.Equal(t, models.MatchName, resp.Results[2].MatchType)

	rr = env.do(t, http.MethodGet, "/api/search/suggest?q=", nil)
	assert.Len(t, decode[searchResponse](t, rr).Results, 8)
}

func TestWishlistLifecycle(t *testing.T) {
	env := newTestEnv(t)

	// Create
	rr := env.do(t, http.MethodPost, "/api/wishlists", map[string]string{"name": "  Tech  "})
	require.Equal(t, http.StatusCreated, rr.Code)
	wl := decode[models.Wishlist](t, rr)
	assert.Equal(t, "Tech", wl.Name)
	require.NotEmpty(t, wl.ID)

	// Add stock without a name: filled from the catalog
	rr = env.do(t, http.MethodPost, "/api/wishlists/"+wl.ID+"/stocks", models.StockInput{Ticker: "AAPL", Price: "$185.50", Change: "2.15%"})
	require.Equal(t, http.StatusCreated, rr.Code)
	wl = decode[models.Wishlist](t, rr)
	require.Len(t, wl.Stocks, 1)
	assert.Equal(t, "Apple Inc.", wl.Stocks[0].Name)

	// Duplicate
	rr = env.do(t, http.MethodPost, "/api/wishlists/"+wl.ID+"/stocks", models.StockInput{Symbol: "AAPL"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Missing symbol
	rr = env.do(t, http.MethodPost, "/api/wishlists/"+wl.ID+"/stocks", models.StockInput{Name: "Nameless"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Containing and flattened
	rr = env.do(t, http.MethodGet, "/api/wishlists/containing/AAPL", nil)
	assert.Equal(t, []any{wl.ID}, decode[map[string]any](t, rr)["wishlist_ids"])

	rr = env.do(t, http.MethodGet, "/api/wishlists/stocks", nil)
	flat := decode[map[string][]models.FlattenedStock](t, rr)["stocks"]
	require.Len(t, flat, 1)
	assert.Equal(t, "Tech", flat[0].WishlistName)

	// Price updates
	rr = env.do(t, http.MethodPost, "/api/wishlists/prices", priceUpdatesRequest{
		Updates: []models.PriceUpdate{{Symbol: "AAPL", Price: "$190.00", Change: "2.40%"}, {Symbol: "NONE", Price: "$1.00"}},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[map[string]int](t, rr)["updated"])

	rr = env.do(t, http.MethodGet, "/api/wishlists", nil)
	lists := decode[map[string][]models.Wishlist](t, rr)["wishlists"]
	require.Len(t, lists, 1)
	assert.Equal(t, "$190.00", lists[0].Stocks[0].Price)

	// Remove stock
	rr = env.do(t, http.MethodDelete, "/api/wishlists/"+wl.ID+"/stocks/AAPL", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[models.Wishlist](t, rr).Stocks)

	// Delete, twice
	rr = env.do(t, http.MethodDelete, "/api/wishlists/"+wl.ID, nil)
	assert.Equal(t, true, decode[map[string]bool](t, rr)["deleted"])
	rr = env.do(t, http.MethodDelete, "/api/wishlists/"+wl.ID, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/wishlists", nil)
	assert.Empty(t, decode[map[string][]models.Wishlist](t, rr)["wishlists"])
}

func TestWishlist_Errors(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/wishlists", map[string]string{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/wishlists", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[ErrorResponse](t, rr).Error, "Invalid JSON")

	rr = env.do(t, http.MethodPost, "/api/wishlists", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/wishlists/missing/stocks", models.StockInput{Symbol: "AAPL"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, rr).Code)

	rr = env.do(t, http.MethodDelete, "/api/wishlists/missing/stocks/AAPL", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWishlist_ClearAll(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/wishlists", map[string]string{"name": "One"})
	env.do(t, http.MethodPost, "/api/wishlists", map[string]string{"name": "Two"})

	rr := env.do(t, http.MethodDelete, "/api/wishlists", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	_, found, err := env.store.Get(context.Background(), wishlist.CollectionKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWishlist_RefreshPrices(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.set(alphavantage.FunctionGlobalQuote, http.StatusOK, `{"Global Quote": {
		"01. symbol": "NVDA", "05. price": "880.0800", "07. latest trading day": "2024-03-15",
		"09. change": "-12.5000", "10. change percent": "-1.4004%"}}`)

	rr := env.do(t, http.MethodPost, "/api/wishlists", map[string]string{"name": "Chips"})
	wl := decode[models.Wishlist](t, rr)
	env.do(t, http.MethodPost, "/api/wishlists/"+wl.ID+"/stocks", models.StockInput{Symbol: "NVDA", Price: "$1.00"})

	// Freshly added stocks are not due yet
	rr = env.do(t, http.MethodPost, "/api/wishlists/refresh", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[map[string]int](t, rr)["updated"])
}

func TestCacheEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.set(alphavantage.FunctionTopGainersLosers, http.StatusOK, moversBody)
	env.do(t, http.MethodGet, "/api/market/movers", nil)
	env.do(t, http.MethodGet, "/api/search?q=tesla", nil)

	rr := env.do(t, http.MethodGet, "/api/cache", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[models.CacheStats](t, rr)
	assert.Equal(t, 2, stats.TotalItems)
	assert.Equal(t, 2, stats.ValidItems)

	rr = env.do(t, http.MethodPost, "/api/cache/expired", nil)
	assert.Equal(t, 0, decode[map[string]int](t, rr)["removed"])

	rr = env.do(t, http.MethodDelete, "/api/cache", nil)
	assert.Equal(t, 2, decode[map[string]int](t, rr)["removed"])

	rr = env.do(t, http.MethodGet, "/api/cache", nil)
	assert.Equal(t, 0, decode[models.CacheStats](t, rr).TotalItems)
}

func TestRouting_NotFoundAndMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	rr = env.do(t, http.MethodPut, "/api/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "Method not allowed", decode[ErrorResponse](t, rr).Error)
}
