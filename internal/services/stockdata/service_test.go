package stockdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/moverwatch/internal/cache"
	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/models"
	"github.com/bobmcallan/moverwatch/internal/storage/memory"
)

var testNow = time.Date(2024, 3, 15, 16, 0, 0, 0, time.UTC)

// fakeGateway returns canned responses per function and records calls
type fakeGateway struct {
	mu        sync.Mutex
	responses map[string]*models.GatewayResponse
	calls     []call
}

type call struct {
	function string
	params   map[string]string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{responses: make(map[string]*models.GatewayResponse)}
}

func (g *fakeGateway) Request(_ context.Context, function string, params map[string]string) *models.GatewayResponse {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call{function: function, params: params})
	if resp, ok := g.responses[function]; ok {
		return resp
	}
	return &models.GatewayResponse{Kind: models.ErrorKindTransport, Error: "connection refused"}
}

func (g *fakeGateway) respond(function string, body any) {
	data, _ := json.Marshal(body)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.responses[function] = &models.GatewayResponse{Success: true, Data: data, Status: 200}
}

func (g *fakeGateway) fail(function string, kind models.ErrorKind, msg string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.responses[function] = &models.GatewayResponse{Kind: kind, Error: msg}
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *fakeGateway) lastCall() call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[len(g.calls)-1]
}

type fixture struct {
	svc     *Service
	gateway *fakeGateway
	cache   *cache.Cache
	store   *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gw := newFakeGateway()
	store := memory.NewStore()
	c := cache.New(store, common.NewSilentLogger())
	svc := NewService(gw, c, nil, common.NewSilentLogger())
	svc.now = func() time.Time { return testNow }
	return &fixture{svc: svc, gateway: gw, cache: c, store: store}
}

// expire backdates a cached entry so that it is past its TTL
func (f *fixture) expire(t *testing.T, key string) {
	t.Helper()
	ctx := context.Background()
	raw, found, err := f.store.Get(ctx, cache.KeyPrefix+key)
	require.NoError(t, err)
	require.True(t, found, "entry %s cached", key)

	var entry models.CacheEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entry))
	entry.CreatedAt = time.Now().Add(-2 * time.Hour)
	entry.ExpiresAt = time.Now().Add(-time.Hour)
	data, err := json.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, cache.KeyPrefix+key, string(data)))
}

func moversBody() map[string]any {
	return map[string]any{
		"metadata":     "Top gainers, losers, and most actively traded US tickers",
		"last_updated": "2024-03-15 16:15:59 US/Eastern",
		"top_gainers": []map[string]string{
			{"ticker": "NVDA", "price": "875.28", "change_amount": "18.4", "change_percentage": "2.1476%", "volume": "45678901"},
			{"ticker": "ZZXQ", "price": "1.5", "change_amount": "0.75", "change_percentage": "100.0%", "volume": "1200"},
		},
		"top_losers": []map[string]string{
			{"ticker": "INTC", "price": "42.10", "change_amount": "-1.234", "change_percentage": "-2.85%", "volume": "30000000"},
		},
		"most_actively_traded": []map[string]string{
			{"ticker": "TSLA", "price": "248.75", "change_amount": "7.71", "change_percentage": "3.2%", "volume": "98765432"},
		},
	}
}

func TestFetchMovers_Live(t *testing.T) {
	f := newFixture(t)
	f.gateway.respond("TOP_GAINERS_LOSERS", moversBody())

	res := f.svc.FetchMovers(context.Background(), false)

	assert.Equal(t, models.SourceLive, res.Source)
	require.Len(t, res.Stocks, 2)
	assert.Equal(t, models.StockQuote{
		ID: 1, Ticker: "NVDA", Name: "NVIDIA Corporation", Price: "$875.28",
		Change: "2.1476%", ChangeAmount: "$18.40", Volume: "45678901",
	}, res.Stocks[0])
	assert.Equal(t, 2, res.Stocks[1].ID)
	assert.Equal(t, "ZZXQ Corp.", res.Stocks[1].Name)
	assert.Equal(t, "$1.50", res.Stocks[1].Price)

	require.Len(t, res.Losers, 1)
	assert.Equal(t, "-$1.23", res.Losers[0].ChangeAmount)
	require.Len(t, res.MostActive, 1)
	assert.Equal(t, "2024-03-15 16:15:59 US/Eastern", res.LastUpdated)
}

func TestFetchMovers_CacheHitSkipsGateway(t *testing.T) {
	f := newFixture(t)
	f.gateway.respond("TOP_GAINERS_LOSERS", moversBody())
	ctx := context.Background()

	f.svc.FetchMovers(ctx, false)
	res := f.svc.FetchMovers(ctx, false)

	assert.Equal(t, models.SourceCache, res.Source)
	assert.Equal(t, 1, f.gateway.callCount())
	assert.Equal(t, "NVDA", res.Stocks[0].Ticker)
}

func TestFetchMovers_ForceBypassesCache(t *testing.T) {
	f := newFixture(t)
	f.gateway.respond("TOP_GAINERS_LOSERS", moversBody())
	ctx := context.Background()

	f.svc.FetchMovers(ctx, false)
	res := f.svc.FetchMovers(ctx, true)

	assert.Equal(t, models.SourceLive, res.Source)
	assert.Equal(t, 2, f.gateway.callCount())
}

func TestFetchMovers_FallbackChain(t *testing.T) {
	f := newFixture(t)
	f.gateway.fail("TOP_GAINERS_LOSERS", models.ErrorKindTransport, "network unreachable")

	res := f.svc.FetchMovers(context.Background(), false)

	assert.Equal(t, models.SourceFallback, res.Source)
	require.Len(t, res.Stocks, 4)
	var tickers []string
	for _, s := range res.Stocks {
		tickers = append(tickers, s.Ticker)
	}
	assert.Equal(t, []string{"AAPL", "GOOGL", "MSFT", "TSLA"}, tickers)
}

func TestFetchMovers_RateLimitServesStaleCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.respond("TOP_GAINERS_LOSERS", moversBody())
	f.svc.FetchMovers(ctx, false)

	f.gateway.fail("TOP_GAINERS_LOSERS", models.ErrorKindRateLimit, "API rate limit reached: slow down")
	res := f.svc.FetchMovers(ctx, true)

	assert.Equal(t, models.SourceStaleCache, res.Source)
	assert.Equal(t, "NVDA", res.Stocks[0].Ticker)
}

func TestFetchMovers_ExpiredCacheServedWhenUpstreamFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.respond("TOP_GAINERS_LOSERS", moversBody())
	f.svc.FetchMovers(ctx, false)
	f.expire(t, keyMovers)

	f.gateway.fail("TOP_GAINERS_LOSERS", models.ErrorKindTransport, "connection refused")
	res := f.svc.FetchMovers(ctx, false)

	assert.Equal(t, models.SourceStaleCache, res.Source)
	assert.Equal(t, "NVDA", res.Stocks[0].Ticker)
	assert.Equal(t, 2, f.gateway.callCount(), "expired entry triggers a live fetch")

	_, found, err := f.store.Get(ctx, cache.KeyPrefix+keyMovers)
	require.NoError(t, err)
	assert.True(t, found, "expired entry kept for the next outage")
}

func TestFetchMovers_ExpiredCacheReplacedByLive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.respond("TOP_GAINERS_LOSERS", moversBody())
	f.svc.FetchMovers(ctx, false)
	f.expire(t, keyMovers)

	res := f.svc.FetchMovers(ctx, false)
	assert.Equal(t, models.SourceLive, res.Source)

	again := f.svc.FetchMovers(ctx, false)
	assert.Equal(t, models.SourceCache, again.Source)
	assert.Equal(t, 2, f.gateway.callCount())
}

func TestFetchMovers_ReshapeErrorFallsBack(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"missing top_gainers", map[string]any{"metadata": "x"}},
		{"bad price", map[string]any{"top_gainers": []map[string]string{{"ticker": "X", "price": "n/a", "change_amount": "1"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.gateway.respond("TOP_GAINERS_LOSERS", tt.body)

			res := f.svc.FetchMovers(context.Background(), false)
			assert.Equal(t, models.SourceFallback, res.Source)
		})
	}
}

func TestReshapeMovers_Errors(t *testing.T) {
	now := func() time.Time { return testNow }

	_, err := reshapeMovers(json.RawMessage(`{"metadata":"x"}`), now)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "movers", fe.Op)

	res, err := reshapeMovers(json.RawMessage(`{"top_gainers":[]}`), now)
	require.NoError(t, err)
	assert.Empty(t, res.Stocks)
}

// dailySeries builds a "Time Series (Daily)" payload for n consecutive days ending at end
func dailySeries(end time.Time, n int) map[string]any {
	bars := make(map[string]map[string]string, n)
	for i := 0; i < n; i++ {
		d := end.AddDate(0, 0, -i)
		base := 100.0 + float64(i)
		bars[d.Format("2006-01-02")] = map[string]string{
			"1. open":   fmt.Sprintf("%.4f", base),
			"2. high":   fmt.Sprintf("%.4f", base+2.5),
			"3. low":    fmt.Sprintf("%.4f", base-1.25),
			"4. close":  fmt.Sprintf("%.4f", base+1.1),
			"5. volume": fmt.Sprintf("%d", 1000000+i),
		}
	}
	return map[string]any{
		"Meta Data":           map[string]string{"2. Symbol": "AAPL"},
		"Time Series (Daily)": bars,
	}
}

func TestFetchChart_TenDayReshape(t *testing.T) {
	f := newFixture(t)
	end := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	f.gateway.respond("TIME_SERIES_DAILY", dailySeries(end, 10))

	series, err := f.svc.FetchChart(context.Background(), "aapl", models.Period1M, false)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", series.Symbol)
	assert.Equal(t, models.SourceLive, series.Source)
	require.Len(t, series.Points, 10)
	for i := 1; i < len(series.Points); i++ {
		assert.True(t, series.Points[i-1].Date.Before(series.Points[i].Date), "ascending by date")
	}

	first := series.Points[0] // oldest bar, i = 9
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, 109.0, first.Open)
	assert.Equal(t, 111.5, first.High)
	assert.Equal(t, 107.75, first.Low)
	assert.Equal(t, 110.1, first.Close)
	assert.Equal(t, int64(1000009), first.Volume)
	assert.Equal(t, "Mar 5", first.Label)

	c := f.gateway.lastCall()
	assert.Equal(t, "AAPL", c.params["symbol"])
	assert.Equal(t, "compact", c.params["outputsize"])
}

func TestFetchChart_PeriodRouting(t *testing.T) {
	tests := []struct {
		period     string
		function   string
		outputSize string
	}{
		{models.Period1W, "TIME_SERIES_DAILY", "compact"},
		{models.Period1M, "TIME_SERIES_DAILY", "compact"},
		{models.Period3M, "TIME_SERIES_WEEKLY", ""},
		{models.Period6M, "TIME_SERIES_WEEKLY", ""},
		{models.Period1Y, "TIME_SERIES_DAILY", "full"},
		{models.Period5Y, "TIME_SERIES_MONTHLY", ""},
		{"2D", "TIME_SERIES_DAILY", "compact"},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			f := newFixture(t)
			f.svc.FetchChart(context.Background(), "MSFT", tt.period, false)

			c := f.gateway.lastCall()
			assert.Equal(t, tt.function, c.function)
			assert.Equal(t, tt.outputSize, c.params["outputsize"])
		})
	}
}

func TestFetchChart_CutoffAndCap(t *testing.T) {
	f := newFixture(t)
	end := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	f.gateway.respond("TIME_SERIES_DAILY", dailySeries(end, 60))

	week, err := f.svc.FetchChart(context.Background(), "AAPL", models.Period1W, false)
	require.NoError(t, err)
	// now is Mar 15 16:00, cutoff Mar 8 16:00: Mar 9..15 remain
	assert.Len(t, week.Points, 7)
	assert.Equal(t, "Fri", week.Points[len(week.Points)-1].Label)

	month, err := f.svc.FetchChart(context.Background(), "AAPL", models.Period1M, false)
	require.NoError(t, err)
	assert.Len(t, month.Points, 30)
}

func TestFetchChart_UnknownPeriodUnfiltered(t *testing.T) {
	f := newFixture(t)
	end := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	f.gateway.respond("TIME_SERIES_DAILY", dailySeries(end, 100))

	series, err := f.svc.FetchChart(context.Background(), "AAPL", "MAX", false)
	require.NoError(t, err)
	assert.Len(t, series.Points, 100)
	assert.Equal(t, "2023-01-01", series.Points[99].Label)
}

func TestFetchChart_FormatErrors(t *testing.T) {
	tests := []struct {
		name string
		body any
		want error
	}{
		{"no series block", map[string]any{"Meta Data": map[string]string{}}, ErrNoTimeSeries},
		{"block not an object", map[string]any{"Time Series (Daily)": "oops"}, ErrInvalidTimeSeries},
		{"bad number", map[string]any{"Time Series (Daily)": map[string]any{
			"2024-03-14": map[string]string{"1. open": "abc", "2. high": "1", "3. low": "1", "4. close": "1", "5. volume": "1"},
		}}, ErrInvalidTimeSeries},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.gateway.respond("TIME_SERIES_DAILY", tt.body)

			_, err := f.svc.FetchChart(context.Background(), "AAPL", models.Period1M, false)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var fe *FormatError
			assert.ErrorAs(t, err, &fe)
		})
	}
}

func TestFetchChart_WeeklyLabel(t *testing.T) {
	f := newFixture(t)
	f.gateway.respond("TIME_SERIES_WEEKLY", map[string]any{
		"Weekly Time Series": map[string]any{
			"2024-03-08": map[string]string{"1. open": "1", "2. high": "2", "3. low": "0.5", "4. close": "1.5", "5. volume": "10"},
		},
	})

	series, err := f.svc.FetchChart(context.Background(), "AAPL", models.Period3M, false)
	require.NoError(t, err)
	require.Len(t, series.Points, 1)
	assert.Equal(t, "Mar 8", series.Points[0].Label)
}

func TestFetchChart_GatewayFailureWithoutCache(t *testing.T) {
	f := newFixture(t)
	f.gateway.fail("TIME_SERIES_DAILY", models.ErrorKindTimeout, "request timed out after 10s")

	_, err := f.svc.FetchChart(context.Background(), "AAPL", models.Period1M, false)
	var ge *GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, models.ErrorKindTimeout, ge.Kind)
}

func TestFetchChart_StaleCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.respond("TIME_SERIES_DAILY", dailySeries(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), 5))
	_, err := f.svc.FetchChart(ctx, "AAPL", models.Period1M, false)
	require.NoError(t, err)

	f.gateway.fail("TIME_SERIES_DAILY", models.ErrorKindStatus, "HTTP 500: Internal Server Error")
	series, err := f.svc.FetchChart(ctx, "AAPL", models.Period1M, true)
	require.NoError(t, err)
	assert.Equal(t, models.SourceStaleCache, series.Source)
	assert.Len(t, series.Points, 5)
}

func overviewBody() map[string]string {
	return map[string]string{
		"Symbol":               "IBM",
		"Name":                 "International Business Machines",
		"Exchange":             "NYSE",
		"Currency":             "USD",
		"Sector":               "TECHNOLOGY",
		"MarketCapitalization": "175000000000",
		"PERatio":              "22.5",
		"52WeekHigh":           "199.18",
		"50DayMovingAverage":   "185.1",
		"Beta":                 "0.72",
	}
}

func TestFetchFundamentals(t *testing.T) {
	f := newFixture(t)
	f.gateway.respond("OVERVIEW", overviewBody())

	got, err := f.svc.FetchFundamentals(context.Background(), " ibm ", false)
	require.NoError(t, err)
	assert.Equal(t, "IBM", got.Symbol)
	assert.Equal(t, "175000000000", got.MarketCap)
	assert.Equal(t, "22.5", got.PERatio)
	assert.Equal(t, "199.18", got.Week52High)
	assert.Equal(t, "185.1", got.MovingAverage50)
	assert.Equal(t, models.SourceLive, got.Source)
	assert.Equal(t, testNow, got.FetchedAt)

	again, err := f.svc.FetchFundamentals(context.Background(), "IBM", false)
	require.NoError(t, err)
	assert.Equal(t, models.SourceCache, again.Source)
	assert.Equal(t, 1, f.gateway.callCount())
}

func TestFetchFundamentals_ExpiredCacheServedWhenUpstreamFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.respond("OVERVIEW", overviewBody())
	_, err := f.svc.FetchFundamentals(ctx, "IBM", false)
	require.NoError(t, err)
	f.expire(t, fundamentalsKey("IBM"))

	f.gateway.fail("OVERVIEW", models.ErrorKindTransport, "down")
	got, err := f.svc.FetchFundamentals(ctx, "IBM", false)
	require.NoError(t, err)
	assert.Equal(t, models.SourceStaleCache, got.Source)
	assert.Equal(t, "International Business Machines", got.Name)
}

func TestFetchFundamentals_EmptyOverview(t *testing.T) {
	f := newFixture(t)
	f.gateway.respond("OVERVIEW", map[string]string{})

	_, err := f.svc.FetchFundamentals(context.Background(), "NOPE", false)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "fundamentals", fe.Op)
}

func TestFetchFundamentals_MissingSymbol(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.FetchFundamentals(context.Background(), "  ", false)
	assert.ErrorIs(t, err, ErrMissingSymbol)
	assert.Equal(t, 0, f.gateway.callCount())
}

func quoteBody(symbol, price, change, pct string) map[string]any {
	return map[string]any{"Global Quote": map[string]string{
		"01. symbol":             symbol,
		"05. price":              price,
		"07. latest trading day": "2024-03-15",
		"09. change":             change,
		"10. change percent":     pct,
	}}
}

func TestFetchQuote(t *testing.T) {
	f := newFixture(t)
	f.gateway.respond("GLOBAL_QUOTE", quoteBody("AAPL", "186.2000", "-1.2000", "-0.6400%"))

	q, err := f.svc.FetchQuote(context.Background(), "AAPL", false)
	require.NoError(t, err)
	assert.Equal(t, "$186.20", q.Price)
	assert.Equal(t, "-$1.20", q.Change)
	assert.Equal(t, "-0.64%", q.ChangePercent)
	assert.Equal(t, "2024-03-15", q.LatestTradingDay)
}

func TestFetchQuote_UnknownSymbol(t *testing.T) {
	f := newFixture(t)
	f.gateway.respond("GLOBAL_QUOTE", map[string]any{"Global Quote": map[string]string{}})

	_, err := f.svc.FetchQuote(context.Background(), "ZZZZ", false)
	var fe *FormatError
	assert.ErrorAs(t, err, &fe)
}

// panickingGateway simulates a reshape-time crash deep in the live path
type panickingGateway struct{}

func (panickingGateway) Request(context.Context, string, map[string]string) *models.GatewayResponse {
	panic("boom")
}

func TestFetchMovers_PanicFallsBack(t *testing.T) {
	c := cache.New(memory.NewStore(), common.NewSilentLogger())
	svc := NewService(panickingGateway{}, c, nil, common.NewSilentLogger())

	var res *models.MoversResult
	assert.NotPanics(t, func() {
		res = svc.FetchMovers(context.Background(), false)
	})
	assert.Equal(t, models.SourceFallback, res.Source)
}

func TestGatewayError_Message(t *testing.T) {
	err := error(&GatewayError{Kind: models.ErrorKindStatus, Status: 503, Message: "HTTP 503: Service Unavailable"})
	assert.Contains(t, err.Error(), "status 503")
	var ge *GatewayError
	assert.True(t, errors.As(err, &ge))
}

func TestResolveName(t *testing.T) {
	assert.Equal(t, "Apple Inc.", ResolveName("AAPL"))
	assert.Equal(t, "QWER Corp.", ResolveName("QWER"))
}
