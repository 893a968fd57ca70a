// Package models defines data structures for moverwatch
package models

import (
	"time"
)

// DataSource records where a returned payload came from, so callers can tell
// live data from cached or fallback data.
type DataSource string

const (
	SourceLive       DataSource = "live"
	SourceCache      DataSource = "cache"
	SourceStaleCache DataSource = "stale_cache"
	SourceFallback   DataSource = "fallback"
)

// StockQuote is one row of a movers list, formatted for display
type StockQuote struct {
	ID           int    `json:"id"`
	Ticker       string `json:"ticker"`
	Name         string `json:"name"`
	Price        string `json:"price"`         // "$185.50"
	Change       string `json:"change"`        // upstream percentage string, e.g. "3.05%"
	ChangeAmount string `json:"change_amount"` // "$5.50"
	Volume       string `json:"volume"`
}

// MoversResult holds the reshaped movers lists
type MoversResult struct {
	Stocks      []StockQuote `json:"stocks"` // top gainers
	Losers      []StockQuote `json:"losers,omitempty"`
	MostActive  []StockQuote `json:"most_active,omitempty"`
	LastUpdated string       `json:"last_updated,omitempty"`
	Source      DataSource   `json:"source"`
	FetchedAt   time.Time    `json:"fetched_at"`
}

// Chart periods
const (
	Period1W = "1W"
	Period1M = "1M"
	Period3M = "3M"
	Period6M = "6M"
	Period1Y = "1Y"
	Period5Y = "5Y"
)

// ChartPeriods lists the supported chart periods in display order
var ChartPeriods = []string{Period1W, Period1M, Period3M, Period6M, Period1Y, Period5Y}

// IsValidPeriod reports whether p is one of ChartPeriods
func IsValidPeriod(p string) bool {
	for _, c := range ChartPeriods {
		if c == p {
			return true
		}
	}
	return false
}

// ChartPoint is a single OHLCV bar
type ChartPoint struct {
	Date   time.Time `json:"date"`
	Label  string    `json:"label"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// ChartSeries is a price history for one symbol and period, ascending by date
type ChartSeries struct {
	Symbol    string       `json:"symbol"`
	Period    string       `json:"period"`
	Points    []ChartPoint `json:"points"`
	Source    DataSource   `json:"source"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Fundamentals is a projection of the upstream company overview.
// Values are kept as the upstream strings; no computation is applied.
type Fundamentals struct {
	Symbol            string     `json:"symbol"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Exchange          string     `json:"exchange"`
	Currency          string     `json:"currency"`
	Country           string     `json:"country"`
	Sector            string     `json:"sector"`
	Industry          string     `json:"industry"`
	Address           string     `json:"address"`
	MarketCap         string     `json:"market_cap"`
	PERatio           string     `json:"pe_ratio"`
	PEGRatio          string     `json:"peg_ratio"`
	BookValue         string     `json:"book_value"`
	DividendYield     string     `json:"dividend_yield"`
	EPS               string     `json:"eps"`
	RevenuePerShare   string     `json:"revenue_per_share"`
	ProfitMargin      string     `json:"profit_margin"`
	OperatingMargin   string     `json:"operating_margin"`
	ReturnOnAssets    string     `json:"return_on_assets"`
	ReturnOnEquity    string     `json:"return_on_equity"`
	Week52High        string     `json:"week_52_high"`
	Week52Low         string     `json:"week_52_low"`
	MovingAverage50   string     `json:"moving_average_50"`
	MovingAverage200  string     `json:"moving_average_200"`
	SharesOutstanding string     `json:"shares_outstanding"`
	Beta              string     `json:"beta"`
	Source            DataSource `json:"source"`
	FetchedAt         time.Time  `json:"fetched_at"`
}

// QuoteSnapshot is the latest traded price for a symbol
type QuoteSnapshot struct {
	Symbol           string     `json:"symbol"`
	Price            string     `json:"price"`          // "$186.20"
	Change           string     `json:"change"`         // "$1.20"
	ChangePercent    string     `json:"change_percent"` // "0.65%"
	LatestTradingDay string     `json:"latest_trading_day"`
	Source           DataSource `json:"source"`
	FetchedAt        time.Time  `json:"fetched_at"`
}
