package stockdata

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/bobmcallan/moverwatch/internal/clients/alphavantage"
	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/models"
)

// periodSpec maps a chart period to its upstream request and display filtering
type periodSpec struct {
	function   string
	outputSize string
	days       int // 0 disables the date cutoff
	maxPoints  int // 0 disables the cap
	layout     string
}

var periodSpecs = map[string]periodSpec{
	models.Period1W: {alphavantage.FunctionTimeSeriesDaily, "compact", 7, 30, "Mon"},
	models.Period1M: {alphavantage.FunctionTimeSeriesDaily, "compact", 30, 30, "Jan 2"},
	models.Period3M: {alphavantage.FunctionTimeSeriesWeekly, "", 90, 60, "Jan 2"},
	models.Period6M: {alphavantage.FunctionTimeSeriesWeekly, "", 180, 120, "Jan 2"},
	models.Period1Y: {alphavantage.FunctionTimeSeriesDaily, "full", 365, 250, "Jan 2006"},
	models.Period5Y: {alphavantage.FunctionTimeSeriesMonthly, "", 1825, 1000, "2006"},
}

// unknown periods fetch the compact daily series and are not filtered
var defaultPeriodSpec = periodSpec{alphavantage.FunctionTimeSeriesDaily, "compact", 0, 0, "2006-01-02"}

func specFor(period string) periodSpec {
	if ps, ok := periodSpecs[period]; ok {
		return ps
	}
	return defaultPeriodSpec
}

// timeSeriesLabels are the block names the upstream uses, checked in order
var timeSeriesLabels = []string{
	"Time Series (Daily)",
	"Time Series (60min)",
	"Weekly Time Series",
	"Monthly Time Series",
}

// FetchChart returns the price history for symbol over period, ascending by date
func (s *Service) FetchChart(ctx context.Context, symbol, period string, force bool) (*models.ChartSeries, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, ErrMissingSymbol
	}

	live := func(ctx context.Context) (*models.ChartSeries, error) {
		return s.liveChart(ctx, symbol, period)
	}
	series, source, err := readThrough(ctx, s, chartKey(symbol, period), common.FreshnessChart, force, live)
	if err != nil {
		return nil, err
	}
	series.Source = source
	return series, nil
}

func (s *Service) liveChart(ctx context.Context, symbol, period string) (*models.ChartSeries, error) {
	ps := specFor(period)

	params := map[string]string{"symbol": symbol}
	if ps.outputSize != "" {
		params["outputsize"] = ps.outputSize
	}

	resp := s.gateway.Request(ctx, ps.function, params)
	if !resp.Success {
		return nil, gatewayError(resp)
	}

	points, err := parseTimeSeries(resp.Data)
	if err != nil {
		return nil, err
	}

	now := s.now()
	points = filterPoints(points, ps, now)
	for i := range points {
		points[i].Label = points[i].Date.Format(ps.layout)
	}

	return &models.ChartSeries{
		Symbol:    symbol,
		Period:    period,
		Points:    points,
		FetchedAt: now,
	}, nil
}

// parseTimeSeries finds the first known series block and returns its bars ascending by date
func parseTimeSeries(data json.RawMessage) ([]models.ChartPoint, error) {
	var blocks map[string]json.RawMessage
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, &FormatError{Op: "chart", Err: ErrInvalidTimeSeries}
	}

	var block json.RawMessage
	for _, label := range timeSeriesLabels {
		if b, ok := blocks[label]; ok {
			block = b
			break
		}
	}
	if block == nil {
		return nil, &FormatError{Op: "chart", Err: ErrNoTimeSeries}
	}

	var bars map[string]map[string]string
	if err := json.Unmarshal(block, &bars); err != nil {
		return nil, &FormatError{Op: "chart", Err: ErrInvalidTimeSeries}
	}

	points := make([]models.ChartPoint, 0, len(bars))
	for date, bar := range bars {
		p, err := parseBar(date, bar)
		if err != nil {
			return nil, &FormatError{Op: "chart", Msg: date, Err: ErrInvalidTimeSeries}
		}
		points = append(points, p)
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points, nil
}

func parseBar(date string, bar map[string]string) (models.ChartPoint, error) {
	var p models.ChartPoint

	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		d, err = time.Parse("2006-01-02 15:04:05", date)
		if err != nil {
			return p, err
		}
	}
	p.Date = d

	fields := []struct {
		key string
		dst *float64
	}{
		{"1. open", &p.Open},
		{"2. high", &p.High},
		{"3. low", &p.Low},
		{"4. close", &p.Close},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(bar[f.key], 64)
		if err != nil {
			return p, err
		}
		*f.dst = v
	}

	vol, err := strconv.ParseFloat(bar["5. volume"], 64)
	if err != nil {
		return p, err
	}
	p.Volume = int64(vol)
	return p, nil
}

// filterPoints drops points older than the period's cutoff, then keeps the last maxPoints
func filterPoints(points []models.ChartPoint, ps periodSpec, now time.Time) []models.ChartPoint {
	if ps.days > 0 {
		cutoff := now.AddDate(0, 0, -ps.days)
		kept := points[:0]
		for _, p := range points {
			if !p.Date.Before(cutoff) {
				kept = append(kept, p)
			}
		}
		points = kept
	}
	if ps.maxPoints > 0 && len(points) > ps.maxPoints {
		points = points[len(points)-ps.maxPoints:]
	}
	return points
}
