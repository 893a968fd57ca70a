package stockdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/moverwatch/internal/clients/alphavantage"
	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/models"
)

// moversResponse is the TOP_GAINERS_LOSERS payload
type moversResponse struct {
	Metadata           string      `json:"metadata"`
	LastUpdated        string      `json:"last_updated"`
	TopGainers         *[]moverRaw `json:"top_gainers"`
	TopLosers          []moverRaw  `json:"top_losers"`
	MostActivelyTraded []moverRaw  `json:"most_actively_traded"`
}

type moverRaw struct {
	Ticker           string `json:"ticker"`
	Price            string `json:"price"`
	ChangeAmount     string `json:"change_amount"`
	ChangePercentage string `json:"change_percentage"`
	Volume           string `json:"volume"`
}

// fallbackMovers is served when the gateway fails and nothing is cached
var fallbackMovers = []models.StockQuote{
	{ID: 1, Ticker: "AAPL", Name: "Apple Inc.", Price: "$185.50", Change: "2.15%", ChangeAmount: "$3.91", Volume: "52345678"},
	{ID: 2, Ticker: "GOOGL", Name: "Alphabet Inc.", Price: "$142.30", Change: "1.85%", ChangeAmount: "$2.58", Volume: "28765432"},
	{ID: 3, Ticker: "MSFT", Name: "Microsoft Corporation", Price: "$378.90", Change: "1.45%", ChangeAmount: "$5.41", Volume: "31234567"},
	{ID: 4, Ticker: "TSLA", Name: "Tesla, Inc.", Price: "$248.75", Change: "3.20%", ChangeAmount: "$7.71", Volume: "98765432"},
}

// FallbackMovers returns a copy of the built-in movers dataset
func FallbackMovers() []models.StockQuote {
	return append([]models.StockQuote(nil), fallbackMovers...)
}

// FetchMovers returns the movers lists. It never fails: when the gateway and
// both cache tiers are unavailable, the built-in dataset is returned.
func (s *Service) FetchMovers(ctx context.Context, force bool) *models.MoversResult {
	result, source, err := readThrough(ctx, s, keyMovers, common.FreshnessMovers, force, s.liveMovers)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Serving fallback movers dataset")
		return &models.MoversResult{
			Stocks:    FallbackMovers(),
			Source:    models.SourceFallback,
			FetchedAt: s.now(),
		}
	}
	result.Source = source
	return result
}

func (s *Service) liveMovers(ctx context.Context) (*models.MoversResult, error) {
	resp := s.gateway.Request(ctx, alphavantage.FunctionTopGainersLosers, nil)
	if !resp.Success {
		return nil, gatewayError(resp)
	}
	return reshapeMovers(resp.Data, s.now)
}

func reshapeMovers(data json.RawMessage, now func() time.Time) (*models.MoversResult, error) {
	var raw moversResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &FormatError{Op: "movers", Msg: "undecodable response", Err: err}
	}
	if raw.TopGainers == nil {
		return nil, &FormatError{Op: "movers", Msg: "response has no top_gainers"}
	}

	gainers, err := reshapeMoverList(*raw.TopGainers)
	if err != nil {
		return nil, err
	}
	losers, err := reshapeMoverList(raw.TopLosers)
	if err != nil {
		return nil, err
	}
	active, err := reshapeMoverList(raw.MostActivelyTraded)
	if err != nil {
		return nil, err
	}

	return &models.MoversResult{
		Stocks:      gainers,
		Losers:      losers,
		MostActive:  active,
		LastUpdated: raw.LastUpdated,
		FetchedAt:   now(),
	}, nil
}

func reshapeMoverList(items []moverRaw) ([]models.StockQuote, error) {
	out := make([]models.StockQuote, 0, len(items))
	for i, item := range items {
		price, err := formatDollars(item.Price)
		if err != nil {
			return nil, &FormatError{Op: "movers", Msg: fmt.Sprintf("bad price for %s", item.Ticker), Err: err}
		}
		amount, err := formatDollars(item.ChangeAmount)
		if err != nil {
			return nil, &FormatError{Op: "movers", Msg: fmt.Sprintf("bad change amount for %s", item.Ticker), Err: err}
		}
		out = append(out, models.StockQuote{
			ID:           i + 1,
			Ticker:       item.Ticker,
			Name:         ResolveName(item.Ticker),
			Price:        price,
			Change:       item.ChangePercentage,
			ChangeAmount: amount,
			Volume:       item.Volume,
		})
	}
	return out, nil
}

// formatDollars renders a decimal string as "$" plus two decimal places; negatives as "-$1.23"
func formatDollars(v string) (string, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return "", err
	}
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2), nil
	}
	return "$" + d.StringFixed(2), nil
}
