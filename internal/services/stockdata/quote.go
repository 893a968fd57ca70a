package stockdata

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/moverwatch/internal/clients/alphavantage"
	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/models"
)

type globalQuoteResponse struct {
	Quote map[string]string `json:"Global Quote"`
}

// FetchQuote returns the latest traded price for symbol
func (s *Service) FetchQuote(ctx context.Context, symbol string, force bool) (*models.QuoteSnapshot, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, ErrMissingSymbol
	}

	live := func(ctx context.Context) (*models.QuoteSnapshot, error) {
		resp := s.gateway.Request(ctx, alphavantage.FunctionGlobalQuote, map[string]string{"symbol": symbol})
		if !resp.Success {
			return nil, gatewayError(resp)
		}
		q, err := reshapeQuote(resp.Data)
		if err != nil {
			return nil, err
		}
		q.FetchedAt = s.now()
		return q, nil
	}

	q, source, err := readThrough(ctx, s, quoteKey(symbol), common.FreshnessQuote, force, live)
	if err != nil {
		return nil, err
	}
	q.Source = source
	return q, nil
}

func reshapeQuote(data json.RawMessage) (*models.QuoteSnapshot, error) {
	var raw globalQuoteResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &FormatError{Op: "quote", Msg: "undecodable response", Err: err}
	}
	// unknown symbols come back as an empty "Global Quote" object
	if raw.Quote["01. symbol"] == "" {
		return nil, &FormatError{Op: "quote", Msg: "no quote data for symbol"}
	}

	price, err := formatDollars(raw.Quote["05. price"])
	if err != nil {
		return nil, &FormatError{Op: "quote", Msg: "bad price", Err: err}
	}
	change, err := formatDollars(raw.Quote["09. change"])
	if err != nil {
		return nil, &FormatError{Op: "quote", Msg: "bad change", Err: err}
	}
	pct, err := decimal.NewFromString(strings.TrimSuffix(raw.Quote["10. change percent"], "%"))
	if err != nil {
		return nil, &FormatError{Op: "quote", Msg: "bad change percent", Err: err}
	}

	return &models.QuoteSnapshot{
		Symbol:           raw.Quote["01. symbol"],
		Price:            price,
		Change:           change,
		ChangePercent:    pct.StringFixed(2) + "%",
		LatestTradingDay: raw.Quote["07. latest trading day"],
	}, nil
}
