package stockdata

import (
	"context"
	"encoding/json"

	"github.com/bobmcallan/moverwatch/internal/clients/alphavantage"
	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/models"
)

// overviewResponse is the subset of the OVERVIEW payload moverwatch projects
type overviewResponse struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Description          string `json:"Description"`
	Exchange             string `json:"Exchange"`
	Currency             string `json:"Currency"`
	Country              string `json:"Country"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	Address              string `json:"Address"`
	MarketCapitalization string `json:"MarketCapitalization"`
	PERatio              string `json:"PERatio"`
	PEGRatio             string `json:"PEGRatio"`
	BookValue            string `json:"BookValue"`
	DividendYield        string `json:"DividendYield"`
	EPS                  string `json:"EPS"`
	RevenuePerShareTTM   string `json:"RevenuePerShareTTM"`
	ProfitMargin         string `json:"ProfitMargin"`
	OperatingMarginTTM   string `json:"OperatingMarginTTM"`
	ReturnOnAssetsTTM    string `json:"ReturnOnAssetsTTM"`
	ReturnOnEquityTTM    string `json:"ReturnOnEquityTTM"`
	Week52High           string `json:"52WeekHigh"`
	Week52Low            string `json:"52WeekLow"`
	MovingAverage50      string `json:"50DayMovingAverage"`
	MovingAverage200     string `json:"200DayMovingAverage"`
	SharesOutstanding    string `json:"SharesOutstanding"`
	Beta                 string `json:"Beta"`
}

// FetchFundamentals returns the company overview for symbol
func (s *Service) FetchFundamentals(ctx context.Context, symbol string, force bool) (*models.Fundamentals, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, ErrMissingSymbol
	}

	live := func(ctx context.Context) (*models.Fundamentals, error) {
		resp := s.gateway.Request(ctx, alphavantage.FunctionOverview, map[string]string{"symbol": symbol})
		if !resp.Success {
			return nil, gatewayError(resp)
		}
		f, err := reshapeOverview(resp.Data)
		if err != nil {
			return nil, err
		}
		f.FetchedAt = s.now()
		return f, nil
	}

	f, source, err := readThrough(ctx, s, fundamentalsKey(symbol), common.FreshnessFundamentals, force, live)
	if err != nil {
		return nil, err
	}
	f.Source = source
	return f, nil
}

func reshapeOverview(data json.RawMessage) (*models.Fundamentals, error) {
	var o overviewResponse
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, &FormatError{Op: "fundamentals", Msg: "undecodable response", Err: err}
	}
	if o.Symbol == "" {
		return nil, &FormatError{Op: "fundamentals", Msg: "no overview data for symbol"}
	}

	return &models.Fundamentals{
		Symbol:            o.Symbol,
		Name:              o.Name,
		Description:       o.Description,
		Exchange:          o.Exchange,
		Currency:          o.Currency,
		Country:           o.Country,
		Sector:            o.Sector,
		Industry:          o.Industry,
		Address:           o.Address,
		MarketCap:         o.MarketCapitalization,
		PERatio:           o.PERatio,
		PEGRatio:          o.PEGRatio,
		BookValue:         o.BookValue,
		DividendYield:     o.DividendYield,
		EPS:               o.EPS,
		RevenuePerShare:   o.RevenuePerShareTTM,
		ProfitMargin:      o.ProfitMargin,
		OperatingMargin:   o.OperatingMarginTTM,
		ReturnOnAssets:    o.ReturnOnAssetsTTM,
		ReturnOnEquity:    o.ReturnOnEquityTTM,
		Week52High:        o.Week52High,
		Week52Low:         o.Week52Low,
		MovingAverage50:   o.MovingAverage50,
		MovingAverage200:  o.MovingAverage200,
		SharesOutstanding: o.SharesOutstanding,
		Beta:              o.Beta,
	}, nil
}
