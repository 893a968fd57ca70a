package app

import (
	"context"
	"os"
	"time"

	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/interfaces"
	"github.com/bobmcallan/moverwatch/internal/models"
)

// warmCache pre-fetches the movers list on startup so the first client request is fast.
func warmCache(ctx context.Context, stockData interfaces.StockDataService, logger *common.Logger) {
	if os.Getenv("MOVERWATCH_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via MOVERWATCH_WARM_CACHE=off")
		return
	}

	start := time.Now()
	logger.Info().Msg("Warm cache: starting")

	result := stockData.FetchMovers(ctx, false)
	if result.Source == models.SourceFallback {
		logger.Warn().Msg("Warm cache: market data unavailable, serving fallback movers")
		return
	}

	logger.Info().
		Str("source", string(result.Source)).
		Int("movers", len(result.Stocks)).
		Dur("elapsed", time.Since(start)).
		Msg("Warm cache: complete")
}
