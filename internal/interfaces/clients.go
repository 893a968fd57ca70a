package interfaces

import (
	"context"

	"github.com/bobmcallan/moverwatch/internal/models"
)

// MarketDataGateway issues requests to the upstream market data API.
// Failures are reported inside the response envelope, never as a Go error.
type MarketDataGateway interface {
	// Request calls the given API function with additional query params.
	Request(ctx context.Context, function string, params map[string]string) *models.GatewayResponse
}
