package stockdata

import (
	"errors"
	"fmt"

	"github.com/bobmcallan/moverwatch/internal/models"
)

var (
	ErrNoTimeSeries      = errors.New("no time series data found")
	ErrInvalidTimeSeries = errors.New("invalid time series data format")
	ErrMissingSymbol     = errors.New("symbol is required")
)

// GatewayError is a transport or upstream failure that no cache tier could cover
type GatewayError struct {
	Kind    models.ErrorKind
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("market data unavailable (%s, status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("market data unavailable (%s): %s", e.Kind, e.Message)
}

func gatewayError(resp *models.GatewayResponse) *GatewayError {
	return &GatewayError{Kind: resp.Kind, Status: resp.Status, Message: resp.Error}
}

// FormatError reports a structurally successful response whose data could not be reshaped
type FormatError struct {
	Op  string
	Msg string
	Err error
}

func (e *FormatError) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
