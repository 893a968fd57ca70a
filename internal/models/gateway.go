package models

import "encoding/json"

// ErrorKind classifies a failed gateway response
type ErrorKind string

const (
	ErrorKindTransport ErrorKind = "transport"
	ErrorKindTimeout   ErrorKind = "timeout"
	ErrorKindStatus    ErrorKind = "status"
	ErrorKindUpstream  ErrorKind = "upstream"
	ErrorKindRateLimit ErrorKind = "rate_limit"
)

// GatewayResponse is the uniform envelope returned by the market data gateway.
// Failures are encoded here rather than returned as Go errors.
type GatewayResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Status  int             `json:"status"`
	Error   string          `json:"error,omitempty"`
	Kind    ErrorKind       `json:"kind,omitempty"`
}
