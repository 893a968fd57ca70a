// Package alphavantage provides a client for the Alpha Vantage market data API.
//
// Request never returns a Go error: every outcome, including transport
// failures, timeouts and upstream notices, is encoded in a
// models.GatewayResponse so callers can branch on Success and Kind.
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/interfaces"
	"github.com/bobmcallan/moverwatch/internal/models"
)

const (
	DefaultBaseURL   = "https://www.alphavantage.co"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 75 // requests per minute

	maxBodyBytes = 16 << 20
)

// API functions used by moverwatch
const (
	FunctionTopGainersLosers  = "TOP_GAINERS_LOSERS"
	FunctionOverview          = "OVERVIEW"
	FunctionGlobalQuote       = "GLOBAL_QUOTE"
	FunctionTimeSeriesDaily   = "TIME_SERIES_DAILY"
	FunctionTimeSeriesWeekly  = "TIME_SERIES_WEEKLY"
	FunctionTimeSeriesMonthly = "TIME_SERIES_MONTHLY"
)

// Client implements interfaces.MarketDataGateway
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var _ interfaces.MarketDataGateway = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the client-side rate limit in requests per minute.
// Zero or negative disables limiting.
func WithRateLimit(requestsPerMinute int) ClientOption {
	return func(c *Client) {
		if requestsPerMinute <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		logger:     common.NewSilentLogger(),
	}
	WithRateLimit(DefaultRateLimit)(c)

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Request performs a rate-limited GET of <base>/query with the given function and params
func (c *Client) Request(ctx context.Context, function string, params map[string]string) *models.GatewayResponse {
	if err := c.limiter.Wait(ctx); err != nil {
		return failure(models.ErrorKindTransport, 0, fmt.Sprintf("rate limit wait: %v", err))
	}

	q := url.Values{}
	q.Set("function", function)
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("apikey", c.apiKey)
	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, q.Encode())

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return failure(models.ErrorKindTransport, 0, fmt.Sprintf("failed to create request: %v", err))
	}

	start := time.Now()
	c.logger.Debug().Str("function", function).Str("symbol", params["symbol"]).Msg("Alpha Vantage request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			c.logger.Warn().Str("function", function).Dur("timeout", c.timeout).Msg("Alpha Vantage request timed out")
			return failure(models.ErrorKindTimeout, 0, fmt.Sprintf("request timed out after %s", c.timeout))
		}
		c.logger.Warn().Err(err).Str("function", function).Msg("Alpha Vantage request failed")
		return failure(models.ErrorKindTransport, 0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		c.logger.Warn().Int("status", resp.StatusCode).Str("function", function).Msg("Alpha Vantage returned non-2xx status")
		return failure(models.ErrorKindStatus, resp.StatusCode, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return failure(models.ErrorKindTimeout, resp.StatusCode, fmt.Sprintf("request timed out after %s", c.timeout))
		}
		return failure(models.ErrorKindTransport, resp.StatusCode, fmt.Sprintf("failed to read response: %v", err))
	}

	out := classify(body, resp.StatusCode)
	if !out.Success {
		c.logger.Warn().
			Str("function", function).
			Str("kind", string(out.Kind)).
			Str("error", out.Error).
			Msg("Alpha Vantage returned an error payload")
	} else {
		c.logger.Debug().
			Str("function", function).
			Int("bytes", len(body)).
			Dur("elapsed", time.Since(start)).
			Msg("Alpha Vantage response")
	}
	return out
}

// classify inspects a 2xx body for upstream error and rate-limit notices
func classify(body []byte, status int) *models.GatewayResponse {
	if !json.Valid(body) {
		return failure(models.ErrorKindUpstream, status, "invalid JSON response")
	}

	var notices struct {
		ErrorMessage *string `json:"Error Message"`
		Note         *string `json:"Note"`
		Information  *string `json:"Information"`
	}
	// non-object bodies carry no notices
	_ = json.Unmarshal(body, &notices)

	switch {
	case notices.ErrorMessage != nil:
		return failure(models.ErrorKindUpstream, status, *notices.ErrorMessage)
	case notices.Note != nil:
		return failure(models.ErrorKindRateLimit, status, "API rate limit reached: "+*notices.Note)
	case notices.Information != nil:
		return failure(models.ErrorKindRateLimit, status, "API rate limit reached: "+*notices.Information)
	}

	return &models.GatewayResponse{
		Success: true,
		Data:    json.RawMessage(body),
		Status:  status,
	}
}

func failure(kind models.ErrorKind, status int, msg string) *models.GatewayResponse {
	return &models.GatewayResponse{
		Success: false,
		Status:  status,
		Error:   msg,
		Kind:    kind,
	}
}
