package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/bobmcallan/moverwatch/internal/services/stockdata"
	"github.com/bobmcallan/moverwatch/internal/services/wishlist"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.Body == http.NoBody {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// QueryBool parses a boolean query parameter. Missing or unparseable values are false.
func QueryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

// WriteServiceError maps a service error onto an HTTP status.
func WriteServiceError(w http.ResponseWriter, err error) {
	var formatErr *stockdata.FormatError
	var gatewayErr *stockdata.GatewayError

	switch {
	case errors.Is(err, wishlist.ErrNotFound):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "not_found")
	case errors.Is(err, wishlist.ErrAlreadyExists):
		WriteErrorWithCode(w, http.StatusConflict, err.Error(), "already_exists")
	case errors.Is(err, wishlist.ErrEmptyName),
		errors.Is(err, wishlist.ErrMissingSymbol),
		errors.Is(err, stockdata.ErrMissingSymbol):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_request")
	case errors.As(err, &formatErr):
		WriteErrorWithCode(w, http.StatusBadGateway, err.Error(), "bad_upstream_data")
	case errors.As(err, &gatewayErr):
		WriteErrorWithCode(w, http.StatusServiceUnavailable, err.Error(), string(gatewayErr.Kind))
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
