package dto

import (
	"net/http"
	"strings"
)

// Error codes returned by the API. Domain error codes pass through
// unchanged so clients can match on them.
const (
	ErrCodeInternal    = "INTERNAL_ERROR"
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeInvalidJSON = "INVALID_JSON"
	ErrCodeNotFound    = "NOT_FOUND"

	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeAlreadyReceived     = "ALREADY_RECEIVED"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes. Insufficient
// stock and optimistic-lock failures are conflicts: the request was well
// formed, the current state just does not admit it.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeNotFound:    http.StatusNotFound,

	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInsufficientStock:   http.StatusConflict,
	ErrCodeAlreadyReceived:     http.StatusConflict,
	"ALREADY_EXISTS":           http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status for an error code. Validation
// codes (INVALID_*, EMPTY_*) are client errors; anything unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") || strings.HasPrefix(code, "EMPTY_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
