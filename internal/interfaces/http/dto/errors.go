package dto

import "net/http"

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeRequestTooLarge is used when the request body exceeds the limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Domain error codes surfaced by the mapping services. These pass through
// to clients unchanged so the UI can tell which part of the request was bad.
const (
	ErrCodeUnknownSystem    = "UNKNOWN_SYSTEM"
	ErrCodeUnknownEntity    = "UNKNOWN_ENTITY"
	ErrCodeUnsupportedPair  = "UNSUPPORTED_PAIR"
	ErrCodeUnknownTransform = "UNKNOWN_TRANSFORM"
	ErrCodeInvalidEntry     = "INVALID_ENTRY"
	ErrCodeSessionNotFound  = "SESSION_NOT_FOUND"
	ErrCodeSessionActive    = "SESSION_ACTIVE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:         http.StatusInternalServerError,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeInvalidState:    http.StatusUnprocessableEntity,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnknownSystem:    http.StatusNotFound,
	ErrCodeUnknownEntity:    http.StatusNotFound,
	ErrCodeUnsupportedPair:  http.StatusBadRequest,
	ErrCodeUnknownTransform: http.StatusBadRequest,
	ErrCodeInvalidEntry:     http.StatusUnprocessableEntity,
	ErrCodeSessionNotFound:  http.StatusNotFound,
	ErrCodeSessionActive:    http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes default to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
