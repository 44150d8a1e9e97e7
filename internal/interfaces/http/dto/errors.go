package dto

import (
	"errors"
	"net/http"

	"github.com/dms/backend/internal/domain/shared"
)

// Error codes returned in the response envelope. Domain error kinds keep
// their own code; the rest belong to the transport.
const (
	ErrCodeNotFound        = shared.CodeNotFound
	ErrCodeInvalidState    = shared.CodeInvalidState
	ErrCodeValidation      = shared.CodeValidation
	ErrCodeForbidden       = shared.CodeForbidden
	ErrCodeConflict        = shared.CodeConflict
	ErrCodeTransient       = shared.CodeTransient
	ErrCodeVersionMismatch = shared.CodeVersionMismatch

	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeInvalidState:    http.StatusUnprocessableEntity,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeTransient:       http.StatusServiceUnavailable,
	ErrCodeVersionMismatch: http.StatusConflict,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInternal:     http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError converts an error into a status and the error body. Domain
// errors keep their code and message; anything else is reported as an
// internal error without leaking its text.
func FromError(err error) (int, ErrorInfo) {
	var de *shared.DomainError
	if errors.As(err, &de) {
		if _, known := ErrorCodeHTTPStatus[de.Code]; known {
			return GetHTTPStatus(de.Code), ErrorInfo{Code: de.Code, Message: de.Message}
		}
	}
	return http.StatusInternalServerError, ErrorInfo{Code: ErrCodeInternal, Message: "An internal error occurred"}
}
