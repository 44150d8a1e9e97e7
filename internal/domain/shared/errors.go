package shared

import "errors"

// Error codes shared by every bounded context.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidState    = "INVALID_STATE"
	CodeValidation      = "VALIDATION_ERROR"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeTransient       = "TRANSIENT"
	CodeVersionMismatch = "OPTIMISTIC_LOCK_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches any DomainError carrying the same code, so callers can compare
// against the sentinels below regardless of the message.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error that keeps cause in the chain.
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common domain errors
var (
	ErrNotFound        = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidState    = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrValidation      = NewDomainError(CodeValidation, "Invalid input provided")
	ErrForbidden       = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrConflict        = NewDomainError(CodeConflict, "Resource already exists")
	ErrTransient       = NewDomainError(CodeTransient, "Temporary failure, please retry")
	ErrVersionMismatch = NewDomainError(CodeVersionMismatch, "Resource was modified by another process")
)

// NewNotFoundError reports a missing resource by name.
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(CodeNotFound, resource+" not found")
}

// NewValidationError reports malformed or missing input.
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewInvalidStateError reports an operation the current state does not permit.
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(CodeInvalidState, message)
}

// NewConflictError reports a duplicate unique key.
func NewConflictError(message string) *DomainError {
	return NewDomainError(CodeConflict, message)
}

// NewTransientError reports a store timeout or connection failure.
func NewTransientError(message string, cause error) *DomainError {
	return WrapDomainError(CodeTransient, message, cause)
}

// CodeOf returns the DomainError code in err's chain, or "" when there is none.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsRetryable reports whether err is a transient failure worth retrying.
func IsRetryable(err error) bool {
	return CodeOf(err) == CodeTransient
}
