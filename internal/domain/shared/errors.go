package shared

import (
	"errors"
	"fmt"
)

// Error codes shared by every domain package. The HTTP layer maps them to
// status codes in dto.GetHTTPStatus.
const (
	CodeAuthentication  = "AUTHENTICATION"
	CodeAuthorization   = "AUTHORIZATION"
	CodeValidation      = "VALIDATION"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInvalidState    = "INVALID_STATE"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so
// errors.Is(err, shared.ErrNotFound) matches any not-found error.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

func NewInvalidArgumentError(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidArgument, fmt.Sprintf(format, args...))
}

// NewNotFoundError names the missing entity, e.g. "Client not found".
func NewNotFoundError(entity string) *DomainError {
	return NewDomainError(CodeNotFound, entity+" not found")
}

func NewConflictError(format string, args ...any) *DomainError {
	return NewDomainError(CodeConflict, fmt.Sprintf(format, args...))
}

func NewInvalidStateError(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidState, fmt.Sprintf(format, args...))
}

func NewAuthenticationError(message string) *DomainError {
	return NewDomainError(CodeAuthentication, message)
}

func NewAuthorizationError(message string) *DomainError {
	return NewDomainError(CodeAuthorization, message)
}

func NewInternalError(message string) *DomainError {
	return NewDomainError(CodeInternal, message)
}

// Common domain errors
var (
	ErrValidation         = NewDomainError(CodeValidation, "Validation failed")
	ErrNotFound           = NewDomainError(CodeNotFound, "Resource not found")
	ErrConflict           = NewDomainError(CodeConflict, "Resource already exists")
	ErrInvalidArgument    = NewDomainError(CodeInvalidArgument, "Invalid argument")
	ErrUnauthenticated    = NewDomainError(CodeAuthentication, "Authentication required")
	ErrForbidden          = NewDomainError(CodeAuthorization, "Access to this resource is forbidden")
	ErrInvalidState       = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInvalidCredentials = NewDomainError(CodeAuthentication, "Invalid email or password")
	ErrRateLimited        = NewDomainError(CodeRateLimited, "Too many requests, please try again later")
)

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err carries the CONFLICT code.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
