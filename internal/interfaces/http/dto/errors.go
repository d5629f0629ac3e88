package dto

import (
	"net/http"

	"github.com/salon-crm/backend/internal/domain/shared"
)

// Error codes produced by the HTTP layer itself. Domain errors carry the
// shared.Code* values.
const (
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeAuthentication:  http.StatusUnauthorized,
	shared.CodeAuthorization:   http.StatusForbidden,
	shared.CodeValidation:      http.StatusBadRequest,
	shared.CodeInvalidArgument: http.StatusBadRequest,
	shared.CodeNotFound:        http.StatusNotFound,
	shared.CodeConflict:        http.StatusBadRequest,
	shared.CodeInvalidState:    http.StatusUnprocessableEntity,
	shared.CodeRateLimited:     http.StatusTooManyRequests,
	shared.CodeInternal:        http.StatusInternalServerError,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:       http.StatusNotFound,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are treated as internal errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
