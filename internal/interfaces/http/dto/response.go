package dto

import (
	"strings"

	"github.com/salon-crm/backend/internal/domain/shared"
)

// Response is the envelope of every API response.
type Response struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Error      *ErrorInfo  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ErrorInfo describes a failed request.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Details lists per-field validation failures.
	Details []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail is one rejected request field.
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Pagination describes the page returned in Data.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewPageResponse wraps one page of results. Data is never null so clients
// can iterate it directly.
func NewPageResponse[T any](page shared.Paginated[T]) Response {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return Response{
		Success: true,
		Data:    items,
		Pagination: &Pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewValidationErrorResponse creates a VALIDATION response with field details.
func NewValidationErrorResponse(message string, details []ValidationDetail) Response {
	resp := NewErrorResponse(shared.CodeValidation, message)
	resp.Error.Details = details
	return resp
}

// ListRequest holds the common list query parameters.
type ListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	OrderBy  string `form:"sortBy" binding:"omitempty,max=50"`
	OrderDir string `form:"sortOrder" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// ToFilter converts the request into a repository filter.
func (r ListRequest) ToFilter() shared.Filter {
	f := shared.DefaultFilter()
	if r.Page > 0 {
		f.Page = r.Page
	}
	if r.Limit > 0 {
		f.Limit = r.Limit
	}
	f.Search = r.Search
	if r.OrderBy != "" {
		f.OrderBy = r.OrderBy
	}
	if r.OrderDir != "" {
		f.OrderDir = strings.ToLower(r.OrderDir)
	}
	return f.Normalize()
}
