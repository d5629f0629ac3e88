package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/application/tenancy"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/salon-crm/backend/internal/infrastructure/logger"
	"github.com/salon-crm/backend/internal/interfaces/http/dto"
	"github.com/salon-crm/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

const internalErrorMessage = "Internal server error"

// BaseHandler provides common handler utilities
type BaseHandler struct {
	// Production hides unexpected error details from clients.
	Production bool
}

// NewBaseHandler returns the shared base of every handler.
func NewBaseHandler(production bool) BaseHandler {
	return BaseHandler{Production: production}
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error envelope with the status of code.
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message))
}

// HandleError converts err into the error envelope: domain errors keep
// their code, binding failures become VALIDATION and everything else is
// logged and reported as INTERNAL.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		message := domainErr.Message
		if domainErr.Code == shared.CodeInternal {
			h.logUnexpected(c, err)
			if h.Production {
				message = internalErrorMessage
			}
		}
		h.Error(c, domainErr.Code, message)
		return
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]dto.ValidationDetail, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, dto.ValidationDetail{
				Field:   fe.Field(),
				Message: validationMessage(fe),
			})
		}
		message := details[0].Field + ": " + details[0].Message
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(message, details))
		return
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.Error(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return
	}

	if isDecodeError(err) {
		h.Error(c, shared.CodeValidation, "Invalid request body")
		return
	}

	h.logUnexpected(c, err)
	message := err.Error()
	if h.Production {
		message = internalErrorMessage
	}
	h.Error(c, shared.CodeInternal, message)
}

func (h *BaseHandler) logUnexpected(c *gin.Context, err error) {
	logger.L(c.Request.Context()).Error("Request failed",
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var numErr *strconv.NumError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.As(err, &numErr) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	// decimal, uuid and time values report their own parse errors.
	msg := err.Error()
	return strings.Contains(msg, "can't convert") ||
		strings.Contains(msg, "invalid UUID") ||
		strings.Contains(msg, "parsing time")
}

// parseID reads a uuid path parameter.
func parseID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, shared.NewValidationError("invalid %s", name)
	}
	return id, nil
}

// callerIdentity returns the authenticated caller.
func callerIdentity(c *gin.Context) (tenancy.Identity, error) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		return tenancy.Identity{}, shared.NewAuthenticationError("Authentication required")
	}
	return id, nil
}

// businessRepos returns the tenant repositories bound by the tenant
// middleware.
func businessRepos(c *gin.Context) (*salon.Repositories, error) {
	rc, ok := middleware.GetRequestContext(c)
	if !ok {
		return nil, shared.NewInternalError("tenant context is missing")
	}
	return rc.BusinessRepositories()
}

// listFilter reads paging, search and sort parameters plus the named
// equality filters.
func listFilter(c *gin.Context, keys ...string) (shared.Filter, error) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return shared.Filter{}, err
	}
	f := req.ToFilter()
	for _, key := range keys {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			f = f.With(key, v)
		}
	}
	return f, nil
}
