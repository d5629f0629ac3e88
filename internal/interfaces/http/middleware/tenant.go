package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/application/tenancy"
	"github.com/salon-crm/backend/internal/domain/platform"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/salon-crm/backend/internal/infrastructure/cache"
	"github.com/salon-crm/backend/internal/infrastructure/logger"
	"github.com/salon-crm/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys set by the tenant middleware
const (
	TenantIDKey       = "tenant_id"
	RequestContextKey = "tenant_request_context"
)

// StatusCache resolves business statuses, loading misses through load.
type StatusCache interface {
	Get(ctx context.Context, businessID string, load cache.StatusLoader) (platform.BusinessStatus, error)
}

// TenantMiddlewareConfig holds configuration for the tenant middleware
type TenantMiddlewareConfig struct {
	Resolver tenancy.Resolver
	// EnforceStatus rejects requests of suspended or inactive businesses.
	EnforceStatus bool
	// StatusCache is optional; without it the status is read on every request.
	StatusCache StatusCache
	// Production hides resolver failure details from clients.
	Production bool
	Logger     *zap.Logger
}

// TenantContextMiddleware binds the request to the caller's tenant store.
// It requires JWTAuthMiddleware earlier in the chain.
func TenantContextMiddleware(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			abortWithError(c, shared.CodeAuthentication, "Authentication required")
			return
		}
		tenantID := identity.TenantID()
		if tenantID == "" {
			abortWithError(c, shared.CodeValidation, "Business ID not found in user data")
			return
		}

		ctx := c.Request.Context()
		main, err := cfg.Resolver.MainRepositories(ctx)
		if err != nil {
			abortResolverError(c, cfg, "main store", tenantID, err)
			return
		}

		if cfg.EnforceStatus && identity.BusinessID != "" {
			status, err := businessStatus(ctx, cfg, main, identity.BusinessID)
			switch {
			case shared.IsNotFound(err):
				abortWithError(c, shared.CodeAuthorization, "Business not found")
				return
			case err != nil:
				abortResolverError(c, cfg, "business status", tenantID, err)
				return
			case status != platform.BusinessStatusActive:
				abortWithError(c, shared.CodeAuthorization, "Business is "+string(status))
				return
			}
		}

		business, err := cfg.Resolver.BusinessRepositories(ctx, tenantID)
		if err != nil {
			abortResolverError(c, cfg, "tenant store", tenantID, err)
			return
		}

		attach(c, &tenancy.RequestContext{
			Identity: identity,
			TenantID: tenantID,
			Main:     main,
			Business: business,
		})
		c.Next()
	}
}

// SetupMainDatabase attaches only the main store repositories. It serves
// the platform administration routes.
func SetupMainDatabase(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		identity, _ := GetIdentity(c)
		main, err := cfg.Resolver.MainRepositories(c.Request.Context())
		if err != nil {
			abortResolverError(c, cfg, "main store", "", err)
			return
		}
		attach(c, &tenancy.RequestContext{Identity: identity, Main: main})
		c.Next()
	}
}

func attach(c *gin.Context, rc *tenancy.RequestContext) {
	c.Set(RequestContextKey, rc)
	ctx := tenancy.WithRequestContext(c.Request.Context(), rc)
	if rc.TenantID != "" {
		c.Set(TenantIDKey, rc.TenantID)
		ctx = logger.WithTenantID(ctx, rc.TenantID)
	}
	c.Request = c.Request.WithContext(ctx)
}

func businessStatus(ctx context.Context, cfg TenantMiddlewareConfig, main *platform.Repositories, businessID string) (platform.BusinessStatus, error) {
	load := func(ctx context.Context, id string) (platform.BusinessStatus, error) {
		uid, err := uuid.Parse(id)
		if err != nil {
			return "", shared.NewNotFoundError("Business")
		}
		business, err := main.Businesses.FindByID(ctx, uid)
		if err != nil {
			return "", err
		}
		return business.Status, nil
	}
	if cfg.StatusCache == nil {
		return load(ctx, businessID)
	}
	return cfg.StatusCache.Get(ctx, businessID, load)
}

func abortResolverError(c *gin.Context, cfg TenantMiddlewareConfig, what, tenantID string, err error) {
	logger.L(c.Request.Context()).Error("Failed to resolve "+what,
		zap.String("tenant_id", tenantID),
		zap.Error(err),
	)
	message := "Internal server error"
	if !cfg.Production {
		message = err.Error()
	}
	abortWithError(c, shared.CodeInternal, message)
}

func abortWithError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message))
}

// GetRequestContext returns the tenant binding attached by the middleware.
func GetRequestContext(c *gin.Context) (*tenancy.RequestContext, bool) {
	if v, exists := c.Get(RequestContextKey); exists {
		if rc, ok := v.(*tenancy.RequestContext); ok && rc != nil {
			return rc, true
		}
	}
	return nil, false
}

// GetTenantID returns the tenant id bound to the request.
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}

// RequireRoles rejects callers whose role is not one of roles.
func RequireRoles(roles ...platform.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			abortWithError(c, shared.CodeAuthentication, "Authentication required")
			return
		}
		if !identity.HasRole(roles...) {
			logger.L(c.Request.Context()).Warn("Role check failed",
				zap.String("role", string(identity.Role)),
				zap.String("path", c.FullPath()),
			)
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(shared.CodeAuthorization, "Insufficient permissions"))
			return
		}
		c.Next()
	}
}
