// Package tenancy carries the per-request tenant binding between the HTTP
// layer and the application services.
package tenancy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/platform"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/domain/shared"
)

// Identity is the authenticated caller as read from the access token.
type Identity struct {
	UserID     uuid.UUID
	BusinessID string
	BranchID   string
	Email      string
	Role       platform.Role
	Admin      bool
	TokenID    string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// TenantID returns the business id, falling back to the branch id.
func (i Identity) TenantID() string {
	if i.BusinessID != "" {
		return i.BusinessID
	}
	return i.BranchID
}

// HasRole reports whether the caller holds one of roles.
func (i Identity) HasRole(roles ...platform.Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// RemainingTTL returns how long the token stays valid after now.
func (i Identity) RemainingTTL(now time.Time) time.Duration {
	if i.ExpiresAt.IsZero() || !i.ExpiresAt.After(now) {
		return 0
	}
	return i.ExpiresAt.Sub(now)
}

// Resolver hands out the repositories of the main store and of one tenant
// store. Implementations cache connections and bound models.
type Resolver interface {
	MainRepositories(ctx context.Context) (*platform.Repositories, error)
	BusinessRepositories(ctx context.Context, tenantID string) (*salon.Repositories, error)
}

// RequestContext is built once per request by the tenant middleware.
// Business is nil on main-only routes.
type RequestContext struct {
	Identity Identity
	TenantID string
	Main     *platform.Repositories
	Business *salon.Repositories
}

// BusinessRepositories returns the tenant repositories, failing when the
// request was not bound to a tenant.
func (rc *RequestContext) BusinessRepositories() (*salon.Repositories, error) {
	if rc == nil || rc.Business == nil {
		return nil, shared.NewInternalError("tenant repositories are not attached to the request")
	}
	return rc.Business, nil
}

type ctxKey struct{}

// WithRequestContext attaches rc to ctx.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// FromContext returns the request context attached to ctx.
func FromContext(ctx context.Context) (*RequestContext, bool) {
	rc, ok := ctx.Value(ctxKey{}).(*RequestContext)
	return rc, ok && rc != nil
}
