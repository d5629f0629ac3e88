// Package guard rejects statements that reach a tenant store from a request
// scoped to another tenant.
package guard

import (
	"errors"
	"fmt"

	"github.com/salon-crm/backend/internal/infrastructure/logger"
	"github.com/salon-crm/backend/internal/infrastructure/persistence/store"
	"gorm.io/gorm"
)

// ErrCrossTenant is added to statements whose context tenant differs from
// the store's tenant.
var ErrCrossTenant = errors.New("cross-tenant access rejected")

const callbackPrefix = "tenant_guard:"

// TenantGuard holds the tenant a store belongs to.
type TenantGuard struct {
	tenantID string
}

// New returns a guard for the store of tenantID.
func New(tenantID string) *TenantGuard {
	return &TenantGuard{tenantID: store.NormalizeTenantID(tenantID)}
}

// Register installs the guard on every statement kind of db.
func (g *TenantGuard) Register(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register(callbackPrefix+"create", g.check),
		cb.Query().Before("gorm:query").Register(callbackPrefix+"query", g.check),
		cb.Update().Before("gorm:update").Register(callbackPrefix+"update", g.check),
		cb.Delete().Before("gorm:delete").Register(callbackPrefix+"delete", g.check),
		cb.Row().Before("gorm:row").Register(callbackPrefix+"row", g.check),
		cb.Raw().Before("gorm:raw").Register(callbackPrefix+"raw", g.check),
	)
}

func (g *TenantGuard) check(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}
	// Background work without a request tenant is trusted.
	ctxTenant := logger.GetTenantID(db.Statement.Context)
	if ctxTenant == "" {
		return
	}
	if store.NormalizeTenantID(ctxTenant) != g.tenantID {
		_ = db.AddError(fmt.Errorf("%w: request tenant %s, store tenant %s", ErrCrossTenant, ctxTenant, g.tenantID))
	}
}

// OpenHook installs a guard on each tenant connection. The main store is
// shared across tenants and is left unguarded.
func OpenHook(conn *store.Connection) error {
	if conn.IsMain() {
		return nil
	}
	return New(conn.TenantID).Register(conn.DB)
}
