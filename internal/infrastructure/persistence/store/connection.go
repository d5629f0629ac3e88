package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"gorm.io/gorm"
)

// ErrConnectionClosed is returned for work started on a connection that
// has since been closed.
var ErrConnectionClosed = errors.New("store connection closed")

// Connection is an open handle on one store.
type Connection struct {
	// Name is the computed store name and the registry key.
	Name string
	// TenantID is the raw tenant id; empty for the main store.
	TenantID string
	DB       *gorm.DB

	closed atomic.Bool
}

// IsMain reports whether the connection targets the cross-tenant store.
func (c *Connection) IsMain() bool {
	return c.TenantID == ""
}

// Ping checks that the store is reachable.
func (c *Connection) Ping(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Closed reports whether Close has been called.
func (c *Connection) Closed() bool {
	return c.closed.Load()
}

// Close releases the underlying pool.
func (c *Connection) Close() error {
	c.closed.Store(true)
	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
