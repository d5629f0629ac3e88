package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteOpener opens each store as its own SQLite database: one file per
// store under Dir, or a named shared-cache memory database when Dir is
// empty. Memory databases are namespaced per opener so two registries in
// one process never share a store.
type SQLiteOpener struct {
	Dir        string
	GormConfig GormConfigFunc

	namespace string
}

// NewSQLiteOpener returns an opener writing under dir, or in memory.
func NewSQLiteOpener(dir string, gormConfig GormConfigFunc) *SQLiteOpener {
	return &SQLiteOpener{
		Dir:        dir,
		GormConfig: gormConfig,
		namespace:  uuid.NewString()[:8],
	}
}

// DSN returns the sqlite connection string of the store.
func (o *SQLiteOpener) DSN(storeName string) string {
	if o.Dir == "" {
		return fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_foreign_keys=on", o.namespace, storeName)
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", filepath.Join(o.Dir, storeName+".db"))
}

// Open implements Opener.
func (o *SQLiteOpener) Open(ctx context.Context, storeName string) (*gorm.DB, error) {
	if o.Dir != "" {
		if err := os.MkdirAll(o.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite dir: %w", err)
		}
	}
	cfg := defaultGormConfig(storeName)
	if o.GormConfig != nil {
		cfg = o.GormConfig(storeName)
	}
	db, err := gorm.Open(sqlite.Open(o.DSN(storeName)), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// One connection serializes writers and keeps a memory database alive.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping sqlite store: %w", err)
	}
	return db, nil
}
