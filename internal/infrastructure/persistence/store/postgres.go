package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolConfig sizes the pool of every opened store.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// GormConfigFunc builds the gorm configuration of one store.
type GormConfigFunc func(storeName string) *gorm.Config

func defaultGormConfig(string) *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

// PostgresOpener opens each store as its own database on one server. The
// store name replaces the path of the base URI.
type PostgresOpener struct {
	BaseURI         string
	CreateIfMissing bool
	Pool            PoolConfig
	GormConfig      GormConfigFunc
	// Dialector builds the gorm dialector for a DSN. Defaults to
	// postgres.Open.
	Dialector func(dsn string) gorm.Dialector

	mu      sync.Mutex
	adminDB *gorm.DB
}

// NewPostgresOpener returns an opener rooted at baseURI.
func NewPostgresOpener(baseURI string, createIfMissing bool, pool PoolConfig, gormConfig GormConfigFunc) *PostgresOpener {
	return &PostgresOpener{
		BaseURI:         baseURI,
		CreateIfMissing: createIfMissing,
		Pool:            pool,
		GormConfig:      gormConfig,
	}
}

// DSN returns the connection string of the named database.
func (o *PostgresOpener) DSN(database string) (string, error) {
	u, err := url.Parse(o.BaseURI)
	if err != nil {
		return "", fmt.Errorf("invalid database uri: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("invalid database uri scheme %q", u.Scheme)
	}
	u.Path = "/" + database
	u.RawPath = ""
	return u.String(), nil
}

func (o *PostgresOpener) dialector(dsn string) gorm.Dialector {
	if o.Dialector != nil {
		return o.Dialector(dsn)
	}
	return postgres.Open(dsn)
}

func (o *PostgresOpener) gormConfig(name string) *gorm.Config {
	if o.GormConfig != nil {
		return o.GormConfig(name)
	}
	return defaultGormConfig(name)
}

// Open implements Opener.
func (o *PostgresOpener) Open(ctx context.Context, storeName string) (*gorm.DB, error) {
	if o.CreateIfMissing {
		if err := o.ensureDatabase(ctx, storeName); err != nil {
			return nil, err
		}
	}
	dsn, err := o.DSN(storeName)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(o.dialector(dsn), o.gormConfig(storeName))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if o.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.Pool.MaxOpenConns)
	}
	if o.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(o.Pool.MaxIdleConns)
	}
	if o.Pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(o.Pool.ConnMaxLifetime)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// ensureDatabase creates storeName through the maintenance database when
// it does not exist yet.
func (o *PostgresOpener) ensureDatabase(ctx context.Context, storeName string) error {
	if !storeNamePattern.MatchString(storeName) {
		return fmt.Errorf("refusing to create database %q", storeName)
	}
	admin, err := o.admin()
	if err != nil {
		return err
	}
	var n int64
	if err := admin.WithContext(ctx).
		Raw("SELECT count(*) FROM pg_database WHERE datname = ?", storeName).
		Scan(&n).Error; err != nil {
		return fmt.Errorf("failed to look up database %s: %w", storeName, err)
	}
	if n > 0 {
		return nil
	}
	err = admin.WithContext(ctx).Exec(`CREATE DATABASE "` + storeName + `"`).Error
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create database %s: %w", storeName, err)
	}
	return nil
}

func (o *PostgresOpener) admin() (*gorm.DB, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.adminDB != nil {
		return o.adminDB, nil
	}
	dsn, err := o.DSN("postgres")
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(o.dialector(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to maintenance database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	o.adminDB = db
	return db, nil
}

// Close releases the maintenance connection.
func (o *PostgresOpener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.adminDB == nil {
		return nil
	}
	sqlDB, err := o.adminDB.DB()
	o.adminDB = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
