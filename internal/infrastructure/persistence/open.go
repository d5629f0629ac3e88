package persistence

import (
	"context"
	"fmt"

	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/salon-crm/backend/internal/infrastructure/config"
	"github.com/salon-crm/backend/internal/infrastructure/persistence/store"
	"go.uber.org/zap"
)

// NewOpener returns the store opener selected by cfg.Driver.
func NewOpener(cfg config.DatabaseConfig, gormConfig store.GormConfigFunc) (store.Opener, error) {
	switch cfg.Driver {
	case "postgres", "postgresql", "":
		return store.NewPostgresOpener(cfg.URI, cfg.CreateIfMissing, store.PoolConfig{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		}, gormConfig), nil
	case "sqlite":
		return store.NewSQLiteOpener(cfg.SQLiteDir, gormConfig), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// MigrationReport counts the stores visited by MigrateAll.
type MigrationReport struct {
	Businesses int
	Failed     []string
}

// MigrateAll binds every model of the main store and of each registered
// business store, creating missing tables and columns. A failing business
// store is logged and skipped.
func (m *StoreManager) MigrateAll(ctx context.Context, log *zap.Logger) (MigrationReport, error) {
	var report MigrationReport
	main, err := m.MainRepositories(ctx)
	if err != nil {
		return report, fmt.Errorf("migrate main store: %w", err)
	}

	filter := shared.DefaultFilter()
	filter.Limit = shared.MaxLimit
	filter.OrderDir = "asc"
	for {
		businesses, total, err := main.Businesses.List(ctx, filter)
		if err != nil {
			return report, err
		}
		for i := range businesses {
			tenantID := businesses[i].TenantID()
			if _, err := m.BusinessRepositories(ctx, tenantID); err != nil {
				log.Error("Business store migration failed",
					zap.String("business_code", businesses[i].Code),
					zap.Error(err),
				)
				report.Failed = append(report.Failed, businesses[i].Code)
				continue
			}
			report.Businesses++
			if err := m.release(tenantID); err != nil {
				log.Warn("Business store release failed",
					zap.String("business_code", businesses[i].Code),
					zap.Error(err),
				)
			}
		}
		if len(businesses) == 0 || int64(filter.Page*filter.Limit) >= total {
			return report, nil
		}
		filter.Page++
	}
}
