package persistence

import (
	"context"

	"github.com/salon-crm/backend/internal/domain/platform"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/infrastructure/logger"
	"github.com/salon-crm/backend/internal/infrastructure/persistence/store"
	"gorm.io/gorm"
)

// StoreManager resolves the repositories of the main store and of each
// tenant store through a Registry and a ModelFactory.
type StoreManager struct {
	registry *store.Registry
	factory  *ModelFactory
	release  func(tenantID string) error
}

// NewStoreManager wires factory eviction into the registry's close path.
func NewStoreManager(registry *store.Registry, factory *ModelFactory) *StoreManager {
	registry.OnClose(factory.ClearModelsForConnection)
	return &StoreManager{registry: registry, factory: factory, release: registry.CloseConnection}
}

// Registry returns the underlying connection registry.
func (m *StoreManager) Registry() *store.Registry {
	return m.registry
}

// Factory returns the underlying model factory.
func (m *StoreManager) Factory() *ModelFactory {
	return m.factory
}

// MainRepositories returns the main-store repositories.
func (m *StoreManager) MainRepositories(ctx context.Context) (*platform.Repositories, error) {
	conn, err := m.registry.GetMainConnection(ctx)
	if err != nil {
		return nil, err
	}
	return m.factory.CreateMainModels(ctx, conn)
}

// BusinessRepositories returns the repositories of tenantID's store.
func (m *StoreManager) BusinessRepositories(ctx context.Context, tenantID string) (*salon.Repositories, error) {
	conn, err := m.registry.GetConnection(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return m.factory.CreateBusinessModels(ctx, conn)
}

// Close closes every open store.
func (m *StoreManager) Close() error {
	return m.registry.CloseAllConnections()
}

// GormConfig returns the per-store gorm configuration: translated driver
// errors and a zap logger tagged with the store name.
func GormConfig(gormLogger *logger.GormLogger) store.GormConfigFunc {
	return func(storeName string) *gorm.Config {
		cfg := &gorm.Config{
			TranslateError:         true,
			SkipDefaultTransaction: true,
		}
		if gormLogger != nil {
			cfg.Logger = gormLogger.ForStore(storeName)
		}
		return cfg
	}
}
