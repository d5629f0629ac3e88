package salon_test

import (
	"context"
	"testing"
	_ "time/tzdata"

	"github.com/google/uuid"
	appsalon "github.com/salon-crm/backend/internal/application/salon"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/infrastructure/persistence"
	"github.com/salon-crm/backend/internal/infrastructure/persistence/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const day = "2026-03-14"

func newRepos(t *testing.T) *salon.Repositories {
	t.Helper()
	registry := store.NewRegistry("salon_crm", store.NewSQLiteOpener("", persistence.GormConfig(nil)))
	manager := persistence.NewStoreManager(registry, persistence.NewModelFactory(nil))
	t.Cleanup(func() { _ = manager.Close() })

	repos, err := manager.BusinessRepositories(context.Background(), uuid.NewString())
	require.NoError(t, err)
	return repos
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedProduct(t *testing.T, repos *salon.Repositories, sku string, stock int64) *salon.Product {
	t.Helper()
	p := &salon.Product{Name: "Shampoo " + sku, SKU: sku, Price: dec("250"), Stock: stock}
	require.NoError(t, appsalon.NewProductService(repos).Create(context.Background(), p))
	return p
}

func seedClient(t *testing.T, repos *salon.Repositories, name, phone string) *salon.Client {
	t.Helper()
	c := &salon.Client{Name: name, Phone: phone}
	require.NoError(t, appsalon.NewClientService(repos).Create(context.Background(), c))
	return c
}
