//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/salon-crm/backend/internal/domain/platform"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/salon-crm/backend/internal/infrastructure/persistence/guard"
	"github.com/salon-crm/backend/internal/infrastructure/persistence/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

// newPostgresManager starts a throwaway server and returns a manager that
// creates one database per store on it.
func newPostgresManager(t *testing.T) (*StoreManager, *store.PostgresOpener) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("salon_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	opener := store.NewPostgresOpener(uri, true, store.PoolConfig{MaxOpenConns: 4, MaxIdleConns: 2}, GormConfig(nil))
	registry := store.NewRegistry("salon_it", opener, store.WithOpenHook(guard.OpenHook))
	m := NewStoreManager(registry, NewModelFactory(nil))
	t.Cleanup(func() {
		_ = m.Close()
		_ = opener.Close()
	})
	return m, opener
}

func TestPostgresStores_Isolation(t *testing.T) {
	m, _ := newPostgresManager(t)
	ctx := context.Background()

	main, err := m.MainRepositories(ctx)
	require.NoError(t, err)

	var tenants []string
	for n := 1; n <= 2; n++ {
		b, err := platform.NewBusiness("Glow", "", "", "", "")
		require.NoError(t, err)
		b.AssignCode(n)
		require.NoError(t, main.Businesses.Create(ctx, b))
		tenants = append(tenants, b.TenantID())
	}

	first, err := m.BusinessRepositories(ctx, tenants[0])
	require.NoError(t, err)
	c := &salon.Client{Name: "Ana", Phone: "555-0101"}
	c.ApplyDefaults()
	require.NoError(t, first.Clients.Create(ctx, c))

	second, err := m.BusinessRepositories(ctx, tenants[1])
	require.NoError(t, err)
	_, total, err := second.Clients.List(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, total, "clients must not leak across business stores")

	dup := &salon.Client{Name: "Ana again", Phone: "555-0101"}
	dup.ApplyDefaults()
	require.NoError(t, second.Clients.Create(ctx, dup), "phone uniqueness is per store")

	conn, err := m.Registry().GetMainConnection(ctx)
	require.NoError(t, err)
	var names []string
	require.NoError(t, conn.DB.Raw("SELECT datname FROM pg_database WHERE datname LIKE 'salon_it%' ORDER BY datname").Scan(&names).Error)
	assert.Len(t, names, 3)
}

func TestPostgresStores_ProductStockNeverNegative(t *testing.T) {
	m, _ := newPostgresManager(t)
	ctx := context.Background()

	repos, err := m.BusinessRepositories(ctx, "concurrency")
	require.NoError(t, err)
	p := &salon.Product{Name: "Shampoo", Stock: 5}
	p.ApplyDefaults()
	require.NoError(t, repos.Products.Create(ctx, p))

	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := repos.Products.AdjustStock(ctx, p.ID, -1)
			results <- err
		}()
	}
	var ok int
	for i := 0; i < 10; i++ {
		if <-results == nil {
			ok++
		}
	}
	assert.Equal(t, 5, ok)

	got, err := repos.Products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Stock)
}

func TestPostgresStores_MigrateAll(t *testing.T) {
	m, _ := newPostgresManager(t)
	ctx := context.Background()

	main, err := m.MainRepositories(ctx)
	require.NoError(t, err)
	b, err := platform.NewBusiness("Glow", "", "", "", "")
	require.NoError(t, err)
	b.AssignCode(1)
	require.NoError(t, main.Businesses.Create(ctx, b))

	report, err := m.MigrateAll(ctx, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Businesses)

	repos, err := m.BusinessRepositories(ctx, b.TenantID())
	require.NoError(t, err)
	n, err := repos.Clients.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
