package telemetry_test

import (
	"context"
	"testing"

	"github.com/salon-crm/backend/internal/infrastructure/persistence/store"
	"github.com/salon-crm/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func openTracedRegistry(t *testing.T, cfg telemetry.Config) (*store.Registry, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	registry := store.NewRegistry("salon", store.NewSQLiteOpener("", nil),
		store.WithOpenHook(telemetry.StoreTracingHook(cfg, tp)),
	)
	t.Cleanup(func() { _ = registry.CloseAllConnections() })
	return registry, sr
}

func TestStoreTracingHook_Enabled(t *testing.T) {
	registry, sr := openTracedRegistry(t, telemetry.Config{DBTraceEnabled: true})

	conn, err := registry.GetConnection(context.Background(), "a1b2c3")
	require.NoError(t, err)

	var n int
	require.NoError(t, conn.DB.WithContext(context.Background()).Raw("SELECT 1").Scan(&n).Error)
	assert.Equal(t, 1, n)

	spans := sr.Ended()
	require.NotEmpty(t, spans)

	v, ok := attrValue(spans[len(spans)-1].Attributes(), string(telemetry.AttrTenantID))
	require.True(t, ok)
	assert.Equal(t, "a1b2c3", v.AsString())
}

func TestStoreTracingHook_Disabled(t *testing.T) {
	registry, sr := openTracedRegistry(t, telemetry.Config{DBTraceEnabled: false})

	conn, err := registry.GetMainConnection(context.Background())
	require.NoError(t, err)

	var n int
	require.NoError(t, conn.DB.Raw("SELECT 1").Scan(&n).Error)
	assert.Empty(t, sr.Ended())
}
