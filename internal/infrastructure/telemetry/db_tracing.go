package telemetry

import (
	"fmt"

	"github.com/salon-crm/backend/internal/infrastructure/persistence/store"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AttrTenantID tags database spans with the owning tenant.
const AttrTenantID = attribute.Key("salon.tenant_id")

// StoreTracingHook returns a store.OpenHook that installs otelgorm on every
// newly opened connection. Query variables are never attached to spans.
// When DB tracing is off the hook is a no-op.
func StoreTracingHook(cfg Config, provider trace.TracerProvider) store.OpenHook {
	return func(conn *store.Connection) error {
		if !cfg.DBTraceEnabled {
			return nil
		}

		opts := []otelgorm.Option{
			otelgorm.WithDBName(conn.Name),
			otelgorm.WithoutQueryVariables(),
			otelgorm.WithoutMetrics(),
		}
		if conn.TenantID != "" {
			opts = append(opts, otelgorm.WithAttributes(AttrTenantID.String(conn.TenantID)))
		}
		if provider != nil {
			opts = append(opts, otelgorm.WithTracerProvider(provider))
		}

		if err := conn.DB.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return fmt.Errorf("failed to register otelgorm on %s: %w", conn.Name, err)
		}
		return nil
	}
}
