package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	AttrStoreKind = attribute.Key("store.kind")
	AttrEntity    = attribute.Key("entity")
	AttrOutcome   = attribute.Key("outcome")
)

const (
	storeKindMain   = "main"
	storeKindTenant = "tenant"
	outcomeSuccess  = "success"
	outcomeError    = "error"
)

// StoreMetrics records connection cache and model binding activity. It
// satisfies both the registry observer and the model factory observer.
type StoreMetrics struct {
	mainStore string

	opens        metric.Int64Counter
	openDuration metric.Float64Histogram
	openStores   metric.Int64UpDownCounter
	binds        metric.Int64Counter
	bindDuration metric.Float64Histogram
}

// NewStoreMetrics creates the instruments on meter. mainStore is the
// computed name of the cross-tenant store.
func NewStoreMetrics(meter metric.Meter, mainStore string) (*StoreMetrics, error) {
	m := &StoreMetrics{mainStore: mainStore}
	var err error

	if m.opens, err = meter.Int64Counter("salon.store.opens",
		metric.WithDescription("Store connection open attempts"),
		metric.WithUnit("{open}"),
	); err != nil {
		return nil, err
	}
	if m.openDuration, err = meter.Float64Histogram("salon.store.open.duration",
		metric.WithDescription("Time spent opening a store connection"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.openStores, err = meter.Int64UpDownCounter("salon.store.connections",
		metric.WithDescription("Store connections currently cached"),
		metric.WithUnit("{connection}"),
	); err != nil {
		return nil, err
	}
	if m.binds, err = meter.Int64Counter("salon.model.binds",
		metric.WithDescription("Entity schema bindings per store"),
		metric.WithUnit("{bind}"),
	); err != nil {
		return nil, err
	}
	if m.bindDuration, err = meter.Float64Histogram("salon.model.bind.duration",
		metric.WithDescription("Time spent migrating and binding an entity schema"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *StoreMetrics) kind(storeName string) attribute.KeyValue {
	if storeName == m.mainStore {
		return AttrStoreKind.String(storeKindMain)
	}
	return AttrStoreKind.String(storeKindTenant)
}

func outcome(err error) attribute.KeyValue {
	if err != nil {
		return AttrOutcome.String(outcomeError)
	}
	return AttrOutcome.String(outcomeSuccess)
}

// StoreOpened implements store.Observer.
func (m *StoreMetrics) StoreOpened(ctx context.Context, storeName string, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(m.kind(storeName), outcome(err))
	m.opens.Add(ctx, 1, attrs)
	m.openDuration.Record(ctx, elapsed.Seconds(), attrs)
	if err == nil {
		m.openStores.Add(ctx, 1, metric.WithAttributes(m.kind(storeName)))
	}
}

// StoreClosed implements store.Observer.
func (m *StoreMetrics) StoreClosed(storeName string) {
	m.openStores.Add(context.Background(), -1, metric.WithAttributes(m.kind(storeName)))
}

// ModelBound implements persistence.BindObserver.
func (m *StoreMetrics) ModelBound(ctx context.Context, storeName, entity string, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(m.kind(storeName), AttrEntity.String(entity), outcome(err))
	m.binds.Add(ctx, 1, attrs)
	m.bindDuration.Record(ctx, elapsed.Seconds(), attrs)
}
