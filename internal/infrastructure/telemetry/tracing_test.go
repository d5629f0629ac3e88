package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/salon-crm/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs an in-memory recorder as the global provider.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "sale", "create",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, "b-1"),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "sale.create", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())

	v, ok := attrValue(spans[0].Attributes(), telemetry.SpanAttrTenantID)
	require.True(t, ok)
	assert.Equal(t, "b-1", v.AsString())
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "cash_registry.submit")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrShiftType, "closing",
		telemetry.SpanAttrQuantity, 3,
		42, "skipped",
		"dangling",
	)
	span.End()

	attrs := sr.Ended()[0].Attributes()
	v, ok := attrValue(attrs, telemetry.SpanAttrShiftType)
	require.True(t, ok)
	assert.Equal(t, "closing", v.AsString())
	v, ok = attrValue(attrs, telemetry.SpanAttrQuantity)
	require.True(t, ok)
	assert.Equal(t, int64(3), v.AsInt64())
	_, ok = attrValue(attrs, "dangling")
	assert.False(t, ok)
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "sale.create")
	telemetry.RecordError(span, errors.New("insufficient stock"))
	telemetry.RecordError(span, nil)
	telemetry.RecordError(nil, errors.New("ignored"))
	span.End()

	ended := sr.Ended()[0]
	assert.Equal(t, codes.Error, ended.Status().Code)
	assert.Equal(t, "insufficient stock", ended.Status().Description)
	require.Len(t, ended.Events(), 1)
}

func TestAddEventAndTraceID(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartSpan(context.Background(), "inventory.adjust")
	telemetry.AddEvent(span, "stock_adjusted", telemetry.SpanAttrProductID, "p-1")
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "stock_adjusted", events[0].Name)

	assert.Empty(t, telemetry.GetTraceID(context.Background()))
}
