package localmetrics

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestReader(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if err := New(); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return reader
}

func collectNames(t *testing.T, reader *sdkmetric.ManualReader) map[string]bool {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Failed to collect metrics: %v", err)
	}
	names := make(map[string]bool)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	return names
}

func TestNew(t *testing.T) {
	newTestReader(t)

	if SaveCounter() == nil {
		t.Error("SaveCounter() returned nil")
	}
	if GetCounter() == nil {
		t.Error("GetCounter() returned nil")
	}
	if NotFoundCounter() == nil {
		t.Error("NotFoundCounter() returned nil")
	}
	if ListCounter() == nil {
		t.Error("ListCounter() returned nil")
	}
	if DeleteCounter() == nil {
		t.Error("DeleteCounter() returned nil")
	}
	if StoredGauge() == nil {
		t.Error("StoredGauge() returned nil")
	}
}

func TestRecording(t *testing.T) {
	reader := newTestReader(t)
	ctx := context.Background()

	SaveCounter().Add(ctx, 1, metric.WithAttributes(attribute.String("storage", "inmemory")))
	GetCounter().Add(ctx, 2)
	NotFoundCounter().Add(ctx, 1)
	DeleteCounter().Add(ctx, 1)
	StoredGauge().Record(ctx, 5)

	names := collectNames(t, reader)
	for _, name := range []string{
		"memorylove.save.count",
		"memorylove.get.count",
		"memorylove.notfound.count",
		"memorylove.delete.count",
		"memorylove.stored.gauge",
	} {
		if !names[name] {
			t.Errorf("Expected metric %s to be recorded", name)
		}
	}
}
