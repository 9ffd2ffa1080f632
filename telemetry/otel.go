package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// DefaultSampleRatio is used when SampleRatio is not in (0, 1].
const DefaultSampleRatio = 0.1

// OpenTelemetryConfig holds config values
type OpenTelemetryConfig struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string
	// SampleRatio is the share of root traces kept. Children follow their parent.
	SampleRatio float64
}

func (config OpenTelemetryConfig) sampler() trace.Sampler {
	ratio := config.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = DefaultSampleRatio
	}
	return trace.ParentBased(trace.TraceIDRatioBased(ratio))
}

// InitOpenTelemetry installs global trace and meter providers exporting to
// the OTLP endpoint. The returned function flushes and stops both.
func (config OpenTelemetryConfig) InitOpenTelemetry(ctx context.Context) (shutdown func(ctx context.Context) error, err error) {
	var shutdownFuncs []func(ctx context.Context) error

	shutdown = func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	handleErr := func(inErr error) {
		err = errors.Join(inErr, shutdown(ctx))
	}

	res := newResource(config.ServiceName, config.ServiceVersion)

	otel.SetTextMapPropagator(newPropagator())

	traceProvider, err := newTraceProvider(ctx, res, config.OTLPEndpoint, config.sampler())
	if err != nil {
		handleErr(err)
		return
	}
	shutdownFuncs = append(shutdownFuncs, traceProvider.Shutdown)

	meterProvider, err := newMeterProvider(ctx, res, config.OTLPEndpoint)
	if err != nil {
		handleErr(err)
		return
	}
	shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)

	return shutdown, nil
}

// newResource identifies this process. Every start gets its own instance id so
// replicas sharing a redis or bolt medium can be told apart.
func newResource(serviceName, serviceVersion string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
		semconv.ServiceInstanceID(uuid.NewString()),
	)
}

func newPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

func newTraceProvider(ctx context.Context, res *resource.Resource, url string, sampler trace.Sampler) (*trace.TracerProvider, error) {
	traceExporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(url),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create trace exporter: %w", err)
	}

	traceProvider := trace.NewTracerProvider(
		trace.WithSampler(sampler),
		trace.WithBatcher(traceExporter, trace.WithBatchTimeout(5*time.Second)),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(traceProvider)

	return traceProvider, nil
}

func newMeterProvider(ctx context.Context, res *resource.Resource, url string) (*sdkmetric.MeterProvider, error) {
	metricExporter, err := otlpmetricgrpc.New(
		ctx,
		otlpmetricgrpc.WithEndpoint(url),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create metric exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExporter,
				sdkmetric.WithInterval(60*time.Second),
			),
		),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
	)

	// the global provider must be set before runtime metrics start
	otel.SetMeterProvider(meterProvider)
	if err := runtime.Start(
		runtime.WithMeterProvider(meterProvider),
		runtime.WithMinimumReadMemStatsInterval(30*time.Second),
	); err != nil {
		return nil, fmt.Errorf("unable to start runtime metrics: %w", err)
	}

	return meterProvider, nil
}
