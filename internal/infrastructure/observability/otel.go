package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/mokarr/appointpro"

// Metrics holds all application metrics
type Metrics struct {
	RequestCount      metric.Int64Counter
	RequestDuration   metric.Float64Histogram
	DBQueryDuration   metric.Float64Histogram
	CacheHitCount     metric.Int64Counter
	CacheMissCount    metric.Int64Counter
	SlotsComputed     metric.Int64Counter
	ConflictsFound    metric.Int64Counter
	BookingsCancelled metric.Int64Counter
	TxRetries         metric.Int64Counter
}

// metricInterval is how often metrics are pushed to the collector
const metricInterval = 30 * time.Second

// Setup initializes OpenTelemetry tracing and metrics. InitMetrics must run after it
// so that instruments bind to the exporting meter provider.
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		_ = tracerProvider.Shutdown(ctx)
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(metricInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	// Go runtime metrics (GC, goroutines, memory)
	if err := runtime.Start(runtime.WithMeterProvider(meterProvider)); err != nil {
		_ = meterProvider.Shutdown(ctx)
		_ = tracerProvider.Shutdown(ctx)
		return nil, err
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			meterProvider.Shutdown(ctx),
			tracerProvider.Shutdown(ctx),
		)
	}

	return shutdown, nil
}

// InitMetrics initializes application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)
	m := &Metrics{}
	var err error

	if m.RequestCount, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.RequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.DBQueryDuration, err = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.CacheHitCount, err = meter.Int64Counter(
		"cache.hit.count",
		metric.WithDescription("Number of cache hits"),
	); err != nil {
		return nil, err
	}
	if m.CacheMissCount, err = meter.Int64Counter(
		"cache.miss.count",
		metric.WithDescription("Number of cache misses"),
	); err != nil {
		return nil, err
	}
	if m.SlotsComputed, err = meter.Int64Counter(
		"availability.slots.computed",
		metric.WithDescription("Number of time slots generated"),
	); err != nil {
		return nil, err
	}
	if m.ConflictsFound, err = meter.Int64Counter(
		"availability.conflicts.found",
		metric.WithDescription("Number of conflicting bookings reported by availability checks"),
	); err != nil {
		return nil, err
	}
	if m.BookingsCancelled, err = meter.Int64Counter(
		"availability.bookings.cancelled",
		metric.WithDescription("Number of bookings cancelled to resolve conflicts"),
	); err != nil {
		return nil, err
	}
	if m.TxRetries, err = meter.Int64Counter(
		"db.tx.retries",
		metric.WithDescription("Number of transactions re-run after a serialization failure"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(instrumentationName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError records an error in the current span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// RecordRequestMetric records a metric with attributes
func RecordRequestMetric(ctx context.Context, metrics *Metrics, method, path string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	}

	metrics.RequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.RequestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordDBMetric records a database operation metric
func RecordDBMetric(ctx context.Context, metrics *Metrics, operation string, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.DBQueryDuration.Record(ctx, float64(duration.Milliseconds()),
		metric.WithAttributes(attribute.String("db.operation", operation)))
}

// RecordCacheHit records a cache hit
func RecordCacheHit(ctx context.Context, metrics *Metrics, key string) {
	if metrics == nil {
		return
	}
	metrics.CacheHitCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.key", key)))
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(ctx context.Context, metrics *Metrics, key string) {
	if metrics == nil {
		return
	}
	metrics.CacheMissCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.key", key)))
}

// RecordSlots counts generated slots per operation
func RecordSlots(ctx context.Context, metrics *Metrics, operation string, n int) {
	if metrics == nil || n == 0 {
		return
	}
	metrics.SlotsComputed.Add(ctx, int64(n), metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordConflicts counts reported conflicts by kind (regular or class)
func RecordConflicts(ctx context.Context, metrics *Metrics, kind string, n int) {
	if metrics == nil || n == 0 {
		return
	}
	metrics.ConflictsFound.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordCancelled counts bookings cancelled by conflict resolution
func RecordCancelled(ctx context.Context, metrics *Metrics, n int64) {
	if metrics == nil || n == 0 {
		return
	}
	metrics.BookingsCancelled.Add(ctx, n)
}

// RecordTxRetry counts a re-run of a named transaction
func RecordTxRetry(ctx context.Context, metrics *Metrics, name string) {
	if metrics == nil {
		return
	}
	metrics.TxRetries.Add(ctx, 1, metric.WithAttributes(attribute.String("tx", name)))
}
