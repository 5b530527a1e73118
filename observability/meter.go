package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/opkit/logger"
)

// InitMeter installs a periodic OTLP/HTTP meter provider as global. The
// provider must be shut down on exit.
func InitMeter(ctx context.Context, cfg Config, res Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(newResource(res)),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))
	return mp, nil
}

// Meter returns the opkit meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// Metrics holds the instruments recorded by the dispatcher and the error
// middleware.
type Metrics struct {
	dispatchTotal    metric.Int64Counter
	dispatchDuration metric.Float64Histogram
	errorResponses   metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	dispatchTotal, err := meter.Int64Counter("opkit.dispatch.total",
		metric.WithDescription("Outbound operation calls by service, operation and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating opkit.dispatch.total counter: %w", err)
	}

	dispatchDuration, err := meter.Float64Histogram("opkit.dispatch.duration",
		metric.WithDescription("Duration of outbound operation calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating opkit.dispatch.duration histogram: %w", err)
	}

	errorResponses, err := meter.Int64Counter("opkit.error_responses.total",
		metric.WithDescription("Error responses written by code and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating opkit.error_responses.total counter: %w", err)
	}

	return &Metrics{
		dispatchTotal:    dispatchTotal,
		dispatchDuration: dispatchDuration,
		errorResponses:   errorResponses,
	}, nil
}

// DefaultMetrics creates the instruments on the global meter. It never
// fails with the no-op provider.
func DefaultMetrics() *Metrics {
	m, err := NewMetrics(Meter())
	if err != nil {
		logger.Warn("metrics disabled", logger.Fields(logger.FieldError, err.Error()))
		return nil
	}
	return m
}

// RecordDispatch records one outbound call. outcome is "ok", "error" or
// "failed" for transport failures; status is 0 when no response arrived.
func (m *Metrics) RecordDispatch(ctx context.Context, service, operation, outcome string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.dispatchTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
		attribute.String("status", strconv.Itoa(status)),
	))
	m.dispatchDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
	))
}

// RecordErrorResponse records one error response written to a client.
func (m *Metrics) RecordErrorResponse(ctx context.Context, code string, status int) {
	if m == nil {
		return
	}
	m.errorResponses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.Int("status", status),
	))
}
