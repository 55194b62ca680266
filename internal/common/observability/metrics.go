// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"people-search/internal/common/logger"
)

// Observability owns the OpenTelemetry meter provider. Its instruments are
// exported through the Prometheus registry served on /metrics.
type Observability struct {
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	searchCounter  otelmetric.Int64Counter
	searchDuration otelmetric.Float64Histogram
	resultCount    otelmetric.Int64Histogram
}

func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err.Error()})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	searchCounter, _ := meter.Int64Counter(
		"searches.processed",
		otelmetric.WithDescription("Number of searches processed"),
	)

	searchDuration, _ := meter.Float64Histogram(
		"searches.duration",
		otelmetric.WithDescription("Search processing duration"),
		otelmetric.WithUnit("ms"),
	)

	resultCount, _ := meter.Int64Histogram(
		"searches.results",
		otelmetric.WithDescription("Number of result items returned per search"),
	)

	return &Observability{
		meterProvider:  provider,
		meter:          meter,
		searchCounter:  searchCounter,
		searchDuration: searchDuration,
		resultCount:    resultCount,
	}
}

// RecordSearch records one finished search. A nil receiver is a no-op.
func (o *Observability) RecordSearch(ctx context.Context, strategy, status string, duration time.Duration, results int) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("strategy", strategy),
		attribute.String("status", status),
	)
	if o.searchCounter != nil {
		o.searchCounter.Add(ctx, 1, attrs)
	}
	if o.searchDuration != nil {
		o.searchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
	if o.resultCount != nil && status == "ok" {
		o.resultCount.Record(ctx, int64(results), attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
