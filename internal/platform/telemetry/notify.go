package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// NotifyMetrics records the outcome of new message notifications.
type NotifyMetrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewNotifyMetrics creates notifier instruments on provider.
// A nil provider uses the global meter provider.
func NewNotifyMetrics(provider metric.MeterProvider) (*NotifyMetrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	meter := provider.Meter(instrumentationName)

	total, err := meter.Int64Counter(
		"notify.new_message.total",
		metric.WithDescription("New message notifications by result and failing stage"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"notify.new_message.duration",
		metric.WithDescription("Time spent rendering and sending a notification"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &NotifyMetrics{total: total, duration: duration}, nil
}

// RecordNotification counts one notification attempt.
// stage is empty for successful and skipped notifications.
func (m *NotifyMetrics) RecordNotification(ctx context.Context, result, stage string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("result", result),
		attribute.String("stage", stage),
	)

	m.total.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
