package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/message-notifier/internal/platform/logging"
)

const instrumentationName = "github.com/jsamuelsen/message-notifier/telemetry"

// HeaderTraceID echoes the request's trace ID to the caller.
const HeaderTraceID = "X-Trace-ID"

type serverMetrics struct {
	duration metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

func newServerMetrics(provider metric.MeterProvider) (*serverMetrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	meter := provider.Meter(instrumentationName)

	duration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of webhook and API requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Requests currently being served"),
	)
	if err != nil {
		return nil, err
	}

	return &serverMetrics{duration: duration, inFlight: inFlight}, nil
}

// ServerMiddleware returns the gin middleware that traces and measures each
// request. With an empty serviceName no spans are started. A nil provider
// uses the global meter provider.
//
// When a span is active its trace ID is echoed in X-Trace-ID and added to the
// context logger.
func ServerMiddleware(serviceName string, provider metric.MeterProvider) []gin.HandlerFunc {
	var chain []gin.HandlerFunc
	if serviceName != "" {
		chain = append(chain, otelgin.Middleware(serviceName))
	}

	metrics, err := newServerMetrics(provider)
	if err != nil {
		// Serving continues without HTTP metrics.
		otel.Handle(err)
	}

	return append(chain, func(c *gin.Context) {
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			traceID := sc.TraceID().String()
			c.Header(HeaderTraceID, traceID)
			c.Request = c.Request.WithContext(logging.With(c.Request.Context(), logging.KeyTraceID, traceID))
		}

		if metrics == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		route := attribute.String("http.route", c.FullPath())
		method := attribute.String("http.request.method", c.Request.Method)

		metrics.inFlight.Add(ctx, 1, metric.WithAttributes(method, route))
		start := time.Now()

		c.Next()

		metrics.inFlight.Add(ctx, -1, metric.WithAttributes(method, route))
		metrics.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			method,
			route,
			attribute.Int("http.response.status_code", c.Writer.Status()),
		))
	})
}
