package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/message-notifier/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestServerMiddleware_RecordsDuration(t *testing.T) {
	reader := sdkmetric.NewManualReader()

	router := gin.New()
	router.Use(ServerMiddleware("", sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))...)
	router.POST("/api/v1/events/message-saved", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	router.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/api/v1/events/message-saved", http.NoBody))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var found bool

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http.server.request.duration" {
				continue
			}

			hist, ok := m.Data.(metricdata.Histogram[float64])
			require.True(t, ok)
			require.Len(t, hist.DataPoints, 1)

			dp := hist.DataPoints[0]
			route, _ := dp.Attributes.Value(attribute.Key("http.route"))
			status, _ := dp.Attributes.Value(attribute.Key("http.response.status_code"))

			assert.Equal(t, "/api/v1/events/message-saved", route.AsString())
			assert.Equal(t, int64(http.StatusAccepted), status.AsInt64())
			assert.Equal(t, uint64(1), dp.Count)

			found = true
		}
	}

	assert.True(t, found, "duration histogram not recorded")
}

func TestServerMiddleware_EchoesTraceID(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     trace.SpanID{1},
		TraceFlags: trace.FlagsSampled,
	})

	var buf bytes.Buffer

	base := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		ctx := trace.ContextWithSpanContext(c.Request.Context(), spanCtx)
		c.Request = c.Request.WithContext(logging.WithContext(ctx, base))
	})
	router.Use(ServerMiddleware("", sdkmetric.NewMeterProvider())...)
	router.GET("/api/v1/quotes", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("quoting")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/quotes", http.NoBody))

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", w.Header().Get(HeaderTraceID))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry[logging.KeyTraceID])
}

func TestServerMiddleware_NoSpanNoHeader(t *testing.T) {
	router := gin.New()
	router.Use(ServerMiddleware("", sdkmetric.NewMeterProvider())...)
	router.GET("/-/live", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/live", http.NoBody))

	assert.Empty(t, w.Header().Get(HeaderTraceID))
}

func TestServerMiddleware_ServiceNameAddsTracing(t *testing.T) {
	assert.Len(t, ServerMiddleware("", nil), 1)
	assert.Len(t, ServerMiddleware("message-notifier", nil), 2)
}
