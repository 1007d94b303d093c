// Package clients provides the instrumented HTTP client used to reach the
// mail relay. Each call is a single attempt guarded by a Breaker.
package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/message-notifier/internal/adapters/http/middleware"
	"github.com/jsamuelsen/message-notifier/internal/platform/config"
	"github.com/jsamuelsen/message-notifier/internal/platform/logging"
)

// ErrRequestFailed wraps a transport failure: the relay never answered.
var ErrRequestFailed = errors.New("request failed")

const (
	instrumentationName = "github.com/jsamuelsen/message-notifier/internal/adapters/clients"

	defaultTimeout = 10 * time.Second

	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
)

// Config configures a Client.
type Config struct {
	// BaseURL prefixes every request path, e.g. "http://mailer.internal:8025".
	BaseURL string

	// ServiceName names the downstream in logs, spans and metrics. Required.
	ServiceName string

	Timeout   time.Duration
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// AuthFunc, if set, adds credentials to every outbound request.
	AuthFunc func(*http.Request)

	Logger *slog.Logger
}

// Client sends single-attempt HTTP requests to one downstream service.
// Every request carries the caller's request and correlation IDs and the
// W3C trace context, and is recorded as a client span and metric.
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	authFunc    func(*http.Request)
	logger      *slog.Logger
	breaker     *Breaker
	tracer      trace.Tracer
	metrics     *clientMetrics
}

// New validates cfg and builds a Client with a closed breaker.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("downstream", cfg.ServiceName))

	metrics, err := newClientMetrics()
	if err != nil {
		return nil, err
	}

	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: newTransport(cfg.Transport),
		},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName: cfg.ServiceName,
		authFunc:    cfg.AuthFunc,
		logger:      logger,
		breaker: NewBreaker(cfg.Circuit, func(from, to State) {
			logger.Warn("circuit breaker state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		}),
		tracer:  otel.Tracer(instrumentationName),
		metrics: metrics,
	}, nil
}

func newTransport(cfg config.TransportConfig) *http.Transport {
	t := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}

	if t.MaxIdleConns <= 0 {
		t.MaxIdleConns = defaultMaxIdleConns
	}

	if t.MaxIdleConnsPerHost <= 0 {
		t.MaxIdleConnsPerHost = defaultMaxIdleConnsPerHost
	}

	if t.IdleConnTimeout <= 0 {
		t.IdleConnTimeout = defaultIdleConnTimeout
	}

	return t
}

// Do sends req once. Transport errors and 5xx responses count against the
// breaker; a 5xx response is still returned so the caller can translate it.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", c.serviceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	release, err := c.breaker.Acquire()
	if err != nil {
		c.metrics.observe(ctx, c.serviceName, req.Method, outcomeCircuitOpen, 0, time.Since(start))
		logger.Warn("request blocked by circuit breaker")

		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "HTTP "+req.Method+" "+c.serviceName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	c.decorate(ctx, req)

	resp, err := c.http.Do(req.WithContext(ctx))
	elapsed := time.Since(start)

	if err != nil {
		release(false)
		span.SetStatus(codes.Error, err.Error())

		outcome := outcomeError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = outcomeCanceled
		}

		c.metrics.observe(ctx, c.serviceName, req.Method, outcome, 0, elapsed)
		logger.Error("request failed", slog.Duration("duration", elapsed), slog.Any("error", err))

		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	release(resp.StatusCode < http.StatusInternalServerError)

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, resp.Status)
	}

	c.metrics.observe(ctx, c.serviceName, req.Method, statusClass(resp.StatusCode), resp.StatusCode, elapsed)
	logger.Debug("request completed", slog.Int("status", resp.StatusCode), slog.Duration("duration", elapsed))

	return resp, nil
}

// Get sends a GET for path relative to the base URL.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.send(ctx, http.MethodGet, path, http.NoBody)
}

// Post sends body as JSON to path relative to the base URL.
func (c *Client) Post(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	return c.send(ctx, http.MethodPost, path, body)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.Do(ctx, req)
}

// CircuitState returns the current state of the circuit breaker.
func (c *Client) CircuitState() State {
	return c.breaker.State()
}

// ServiceName returns the downstream name used in logs, spans and metrics.
func (c *Client) ServiceName() string {
	return c.serviceName
}

// decorate adds the caller's IDs, the span context and credentials.
func (c *Client) decorate(ctx context.Context, req *http.Request) {
	middleware.TraceFrom(ctx).Inject(req.Header)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	if c.authFunc != nil {
		c.authFunc(req)
	}
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

// Outcomes recorded on http.client.request.* besides the status class.
const (
	outcomeCircuitOpen = "circuit_open"
	outcomeError       = "error"
	outcomeCanceled    = "context_canceled"
)

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

type clientMetrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
}

func newClientMetrics() (*clientMetrics, error) {
	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of requests to the mail relay"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	total, err := meter.Int64Counter(
		"http.client.request.total",
		metric.WithDescription("Requests to the mail relay by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &clientMetrics{duration: duration, total: total}, nil
}

func (m *clientMetrics) observe(ctx context.Context, service, method, outcome string, status int, elapsed time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", method),
		attribute.String("peer.service", service),
		attribute.String("result", outcome),
	}

	if status > 0 {
		attrs = append(attrs, attribute.Int("http.response.status_code", status))
	}

	set := metric.WithAttributes(attrs...)
	m.duration.Record(ctx, elapsed.Seconds(), set)
	m.total.Add(ctx, 1, set)
}
