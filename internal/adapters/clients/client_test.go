package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/message-notifier/internal/adapters/http/middleware"
	"github.com/jsamuelsen/message-notifier/internal/platform/config"
)

// relay starts a fake mail relay and returns a Client pointed at it with the
// number of requests the relay has seen.
func relay(t *testing.T, handler http.HandlerFunc, tweak ...func(*Config)) (*Client, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := &Config{
		BaseURL:     srv.URL,
		ServiceName: "mailer",
		Timeout:     2 * time.Second,
		Circuit:     config.CircuitBreakerConfig{MaxFailures: 3, Timeout: time.Minute, HalfOpenLimit: 1},
	}
	for _, fn := range tweak {
		fn(cfg)
	}

	client, err := New(cfg)
	require.NoError(t, err)

	return client, &hits
}

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(code) }
}

func drain(t *testing.T, resp *http.Response) {
	t.Helper()

	_, _ = io.Copy(io.Discard, resp.Body)
	require.NoError(t, resp.Body.Close())
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	require.ErrorContains(t, err, "config is required")

	_, err = New(&Config{BaseURL: "http://mailer.internal"})
	require.ErrorContains(t, err, "service name is required")

	client, err := New(&Config{BaseURL: "http://mailer.internal:8025/", ServiceName: "mailer"})
	require.NoError(t, err)
	assert.Equal(t, "mailer", client.ServiceName())
	assert.Equal(t, "http://mailer.internal:8025/v1/messages", client.url("v1/messages"))
	assert.Equal(t, "http://mailer.internal:8025/healthz", client.url("/healthz"))
	assert.Equal(t, defaultTimeout, client.http.Timeout)
	assert.Equal(t, StateClosed, client.CircuitState())
}

func TestNewTransport(t *testing.T) {
	tr := newTransport(config.TransportConfig{})
	assert.Equal(t, defaultMaxIdleConns, tr.MaxIdleConns)
	assert.Equal(t, defaultMaxIdleConnsPerHost, tr.MaxIdleConnsPerHost)
	assert.Equal(t, defaultIdleConnTimeout, tr.IdleConnTimeout)

	tr = newTransport(config.TransportConfig{MaxIdleConns: 7, MaxIdleConnsPerHost: 3, IdleConnTimeout: time.Second})
	assert.Equal(t, 7, tr.MaxIdleConns)
	assert.Equal(t, 3, tr.MaxIdleConnsPerHost)
	assert.Equal(t, time.Second, tr.IdleConnTimeout)
}

func TestClient_Post(t *testing.T) {
	var got *http.Request

	var body string

	client, _ := relay(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusAccepted)
	}, func(cfg *Config) {
		cfg.AuthFunc = func(r *http.Request) { r.Header.Set("Authorization", "Bearer relay-key") }
	})

	ctx := middleware.WithTrace(context.Background(), middleware.Trace{RequestID: "req-7", CorrelationID: "corr-7"})

	resp, err := client.Post(ctx, "/v1/messages", strings.NewReader(`{"recipient_list":["bob@example.com"]}`))
	require.NoError(t, err)
	drain(t, resp)

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "/v1/messages", got.URL.Path)
	assert.Equal(t, "Bearer relay-key", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "req-7", got.Header.Get(middleware.HeaderRequestID))
	assert.Equal(t, "corr-7", got.Header.Get(middleware.HeaderCorrelationID))
	assert.JSONEq(t, `{"recipient_list":["bob@example.com"]}`, body)
}

func TestClient_GetHasNoContentType(t *testing.T) {
	var contentType string

	client, _ := relay(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	})

	resp, err := client.Get(context.Background(), "/healthz")
	require.NoError(t, err)
	drain(t, resp)

	assert.Empty(t, contentType)
}

func TestClient_ResponsesAndBreaker(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		calls     int
		wantState State
	}{
		{name: "accepted", code: http.StatusAccepted, calls: 5, wantState: StateClosed},
		{name: "rejected payload", code: http.StatusUnprocessableEntity, calls: 5, wantState: StateClosed},
		{name: "throttled", code: http.StatusTooManyRequests, calls: 5, wantState: StateClosed},
		{name: "relay failing", code: http.StatusBadGateway, calls: 3, wantState: StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, hits := relay(t, status(tt.code))

			for range tt.calls {
				resp, err := client.Get(context.Background(), "/v1/messages")
				require.NoError(t, err, "status responses are returned, not errors")
				assert.Equal(t, tt.code, resp.StatusCode)
				drain(t, resp)
			}

			assert.Equal(t, tt.wantState, client.CircuitState())
			assert.Equal(t, int32(tt.calls), hits.Load(), "one attempt per call")
		})
	}
}

func TestClient_OpenCircuitSkipsRelay(t *testing.T) {
	client, hits := relay(t, status(http.StatusServiceUnavailable), func(cfg *Config) {
		cfg.Circuit.MaxFailures = 1
	})

	resp, err := client.Get(context.Background(), "/v1/messages")
	require.NoError(t, err)
	drain(t, resp)

	_, err = client.Get(context.Background(), "/v1/messages")
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_TransportFailures(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(status(http.StatusOK))
		srv.Close()

		client, err := New(&Config{BaseURL: srv.URL, ServiceName: "mailer"})
		require.NoError(t, err)

		_, err = client.Get(context.Background(), "/healthz")
		require.ErrorIs(t, err, ErrRequestFailed)
	})

	t.Run("timeout", func(t *testing.T) {
		client, _ := relay(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}, func(cfg *Config) { cfg.Timeout = 50 * time.Millisecond })

		_, err := client.Get(context.Background(), "/v1/messages")
		require.ErrorIs(t, err, ErrRequestFailed)
	})

	t.Run("canceled", func(t *testing.T) {
		client, hits := relay(t, status(http.StatusOK))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Get(ctx, "/v1/messages")
		require.ErrorIs(t, err, context.Canceled)
		require.ErrorIs(t, err, ErrRequestFailed)
		assert.Zero(t, hits.Load())
	})
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusAccepted))
	assert.Equal(t, "4xx", statusClass(http.StatusUnprocessableEntity))
	assert.Equal(t, "5xx", statusClass(http.StatusBadGateway))
}
