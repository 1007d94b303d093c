//go:build integration

package integration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/message-notifier/internal/adapters/http"
	"github.com/jsamuelsen/message-notifier/internal/adapters/http/handlers"
	"github.com/jsamuelsen/message-notifier/internal/adapters/sites"
	"github.com/jsamuelsen/message-notifier/internal/bootstrap"
	"github.com/jsamuelsen/message-notifier/internal/domain"
	"github.com/jsamuelsen/message-notifier/internal/platform/config"
)

// outbox is a mail sender that keeps every email it is handed.
type outbox struct {
	mu     sync.Mutex
	emails []*domain.NotificationEmail
	fail   bool
}

func (o *outbox) Send(_ context.Context, email *domain.NotificationEmail) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fail {
		return domain.NewUnavailableError("outbox", "transport down")
	}

	o.emails = append(o.emails, email)

	return nil
}

func (o *outbox) reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.emails = nil
	o.fail = false
}

func (o *outbox) setFailing(fail bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.fail = fail
}

func (o *outbox) sent() []*domain.NotificationEmail {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]*domain.NotificationEmail(nil), o.emails...)
}

// service is an in-process notifier listening on a random local port.
type service struct {
	baseURL string
	redis   *miniredis.Miniredis
	siteKey string
}

// testConfig returns defaults suitable for an in-process service.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.App.Environment = "test"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Notify.DefaultFromEmail = "notifications@example.com"

	return cfg
}

// startService wires the service the way cmd/service does and serves it
// until the test ends. Sites come from a miniredis instance.
func startService(t *testing.T, cfg *config.Config, opts ...bootstrap.Option) *service {
	t.Helper()

	mr := miniredis.RunT(t)
	client := sites.NewRedisClient(config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg.Sites.Backend = config.SitesBackendRedis
	cfg.Redis.Addr = mr.Addr()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	components, err := bootstrap.Build(cfg, logger, append(opts, bootstrap.WithRedisClient(client))...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = components.Close() })

	buildInfo := handlers.NewBuildInfo("integration", "none", "now")
	buildInfo.MailBackend = cfg.Mail.Backend

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:   logger,
		Health:   handlers.NewHealthHandler(components.Health, buildInfo),
		Events:   handlers.NewEventsHandler(components.Notifier),
		Quotes:   handlers.NewQuotesHandler(components.Users, components.LocalizerFor),
		Accounts: handlers.NewAccountsHandler(components.Users),
		Timeout:  cfg.Server.RequestTimeout,
	})

	errCh := server.Start()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	default:
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("shutdown: %v", err)
		}
	})

	svc := &service{
		baseURL: "http://" + server.Addr(),
		redis:   mr,
		siteKey: cfg.Redis.SiteKey,
	}
	svc.setSite("example.com", "Example")

	return svc
}

func (s *service) setSite(domainName, name string) {
	s.redis.Del(s.siteKey)
	s.redis.HSet(s.siteKey, "id", "1", "domain", domainName, "name", name)
}

func (s *service) clearSite() {
	s.redis.Del(s.siteKey)
}
