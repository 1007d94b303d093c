package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/message-notifier/internal/adapters/http/handlers"
	"github.com/jsamuelsen/message-notifier/internal/adapters/http/middleware"
	"github.com/jsamuelsen/message-notifier/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
// Nil handlers are not mounted.
type RouterConfig struct {
	Logger      *slog.Logger
	ServiceName string

	Health   *handlers.HealthHandler
	Events   *handlers.EventsHandler
	Quotes   *handlers.QuotesHandler
	Accounts *handlers.AccountsHandler

	// Timeout bounds /api/v1 requests. Zero uses DefaultRequestTimeout.
	Timeout time.Duration
}

// SetupRouter configures middleware and routes on the Gin engine.
// Middleware runs in this order:
//  1. Recovery
//  2. Base logger into the request context
//  3. Request ID and correlation ID
//  4. OpenTelemetry tracing (otelgin, when ServiceName is set) and HTTP metrics
//  5. Request logging (skips /-/)
//  6. Timeout on /api/v1 only
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(),
		middleware.Logger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)

	engine.Use(telemetry.ServerMiddleware(cfg.ServiceName, nil)...)
	engine.Use(middleware.Logging())

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(engine)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	api := engine.Group("/api/v1")
	api.Use(middleware.Timeout(timeout))

	if cfg.Events != nil {
		cfg.Events.RegisterRoutes(api)
	}

	if cfg.Quotes != nil {
		cfg.Quotes.RegisterRoutes(api)
	}

	if cfg.Accounts != nil {
		cfg.Accounts.RegisterRoutes(api)
	}
}
