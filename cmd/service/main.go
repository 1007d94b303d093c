// Command service runs the message notifier HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jsamuelsen/message-notifier/internal/adapters/http"
	"github.com/jsamuelsen/message-notifier/internal/adapters/http/handlers"
	"github.com/jsamuelsen/message-notifier/internal/bootstrap"
	"github.com/jsamuelsen/message-notifier/internal/platform/config"
	"github.com/jsamuelsen/message-notifier/internal/platform/logging"
	"github.com/jsamuelsen/message-notifier/internal/platform/telemetry"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "notifier:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	profile, ok := os.LookupEnv("APP_ENVIRONMENT")
	if !ok || profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg)
	logging.SetDefault(logger)

	logger.Info("notifier starting",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("profile", profile),
		slog.String("mail_backend", cfg.Mail.Backend),
		slog.String("sites_backend", cfg.Sites.Backend),
	)

	// Telemetry goes first so the notifier's instruments bind to the
	// exporting meter provider.
	tel, err := telemetry.New(ctx, telemetryConfig(cfg))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	components, err := bootstrap.Build(cfg, logger)
	if err != nil {
		return errors.Join(fmt.Errorf("building components: %w", err), tel.Shutdown(context.WithoutCancel(ctx)))
	}

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), routes(cfg, logger, components))

	err = serve(ctx, logger, server, cfg.Server)

	if closeErr := components.Close(); closeErr != nil {
		logger.Error("closing components", slog.Any("error", closeErr))
	}

	if telErr := tel.Shutdown(context.WithoutCancel(ctx)); telErr != nil {
		logger.Error("flushing telemetry", slog.Any("error", telErr))
	}

	return err
}

func newLogger(cfg *config.Config) *slog.Logger {
	file := cfg.Log.File

	return logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    file.Enabled,
			Path:       file.Path,
			MaxSizeMB:  file.MaxSizeMB,
			MaxBackups: file.MaxBackups,
			MaxAgeDays: file.MaxAgeDays,
			Compress:   file.Compress,
		},
	})
}

func telemetryConfig(cfg *config.Config) *telemetry.Config {
	return &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  serviceName(cfg),
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Insecure:     cfg.Telemetry.Insecure,
	}
}

func serviceName(cfg *config.Config) string {
	if cfg.Telemetry.ServiceName != "" {
		return cfg.Telemetry.ServiceName
	}

	return cfg.App.Name
}

func routes(cfg *config.Config, logger *slog.Logger, c *bootstrap.Components) http.RouterConfig {
	info := handlers.NewBuildInfo(Version, Commit, BuildTime)
	info.MailBackend = cfg.Mail.Backend

	return http.RouterConfig{
		Logger:      logger,
		ServiceName: serviceName(cfg),
		Timeout:     cfg.Server.RequestTimeout,
		Health:      handlers.NewHealthHandler(c.Health, info),
		Events:      handlers.NewEventsHandler(c.Notifier),
		Quotes:      handlers.NewQuotesHandler(c.Users, c.LocalizerFor),
		Accounts:    handlers.NewAccountsHandler(c.Users),
	}
}

// serve blocks until ctx is cancelled or the listener fails, then drains
// in-flight webhook deliveries within ShutdownTimeout.
func serve(ctx context.Context, logger *slog.Logger, server *http.Server, cfg config.ServerConfig) error {
	failed := server.Start()
	logger.Info("listening", slog.String("addr", server.Addr()))

	select {
	case err, open := <-failed:
		if !open || err == nil {
			return nil
		}

		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("grace", cfg.ShutdownTimeout))

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("draining: %w", err)
	}

	logger.Info("stopped")

	return nil
}
