// Package bootstrap assembles the notifier's component graph from configuration.
// The service, the msgctl CLI and the integration suite all build through it.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jsamuelsen/message-notifier/internal/adapters/accounts"
	"github.com/jsamuelsen/message-notifier/internal/adapters/mail"
	"github.com/jsamuelsen/message-notifier/internal/adapters/sites"
	"github.com/jsamuelsen/message-notifier/internal/adapters/templates"
	"github.com/jsamuelsen/message-notifier/internal/app"
	"github.com/jsamuelsen/message-notifier/internal/platform/config"
	"github.com/jsamuelsen/message-notifier/internal/platform/i18n"
	"github.com/jsamuelsen/message-notifier/internal/platform/telemetry"
	"github.com/jsamuelsen/message-notifier/internal/ports"
)

// Components is the wired application.
type Components struct {
	Notifier  *app.Notifier
	Users     *app.UserModelResolver
	Renderer  *templates.Renderer
	Sites     ports.SiteRegistry
	Mail      ports.MailSender
	Health    *ports.DefaultHealthRegistry
	Bundle    *i18n.Bundle
	Localizer *i18n.Localizer

	closers []func() error
}

// Option overrides a component that would otherwise be built from config.
type Option func(*options)

type options struct {
	mail  ports.MailSender
	redis *redis.Client
}

// WithMailSender replaces the configured mail backend.
func WithMailSender(sender ports.MailSender) Option {
	return func(o *options) { o.mail = sender }
}

// WithRedisClient supplies the client for the redis site registry.
// The caller keeps ownership; Close does not close it.
func WithRedisClient(client *redis.Client) Option {
	return func(o *options) { o.redis = client }
}

// Build wires every component named by cfg.
func Build(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Components, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Components{Health: ports.NewHealthRegistry()}

	bundle, err := i18n.NewBundle()
	if err != nil {
		return nil, fmt.Errorf("loading translations: %w", err)
	}

	localizer, err := bundle.Localizer(cfg.I18n.Language)
	if err != nil {
		return nil, fmt.Errorf("selecting language: %w", err)
	}

	c.Bundle = bundle
	c.Localizer = localizer

	c.Renderer, err = templates.NewRenderer(templates.Options{
		Dir:    cfg.Templates.Dir,
		Quote:  app.NewQuoteFormatter(localizer).FormatQuote,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating template renderer: %w", err)
	}

	if err := c.buildSites(cfg, logger, o.redis); err != nil {
		return nil, err
	}

	if err := c.buildMail(cfg, logger, o.mail); err != nil {
		return nil, err
	}

	c.Users = app.NewUserModelResolver(accounts.New(cfg.Accounts))

	metrics, err := telemetry.NewNotifyMetrics(nil)
	if err != nil {
		return nil, fmt.Errorf("creating notifier metrics: %w", err)
	}

	c.Notifier = app.NewNotifier(app.NotifierConfig{
		Sites:           c.Sites,
		Templates:       c.Renderer,
		Mail:            c.Mail,
		Localizer:       localizer,
		Recorder:        metrics,
		Logger:          logger,
		DefaultProtocol: cfg.Notify.DefaultHTTPProtocol,
		FromEmail:       cfg.Notify.DefaultFromEmail,
		TemplateName:    cfg.Notify.TemplateName,
	})

	return c, nil
}

func (c *Components) buildSites(cfg *config.Config, logger *slog.Logger, client *redis.Client) error {
	switch cfg.Sites.Backend {
	case config.SitesBackendRedis:
		if client == nil {
			client = sites.NewRedisClient(cfg.Redis)
			c.closers = append(c.closers, client.Close)
		}

		registry := sites.NewRedis(client, cfg.Redis.SiteKey, logger)
		if err := c.Health.Register(registry); err != nil {
			return fmt.Errorf("registering site registry health check: %w", err)
		}

		c.Sites = registry

	case config.SitesBackendStatic, "":
		c.Sites = sites.NewStatic(cfg.Site)

	default:
		return fmt.Errorf("unknown sites backend %q", cfg.Sites.Backend)
	}

	return nil
}

func (c *Components) buildMail(cfg *config.Config, logger *slog.Logger, override ports.MailSender) error {
	if override != nil {
		c.Mail = override
		return nil
	}

	sender, checkers, err := mail.NewSender(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating mail sender: %w", err)
	}

	for _, checker := range checkers {
		if err := c.Health.Register(checker); err != nil {
			return fmt.Errorf("registering mail health check: %w", err)
		}
	}

	c.Mail = sender

	return nil
}

// LocalizerFor returns the localizer for lang, or the configured one when
// lang is empty.
func (c *Components) LocalizerFor(lang string) (ports.Localizer, error) {
	if lang == "" {
		return c.Localizer, nil
	}

	return c.Bundle.Localizer(lang)
}

// Close releases connections opened by Build.
func (c *Components) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
