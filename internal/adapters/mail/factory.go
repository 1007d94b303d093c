package mail

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen/message-notifier/internal/adapters/clients"
	"github.com/jsamuelsen/message-notifier/internal/adapters/clients/acl"
	"github.com/jsamuelsen/message-notifier/internal/platform/config"
	"github.com/jsamuelsen/message-notifier/internal/ports"
)

// NewSender builds the sender selected by cfg.Mail.Backend.
// The returned checkers cover senders that talk to a network peer and
// should be registered for readiness.
func NewSender(cfg *config.Config, logger *slog.Logger) (ports.MailSender, []ports.HealthChecker, error) {
	switch cfg.Mail.Backend {
	case config.MailBackendSMTP:
		sender, err := NewSMTPSender(cfg.Mail.SMTP, logger)
		if err != nil {
			return nil, nil, err
		}

		return sender, []ports.HealthChecker{sender}, nil

	case config.MailBackendMailer:
		sender, err := newMailerSender(cfg, logger)
		if err != nil {
			return nil, nil, err
		}

		return sender, []ports.HealthChecker{sender}, nil

	case config.MailBackendResend:
		sender, err := NewResendSender(cfg.Mail.Resend.APIKey, logger)
		if err != nil {
			return nil, nil, err
		}

		return sender, nil, nil

	case config.MailBackendLog, "":
		return NewLogSender(logger), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown mail backend %q", cfg.Mail.Backend)
	}
}

func newMailerSender(cfg *config.Config, logger *slog.Logger) (*acl.MailerClient, error) {
	var auth func(*http.Request)
	if key := cfg.Mail.Mailer.APIKey; key != "" {
		auth = func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+key)
		}
	}

	client, err := clients.New(&clients.Config{
		BaseURL:     cfg.Mail.Mailer.BaseURL,
		ServiceName: cfg.Mail.Mailer.Name,
		Timeout:     cfg.Client.Timeout,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		AuthFunc:    auth,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating mailer client: %w", err)
	}

	return acl.NewMailerClient(acl.MailerClientConfig{
		Client:   client,
		Priority: cfg.Mail.Mailer.Priority,
		Logger:   logger,
	}), nil
}
