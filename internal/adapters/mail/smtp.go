package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/jsamuelsen/message-notifier/internal/domain"
	"github.com/jsamuelsen/message-notifier/internal/platform/config"
)

const smtpServiceName = "smtp"

// SMTPSender delivers email directly to an SMTP server.
type SMTPSender struct {
	client *gomail.Client
	host   string
	logger *slog.Logger
}

// NewSMTPSender creates a sender from SMTP settings.
// Authentication is enabled only when a username is configured.
func NewSMTPSender(cfg config.SMTPConfig, logger *slog.Logger) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	opts := []gomail.Option{
		gomail.WithTLSPolicy(tlsPolicy(cfg.TLSPolicy)),
	}

	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}

	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}

	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &SMTPSender{
		client: client,
		host:   cfg.Host,
		logger: logger.With(slog.String("component", "mail.SMTPSender")),
	}, nil
}

func tlsPolicy(name string) gomail.TLSPolicy {
	switch name {
	case "mandatory":
		return gomail.TLSMandatory
	case "none":
		return gomail.NoTLS
	default:
		return gomail.TLSOpportunistic
	}
}

// Send builds a MIME message and delivers it in a single SMTP session.
func (s *SMTPSender) Send(ctx context.Context, email *domain.NotificationEmail) error {
	msg, err := buildMessage(email)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return domain.WrapUnavailable(smtpServiceName, err)
	}

	s.logger.DebugContext(ctx, "email delivered",
		slog.String("host", s.host),
		slog.Int("recipients", len(email.To)),
		slog.Duration("duration", time.Since(start)),
	)

	return nil
}

func buildMessage(email *domain.NotificationEmail) (*gomail.Msg, error) {
	msg := gomail.NewMsg()

	if err := msg.From(email.From); err != nil {
		return nil, domain.NewValidationError("from", err.Error())
	}

	if err := msg.To(email.To...); err != nil {
		return nil, domain.NewValidationError("to", err.Error())
	}

	msg.Subject(email.Subject)

	contentType := gomail.TypeTextPlain
	if email.ContentType == domain.ContentTypeHTML {
		contentType = gomail.TypeTextHTML
	}

	msg.SetBodyString(contentType, email.Body)

	return msg, nil
}

// Name returns the health check name.
func (s *SMTPSender) Name() string {
	return smtpServiceName
}

// Check opens and closes an SMTP session.
func (s *SMTPSender) Check(ctx context.Context) error {
	if err := s.client.DialWithContext(ctx); err != nil {
		return domain.WrapUnavailable(smtpServiceName, err)
	}

	return s.client.Close()
}
