package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/resend/resend-go/v2"

	"github.com/jsamuelsen/message-notifier/internal/domain"
)

const resendServiceName = "resend"

// ResendSender delivers email through the Resend API.
type ResendSender struct {
	client *resend.Client
	logger *slog.Logger
}

// ResendOption customizes a ResendSender.
type ResendOption func(*resend.Client) error

// WithResendBaseURL points the client at a different API endpoint.
func WithResendBaseURL(raw string) ResendOption {
	return func(c *resend.Client) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parsing resend base url: %w", err)
		}

		c.BaseURL = u

		return nil
	}
}

// NewResendSender creates a Resend sender.
func NewResendSender(apiKey string, logger *slog.Logger, opts ...ResendOption) (*ResendSender, error) {
	if apiKey == "" {
		return nil, errors.New("resend api key is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	client := resend.NewClient(apiKey)
	for _, opt := range opts {
		if err := opt(client); err != nil {
			return nil, err
		}
	}

	return &ResendSender{
		client: client,
		logger: logger.With(slog.String("component", "mail.ResendSender")),
	}, nil
}

// Send submits the email to Resend.
func (s *ResendSender) Send(ctx context.Context, email *domain.NotificationEmail) error {
	req := &resend.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
	}

	if email.ContentType == domain.ContentTypeHTML {
		req.Html = email.Body
	} else {
		req.Text = email.Body
	}

	sent, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return domain.WrapUnavailable(resendServiceName, err)
	}

	s.logger.DebugContext(ctx, "email accepted by resend", slog.String("resend_id", sent.Id))

	return nil
}
