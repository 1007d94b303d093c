package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen/message-notifier/internal/adapters/clients"
	"github.com/jsamuelsen/message-notifier/internal/domain"
	"github.com/jsamuelsen/message-notifier/internal/platform/logging"
)

const (
	mailerSendPath   = "/v1/messages"
	mailerHealthPath = "/healthz"
)

// MailerClientConfig contains configuration for the mail relay client.
type MailerClientConfig struct {
	// Client is the instrumented HTTP client pointed at the relay.
	Client *clients.Client

	// Priority is passed through to the relay queue ("high", "medium", "low").
	Priority string

	Logger *slog.Logger
}

// MailerClient hands notification emails to the queued mail relay.
// The relay owns delivery; a 2xx response means the email was queued.
type MailerClient struct {
	client   *clients.Client
	priority string
	logger   *slog.Logger
}

// NewMailerClient creates a relay client.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewMailerClient(cfg MailerClientConfig) *MailerClient {
	if cfg.Client == nil {
		panic("MailerClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	priority := cfg.Priority
	if priority == "" {
		priority = "medium"
	}

	return &MailerClient{
		client:   cfg.Client,
		priority: priority,
		logger:   logger,
	}
}

// queueRequest is the relay's enqueue payload.
type queueRequest struct {
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	ContentType string   `json:"content_type"`
	From        string   `json:"from_email"`
	To          []string `json:"recipient_list"`
	Priority    string   `json:"priority"`
}

// queueResponse is the relay's acknowledgement.
type queueResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Send enqueues the email on the relay. Implements ports.MailSender.
func (c *MailerClient) Send(ctx context.Context, email *domain.NotificationEmail) error {
	payload, err := json.Marshal(queueRequest{
		Subject:     email.Subject,
		Body:        email.Body,
		ContentType: email.ContentType,
		From:        email.From,
		To:          email.To,
		Priority:    c.priority,
	})
	if err != nil {
		return fmt.Errorf("encoding relay request: %w", err)
	}

	c.logger.Log(ctx, logging.LevelTrace, "enqueueing email",
		slog.String("path", mailerSendPath),
		slog.Any("to", email.To),
		slog.String("message_body", email.Body),
	)

	resp, err := c.client.Post(ctx, mailerSendPath, bytes.NewReader(payload))

	body, err := c.accept(resp, err, "enqueue email")
	if err != nil {
		return err
	}
	defer body.Close()

	var ack queueResponse
	if err := json.NewDecoder(body).Decode(&ack); err != nil {
		// Queued all the same.
		c.logger.WarnContext(ctx, "unreadable relay acknowledgement", slog.Any("error", err))
		return nil
	}

	c.logger.DebugContext(ctx, "email queued on relay",
		slog.String("relay_id", ack.ID),
		slog.String("relay_status", ack.Status),
	)

	return nil
}

// Name is the relay's name in readiness reports.
func (c *MailerClient) Name() string {
	return c.client.ServiceName()
}

// Check reports whether the relay answers its health endpoint with a 2xx.
func (c *MailerClient) Check(ctx context.Context) error {
	resp, err := c.client.Get(ctx, mailerHealthPath)

	body, err := c.accept(resp, err, "health check")
	if err != nil {
		return err
	}

	return body.Close()
}

// accept returns the body of a 2xx response and translates anything else.
func (c *MailerClient) accept(resp *http.Response, err error, operation string) (io.ReadCloser, error) {
	if err != nil {
		return nil, translate(nil, err, c.client.ServiceName(), operation)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		defer func() { _ = resp.Body.Close() }()

		return nil, translate(resp, nil, c.client.ServiceName(), operation)
	}

	return resp.Body, nil
}
