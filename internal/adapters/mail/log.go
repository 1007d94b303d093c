package mail

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen/message-notifier/internal/domain"
)

// LogSender writes emails to the logger instead of delivering them.
// Intended for local development.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogSender{logger: logger.With(slog.String("component", "mail.LogSender"))}
}

// Send logs the email at info level.
func (s *LogSender) Send(ctx context.Context, email *domain.NotificationEmail) error {
	s.logger.InfoContext(ctx, "email",
		slog.String("from", email.From),
		slog.Any("to", email.To),
		slog.String("subject", email.Subject),
		slog.String("content_type", email.ContentType),
		slog.String("body", email.Body),
	)

	return nil
}
