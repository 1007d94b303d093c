package ports

import (
	"context"

	"github.com/jsamuelsen/message-notifier/internal/domain"
)

// MailSender delivers a notification email.
//
// Exactly one implementation is selected at startup from configuration
// (direct SMTP, the queued mailer relay, Resend, or the log sender).
// Implementations make a single delivery attempt; callers do not retry.
type MailSender interface {
	// Send delivers the email or returns an error describing why it could not.
	// Returns domain.ErrUnavailable when the transport is unreachable.
	Send(ctx context.Context, email *domain.NotificationEmail) error
}
