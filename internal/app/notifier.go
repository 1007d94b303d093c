package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/message-notifier/internal/domain"
	"github.com/jsamuelsen/message-notifier/internal/ports"
)

// Default notifier settings used when the config leaves them empty.
const (
	DefaultTemplateName = "messages/new_message.txt"
	DefaultProtocol     = "http"

	subjectKey = "New Message: %[1]s"
)

// Notification outcomes reported to the OutcomeRecorder.
const (
	ResultSent    = "sent"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
)

// Stage names the step of a notification that failed.
type Stage string

const (
	StageValidate Stage = "validate"
	StageSite     Stage = "site"
	StageRender   Stage = "render"
	StageSend     Stage = "send"
)

// NotifyError reports a notification that could not be delivered.
type NotifyError struct {
	Stage     Stage
	MessageID string
	Err       error
}

// Error implements the error interface.
func (e *NotifyError) Error() string {
	if e.MessageID == "" {
		return fmt.Sprintf("notify new message: %s: %v", e.Stage, e.Err)
	}

	return fmt.Sprintf("notify new message %q: %s: %v", e.MessageID, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *NotifyError) Unwrap() error {
	return e.Err
}

// SaveEvent is the payload the host emits after persisting a message.
type SaveEvent struct {
	Sender   string
	Instance *domain.Message
	Signal   string
	Created  bool
	Extra    map[string]any
}

// NotificationContext is the data passed to notification templates.
type NotificationContext struct {
	SiteURL string
	Site    *domain.Site
	Message *domain.Message
}

// NotifyOption overrides a notifier default for one call.
type NotifyOption func(*notifyOptions)

type notifyOptions struct {
	template string
	protocol string
}

// WithTemplate renders the named template instead of the configured one.
func WithTemplate(name string) NotifyOption {
	return func(o *notifyOptions) {
		if name != "" {
			o.template = name
		}
	}
}

// WithProtocol builds the site URL with proto instead of the configured one.
func WithProtocol(proto string) NotifyOption {
	return func(o *notifyOptions) {
		if proto != "" {
			o.protocol = proto
		}
	}
}

// OutcomeRecorder receives one observation per notification.
type OutcomeRecorder interface {
	RecordNotification(ctx context.Context, result, stage string, elapsed time.Duration)
}

// NotifierConfig contains the dependencies of the notifier.
type NotifierConfig struct {
	Sites     ports.SiteRegistry
	Templates ports.TemplateRenderer
	Mail      ports.MailSender
	Localizer ports.Localizer
	Recorder  OutcomeRecorder
	Logger    *slog.Logger

	DefaultProtocol string
	FromEmail       string
	TemplateName    string
}

// Notifier emails recipients when a new private message is created.
type Notifier struct {
	sites     ports.SiteRegistry
	templates ports.TemplateRenderer
	mail      ports.MailSender
	localizer ports.Localizer
	recorder  OutcomeRecorder
	logger    *slog.Logger

	defaultProtocol string
	fromEmail       string
	templateName    string
}

// NewNotifier creates a notifier. It panics if a required port is missing.
func NewNotifier(cfg NotifierConfig) *Notifier {
	if cfg.Sites == nil || cfg.Templates == nil || cfg.Mail == nil {
		panic("app: notifier requires site registry, template renderer and mail sender")
	}

	n := &Notifier{
		sites:           cfg.Sites,
		templates:       cfg.Templates,
		mail:            cfg.Mail,
		localizer:       cfg.Localizer,
		recorder:        cfg.Recorder,
		logger:          cfg.Logger,
		defaultProtocol: cfg.DefaultProtocol,
		fromEmail:       cfg.FromEmail,
		templateName:    cfg.TemplateName,
	}

	if n.localizer == nil {
		n.localizer = IdentityLocalizer{}
	}

	if n.logger == nil {
		n.logger = slog.Default()
	}

	if n.defaultProtocol == "" {
		n.defaultProtocol = DefaultProtocol
	}

	if n.templateName == "" {
		n.templateName = DefaultTemplateName
	}

	return n
}

// NotifyNewMessage renders the notification for a created message and sends
// it to the recipient. Events for updates are ignored, as are recipients
// without an email address. Failures, including collaborator panics, are
// returned as *NotifyError.
func (n *Notifier) NotifyNewMessage(ctx context.Context, ev SaveEvent, opts ...NotifyOption) (err error) {
	o := notifyOptions{template: n.templateName, protocol: n.defaultProtocol}
	for _, opt := range opts {
		opt(&o)
	}

	if !ev.Created {
		return nil
	}

	if ev.Instance == nil {
		return &NotifyError{Stage: StageValidate, Err: domain.NewValidationError("instance", "is required")}
	}

	msg := ev.Instance
	stage := StageSite

	defer func() {
		if r := recover(); r != nil {
			err = &NotifyError{Stage: stage, MessageID: msg.ID, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	site, err := n.sites.CurrentSite(ctx)
	if err != nil {
		return &NotifyError{Stage: stage, MessageID: msg.ID, Err: err}
	}

	stage = StageRender

	body, err := n.templates.Render(ctx, o.template, NotificationContext{
		SiteURL: o.protocol + "://" + site.Domain,
		Site:    site,
		Message: msg,
	})
	if err != nil {
		return &NotifyError{Stage: stage, MessageID: msg.ID, Err: err}
	}

	if msg.Recipient.Email == "" {
		return nil
	}

	stage = StageSend

	email := &domain.NotificationEmail{
		Subject:     n.localizer.Sprintf(subjectKey, msg.Subject),
		Body:        body,
		ContentType: n.templates.ContentType(o.template),
		From:        n.fromEmail,
		To:          []string{msg.Recipient.Email},
	}

	if err := n.mail.Send(ctx, email); err != nil {
		return &NotifyError{Stage: stage, MessageID: msg.ID, Err: err}
	}

	return nil
}

// OnMessageSaved is the fire-and-forget entry point for save events.
// It never returns an error or panics; failures are logged and counted.
func (n *Notifier) OnMessageSaved(ctx context.Context, ev SaveEvent, opts ...NotifyOption) {
	start := time.Now()

	logger := n.logger
	if ev.Instance != nil {
		logger = logger.With(slog.String("message_id", ev.Instance.ID))
	}

	err := n.NotifyNewMessage(ctx, ev, opts...)

	result, stage := outcome(ev, err)
	if n.recorder != nil {
		n.recorder.RecordNotification(ctx, result, stage, time.Since(start))
	}

	switch result {
	case ResultFailed:
		logger.WarnContext(ctx, "new message notification failed",
			slog.String("stage", stage),
			slog.String("signal", ev.Signal),
			slog.Any("error", err),
		)
	case ResultSkipped:
		logger.DebugContext(ctx, "new message notification skipped",
			slog.String("signal", ev.Signal),
			slog.Bool("created", ev.Created),
		)
	default:
		logger.InfoContext(ctx, "new message notification sent",
			slog.Duration("duration", time.Since(start)),
		)
	}
}

func outcome(ev SaveEvent, err error) (result, stage string) {
	if err != nil {
		var notifyErr *NotifyError
		if errors.As(err, &notifyErr) {
			return ResultFailed, string(notifyErr.Stage)
		}

		return ResultFailed, ""
	}

	if !ev.Created || ev.Instance == nil || ev.Instance.Recipient.Email == "" {
		return ResultSkipped, ""
	}

	return ResultSent, ""
}
