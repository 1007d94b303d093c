package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jsamuelsen/message-notifier/internal/app"
	"github.com/jsamuelsen/message-notifier/internal/domain"
)

// ID accepts both JSON strings and numbers, since hosts commonly use
// integer primary keys.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*id = ID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}

	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}

	*id = ID(n.String())

	return nil
}

// User is the wire form of a message participant.
type User struct {
	ID         ID                `json:"id"`
	Username   string            `json:"username"`
	Email      string            `json:"email"       validate:"omitempty,email"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// ToDomain converts the wire user.
func (u User) ToDomain() domain.User {
	return domain.User{
		ID:         string(u.ID),
		Username:   u.Username,
		Email:      u.Email,
		Attributes: u.Attributes,
	}
}

// Message is the wire form of a saved private message.
type Message struct {
	ID        ID        `json:"id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Sender    User      `json:"sender"`
	Recipient User      `json:"recipient"`
	SentAt    time.Time `json:"sent_at"`
}

// ToDomain converts the wire message.
func (m *Message) ToDomain() *domain.Message {
	if m == nil {
		return nil
	}

	return &domain.Message{
		ID:        string(m.ID),
		Subject:   m.Subject,
		Body:      m.Body,
		Sender:    m.Sender.ToDomain(),
		Recipient: m.Recipient.ToDomain(),
		SentAt:    m.SentAt,
	}
}

// MessageSavedRequest is the body of POST /api/v1/events/message-saved.
// It mirrors the host's post-save signal: unknown keys are kept as extras.
type MessageSavedRequest struct {
	Sender          string   `json:"sender"`
	Signal          string   `json:"signal"`
	Created         bool     `json:"created"`
	Instance        *Message `json:"instance"`
	TemplateName    string   `json:"template_name"`
	DefaultProtocol string   `json:"default_protocol" validate:"omitempty,oneof=http https"`
}

// knownEventKeys are the MessageSavedRequest fields; everything else is an extra.
var knownEventKeys = map[string]struct{}{
	"sender": {}, "signal": {}, "created": {}, "instance": {},
	"template_name": {}, "default_protocol": {},
}

// ToEvent converts the request into a save event carrying the unknown keys of raw.
func (r *MessageSavedRequest) ToEvent(raw map[string]any) app.SaveEvent {
	var extra map[string]any

	for k, v := range raw {
		if _, known := knownEventKeys[k]; known {
			continue
		}

		if extra == nil {
			extra = make(map[string]any)
		}

		extra[k] = v
	}

	return app.SaveEvent{
		Sender:   r.Sender,
		Instance: r.Instance.ToDomain(),
		Signal:   r.Signal,
		Created:  r.Created,
		Extra:    extra,
	}
}

// Options returns the per-call notifier overrides carried by the request.
func (r *MessageSavedRequest) Options() []app.NotifyOption {
	return []app.NotifyOption{
		app.WithTemplate(r.TemplateName),
		app.WithProtocol(r.DefaultProtocol),
	}
}

// AcceptedResponse acknowledges a save event.
type AcceptedResponse struct {
	Status string `json:"status"`
}

// QuoteRequest is the body of POST /api/v1/quotes.
type QuoteRequest struct {
	Sender   User   `json:"sender"`
	Body     string `json:"body"`
	Language string `json:"lang" validate:"omitempty,bcp47_language_tag"`
}

// QuoteResponse carries the formatted quote.
type QuoteResponse struct {
	Quote string `json:"quote"`
}

// UserModelResponse describes the resolved user model.
type UserModelResponse struct {
	Model         string `json:"model"`
	UsernameField string `json:"username_field"`
}
