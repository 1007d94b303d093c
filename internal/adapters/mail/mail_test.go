package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/message-notifier/internal/adapters/clients/acl"
	"github.com/jsamuelsen/message-notifier/internal/domain"
	"github.com/jsamuelsen/message-notifier/internal/platform/config"
)

func testEmail(contentType string) *domain.NotificationEmail {
	return &domain.NotificationEmail{
		Subject:     "New Message: lunch",
		Body:        "alice sent you a message",
		ContentType: contentType,
		From:        "webmaster@localhost",
		To:          []string{"bob@example.com"},
	}
}

func TestLogSender_Send(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, sender.Send(context.Background(), testEmail(domain.ContentTypePlain)))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "email", entry["msg"])
	assert.Equal(t, "New Message: lunch", entry["subject"])
	assert.Equal(t, "alice sent you a message", entry["body"])
}

func TestResendSender(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		_, err := NewResendSender("", nil)
		require.Error(t, err)
	})

	t.Run("plain text body", func(t *testing.T) {
		var got map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"em_123"}`))
		}))
		t.Cleanup(server.Close)

		sender, err := NewResendSender("re_test", nil, WithResendBaseURL(server.URL+"/"))
		require.NoError(t, err)

		require.NoError(t, sender.Send(context.Background(), testEmail(domain.ContentTypePlain)))
		assert.Equal(t, "alice sent you a message", got["text"])
		assert.Nil(t, got["html"])
		assert.Equal(t, "New Message: lunch", got["subject"])
	})

	t.Run("html body", func(t *testing.T) {
		var got map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"id":"em_124"}`))
		}))
		t.Cleanup(server.Close)

		sender, err := NewResendSender("re_test", nil, WithResendBaseURL(server.URL+"/"))
		require.NoError(t, err)

		require.NoError(t, sender.Send(context.Background(), testEmail(domain.ContentTypeHTML)))
		assert.Equal(t, "alice sent you a message", got["html"])
	})

	t.Run("api failure is unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"boom"}`))
		}))
		t.Cleanup(server.Close)

		sender, err := NewResendSender("re_test", nil, WithResendBaseURL(server.URL+"/"))
		require.NoError(t, err)

		err = sender.Send(context.Background(), testEmail(domain.ContentTypePlain))
		require.Error(t, err)
		assert.True(t, domain.IsUnavailable(err))
	})
}

func TestSMTPSender(t *testing.T) {
	t.Run("requires host", func(t *testing.T) {
		_, err := NewSMTPSender(config.SMTPConfig{}, nil)
		require.Error(t, err)
	})

	t.Run("invalid sender address is a validation error", func(t *testing.T) {
		sender, err := NewSMTPSender(config.SMTPConfig{
			Host:      "localhost",
			Port:      2525,
			TLSPolicy: "none",
			Timeout:   time.Second,
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "smtp", sender.Name())

		email := testEmail(domain.ContentTypePlain)
		email.From = "not an address"

		err = sender.Send(context.Background(), email)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("unreachable server is unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		addr := server.Listener.Addr().String()
		server.Close()

		host, port := splitHostPort(t, addr)
		sender, err := NewSMTPSender(config.SMTPConfig{
			Host:      host,
			Port:      port,
			TLSPolicy: "none",
			Timeout:   time.Second,
		}, nil)
		require.NoError(t, err)

		err = sender.Send(context.Background(), testEmail(domain.ContentTypePlain))
		require.Error(t, err)
		assert.True(t, domain.IsUnavailable(err))

		assert.True(t, domain.IsUnavailable(sender.Check(context.Background())))
	})
}

func TestBuildMessage_ContentType(t *testing.T) {
	msg, err := buildMessage(testEmail(domain.ContentTypeHTML))
	require.NoError(t, err)

	parts := msg.GetParts()
	require.Len(t, parts, 1)
	assert.Equal(t, "text/html", string(parts[0].GetContentType()))
}

func TestNewSender(t *testing.T) {
	base := func(backend string) *config.Config {
		return &config.Config{
			Mail: config.MailConfig{
				Backend: backend,
				SMTP:    config.SMTPConfig{Host: "localhost", Port: 25},
				Mailer:  config.MailerConfig{BaseURL: "http://mailer.internal", Name: "mailer"},
				Resend:  config.ResendConfig{APIKey: "re_test"},
			},
		}
	}

	t.Run("log", func(t *testing.T) {
		sender, checkers, err := NewSender(base(config.MailBackendLog), nil)
		require.NoError(t, err)
		assert.IsType(t, &LogSender{}, sender)
		assert.Empty(t, checkers)
	})

	t.Run("smtp registers health check", func(t *testing.T) {
		sender, checkers, err := NewSender(base(config.MailBackendSMTP), nil)
		require.NoError(t, err)
		assert.IsType(t, &SMTPSender{}, sender)
		require.Len(t, checkers, 1)
		assert.Equal(t, "smtp", checkers[0].Name())
	})

	t.Run("mailer registers health check", func(t *testing.T) {
		sender, checkers, err := NewSender(base(config.MailBackendMailer), nil)
		require.NoError(t, err)
		assert.IsType(t, &acl.MailerClient{}, sender)
		require.Len(t, checkers, 1)
		assert.Equal(t, "mailer", checkers[0].Name())
	})

	t.Run("resend", func(t *testing.T) {
		sender, _, err := NewSender(base(config.MailBackendResend), nil)
		require.NoError(t, err)
		assert.IsType(t, &ResendSender{}, sender)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, _, err := NewSender(base("pigeon"), nil)
		require.Error(t, err)
	})
}
