package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// Attribute names whose values never reach a log line.
var (
	credentialFields = []string{
		"password", "secret", "token", "credential", "credentials",
		"authorization", "auth", "bearer", "cookie", "session",
		"apiKey", "apikey", "api_key",
		"accessToken", "access_token", "refreshToken", "refresh_token",
		"privateKey", "private_key", "secretKey", "secret_key",
	}

	// Private message content and mail transport credentials. Recipient
	// addresses stay visible for support.
	notificationFields = []string{
		"message_body",
		"smtp_password",
		"resend_api_key",
		"mailer_api_key",
		"redis_password",
	}

	credentialPrefixes = []string{"secret", "private"}

	credentialValues = []*regexp.Regexp{
		regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`), // JWT
		regexp.MustCompile(`(?i)^bearer\s+.+$`),
		regexp.MustCompile(`(?i)^basic\s+.+$`),
	}
)

// redactOptions lists the masq rules applied by every handler New builds.
func redactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(credentialFields)+len(notificationFields)+len(credentialPrefixes)+len(credentialValues))

	for _, name := range credentialFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	for _, name := range notificationFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	for _, prefix := range credentialPrefixes {
		opts = append(opts, masq.WithFieldPrefix(prefix))
	}

	for _, re := range credentialValues {
		opts = append(opts, masq.WithRegex(re))
	}

	return opts
}

// Redactor returns a slog ReplaceAttr func applying the service's redaction
// rules plus extra.
func Redactor(extra ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(redactOptions(), extra...)...)
}
