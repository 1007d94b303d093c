package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// defaults is the lowest layer; every key a profile may override appears here.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "message-notifier",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "15s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/notifier.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "message-notifier",
		"telemetry.sampling_rate": 1.0,
		"telemetry.insecure":      true,

		"client.timeout":                           "10s",
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"notify.default_http_protocol": DefaultHTTPProtocol,
		"notify.default_from_email":    DefaultFromEmail,
		"notify.template_name":         DefaultTemplateName,

		"mail.backend":         MailBackendLog,
		"mail.smtp.host":       "localhost",
		"mail.smtp.port":       DefaultSMTPPort,
		"mail.smtp.tls_policy": "opportunistic",
		"mail.smtp.timeout":    "10s",
		"mail.mailer.name":     "mailer",
		"mail.mailer.priority": "medium",

		"templates.dir": "",

		"site.id":     "1",
		"site.domain": "example.com",
		"site.name":   "example.com",

		"sites.backend": SitesBackendStatic,

		"redis.addr":     "localhost:6379",
		"redis.db":       0,
		"redis.site_key": DefaultSiteKey,

		"accounts.pluggable":      false,
		"accounts.builtin_model":  "auth.User",
		"accounts.user_model":     "",
		"accounts.username_field": "",

		"i18n.language": "en",
	}
}

// hostSettings are the host application's names for notifier settings.
var hostSettings = map[string]string{
	"DEFAULT_FROM_EMAIL":    "notify.default_from_email",
	"DEFAULT_HTTP_PROTOCOL": "notify.default_http_protocol",
}

// layer is one configuration source. Later layers override earlier ones.
type layer struct {
	name     string
	provider koanf.Provider
	parser   koanf.Parser
	optional string // file that may be absent
}

func layers(profile string) []layer {
	ls := []layer{
		{name: "defaults", provider: confmap.Provider(defaults(), ".")},
		fileLayer("base config", "configs/base.yaml"),
	}

	if profile != "" {
		ls = append(ls, fileLayer(fmt.Sprintf("profile %q", profile), "configs/"+profile+".yaml"))
	}

	return append(ls,
		layer{name: "host settings", provider: env.Provider("DEFAULT_", ".", hostSettingKey)},
		layer{name: "environment", provider: env.Provider("APP_", ".", envKey)},
	)
}

func fileLayer(name, path string) layer {
	return layer{name: name, provider: file.Provider(path), parser: yaml.Parser(), optional: path}
}

// Load merges, lowest first: defaults, configs/base.yaml,
// configs/<profile>.yaml, DEFAULT_FROM_EMAIL and DEFAULT_HTTP_PROTOCOL, then
// APP_ variables with "__" between nested keys (APP_MAIL__SMTP__HOST).
//
// A .env file in the working directory is applied to the process
// environment first without replacing variables that are already set.
// The result is not validated; call Validate.
func Load(profile string) (*Config, error) {
	if err := ifExists(".env", func() error { return godotenv.Load(".env") }); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	k := koanf.New(".")

	for _, l := range layers(profile) {
		load := func() error { return k.Load(l.provider, l.parser) }

		var err error
		if l.optional != "" {
			err = ifExists(l.optional, load)
		} else {
			err = load()
		}

		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", l.name, err)
		}
	}

	cfg := new(Config)
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return cfg, nil
}

// envKey maps APP_MAIL__SMTP__HOST to mail.smtp.host; single underscores
// stay inside the key name.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "APP_"))
	return strings.ReplaceAll(s, "__", ".")
}

// hostSettingKey returns "" for unrecognized DEFAULT_ variables, which the
// env provider then skips.
func hostSettingKey(s string) string {
	return hostSettings[s]
}

// ifExists runs load unless path is missing.
func ifExists(path string, load func() error) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return load()
}
