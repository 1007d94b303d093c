// Package config loads the notifier's settings from defaults, YAML profiles,
// the host application's DEFAULT_* settings and APP_ environment variables.
package config

import "time"

const (
	DefaultServerPort     = 8080
	DefaultMaxRequestSize = 1 << 20

	// DefaultHTTPProtocol is the scheme of site links in notifications.
	DefaultHTTPProtocol = "http"
	// DefaultFromEmail is the sender when the host configures none.
	DefaultFromEmail    = "webmaster@localhost"
	DefaultTemplateName = "messages/new_message.txt"

	// DefaultSiteKey is the Redis hash holding the current site.
	DefaultSiteKey  = "sites:current"
	DefaultSMTPPort = 587

	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10

	// Rolling log file limits, in MB, files and days.
	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28
)

// Mail backends selectable through mail.backend.
const (
	MailBackendSMTP   = "smtp"
	MailBackendMailer = "mailer"
	MailBackendResend = "resend"
	MailBackendLog    = "log"
)

// Site registry backends selectable through sites.backend.
const (
	SitesBackendStatic = "static"
	SitesBackendRedis  = "redis"
)

// Config is every setting the service reads. Field tags name the koanf key
// and the validation rules checked by Validate.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Notify    NotifyConfig    `koanf:"notify"    validate:"required"`
	Mail      MailConfig      `koanf:"mail"      validate:"required"`
	Templates TemplatesConfig `koanf:"templates"`
	Site      SiteConfig      `koanf:"site"`
	Sites     SitesConfig     `koanf:"sites"     validate:"required"`
	Redis     RedisConfig     `koanf:"redis"`
	Accounts  AccountsConfig  `koanf:"accounts"  validate:"required"`
	I18n      I18nConfig      `koanf:"i18n"`
}

type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig tunes the webhook listener.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=100ms"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig enables a lumberjack rolling file next to stdout.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig configures the OTLP trace and metric exporters.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	Insecure     bool    `koanf:"insecure"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig contains HTTP client settings for the mailer relay.
// Sends are single-attempt; the circuit breaker only sheds load.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// CircuitBreakerConfig tunes the breaker in front of the relay.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// NotifyConfig holds the host settings the new message notifier reads.
type NotifyConfig struct {
	DefaultHTTPProtocol string `koanf:"default_http_protocol" validate:"required,oneof=http https"`
	DefaultFromEmail    string `koanf:"default_from_email"    validate:"required"`
	TemplateName        string `koanf:"template_name"         validate:"required"`
}

// MailConfig selects and configures the outbound mail transport.
type MailConfig struct {
	Backend string       `koanf:"backend" validate:"required,oneof=smtp mailer resend log"`
	SMTP    SMTPConfig   `koanf:"smtp"`
	Mailer  MailerConfig `koanf:"mailer"`
	Resend  ResendConfig `koanf:"resend"`
}

// SMTPConfig configures direct SMTP delivery.
type SMTPConfig struct {
	Host      string        `koanf:"host"`
	Port      int           `koanf:"port"       validate:"omitempty,min=1,max=65535"`
	Username  string        `koanf:"username"`
	Password  string        `koanf:"password"`
	TLSPolicy string        `koanf:"tls_policy" validate:"omitempty,oneof=mandatory opportunistic none"`
	Timeout   time.Duration `koanf:"timeout"`
}

// MailerConfig configures the queued mail relay service.
type MailerConfig struct {
	BaseURL  string `koanf:"base_url" validate:"omitempty,url"`
	Name     string `koanf:"name"`
	APIKey   string `koanf:"api_key"`
	Priority string `koanf:"priority" validate:"omitempty,oneof=high medium low"`
}

// ResendConfig configures the Resend API backend.
type ResendConfig struct {
	APIKey string `koanf:"api_key"`
}

// TemplatesConfig configures notification templates.
type TemplatesConfig struct {
	// Dir overrides embedded templates with files from disk when set.
	Dir string `koanf:"dir"`
}

// SiteConfig describes the static site.
type SiteConfig struct {
	ID     string `koanf:"id"`
	Domain string `koanf:"domain"`
	Name   string `koanf:"name"`
}

// SitesConfig selects the site registry backend.
type SitesConfig struct {
	Backend string `koanf:"backend" validate:"required,oneof=static redis"`
}

// RedisConfig configures the Redis-backed site registry.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"       validate:"min=0,max=15"`
	SiteKey  string `koanf:"site_key"`
}

// AccountsConfig describes the host account subsystem.
type AccountsConfig struct {
	Pluggable     bool   `koanf:"pluggable"`
	BuiltinModel  string `koanf:"builtin_model"  validate:"required"`
	UserModel     string `koanf:"user_model"     validate:"required_if=Pluggable true"`
	UsernameField string `koanf:"username_field" validate:"required_if=Pluggable true"`
}

// I18nConfig selects the translation catalog.
type I18nConfig struct {
	Language string `koanf:"language"`
}
