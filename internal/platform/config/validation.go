package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// InvalidError lists every problem found in a configuration, keyed the same
// way as the YAML files and APP_ variables ("mail.smtp.host").
type InvalidError struct {
	Problems []string
}

func (e *InvalidError) Error() string {
	return "config validation failed:\n  " + strings.Join(e.Problems, "\n  ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}

		return name
	})

	return v
}

// Validate reports whether the configuration is usable. The service refuses
// to start on any problem; all of them are returned at once as *InvalidError.
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}

		for _, fe := range fieldErrs {
			problems = append(problems, problem(fe))
		}
	}

	problems = append(problems, c.backendProblems()...)

	if len(problems) == 0 {
		return nil
	}

	return &InvalidError{Problems: problems}
}

// backendProblems covers settings that are only needed by the selected
// mail or sites backend.
func (c *Config) backendProblems() []string {
	var out []string

	need := func(backend, key, value string) {
		if strings.TrimSpace(value) == "" {
			out = append(out, fmt.Sprintf("%s is required when %s", key, backend))
		}
	}

	switch mail := "mail.backend=" + c.Mail.Backend; c.Mail.Backend {
	case MailBackendSMTP:
		need(mail, "mail.smtp.host", c.Mail.SMTP.Host)
	case MailBackendMailer:
		need(mail, "mail.mailer.base_url", c.Mail.Mailer.BaseURL)
		need(mail, "mail.mailer.name", c.Mail.Mailer.Name)
	case MailBackendResend:
		need(mail, "mail.resend.api_key", c.Mail.Resend.APIKey)
	}

	switch sites := "sites.backend=" + c.Sites.Backend; c.Sites.Backend {
	case SitesBackendStatic:
		need(sites, "site.domain", c.Site.Domain)
	case SitesBackendRedis:
		need(sites, "redis.addr", c.Redis.Addr)
		need(sites, "redis.site_key", c.Redis.SiteKey)
	}

	return out
}

func problem(fe validator.FieldError) string {
	key := keyPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", key, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return key + " must be a valid URL"
	}

	return fmt.Sprintf("%s failed %q", key, fe.Tag())
}

// keyPath drops the root struct name: "Config.mail.smtp.host" -> "mail.smtp.host".
func keyPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}

	return namespace
}
