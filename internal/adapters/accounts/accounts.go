// Package accounts provides account subsystems described by configuration.
//
// A [Legacy] subsystem only knows its built-in user model. A [Pluggable]
// subsystem additionally implements [ports.PluggableUserModels].
package accounts

import (
	"github.com/jsamuelsen/message-notifier/internal/domain"
	"github.com/jsamuelsen/message-notifier/internal/platform/config"
	"github.com/jsamuelsen/message-notifier/internal/ports"
)

// Legacy is a subsystem with a fixed user entity.
type Legacy struct {
	builtin string
}

// BuiltinUserModel returns the built-in model. Legacy subsystems do not
// declare a username field.
func (l *Legacy) BuiltinUserModel() domain.UserModel {
	return domain.UserModel{Name: l.builtin}
}

// Pluggable is a subsystem whose user entity is swapped by configuration.
type Pluggable struct {
	Legacy

	current domain.UserModel
}

// CurrentUserModel returns the configured user model.
func (p *Pluggable) CurrentUserModel() domain.UserModel {
	return p.current
}

// New builds the subsystem described by cfg.
func New(cfg config.AccountsConfig) ports.AccountSubsystem {
	legacy := Legacy{builtin: cfg.BuiltinModel}
	if !cfg.Pluggable {
		return &legacy
	}

	return &Pluggable{
		Legacy: legacy,
		current: domain.UserModel{
			Name:          cfg.UserModel,
			UsernameField: cfg.UsernameField,
		},
	}
}
