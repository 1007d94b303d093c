package app

import (
	"github.com/jsamuelsen/message-notifier/internal/domain"
	"github.com/jsamuelsen/message-notifier/internal/ports"
)

// LegacyUsernameField is the login field of subsystems without pluggable user models.
const LegacyUsernameField = "username"

// UserModelResolver reports which user model the account subsystem exposes.
type UserModelResolver struct {
	accounts ports.AccountSubsystem
}

// NewUserModelResolver creates a resolver. It panics if accounts is nil.
func NewUserModelResolver(accounts ports.AccountSubsystem) *UserModelResolver {
	if accounts == nil {
		panic("app: user model resolver requires an account subsystem")
	}

	return &UserModelResolver{accounts: accounts}
}

// ResolveUserModel returns the current user model when the subsystem can
// swap it, and the built-in model otherwise.
func (r *UserModelResolver) ResolveUserModel() domain.UserModel {
	if pluggable, ok := r.accounts.(ports.PluggableUserModels); ok {
		return pluggable.CurrentUserModel()
	}

	model := r.accounts.BuiltinUserModel()
	model.UsernameField = LegacyUsernameField

	return model
}

// ResolveUsernameField returns the field holding a user's login identifier.
func (r *UserModelResolver) ResolveUsernameField() string {
	if _, ok := r.accounts.(ports.PluggableUserModels); !ok {
		return LegacyUsernameField
	}

	return r.ResolveUserModel().UsernameField
}

// Identify returns the user's value for the resolved username field,
// falling back to the user's display form when that field is empty.
func (r *UserModelResolver) Identify(user domain.User) string {
	if v := user.Field(r.ResolveUsernameField()); v != "" {
		return v
	}

	return user.String()
}
