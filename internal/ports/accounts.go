package ports

import "github.com/jsamuelsen/message-notifier/internal/domain"

// AccountSubsystem is the host account subsystem.
//
// Every subsystem exposes its built-in user model. Subsystems that support
// swapping the user entity also implement PluggableUserModels; callers
// detect that capability with a type assertion.
type AccountSubsystem interface {
	BuiltinUserModel() domain.UserModel
}

// PluggableUserModels is the optional capability of account subsystems
// that let the host replace the user entity.
type PluggableUserModels interface {
	// CurrentUserModel returns the user model currently in effect,
	// including the field that stores the login identifier.
	CurrentUserModel() domain.UserModel
}
