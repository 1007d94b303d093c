package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsamuelsen/message-notifier/internal/domain"
)

var builtinModel = domain.UserModel{Name: "auth.User", UsernameField: "username"}

// legacyAccounts only exposes the built-in user model.
type legacyAccounts struct{}

func (legacyAccounts) BuiltinUserModel() domain.UserModel {
	return domain.UserModel{Name: "auth.User"}
}

// pluggableAccounts lets the host swap the user model.
type pluggableAccounts struct {
	current domain.UserModel
}

func (pluggableAccounts) BuiltinUserModel() domain.UserModel { return builtinModel }

func (p pluggableAccounts) CurrentUserModel() domain.UserModel { return p.current }

func TestNewUserModelResolver_PanicsWithoutAccounts(t *testing.T) {
	assert.Panics(t, func() { NewUserModelResolver(nil) })
}

func TestUserModelResolver_Legacy(t *testing.T) {
	r := NewUserModelResolver(legacyAccounts{})

	assert.Equal(t, "username", r.ResolveUsernameField())
	assert.Equal(t, domain.UserModel{Name: "auth.User", UsernameField: "username"}, r.ResolveUserModel())
}

func TestUserModelResolver_Pluggable(t *testing.T) {
	tests := []struct {
		name          string
		current       domain.UserModel
		expectedField string
	}{
		{
			name:          "email login",
			current:       domain.UserModel{Name: "accounts.Member", UsernameField: "email"},
			expectedField: "email",
		},
		{
			name:          "custom attribute",
			current:       domain.UserModel{Name: "accounts.Member", UsernameField: "handle"},
			expectedField: "handle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewUserModelResolver(pluggableAccounts{current: tt.current})

			assert.Equal(t, tt.expectedField, r.ResolveUsernameField())
			assert.Equal(t, tt.current, r.ResolveUserModel())
		})
	}
}

func TestUserModelResolver_Identify(t *testing.T) {
	user := domain.User{
		ID:         "7",
		Username:   "alice",
		Email:      "alice@example.com",
		Attributes: map[string]string{"handle": "@al"},
	}

	assert.Equal(t, "alice", NewUserModelResolver(legacyAccounts{}).Identify(user))

	byEmail := NewUserModelResolver(pluggableAccounts{current: domain.UserModel{UsernameField: "email"}})
	assert.Equal(t, "alice@example.com", byEmail.Identify(user))

	byHandle := NewUserModelResolver(pluggableAccounts{current: domain.UserModel{UsernameField: "handle"}})
	assert.Equal(t, "@al", byHandle.Identify(user))
	assert.Equal(t, "bob", byHandle.Identify(domain.User{Username: "bob"}))
}
