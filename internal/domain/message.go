package domain

import "time"

// Content types understood by the mail transports.
const (
	ContentTypePlain = "text/plain"
	ContentTypeHTML  = "text/html"
)

// User is the account identity attached to a message.
// Attributes holds any extra profile fields a custom user model declares.
type User struct {
	ID         string
	Username   string
	Email      string
	Attributes map[string]string
}

// String renders the identity shown to other users.
func (u User) String() string {
	switch {
	case u.Username != "":
		return u.Username
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}

// Field returns the value of a named user field.
// Built-in fields take precedence over Attributes.
func (u User) Field(name string) string {
	switch name {
	case "id":
		return u.ID
	case "username":
		return u.Username
	case "email":
		return u.Email
	default:
		return u.Attributes[name]
	}
}

// Message is a private message owned by the host application.
// This component only reads it.
type Message struct {
	ID        string
	Subject   string
	Body      string
	Sender    User
	Recipient User
	SentAt    time.Time
}

// Site is the host site the notification links back to.
type Site struct {
	ID     string
	Domain string
	Name   string
}

// NotificationEmail is the email handed to a mail transport.
// It is built once per notification and never retained.
type NotificationEmail struct {
	Subject     string
	Body        string
	ContentType string
	From        string
	To          []string
}

// UserModel identifies the user entity the account subsystem exposes
// and the field that holds a user's login identifier.
type UserModel struct {
	Name          string
	UsernameField string
}
