// Package acl keeps the mail relay's wire format out of the domain.
//
// [MailerClient] converts a [domain.NotificationEmail] to the relay's JSON
// payload and converts every relay failure to a domain error, so callers only
// ever see [domain.ErrValidation] (the relay rejected the email) or
// [domain.ErrUnavailable] (it could not be handed over).
package acl
