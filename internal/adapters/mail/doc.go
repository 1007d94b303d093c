// Package mail implements [ports.MailSender] for each supported transport.
//
// The transport is chosen once at startup from mail.backend by [NewSender]:
//   - smtp: direct delivery with github.com/wneessen/go-mail
//   - mailer: the queued mail relay over HTTP (see the acl package)
//   - resend: the Resend HTTP API
//   - log: writes the email to the structured logger
//
// Every sender makes exactly one delivery attempt.
package mail
