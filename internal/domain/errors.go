// Package domain contains the messaging types and errors shared by every layer.
// Domain errors describe notification failures, not HTTP or transport errors;
// adapters map them to their own representations.
package domain

import (
	"errors"
	"fmt"
)

// Every error returned across a port matches exactly one of these with errors.Is.
var (
	// ErrNotFound: a template, site or user lookup came back empty.
	ErrNotFound = errors.New("not found")

	// ErrValidation: a save event, quote request or email was rejected.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable: the mail transport or site store could not be reached.
	ErrUnavailable = errors.New("unavailable")
)

func IsNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool  { return errors.Is(err, ErrValidation) }
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }

// NotFoundError names what was looked up. ID may be empty.
type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError optionally names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}

	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UnavailableError names the collaborator that failed. errors.Is matches
// ErrUnavailable and, when set, Cause.
type UnavailableError struct {
	Service string
	Reason  string
	Cause   error
}

func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// WrapUnavailable uses cause's text as the reason.
func WrapUnavailable(service string, cause error) error {
	e := &UnavailableError{Service: service, Cause: cause}
	if cause != nil {
		e.Reason = cause.Error()
	}

	return e
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("service %q unavailable", e.Service)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

func (e *UnavailableError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrUnavailable}
	}

	return []error{ErrUnavailable, e.Cause}
}
