package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"

	"github.com/jsamuelsen/message-notifier/internal/adapters/clients"
	"github.com/jsamuelsen/message-notifier/internal/domain"
)

// relayError is the relay's error body. Relays before v2 put code and
// message at the top level instead of under "error".
type relayError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *relayError) code() string {
	if e.Error.Code != "" {
		return e.Error.Code
	}

	return e.Code
}

func (e *relayError) message() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}

	return e.Message
}

// field returns the alphabetically first rejected field.
func (e *relayError) field() (name, msg string, ok bool) {
	if len(e.Error.Details) == 0 {
		return "", "", false
	}

	name = slices.Min(slices.Collect(maps.Keys(e.Error.Details)))

	return name, e.Error.Details[name], true
}

// decodeRelayError returns nil for an empty or unparseable body.
func decodeRelayError(body io.Reader) *relayError {
	if body == nil {
		return nil
	}

	var e relayError
	if err := json.NewDecoder(body).Decode(&e); err != nil {
		return nil
	}

	if e.code() == "" && e.message() == "" && len(e.Error.Details) == 0 {
		return nil
	}

	return &e
}

// translate turns the result of one relay call into a domain error:
//
//	2xx                  nil
//	400 409 413 422      ErrValidation, carrying the first rejected field
//	other 4xx            ErrValidation
//	401 403 404 429 5xx  ErrUnavailable
//	transport failure    ErrUnavailable wrapping the cause
//
// A 404 means the relay URL is wrong, not that an entity is missing.
func translate(resp *http.Response, callErr error, service, operation string) error {
	if callErr != nil {
		reason := fmt.Sprintf("%s failed: %v", operation, callErr)
		if errors.Is(callErr, clients.ErrCircuitOpen) {
			reason = "circuit breaker open during " + operation
		}

		return &domain.UnavailableError{Service: service, Reason: reason, Cause: callErr}
	}

	if resp == nil {
		return domain.NewUnavailableError(service, "no response received")
	}

	status := resp.StatusCode
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	remote := decodeRelayError(resp.Body)

	message := fmt.Sprintf("%s failed with status %d", operation, status)
	if remote != nil && remote.message() != "" {
		message = remote.message()
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.NewUnavailableError(service, "credentials rejected: "+message)

	case status == http.StatusNotFound:
		return domain.NewUnavailableError(service, fmt.Sprintf("%s endpoint not found", operation))

	case status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(service, "rate limit exceeded")

	case status >= http.StatusInternalServerError:
		return domain.NewUnavailableError(service, message)
	}

	if remote != nil {
		if field, msg, ok := remote.field(); ok {
			return domain.NewValidationError(field, msg)
		}
	}

	return domain.NewValidationError("", message)
}
