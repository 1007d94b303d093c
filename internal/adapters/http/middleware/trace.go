// Package middleware provides the gin middleware chain of the notifier's
// HTTP surface.
package middleware

import (
	"context"
	"net/http"
)

// Trace holds the IDs that follow a save event from the webhook through to
// the mail relay.
type Trace struct {
	RequestID     string
	CorrelationID string
}

type traceKey struct{}

// WithTrace stores t in ctx.
func WithTrace(ctx context.Context, t Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

// TraceFrom returns the IDs stored in ctx. Missing IDs are empty.
func TraceFrom(ctx context.Context) Trace {
	if ctx == nil {
		return Trace{}
	}

	t, _ := ctx.Value(traceKey{}).(Trace)

	return t
}

// Inject sets the non-empty IDs as outbound request headers.
func (t Trace) Inject(h http.Header) {
	if t.RequestID != "" {
		h.Set(HeaderRequestID, t.RequestID)
	}

	if t.CorrelationID != "" {
		h.Set(HeaderCorrelationID, t.CorrelationID)
	}
}
