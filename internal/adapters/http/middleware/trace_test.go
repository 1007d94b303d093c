package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceFrom(t *testing.T) {
	//nolint:staticcheck // nil context is guarded
	assert.Equal(t, Trace{}, TraceFrom(nil))
	assert.Equal(t, Trace{}, TraceFrom(context.Background()))

	want := Trace{RequestID: "req-1", CorrelationID: "corr-1"}
	assert.Equal(t, want, TraceFrom(WithTrace(context.Background(), want)))
}

func TestTrace_Inject(t *testing.T) {
	tests := []struct {
		name  string
		trace Trace
		want  http.Header
	}{
		{name: "empty", trace: Trace{}, want: http.Header{}},
		{
			name:  "request only",
			trace: Trace{RequestID: "req-1"},
			want:  http.Header{HeaderRequestID: {"req-1"}},
		},
		{
			name:  "both",
			trace: Trace{RequestID: "req-1", CorrelationID: "corr-1"},
			want:  http.Header{HeaderRequestID: {"req-1"}, HeaderCorrelationID: {"corr-1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			tt.trace.Inject(h)

			assert.Equal(t, tt.want, h)
		})
	}
}
