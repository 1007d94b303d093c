package logging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenHandler accepts every record and fails to write it.
type brokenHandler struct{ err error }

func (h brokenHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h brokenHandler) Handle(context.Context, slog.Record) error { return h.err } //nolint:gocritic // slog.Handler interface requires value

func (h brokenHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h brokenHandler) WithGroup(string) slog.Handler { return h }

func TestFanout_LevelsPerDestination(t *testing.T) {
	var terminal, file bytes.Buffer

	logger := slog.New(fanout{
		slog.NewJSONHandler(&terminal, &slog.HandlerOptions{Level: LevelTrace}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelInfo}),
	})

	logger.Log(context.Background(), LevelTrace, "payload")
	assert.Contains(t, terminal.String(), "payload")
	assert.Empty(t, file.String())

	logger.Info("email sent")
	assert.Contains(t, file.String(), "email sent")
}

func TestFanout_Enabled(t *testing.T) {
	quiet := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})
	chatty := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})

	assert.True(t, fanout{quiet, chatty}.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, fanout{quiet, quiet}.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, fanout{}.Enabled(context.Background(), slog.LevelError))
}

func TestFanout_JoinsErrorsAndKeepsWriting(t *testing.T) {
	var buf bytes.Buffer

	diskFull := errors.New("no space left on device")
	h := fanout{brokenHandler{err: diskFull}, slog.NewJSONHandler(&buf, nil)}

	err := h.Handle(context.Background(), slog.NewRecord(fixedTime, slog.LevelInfo, "email sent", 0))

	require.ErrorIs(t, err, diskFull)
	assert.Contains(t, buf.String(), "email sent")
}

func TestFanout_AttrsAndGroupsReachEveryHandler(t *testing.T) {
	var a, b bytes.Buffer

	logger := slog.New(fanout{slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil)}).
		With(slog.String(KeyMessageID, "42")).
		WithGroup("email")

	logger.Info("sent", slog.String("to", "bob@example.com"))

	for _, out := range []string{a.String(), b.String()} {
		assert.Contains(t, out, `"message_id":"42"`)
		assert.Contains(t, out, `"email":{"to":"bob@example.com"}`)
	}
}
