package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/message-notifier/internal/platform/logging"
)

// Logger seeds the request context with logger, which later middleware and
// handlers extend with request, correlation and message IDs.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if logger != nil {
			c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
		}

		c.Next()
	}
}

// Logging writes one "request completed" line per request, at warn for 4xx
// and error for 5xx. Health endpoints under /-/ are not logged.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHealthPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		target := c.Request.URL.RequestURI()

		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()

		logging.FromContext(ctx).Log(ctx, levelFor(status), "request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", target),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

func isHealthPath(path string) bool {
	return strings.HasPrefix(path, "/-/")
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
