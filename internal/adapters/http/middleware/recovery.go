package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/message-notifier/internal/adapters/http/dto"
	"github.com/jsamuelsen/message-notifier/internal/platform/logging"
)

// Recovery converts a handler panic into a 500 envelope. Mount it first so
// it also covers the other middleware.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if v := recover(); v != nil {
				recovered(c, v, debug.Stack())
			}
		}()

		c.Next()
	}
}

func recovered(c *gin.Context, v any, stack []byte) {
	traceID := dto.GetTraceID(c)

	logging.FromContext(c.Request.Context()).Error("handler panicked",
		slog.Any("panic", v),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("stack", string(stack)),
	)

	abortWith(c, dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred").WithTraceID(traceID))
}

// abortWith writes resp unless the handler already started the response,
// in which case the chain is only stopped.
func abortWith(c *gin.Context, resp *dto.ErrorResponse) {
	if !c.Writer.Written() {
		c.AbortWithStatusJSON(resp.Status(), resp)
		return
	}

	c.Abort()
}
