package dto

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/message-notifier/internal/domain"
	"github.com/jsamuelsen/message-notifier/internal/platform/logging"
)

// MapDomainError maps a domain error to an HTTP status and error envelope.
// Unknown errors become a 500 with a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	var resp *ErrorResponse

	switch {
	case domain.IsNotFound(err):
		resp = NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsValidation(err):
		resp = NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.WithDetails(map[string]string{validationErr.Field: validationErr.Message})
		}

	case domain.IsUnavailable(err):
		resp = NewErrorResponse(ErrorCodeUnavailable, err.Error())

	default:
		resp = NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}

	return resp.Status(), resp
}

// GetTraceID returns the trace ID of the request span, or "".
func GetTraceID(c *gin.Context) string {
	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	return ""
}

// HandleError writes the envelope for err. Internal errors are logged
// with full detail since the response hides them.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.TraceID = GetTraceID(c)

	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("internal error",
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.JSON(status, resp)
}

// HandleBindError writes a 400 for a failed BindAndValidate call.
func HandleBindError(c *gin.Context, err error) {
	resp := NewErrorResponse(ErrorCodeBadRequest, "malformed request body")
	if IsValidationError(err) {
		resp = NewErrorResponse(ErrorCodeValidation, "request validation failed").WithDetails(ValidationErrors(err))
	}

	c.JSON(resp.Status(), resp.WithTraceID(GetTraceID(c)))
}
