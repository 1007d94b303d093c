package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/jsamuelsen/message-notifier/internal/adapters/http/dto"
	"github.com/jsamuelsen/message-notifier/internal/app"
	"github.com/jsamuelsen/message-notifier/internal/platform/logging"
)

// EventNotifier reacts to a saved message. It never fails.
type EventNotifier interface {
	OnMessageSaved(ctx context.Context, ev app.SaveEvent, opts ...app.NotifyOption)
}

// EventsHandler receives post-save events from the host application.
type EventsHandler struct {
	notifier EventNotifier
}

// NewEventsHandler creates an events handler.
func NewEventsHandler(notifier EventNotifier) *EventsHandler {
	return &EventsHandler{notifier: notifier}
}

// MessageSaved handles POST /api/v1/events/message-saved.
//
// A well-formed payload is always acknowledged with 202, whatever happens
// to the notification. Only malformed bodies are rejected.
func (h *EventsHandler) MessageSaved(c *gin.Context) {
	var req dto.MessageSavedRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	// The body was valid JSON above; this second pass only collects extras.
	var raw map[string]any
	_ = c.ShouldBindBodyWith(&raw, binding.JSON)

	ctx := c.Request.Context()
	if req.Instance != nil {
		ctx = logging.With(ctx, logging.KeyMessageID, string(req.Instance.ID))
	}

	logging.FromContext(ctx).DebugContext(ctx, "message saved event received",
		slog.String("signal", req.Signal),
		slog.Bool("created", req.Created),
	)

	h.notifier.OnMessageSaved(ctx, req.ToEvent(raw), req.Options()...)

	c.JSON(http.StatusAccepted, dto.AcceptedResponse{Status: "accepted"})
}

// RegisterRoutes mounts the event webhooks on rg.
func (h *EventsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/events/message-saved", h.MessageSaved)
}
