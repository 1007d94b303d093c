package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/message-notifier/internal/adapters/http/dto"
	"github.com/jsamuelsen/message-notifier/internal/app"
	"github.com/jsamuelsen/message-notifier/internal/domain"
	"github.com/jsamuelsen/message-notifier/internal/ports"
)

// LocalizerSource returns the localizer for a language tag. An empty tag
// selects the default language.
type LocalizerSource func(lang string) (ports.Localizer, error)

// QuotesHandler formats quoted replies.
type QuotesHandler struct {
	users      *app.UserModelResolver
	localizers LocalizerSource
}

// NewQuotesHandler creates a quotes handler.
func NewQuotesHandler(users *app.UserModelResolver, localizers LocalizerSource) *QuotesHandler {
	return &QuotesHandler{users: users, localizers: localizers}
}

// CreateQuote handles POST /api/v1/quotes.
// The sender is shown by the resolved username field.
func (h *QuotesHandler) CreateQuote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	localizer, err := h.localizers(req.Language)
	if err != nil {
		dto.HandleError(c, domain.NewValidationError("lang", err.Error()))
		return
	}

	quote := app.NewQuoteFormatter(localizer).FormatQuote(h.users.Identify(req.Sender.ToDomain()), req.Body)

	c.JSON(http.StatusOK, dto.QuoteResponse{Quote: quote})
}

// RegisterRoutes mounts the quote routes on rg.
func (h *QuotesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/quotes", h.CreateQuote)
}
