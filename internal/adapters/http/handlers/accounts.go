package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/message-notifier/internal/adapters/http/dto"
	"github.com/jsamuelsen/message-notifier/internal/app"
)

// AccountsHandler exposes the resolved user model.
type AccountsHandler struct {
	users *app.UserModelResolver
}

// NewAccountsHandler creates an accounts handler.
func NewAccountsHandler(users *app.UserModelResolver) *AccountsHandler {
	return &AccountsHandler{users: users}
}

// UserModel handles GET /api/v1/accounts/user-model.
func (h *AccountsHandler) UserModel(c *gin.Context) {
	model := h.users.ResolveUserModel()

	c.JSON(http.StatusOK, dto.UserModelResponse{
		Model:         model.Name,
		UsernameField: h.users.ResolveUsernameField(),
	})
}

// RegisterRoutes mounts the account routes on rg.
func (h *AccountsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/accounts/user-model", h.UserModel)
}
