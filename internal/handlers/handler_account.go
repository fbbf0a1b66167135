package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/payflo/money_transfer_app/internal/apperrors"
	portssvc "github.com/payflo/money_transfer_app/internal/core/ports/services"
	"github.com/payflo/money_transfer_app/internal/dto"
	"github.com/payflo/money_transfer_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// AccountHandler serves the authenticated account's own profile.
type AccountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(as portssvc.AccountSvcFacade) *AccountHandler {
	return &AccountHandler{accountService: as}
}

// registerAccountRoutes sets up the account routes within the authed group.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := NewAccountHandler(accountService)
	rg.GET("/auth/me", h.Me)
}

// Me returns the authenticated account, including its current balance.
func (h *AccountHandler) Me(c *gin.Context) {
	accountID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Account not found"})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to load account", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load account"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}
