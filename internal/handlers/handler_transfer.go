package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/payflo/money_transfer_app/internal/apperrors"
	"github.com/payflo/money_transfer_app/internal/core/domain"
	portssvc "github.com/payflo/money_transfer_app/internal/core/ports/services"
	"github.com/payflo/money_transfer_app/internal/dto"
	"github.com/payflo/money_transfer_app/internal/middleware"
	"github.com/payflo/money_transfer_app/internal/utils/money"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func init() {
	// Non-positive amounts are rejected at binding time, before the engine
	// ever sees the request.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("positivedecimal", func(fl validator.FieldLevel) bool {
			d, ok := fl.Field().Interface().(decimal.Decimal)
			return ok && d.IsPositive()
		})
	}
}

// TransferHandler serves transfer execution and the history projection.
type TransferHandler struct {
	transferService portssvc.TransferSvc
	historyService  portssvc.HistorySvc
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(ts portssvc.TransferSvc, hs portssvc.HistorySvc) *TransferHandler {
	return &TransferHandler{transferService: ts, historyService: hs}
}

// registerTransferRoutes sets up the transfer routes within the authed group.
func registerTransferRoutes(rg *gin.RouterGroup, ts portssvc.TransferSvc, hs portssvc.HistorySvc) {
	h := NewTransferHandler(ts, hs)
	rg.POST("/transfer", h.Transfer)
	rg.GET("/transactions", h.History)
}

// Transfer executes a point-to-point transfer from the authenticated account.
func (h *TransferHandler) Transfer(c *gin.Context) {
	senderID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	amount, err := money.ToMinorUnits(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: apperrors.ErrInvalidAmount.Error()})
		return
	}

	newBalance, err := h.transferService.Execute(c.Request.Context(), senderID, req.ReceiverEmail, amount, req.ClientToken)
	if err != nil {
		h.respondTransferError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TransferResponse{NewSenderBalance: money.FromMinorUnits(newBalance)})
}

// respondTransferError maps the transfer error taxonomy onto HTTP statuses.
// Retryable kinds get statuses that tell the client to try again; terminal
// kinds report why the request can never succeed as written.
func (h *TransferHandler) respondTransferError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrSelfTransfer),
		errors.Is(err, apperrors.ErrAmountOverflow),
		errors.Is(err, apperrors.ErrInsufficientBalance),
		errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrReceiverNotFound),
		errors.Is(err, apperrors.ErrSenderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrContention):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: apperrors.ErrStoreUnavailable.Error()})
	default:
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Transfer failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Transfer failed"})
	}
}

// History returns a page of the authenticated account's transfer history.
func (h *TransferHandler) History(c *gin.Context) {
	accountID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var params dto.HistoryQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	svcParams := portssvc.HistoryParams{
		Limit:     params.Limit,
		NextToken: params.NextToken,
		SortBy:    domain.HistorySortField(params.SortBy),
		Ascending: params.Order == "asc",
		Offset:    params.Offset,
	}

	entries, nextToken, err := h.historyService.ListHistory(c.Request.Context(), accountID, svcParams)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == http.StatusBadRequest {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: appErr.Message})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to list transfer history", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, dto.ToHistoryResponse(entries, nextToken))
}
