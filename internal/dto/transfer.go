package dto

import (
	"time"

	"github.com/payflo/money_transfer_app/internal/core/domain"
	"github.com/payflo/money_transfer_app/internal/utils/money"
	"github.com/shopspring/decimal"
)

// TransferRequest defines the externally-facing transfer payload.
// Amount is a major-unit decimal; it is converted exactly to minor units at
// the boundary, rejecting sub-minor precision.
type TransferRequest struct {
	ReceiverEmail string          `json:"receiverEmail" binding:"required,email"`
	Amount        decimal.Decimal `json:"amount" binding:"required,positivedecimal"`
	ClientToken   *string         `json:"clientToken"`
}

// TransferResponse returns the sender's balance after a successful transfer.
type TransferResponse struct {
	NewSenderBalance decimal.Decimal `json:"newSenderBalance"`
}

// HistoryQueryParams defines query parameters for the transaction history.
type HistoryQueryParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
	SortBy    string  `form:"sortBy,default=createdAt" binding:"omitempty,oneof=createdAt amount"`
	Order     string  `form:"order,default=desc" binding:"omitempty,oneof=asc desc"`
	Offset    int     `form:"offset,default=0"`
}

// HistoryEntryResponse is one row of the participant's transfer history.
type HistoryEntryResponse struct {
	TransferID       string          `json:"transferID"`
	CreatedAt        time.Time       `json:"createdAt"`
	CounterpartyRef  string          `json:"counterpartyRef"`
	CounterpartyName string          `json:"counterpartyName"`
	Direction        string          `json:"direction"`
	Amount           decimal.Decimal `json:"amount"`
	Status           string          `json:"status"`
}

// HistoryResponse wraps the history page.
type HistoryResponse struct {
	Transactions []HistoryEntryResponse `json:"transactions"`
	NextToken    *string                `json:"nextToken,omitempty"`
}

// ToHistoryEntryResponse converts a domain.HistoryEntry to its DTO.
func ToHistoryEntryResponse(e domain.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		TransferID:       e.TransferID,
		CreatedAt:        e.CreatedAt,
		CounterpartyRef:  e.CounterpartyRef,
		CounterpartyName: e.CounterpartyName,
		Direction:        string(e.Direction),
		Amount:           money.FromMinorUnits(e.Amount),
		Status:           string(e.Status),
	}
}

// ToHistoryResponse converts a page of history entries and its next token.
func ToHistoryResponse(entries []domain.HistoryEntry, nextToken *string) HistoryResponse {
	out := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = ToHistoryEntryResponse(e)
	}
	return HistoryResponse{Transactions: out, NextToken: nextToken}
}
