package services

import (
	"context"

	"github.com/payflo/money_transfer_app/internal/core/domain"
)

// TransferSvc executes point-to-point transfers.
type TransferSvc interface {
	// Execute debits the sender, credits the receiver resolved from
	// receiverEmail, and appends the journal record, as one indivisible unit.
	// amount is in minor units. clientToken, when non-nil, deduplicates
	// transport-level retries. Returns the sender's balance after the
	// transfer, or one of the apperrors transfer kinds.
	Execute(ctx context.Context, senderID, receiverEmail string, amount int64, clientToken *string) (int64, error)
}

// HistorySvc produces the participant-relative transfer history projection.
type HistorySvc interface {
	// ListHistory returns history entries for the account. sortBy selects
	// createdAt (default, descending, cursor-paginated via nextToken) or
	// amount (ascending flag honored, offset-paginated). The returned token
	// is non-nil only for createdAt ordering when more pages exist.
	ListHistory(ctx context.Context, accountID string, params HistoryParams) ([]domain.HistoryEntry, *string, error)
}

// HistoryParams bundles the history query options.
type HistoryParams struct {
	Limit     int
	NextToken *string
	SortBy    domain.HistorySortField
	Ascending bool
	Offset    int
}
