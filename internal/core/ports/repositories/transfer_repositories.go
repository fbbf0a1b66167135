package repositories

import (
	"context"

	"github.com/payflo/money_transfer_app/internal/core/domain"
)

// TransferAppender defines the append-only write operation on the transfer journal.
type TransferAppender interface {
	// AppendTransfer durably inserts one immutable transfer record. Once it
	// returns nil the record appears in all subsequent participant queries.
	AppendTransfer(ctx context.Context, record domain.TransferRecord) error
}

// TransferReader defines read operations over the transfer journal.
type TransferReader interface {
	// ListTransfersByParticipant returns records where the account is sender
	// or receiver, ordered by created_at descending with the transfer ID as
	// tie-break, using cursor-token pagination. Returns the page and the token
	// for the next page (nil when exhausted).
	ListTransfersByParticipant(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.TransferRecord, *string, error)

	// ListTransfersByParticipantByAmount returns records for the participant
	// ordered by amount, ascending or descending, with limit/offset paging.
	ListTransfersByParticipantByAmount(ctx context.Context, accountID string, limit, offset int, ascending bool) ([]domain.TransferRecord, error)

	// FindTransferByClientToken retrieves the record previously committed for
	// an idempotency token, or apperrors.ErrNotFound.
	FindTransferByClientToken(ctx context.Context, token string) (*domain.TransferRecord, error)
}

// AtomicTransferrer is implemented by stores that can commit the entire
// transfer unit — both balance writes plus the journal append — atomically.
// The engine prefers this over its own compensating-write protocol.
//
// Implementations must take the consistent snapshot themselves, re-check
// funds, self-transfer and overflow against it, acquire any row locks in
// ascending account-id order, and either commit everything or nothing.
// Retryable lock/serialization conflicts surface as apperrors.ErrConflict; a
// duplicate client token surfaces as apperrors.ErrDuplicate.
type AtomicTransferrer interface {
	PerformTransfer(ctx context.Context, record domain.TransferRecord) (newSenderBalance int64, err error)
}

// TransferRepositoryFacade combines the journal's read and append interfaces.
type TransferRepositoryFacade interface {
	TransferAppender
	TransferReader
}
