package services

import (
	"context"
	"fmt"

	"github.com/payflo/money_transfer_app/internal/core/domain"
	portsrepo "github.com/payflo/money_transfer_app/internal/core/ports/repositories"
	portssvc "github.com/payflo/money_transfer_app/internal/core/ports/services"
)

// HistoryService projects the transfer journal into per-account history
// entries. The journal itself is never mutated; the projection resolves the
// counterparty and classifies each record as sent or received from the
// requesting account's point of view.
type HistoryService struct {
	BaseService
	accountRepo  portsrepo.AccountRepositoryFacade
	transferRepo portsrepo.TransferRepositoryFacade
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(accountRepo portsrepo.AccountRepositoryFacade, transferRepo portsrepo.TransferRepositoryFacade) *HistoryService {
	return &HistoryService{
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
	}
}

// Ensure HistoryService implements portssvc.HistorySvc
var _ portssvc.HistorySvc = (*HistoryService)(nil)

// ListHistory returns a page of the account's transfer history. Sorting by
// creation time uses token-based cursors; sorting by amount uses offsets and
// returns no token.
func (s *HistoryService) ListHistory(ctx context.Context, accountID string, params portssvc.HistoryParams) ([]domain.HistoryEntry, *string, error) {
	var (
		records   []domain.TransferRecord
		nextToken *string
		err       error
	)

	switch params.SortBy {
	case domain.SortByAmount:
		records, err = s.transferRepo.ListTransfersByParticipantByAmount(ctx, accountID, params.Limit, params.Offset, params.Ascending)
	default:
		records, nextToken, err = s.transferRepo.ListTransfersByParticipant(ctx, accountID, params.Limit, params.NextToken)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transfers for account %s: %w", accountID, err)
	}

	entries, err := s.project(ctx, accountID, records)
	if err != nil {
		return nil, nil, err
	}
	return entries, nextToken, nil
}

// project resolves counterparties in one batch and maps each journal record
// into the caller's view of it.
func (s *HistoryService) project(ctx context.Context, accountID string, records []domain.TransferRecord) ([]domain.HistoryEntry, error) {
	counterpartyIDs := make([]string, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		other := rec.ReceiverID
		if rec.ReceiverID == accountID {
			other = rec.SenderID
		}
		if _, ok := seen[other]; !ok {
			seen[other] = struct{}{}
			counterpartyIDs = append(counterpartyIDs, other)
		}
	}

	counterparties := map[string]domain.Account{}
	if len(counterpartyIDs) > 0 {
		var err error
		counterparties, err = s.accountRepo.FindAccountsByIDs(ctx, counterpartyIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve counterparties: %w", err)
		}
	}

	entries := make([]domain.HistoryEntry, 0, len(records))
	for _, rec := range records {
		direction := domain.DirectionSent
		other := rec.ReceiverID
		if rec.ReceiverID == accountID {
			direction = domain.DirectionReceived
			other = rec.SenderID
		}

		entry := domain.HistoryEntry{
			TransferID: rec.TransferID,
			Direction:  direction,
			Amount:     rec.Amount,
			Status:     rec.Status,
			CreatedAt:  rec.CreatedAt,
		}
		if acc, ok := counterparties[other]; ok {
			entry.CounterpartyRef = acc.Email
			entry.CounterpartyName = acc.Name
		} else {
			// Counterparty no longer resolvable; keep the record visible.
			entry.CounterpartyRef = other
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
