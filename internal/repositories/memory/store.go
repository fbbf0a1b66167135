// Package memory provides an in-process implementation of the account and
// transfer repositories. It backs the service tests and any deployment that
// runs without Postgres. Unlike the database store it has no multi-record
// transaction, so the transfer engine runs its compensating-write protocol
// against it; the version-checked balance update is the only mutation point.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/payflo/money_transfer_app/internal/apperrors"
	"github.com/payflo/money_transfer_app/internal/core/domain"
	portsrepo "github.com/payflo/money_transfer_app/internal/core/ports/repositories"
	"github.com/payflo/money_transfer_app/internal/utils/money"
	"github.com/payflo/money_transfer_app/internal/utils/pagination"
)

// Store holds all in-memory state. All reads return value copies so callers
// can never mutate internal state around the version check.
type Store struct {
	mu        sync.RWMutex
	accounts  map[string]*domain.Account
	byEmail   map[string]string // email -> account id
	transfers []domain.TransferRecord
	byToken   map[string]int // client token -> index into transfers

	// AppendHook, when set, runs before every journal append and can force it
	// to fail. Tests use it to exercise the engine's compensation path.
	// Must be set before the store is shared between goroutines.
	AppendHook func(domain.TransferRecord) error
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		byEmail:  make(map[string]string),
		byToken:  make(map[string]int),
	}
}

var (
	_ portsrepo.AccountRepositoryFacade  = (*Store)(nil)
	_ portsrepo.TransferRepositoryFacade = (*Store)(nil)
)

// SaveAccount persists a new account.
func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[account.Email]; exists {
		return fmt.Errorf("%w: email %s is already registered", apperrors.ErrDuplicate, account.Email)
	}
	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
	}
	cp := account
	s.accounts[account.AccountID] = &cp
	s.byEmail[account.Email] = account.AccountID
	return nil
}

// FindAccountByID returns a snapshot of the account or apperrors.ErrNotFound.
func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

// FindAccountByEmail returns a snapshot of the account or apperrors.ErrNotFound.
func (s *Store) FindAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *s.accounts[id]
	return &cp, nil
}

// FindAccountsByIDs returns snapshots for the IDs that resolve.
func (s *Store) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := s.accounts[id]; ok {
			out[id] = *acc
		}
	}
	return out, nil
}

// ApplyBalanceDelta is the compare-and-swap balance mutation: the delta
// applies only if the account's version still matches expectedVersion.
func (s *Store) ApplyBalanceDelta(_ context.Context, accountID string, delta int64, expectedVersion int64, now time.Time) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if acc.Version != expectedVersion {
		return nil, apperrors.ErrConflict
	}

	newBalance, err := money.CheckedAdd(acc.Balance, delta)
	if err != nil {
		return nil, err
	}
	if newBalance < 0 {
		return nil, apperrors.ErrInsufficientBalance
	}

	acc.Balance = newBalance
	acc.Version++
	acc.LastUpdatedAt = now

	cp := *acc
	return &cp, nil
}

// AppendTransfer durably appends one immutable record.
func (s *Store) AppendTransfer(_ context.Context, record domain.TransferRecord) error {
	if s.AppendHook != nil {
		if err := s.AppendHook(record); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ClientToken != nil && *record.ClientToken != "" {
		if _, exists := s.byToken[*record.ClientToken]; exists {
			return fmt.Errorf("%w: client token already recorded", apperrors.ErrDuplicate)
		}
		s.byToken[*record.ClientToken] = len(s.transfers)
	}
	s.transfers = append(s.transfers, record)
	return nil
}

// FindTransferByClientToken returns the record for an idempotency token.
func (s *Store) FindTransferByClientToken(_ context.Context, token string) (*domain.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byToken[token]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := s.transfers[idx]
	return &cp, nil
}

func (s *Store) participantTransfers(accountID string) []domain.TransferRecord {
	out := make([]domain.TransferRecord, 0)
	for _, rec := range s.transfers {
		if rec.SenderID == accountID || rec.ReceiverID == accountID {
			out = append(out, rec)
		}
	}
	return out
}

// recordBefore orders records newest-first with transfer ID as tie-break.
func recordBefore(a, b domain.TransferRecord) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.TransferID > b.TransferID
}

// ListTransfersByParticipant pages the account's records newest first.
func (s *Store) ListTransfersByParticipant(_ context.Context, accountID string, limit int, nextToken *string) ([]domain.TransferRecord, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	s.mu.RLock()
	records := s.participantTransfers(accountID)
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool { return recordBefore(records[i], records[j]) })

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastTransferID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", err)
		}
		cursor := domain.TransferRecord{CreatedAt: lastCreatedAt, TransferID: lastTransferID}
		filtered := records[:0]
		for _, rec := range records {
			if recordBefore(cursor, rec) {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	var nextTokenVal *string
	if len(records) > limit {
		last := records[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransferID)
		nextTokenVal = &token
		records = records[:limit]
	}

	return records, nextTokenVal, nil
}

// ListTransfersByParticipantByAmount pages the account's records by amount.
func (s *Store) ListTransfersByParticipantByAmount(_ context.Context, accountID string, limit, offset int, ascending bool) ([]domain.TransferRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	records := s.participantTransfers(accountID)
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].Amount != records[j].Amount {
			if ascending {
				return records[i].Amount < records[j].Amount
			}
			return records[i].Amount > records[j].Amount
		}
		return recordBefore(records[i], records[j])
	})

	if offset >= len(records) {
		return []domain.TransferRecord{}, nil
	}
	records = records[offset:]
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
