package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/payflo/money_transfer_app/internal/apperrors"
	"github.com/payflo/money_transfer_app/internal/core/domain"
	portsrepo "github.com/payflo/money_transfer_app/internal/core/ports/repositories"
	portssvc "github.com/payflo/money_transfer_app/internal/core/ports/services"
	"github.com/payflo/money_transfer_app/internal/utils/money"
)

const (
	defaultMaxAttempts = 3

	// compensationRetryCap bounds the version-conflict retries of a
	// compensating balance write. Compensation must not give up because the
	// caller's deadline expired, but it also must not spin forever.
	compensationRetryCap = 25
)

// TransferService is the atomic transfer engine: it validates a transfer
// request, debits the sender, credits the receiver, and appends the journal
// record as one indivisible unit.
//
// When the journal repository also implements portsrepo.AtomicTransferrer the
// whole unit is committed inside the store's own transaction. Otherwise the
// engine drives the version-checked balance updates itself and compensates a
// partially applied attempt, so the sender never observes a debit without a
// matching credit-or-compensation record.
type TransferService struct {
	BaseService
	accountRepo  portsrepo.AccountRepositoryFacade
	transferRepo portsrepo.TransferRepositoryFacade
	maxAttempts  int
}

// NewTransferService creates the transfer engine. maxAttempts bounds the
// retries when an attempt keeps losing against concurrent updates.
func NewTransferService(accountRepo portsrepo.AccountRepositoryFacade, transferRepo portsrepo.TransferRepositoryFacade, maxAttempts int) *TransferService {
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	return &TransferService{
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		maxAttempts:  maxAttempts,
	}
}

// Ensure TransferService implements portssvc.TransferSvc
var _ portssvc.TransferSvc = (*TransferService)(nil)

// newTransferID returns a time-ordered record ID.
func newTransferID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Entropy exhaustion only; fall back to an unordered ID.
		return uuid.NewString()
	}
	return id.String()
}

func normalizeToken(token *string) *string {
	if token == nil || *token == "" {
		return nil
	}
	return token
}

// Execute performs one point-to-point transfer. Validation runs first and has
// no side effects: a rejected request writes nothing. amount is in minor units.
func (s *TransferService) Execute(ctx context.Context, senderID, receiverEmail string, amount int64, clientToken *string) (int64, error) {
	if amount <= 0 {
		return 0, apperrors.ErrInvalidAmount
	}

	token := normalizeToken(clientToken)
	if token != nil {
		prior, err := s.transferRepo.FindTransferByClientToken(ctx, *token)
		switch {
		case err == nil:
			return s.replay(ctx, senderID, prior)
		case !errors.Is(err, apperrors.ErrNotFound):
			return 0, fmt.Errorf("failed to check idempotency token: %w", err)
		}
	}

	receiver, err := s.accountRepo.FindAccountByEmail(ctx, receiverEmail)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, apperrors.ErrReceiverNotFound
		}
		return 0, fmt.Errorf("failed to resolve receiver: %w", err)
	}

	sender, err := s.accountRepo.FindAccountByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, apperrors.ErrSenderNotFound
		}
		return 0, fmt.Errorf("failed to load sender: %w", err)
	}

	if sender.AccountID == receiver.AccountID {
		return 0, apperrors.ErrSelfTransfer
	}
	if sender.Balance < amount {
		return 0, apperrors.ErrInsufficientBalance
	}
	if _, err := money.CheckedAdd(receiver.Balance, amount); err != nil {
		return 0, apperrors.ErrAmountOverflow
	}

	record := domain.TransferRecord{
		TransferID:  newTransferID(),
		SenderID:    sender.AccountID,
		ReceiverID:  receiver.AccountID,
		Amount:      amount,
		ClientToken: token,
	}

	if atomic, ok := s.transferRepo.(portsrepo.AtomicTransferrer); ok {
		return s.executeAtomic(ctx, atomic, record)
	}
	return s.executeWithCompensation(ctx, record)
}

// executeAtomic delegates the whole unit to a store that commits it in one
// transaction, retrying the attempt on lock/serialization conflicts.
func (s *TransferService) executeAtomic(ctx context.Context, atomic portsrepo.AtomicTransferrer, record domain.TransferRecord) (int64, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
		}

		newBalance, err := atomic.PerformTransfer(ctx, record)
		switch {
		case err == nil:
			s.LogInfo(ctx, "Transfer committed",
				slog.String("transfer_id", record.TransferID),
				slog.Int64("amount", record.Amount))
			return newBalance, nil
		case errors.Is(err, apperrors.ErrConflict):
			continue
		case errors.Is(err, apperrors.ErrDuplicate) && record.ClientToken != nil:
			// Lost a race against a retry carrying the same token.
			prior, findErr := s.transferRepo.FindTransferByClientToken(ctx, *record.ClientToken)
			if findErr != nil {
				return 0, fmt.Errorf("failed to resolve duplicate idempotency token: %w", findErr)
			}
			return s.replay(ctx, record.SenderID, prior)
		default:
			return 0, err
		}
	}
	s.LogWarn(ctx, "Transfer retries exhausted",
		slog.String("transfer_id", record.TransferID),
		slog.Int("attempts", s.maxAttempts))
	return 0, apperrors.ErrContention
}

// executeWithCompensation drives the unit against a store with only
// single-record conditional updates: debit, credit, append, each attempt
// restarted from validation when a version check loses.
func (s *TransferService) executeWithCompensation(ctx context.Context, record domain.TransferRecord) (int64, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
		}

		// Fresh snapshot and re-validation on every attempt.
		sender, err := s.accountRepo.FindAccountByID(ctx, record.SenderID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return 0, apperrors.ErrSenderNotFound
			}
			return 0, fmt.Errorf("failed to load sender: %w", err)
		}
		receiver, err := s.accountRepo.FindAccountByID(ctx, record.ReceiverID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return 0, apperrors.ErrReceiverNotFound
			}
			return 0, fmt.Errorf("failed to load receiver: %w", err)
		}
		if sender.Balance < record.Amount {
			return 0, apperrors.ErrInsufficientBalance
		}
		if _, err := money.CheckedAdd(receiver.Balance, record.Amount); err != nil {
			return 0, apperrors.ErrAmountOverflow
		}

		debited, err := s.accountRepo.ApplyBalanceDelta(ctx, sender.AccountID, -record.Amount, sender.Version, time.Now().UTC())
		if err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				continue
			}
			return 0, fmt.Errorf("failed to debit sender: %w", err)
		}

		// The debit is durable from here on: any later failure must leave the
		// sender compensated and a FAILED record behind.
		if err := s.creditWithRetry(ctx, receiver.AccountID, record.Amount); err != nil {
			s.compensateDebit(ctx, record, err)
			return 0, fmt.Errorf("failed to credit receiver: %w", err)
		}

		record.Status = domain.TransferSuccess
		record.CreatedAt = time.Now().UTC()
		if err := s.transferRepo.AppendTransfer(ctx, record); err != nil {
			s.compensateBoth(ctx, record, err)
			if errors.Is(err, apperrors.ErrDuplicate) && record.ClientToken != nil {
				prior, findErr := s.transferRepo.FindTransferByClientToken(ctx, *record.ClientToken)
				if findErr == nil {
					return s.replay(ctx, record.SenderID, prior)
				}
			}
			return 0, fmt.Errorf("%w: journal append failed: %v", apperrors.ErrStoreUnavailable, err)
		}

		s.LogInfo(ctx, "Transfer committed",
			slog.String("transfer_id", record.TransferID),
			slog.Int64("amount", record.Amount))
		return debited.Balance, nil
	}
	s.LogWarn(ctx, "Transfer retries exhausted",
		slog.String("transfer_id", record.TransferID),
		slog.Int("attempts", s.maxAttempts))
	return 0, apperrors.ErrContention
}

// creditWithRetry applies a positive delta, re-reading the account on version
// conflicts. A credit cannot fail validation except by overflow.
func (s *TransferService) creditWithRetry(ctx context.Context, accountID string, amount int64) error {
	for i := 0; i < compensationRetryCap; i++ {
		acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		_, err = s.accountRepo.ApplyBalanceDelta(ctx, accountID, amount, acc.Version, time.Now().UTC())
		if errors.Is(err, apperrors.ErrConflict) {
			continue
		}
		return err
	}
	return apperrors.ErrContention
}

// compensateDebit reverses a durable debit whose matching credit failed and
// appends the FAILED record. Runs detached from the caller's deadline: a
// timed-out request must still leave balances whole.
func (s *TransferService) compensateDebit(ctx context.Context, record domain.TransferRecord, cause error) {
	ctx = context.WithoutCancel(ctx)
	s.LogError(ctx, cause, "Compensating debited sender after failed credit",
		slog.String("transfer_id", record.TransferID))

	if err := s.creditWithRetry(ctx, record.SenderID, record.Amount); err != nil {
		s.LogError(ctx, err, "Compensating credit to sender failed; balances require manual reconciliation",
			slog.String("transfer_id", record.TransferID))
	}
	s.appendFailedRecord(ctx, record)
}

// compensateBoth reverses both balance writes after the journal append
// failed, then appends the FAILED record best-effort.
func (s *TransferService) compensateBoth(ctx context.Context, record domain.TransferRecord, cause error) {
	ctx = context.WithoutCancel(ctx)
	s.LogError(ctx, cause, "Reversing applied transfer after failed journal append",
		slog.String("transfer_id", record.TransferID))

	if err := s.debitWithRetry(ctx, record.ReceiverID, record.Amount); err != nil {
		s.LogError(ctx, err, "Reversal debit of receiver failed; balances require manual reconciliation",
			slog.String("transfer_id", record.TransferID))
	}
	if err := s.creditWithRetry(ctx, record.SenderID, record.Amount); err != nil {
		s.LogError(ctx, err, "Reversal credit to sender failed; balances require manual reconciliation",
			slog.String("transfer_id", record.TransferID))
	}
	s.appendFailedRecord(ctx, record)
}

// debitWithRetry removes a previously applied credit during a reversal.
func (s *TransferService) debitWithRetry(ctx context.Context, accountID string, amount int64) error {
	for i := 0; i < compensationRetryCap; i++ {
		acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		_, err = s.accountRepo.ApplyBalanceDelta(ctx, accountID, -amount, acc.Version, time.Now().UTC())
		if errors.Is(err, apperrors.ErrConflict) {
			continue
		}
		return err
	}
	return apperrors.ErrContention
}

// appendFailedRecord writes the FAILED journal entry for a compensated
// attempt. Best-effort: the journal may be the component that is down.
func (s *TransferService) appendFailedRecord(ctx context.Context, record domain.TransferRecord) {
	failed := record
	failed.Status = domain.TransferFailed
	failed.CreatedAt = time.Now().UTC()
	if err := s.transferRepo.AppendTransfer(ctx, failed); err != nil {
		s.LogError(ctx, err, "Failed to append FAILED transfer record",
			slog.String("transfer_id", record.TransferID))
	}
}

// replay resolves a request whose idempotency token already has a committed
// record: the transfer is not re-applied.
func (s *TransferService) replay(ctx context.Context, senderID string, prior *domain.TransferRecord) (int64, error) {
	if prior.SenderID != senderID {
		return 0, fmt.Errorf("%w: client token was issued for a different account", apperrors.ErrValidation)
	}
	if prior.Status != domain.TransferSuccess {
		// The recorded attempt was compensated; the caller may retry with a
		// fresh token.
		return 0, apperrors.ErrStoreUnavailable
	}

	sender, err := s.accountRepo.FindAccountByID(ctx, senderID)
	if err != nil {
		return 0, fmt.Errorf("failed to load sender for replay: %w", err)
	}

	s.LogInfo(ctx, "Replaying committed transfer for idempotency token",
		slog.String("transfer_id", prior.TransferID))
	return sender.Balance, nil
}
