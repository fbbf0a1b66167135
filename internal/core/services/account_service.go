package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/payflo/money_transfer_app/internal/apperrors"
	"github.com/payflo/money_transfer_app/internal/core/domain"
	portsrepo "github.com/payflo/money_transfer_app/internal/core/ports/repositories"
	portssvc "github.com/payflo/money_transfer_app/internal/core/ports/services"
	"github.com/payflo/money_transfer_app/internal/dto"
	"github.com/payflo/money_transfer_app/internal/utils"
)

// AccountService implements account registration and lookup.
type AccountService struct {
	BaseService
	accountRepo     portsrepo.AccountRepositoryFacade
	startingBalance int64
}

// NewAccountService creates a new AccountService. startingBalanceMinor is the
// server-assigned balance, in minor units, given to every new account.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, startingBalanceMinor int64) *AccountService {
	return &AccountService{
		accountRepo:     accountRepo,
		startingBalance: startingBalanceMinor,
	}
}

// Ensure AccountService implements portssvc.AccountSvcFacade
var _ portssvc.AccountSvcFacade = (*AccountService)(nil)

// CreateAccount registers a new account. The starting balance is assigned by
// the server; a request that tries to set one is rejected outright.
func (s *AccountService) CreateAccount(ctx context.Context, req dto.RegisterRequest) (*domain.Account, error) {
	if req.Balance != nil {
		return nil, fmt.Errorf("%w: balance cannot be set during registration", apperrors.ErrValidation)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:    uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         req.Name,
		PasswordHash: passwordHash,
		Balance:      s.startingBalance,
		Version:      1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account registered", slog.String("account_id", account.AccountID))
	return &account, nil
}

// GetAccountByID retrieves an account by its unique identifier.
func (s *AccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

// GetAccountByEmail retrieves an account by its unique email reference.
func (s *AccountService) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}
	return account, nil
}
