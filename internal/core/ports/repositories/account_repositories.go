package repositories

import (
	"context"
	"time"

	"github.com/payflo/money_transfer_app/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByEmail retrieves an account by its unique email reference.
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	// IDs that do not resolve are simply absent from the returned map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicate when
	// the email is already registered.
	SaveAccount(ctx context.Context, account domain.Account) error

	// ApplyBalanceDelta applies delta to the account's balance only if its
	// version still matches expectedVersion, bumping the version on success.
	// Returns apperrors.ErrConflict when a concurrent writer got there first,
	// apperrors.ErrInsufficientBalance when the result would be negative, and
	// apperrors.ErrAmountOverflow when it would not fit in int64.
	ApplyBalanceDelta(ctx context.Context, accountID string, delta int64, expectedVersion int64, now time.Time) (*domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
