package services

import (
	"context"

	"github.com/payflo/money_transfer_app/internal/core/domain"
	"github.com/payflo/money_transfer_app/internal/dto"
)

// AccountReaderSvc defines read operations for account data.
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByEmail retrieves an account by its unique email reference.
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// AccountWriterSvc defines write operations for account data.
type AccountWriterSvc interface {
	// CreateAccount registers a new account with the configured starting
	// balance. A client-supplied balance is rejected.
	CreateAccount(ctx context.Context, req dto.RegisterRequest) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
