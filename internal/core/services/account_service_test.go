package services_test

import (
	"context"
	"testing"

	"github.com/payflo/money_transfer_app/internal/apperrors"
	"github.com/payflo/money_transfer_app/internal/core/domain"
	"github.com/payflo/money_transfer_app/internal/core/services"
	"github.com/payflo/money_transfer_app/internal/dto"
	"github.com/payflo/money_transfer_app/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testStartingBalance = int64(100000)

// --- Test Suite Setup ---
type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	service         *services.AccountService
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo, testStartingBalance)
}

// --- Test Cases ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.RegisterRequest{
		Name:     "Alice",
		Email:    "  Alice@Example.COM ",
		Password: "correct-horse",
	}

	var saved domain.Account
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Account) }).
		Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.NotEmpty(account.AccountID)
	suite.Equal("alice@example.com", account.Email)
	suite.Equal(testStartingBalance, account.Balance)
	suite.Equal(int64(1), account.Version)
	suite.True(utils.CheckPasswordHash(req.Password, saved.PasswordHash))
	suite.NotEqual(req.Password, saved.PasswordHash)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_RejectsClientSuppliedBalance() {
	ctx := context.Background()
	balance := decimal.NewFromInt(9999)
	req := dto.RegisterRequest{
		Name:     "Mallory",
		Email:    "mallory@example.com",
		Password: "correct-horse",
		Balance:  &balance,
	}

	_, err := suite.service.CreateAccount(ctx, req)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateEmail() {
	ctx := context.Background()
	req := dto.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	}
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateAccount(ctx, req)

	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_NotFound() {
	ctx := context.Background()
	accountID := uuid.NewString()
	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetAccountByID(ctx, accountID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestGetAccountByEmail_NormalizesLookup() {
	ctx := context.Background()
	account := &domain.Account{AccountID: uuid.NewString(), Email: "bob@example.com"}
	suite.mockAccountRepo.On("FindAccountByEmail", ctx, "bob@example.com").Return(account, nil).Once()

	got, err := suite.service.GetAccountByEmail(ctx, " Bob@Example.com ")

	suite.Require().NoError(err)
	suite.Equal(account.AccountID, got.AccountID)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
