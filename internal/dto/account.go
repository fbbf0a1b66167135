package dto

import (
	"github.com/payflo/money_transfer_app/internal/core/domain"
	"github.com/payflo/money_transfer_app/internal/utils/money"
	"github.com/shopspring/decimal"
)

// AccountResponse defines the data returned for an account.
// Balance is rendered in major units ("1000" or "999.25"), never as a float.
type AccountResponse struct {
	AccountID string          `json:"accountID"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Balance   decimal.Decimal `json:"balance"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID: acc.AccountID,
		Name:      acc.Name,
		Email:     acc.Email,
		Balance:   money.FromMinorUnits(acc.Balance),
	}
}
