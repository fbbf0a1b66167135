package dto

import (
	"github.com/shopspring/decimal"
)

// RegisterRequest defines the data needed to register a new account.
// Balance is deliberately bindable so a client-supplied value can be detected
// and rejected: the starting balance is server-assigned.
type RegisterRequest struct {
	Name     string           `json:"name" binding:"required"`
	Email    string           `json:"email" binding:"required,email"`
	Password string           `json:"password" binding:"required,min=8"`
	Balance  *decimal.Decimal `json:"balance"`
}

// LoginRequest defines the credentials for a login attempt.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the issued token together with the account summary.
type LoginResponse struct {
	Token string          `json:"token"`
	User  AccountResponse `json:"user"`
}
