// Package money converts between boundary amounts (decimal strings like
// "12.34") and the int64 minor-unit representation used for all balance
// arithmetic. No float64 ever touches an amount.
package money

import (
	"math"

	"github.com/payflo/money_transfer_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// MinorUnitExponent is the number of decimal places in the smallest currency unit.
const MinorUnitExponent = 2

// ToMinorUnits converts a major-unit decimal amount (e.g. "12.34") to minor
// units (1234). Amounts with sub-minor precision are rejected as malformed,
// and amounts outside the int64 range surface an overflow.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(MinorUnitExponent)
	if !shifted.IsInteger() {
		return 0, apperrors.ErrInvalidAmount
	}
	bi := shifted.BigInt()
	if !bi.IsInt64() {
		return 0, apperrors.ErrAmountOverflow
	}
	return bi.Int64(), nil
}

// FromMinorUnits converts minor units back to a major-unit decimal for responses.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-MinorUnitExponent)
}

// CheckedAdd returns a+b or ErrAmountOverflow if the sum does not fit in int64.
func CheckedAdd(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, apperrors.ErrAmountOverflow
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, apperrors.ErrAmountOverflow
	}
	return a + b, nil
}
