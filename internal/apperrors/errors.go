package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the transfer core. Handlers map these to HTTP statuses;
// services return them wrapped with context via fmt.Errorf("...: %w", err).
var (
	// ErrInvalidAmount indicates the transfer amount is zero, negative, or malformed.
	ErrInvalidAmount = errors.New("amount must be a positive number of whole minor units")

	// ErrReceiverNotFound indicates the receiver reference resolved to no account.
	ErrReceiverNotFound = errors.New("receiver account not found")

	// ErrSenderNotFound indicates the authenticated sender has no account record.
	ErrSenderNotFound = errors.New("sender account not found")

	// ErrSelfTransfer indicates sender and receiver are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to the same account")

	// ErrInsufficientBalance indicates the sender's balance does not cover the amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAmountOverflow indicates a balance update would overflow the int64 minor-unit range.
	ErrAmountOverflow = errors.New("balance arithmetic overflow")

	// ErrContention indicates a transfer attempt kept losing against concurrent
	// updates to the same accounts and exhausted its retries. Safe to retry.
	ErrContention = errors.New("too much contention on account, retry the transfer")

	// ErrStoreUnavailable indicates an infrastructure-level store failure. Safe to retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound indicates that a requested resource could not be found.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation indicates that input data failed validation checks.
	ErrValidation = errors.New("validation error")

	// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
	ErrDuplicate = errors.New("resource already exists")

	// ErrConflict indicates a version-checked update lost against a concurrent writer.
	// The caller retries the whole attempt from validation.
	ErrConflict = errors.New("conditional update conflict")
)

// AppError wraps an underlying error with a stable code and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with the given code, message and cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// IsRetryable reports whether the caller may safely retry the same request.
// Only contention and store unavailability qualify; every other kind is
// terminal for that request because the condition will not change.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrContention) || errors.Is(err, ErrStoreUnavailable)
}
