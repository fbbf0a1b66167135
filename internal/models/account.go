package models

// Account mirrors the accounts table.
// Balance is int64 minor units; version is the optimistic concurrency token.
type Account struct {
	AccountID    string `db:"account_id"`
	Email        string `db:"email"`
	Name         string `db:"name"`
	PasswordHash string `db:"password_hash"`
	Balance      int64  `db:"balance"`
	Version      int64  `db:"version"`
	AuditFields
}
