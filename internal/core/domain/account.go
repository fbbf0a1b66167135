package domain

// Account represents a funds-holding account within the core domain.
// This is the primary representation used by services.
//
// Balance is an exact integer amount in the smallest currency unit (e.g. cents)
// and is never negative. It is mutated only by the transfer engine, through the
// repository's version-checked update or the store's transaction boundary —
// never by direct field writes.
type Account struct {
	AccountID    string `json:"accountID"` // Primary Key (UUID), immutable
	Email        string `json:"email"`     // Unique external reference used for transfer addressing, immutable
	Name         string `json:"name"`
	PasswordHash string `json:"-"`       // bcrypt hash, never serialized
	Balance      int64  `json:"balance"` // Minor units, invariant: >= 0
	Version      int64  `json:"-"`       // Optimistic concurrency token, bumped on every balance write
	AuditFields
}
