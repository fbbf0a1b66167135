package domain

import "time"

// TransferStatus indicates the final outcome recorded for a transfer attempt.
type TransferStatus string

const (
	// TransferSuccess marks a fully applied transfer.
	TransferSuccess TransferStatus = "SUCCESS"
	// TransferFailed marks an attempt that reached the durability boundary and
	// had to be compensated. Purely rejected requests never produce a record.
	TransferFailed TransferStatus = "FAILED"
)

// TransferRecord is one immutable entry in the append-only transfer journal.
// Records are never edited or deleted after insertion; the journal is the
// audit trail from which account state can be reconstructed independently of
// the mutable balance fields.
type TransferRecord struct {
	TransferID  string         `json:"transferID"` // UUIDv7: unique and creation-ordered
	SenderID    string         `json:"senderID"`   // FK -> accounts.account_id, immutable
	ReceiverID  string         `json:"receiverID"` // FK -> accounts.account_id, immutable
	Amount      int64          `json:"amount"`     // Minor units, strictly positive
	Status      TransferStatus `json:"status"`
	ClientToken *string        `json:"clientToken,omitempty"` // Optional idempotency token, unique when present
	CreatedAt   time.Time      `json:"createdAt"`             // Assigned at commit, used for ordering
}

// HistorySortField selects the ordering of a history query.
type HistorySortField string

const (
	SortByCreatedAt HistorySortField = "createdAt"
	SortByAmount    HistorySortField = "amount"
)

// TransferDirection is the participant-relative direction of a history entry.
type TransferDirection string

const (
	DirectionSent     TransferDirection = "sent"
	DirectionReceived TransferDirection = "received"
)

// HistoryEntry is the read-only projection of a TransferRecord for one
// participant, joined with the minimal counterparty display fields.
type HistoryEntry struct {
	TransferID       string            `json:"transferID"`
	CounterpartyRef  string            `json:"counterpartyRef"` // Counterparty email
	CounterpartyName string            `json:"counterpartyName"`
	Direction        TransferDirection `json:"direction"`
	Amount           int64             `json:"amount"`
	Status           TransferStatus    `json:"status"`
	CreatedAt        time.Time         `json:"createdAt"`
}
