package models

import "time"

// Transfer mirrors the transfers table. Rows are append-only: never updated
// or deleted after insertion.
type Transfer struct {
	TransferID  string    `db:"transfer_id"`
	SenderID    string    `db:"sender_id"`
	ReceiverID  string    `db:"receiver_id"`
	Amount      int64     `db:"amount"`
	Status      string    `db:"status"`
	ClientToken *string   `db:"client_token"`
	CreatedAt   time.Time `db:"created_at"`
}
