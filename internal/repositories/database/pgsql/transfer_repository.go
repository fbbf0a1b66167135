package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/payflo/money_transfer_app/internal/apperrors"
	"github.com/payflo/money_transfer_app/internal/core/domain"
	portsrepo "github.com/payflo/money_transfer_app/internal/core/ports/repositories"
	"github.com/payflo/money_transfer_app/internal/models"
	"github.com/payflo/money_transfer_app/internal/utils/money"
	"github.com/payflo/money_transfer_app/internal/utils/pagination"
)

type PgxTransferRepository struct {
	BaseRepository
}

// NewTransferRepository creates a new repository for the transfer journal.
func NewTransferRepository(pool *pgxpool.Pool) *PgxTransferRepository {
	return &PgxTransferRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTransferRepository implements the journal facade and the atomic unit.
var (
	_ portsrepo.TransferRepositoryFacade = (*PgxTransferRepository)(nil)
	_ portsrepo.AtomicTransferrer        = (*PgxTransferRepository)(nil)
)

const transferColumns = `transfer_id, sender_id, receiver_id, amount, status, client_token, created_at`

const insertTransferQuery = `
	INSERT INTO transfers (transfer_id, sender_id, receiver_id, amount, status, client_token, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
`

func toDomainTransfer(m models.Transfer) domain.TransferRecord {
	return domain.TransferRecord{
		TransferID:  m.TransferID,
		SenderID:    m.SenderID,
		ReceiverID:  m.ReceiverID,
		Amount:      m.Amount,
		Status:      domain.TransferStatus(m.Status),
		ClientToken: m.ClientToken,
		CreatedAt:   m.CreatedAt,
	}
}

func scanTransfer(row pgx.Row) (*domain.TransferRecord, error) {
	var m models.Transfer
	err := row.Scan(
		&m.TransferID,
		&m.SenderID,
		&m.ReceiverID,
		&m.Amount,
		&m.Status,
		&m.ClientToken,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec := toDomainTransfer(m)
	return &rec, nil
}

// PerformTransfer commits the whole transfer unit in one database
// transaction: lock both account rows, re-check the preconditions against the
// locked snapshot, apply the debit and the credit, insert the journal record.
//
// Rows are locked in ascending account-id order regardless of which side is
// the sender, so two opposite-direction transfers between the same pair
// cannot deadlock each holding one row.
func (r *PgxTransferRepository) PerformTransfer(ctx context.Context, record domain.TransferRecord) (int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	// Ignored if the transaction commits.
	defer r.Rollback(ctx, tx)

	lockOrder := []string{record.SenderID, record.ReceiverID}
	sort.Strings(lockOrder)

	lockQuery := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE;`

	locked := make(map[string]*domain.Account, 2)
	for _, id := range lockOrder {
		acc, scanErr := scanAccount(tx.QueryRow(ctx, lockQuery, id))
		if scanErr != nil {
			if errors.Is(scanErr, pgx.ErrNoRows) {
				if id == record.ReceiverID {
					return 0, apperrors.ErrReceiverNotFound
				}
				return 0, apperrors.ErrSenderNotFound
			}
			return 0, mapTransferTxError(scanErr, "failed to lock account "+id)
		}
		locked[id] = acc
	}

	sender := locked[record.SenderID]
	receiver := locked[record.ReceiverID]

	// Re-check against the locked snapshot; the validation pass ran before
	// the lock was held and may have raced another transfer.
	if record.SenderID == record.ReceiverID {
		return 0, apperrors.ErrSelfTransfer
	}
	if sender.Balance < record.Amount {
		return 0, apperrors.ErrInsufficientBalance
	}
	if _, err := money.CheckedAdd(receiver.Balance, record.Amount); err != nil {
		return 0, apperrors.ErrAmountOverflow
	}

	now := time.Now().UTC()
	updateQuery := `
		UPDATE accounts
		SET balance = balance + $2, version = version + 1, last_updated_at = $3
		WHERE account_id = $1;
	`

	if _, err := tx.Exec(ctx, updateQuery, record.SenderID, -record.Amount, now); err != nil {
		return 0, mapTransferTxError(err, "failed to debit sender "+record.SenderID)
	}
	if _, err := tx.Exec(ctx, updateQuery, record.ReceiverID, record.Amount, now); err != nil {
		return 0, mapTransferTxError(err, "failed to credit receiver "+record.ReceiverID)
	}

	record.Status = domain.TransferSuccess
	record.CreatedAt = now
	if _, err := tx.Exec(ctx, insertTransferQuery,
		record.TransferID,
		record.SenderID,
		record.ReceiverID,
		record.Amount,
		string(record.Status),
		record.ClientToken,
		record.CreatedAt,
	); err != nil {
		return 0, mapTransferTxError(err, "failed to insert transfer record "+record.TransferID)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, mapTransferTxError(err, "failed to commit transfer "+record.TransferID)
	}

	return sender.Balance - record.Amount, nil
}

// mapTransferTxError translates store-level failures inside the transfer
// transaction into the application taxonomy. Lock and serialization conflicts
// are retryable; a duplicate client token means an idempotent replay.
func mapTransferTxError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFail, pgDeadlockDetected:
			return apperrors.ErrConflict
		case pgUniqueViolation:
			return apperrors.ErrDuplicate
		case pgCheckViolation:
			return apperrors.ErrInsufficientBalance
		case pgNumericOutOfRange:
			return apperrors.ErrAmountOverflow
		}
	}
	return fmt.Errorf("%w: %s: %v", apperrors.ErrStoreUnavailable, msg, err)
}

// AppendTransfer durably inserts one journal record outside any transfer
// transaction. Used by the compensating-write path.
func (r *PgxTransferRepository) AppendTransfer(ctx context.Context, record domain.TransferRecord) error {
	_, err := r.Pool.Exec(ctx, insertTransferQuery,
		record.TransferID,
		record.SenderID,
		record.ReceiverID,
		record.Amount,
		string(record.Status),
		record.ClientToken,
		record.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: transfer record %s", apperrors.ErrDuplicate, record.TransferID)
		}
		return fmt.Errorf("%w: failed to append transfer record %s: %v", apperrors.ErrStoreUnavailable, record.TransferID, err)
	}
	return nil
}

// FindTransferByClientToken retrieves the record committed for an idempotency token.
func (r *PgxTransferRepository) FindTransferByClientToken(ctx context.Context, token string) (*domain.TransferRecord, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE client_token = $1;`

	rec, err := scanTransfer(r.Pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transfer by client token: %w", err)
	}
	return rec, nil
}

// ListTransfersByParticipant retrieves a page of the account's transfers,
// newest first, using token-based cursor pagination. The cursor is
// (created_at, transfer_id) so re-queries are stable across inserts.
func (r *PgxTransferRepository) ListTransfersByParticipant(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.TransferRecord, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to determine whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE (sender_id = $1 OR receiver_id = $1)
	`
	orderByClause := `ORDER BY created_at DESC, transfer_id DESC`

	var rows pgx.Rows
	var err error

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastTransferID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query := baseQuery + ` AND (created_at, transfer_id) < ($2, $3) ` + orderByClause + ` LIMIT $4;`
		rows, err = r.Pool.Query(ctx, query, accountID, lastCreatedAt, lastTransferID, fetchLimit)
	} else {
		query := baseQuery + orderByClause + ` LIMIT $2;`
		rows, err = r.Pool.Query(ctx, query, accountID, fetchLimit)
	}

	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transfers for account %s: %w", accountID, err)
	}
	defer rows.Close()

	records := make([]domain.TransferRecord, 0, fetchLimit)
	for rows.Next() {
		rec, scanErr := scanTransfer(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan transfer row for account %s: %w", accountID, scanErr)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transfer rows for account %s: %w", accountID, err)
	}

	var nextTokenVal *string
	if len(records) > limit {
		last := records[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransferID)
		nextTokenVal = &token
		records = records[:limit]
	}

	return records, nextTokenVal, nil
}

// ListTransfersByParticipantByAmount retrieves the account's transfers
// ordered by amount with limit/offset paging.
func (r *PgxTransferRepository) ListTransfersByParticipantByAmount(ctx context.Context, accountID string, limit, offset int, ascending bool) ([]domain.TransferRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	direction := "DESC"
	if ascending {
		direction = "ASC"
	}
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE (sender_id = $1 OR receiver_id = $1)
		ORDER BY amount ` + direction + `, created_at DESC
		LIMIT $2 OFFSET $3;
	`

	rows, err := r.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers by amount for account %s: %w", accountID, err)
	}
	defer rows.Close()

	records := make([]domain.TransferRecord, 0, limit)
	for rows.Next() {
		rec, scanErr := scanTransfer(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transfer row for account %s: %w", accountID, scanErr)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer rows for account %s: %w", accountID, err)
	}

	return records, nil
}
