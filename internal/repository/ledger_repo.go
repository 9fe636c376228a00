package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/critiqhub/backend/internal/models"
)

type LedgerRepo struct {
	pool *pgxpool.Pool
}

func NewLedgerRepo(pool *pgxpool.Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// InsertTx appends a ledger entry inside the given transaction. The unique
// index on (account_id, reference_id, kind) rejects duplicate applications.
func (r *LedgerRepo) InsertTx(ctx context.Context, tx pgx.Tx, e *models.LedgerEntry) error {
	return tx.QueryRow(ctx, `
		INSERT INTO credit_ledger (id, account_id, reference_id, kind, delta, balance_after, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, e.ID, e.AccountID, e.ReferenceID, e.Kind, e.Delta, e.BalanceAfter, e.Reason).Scan(&e.CreatedAt)
}

// FindByReferenceTx returns the entry for (account, reference, kind), or nil
// if none exists. Reads inside the caller's transaction so it observes rows
// written earlier in the same transaction.
func (r *LedgerRepo) FindByReferenceTx(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, referenceID, kind string) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := tx.QueryRow(ctx, `
		SELECT id, account_id, reference_id, kind, delta, balance_after, reason, created_at
		FROM credit_ledger WHERE account_id = $1 AND reference_id = $2 AND kind = $3
	`, accountID, referenceID, kind).Scan(&e.ID, &e.AccountID, &e.ReferenceID, &e.Kind, &e.Delta, &e.BalanceAfter, &e.Reason, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *LedgerRepo) ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, reference_id, kind, delta, balance_after, reason, created_at
		FROM credit_ledger WHERE account_id = $1 ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.ReferenceID, &e.Kind, &e.Delta, &e.BalanceAfter, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// SumByAccountID returns the signed sum of all entries for the account.
// Used by the conservation check endpoint and tests.
func (r *LedgerRepo) SumByAccountID(ctx context.Context, accountID uuid.UUID) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(delta), 0) FROM credit_ledger WHERE account_id = $1
	`, accountID).Scan(&total)
	return total, err
}
