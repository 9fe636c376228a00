package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/critiqhub/backend/internal/models"
)

type APIKeyRepo struct {
	pool *pgxpool.Pool
}

func NewAPIKeyRepo(pool *pgxpool.Pool) *APIKeyRepo {
	return &APIKeyRepo{pool: pool}
}

// FindByKeyHash resolves a hashed API key to its owning account.
func (r *APIKeyRepo) FindByKeyHash(ctx context.Context, keyHash string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT a.id, a.email, a.name, a.password_hash, a.credit_balance, a.active, a.created_at, a.updated_at
		FROM api_keys k
		JOIN accounts a ON a.id = k.account_id
		WHERE k.key_hash = $1 AND k.revoked_at IS NULL AND a.active
	`, keyHash).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreditBalance, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create stores a new API key hash for the account.
func (r *APIKeyRepo) Create(ctx context.Context, accountID uuid.UUID, keyHash string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO api_keys (account_id, key_hash) VALUES ($1, $2)
	`, accountID, keyHash)
	return err
}
