package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/critiqhub/backend/internal/models"
)

type SagaRepo struct {
	pool *pgxpool.Pool
}

func NewSagaRepo(pool *pgxpool.Pool) *SagaRepo {
	return &SagaRepo{pool: pool}
}

func (r *SagaRepo) Create(ctx context.Context, s *models.SubmissionSaga) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO submission_sagas (reference_id, state, required_credits)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, s.ReferenceID, s.State, s.RequiredCredits).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *SagaRepo) GetByReference(ctx context.Context, referenceID uuid.UUID) (*models.SubmissionSaga, error) {
	var s models.SubmissionSaga
	err := r.pool.QueryRow(ctx, `
		SELECT reference_id, state, required_credits, created_at, updated_at
		FROM submission_sagas WHERE reference_id = $1
	`, referenceID).Scan(&s.ReferenceID, &s.State, &s.RequiredCredits, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SetState advances the saga. Transitions are forward-only, so the update is
// a plain overwrite; callers are responsible for ordering.
func (r *SagaRepo) SetState(ctx context.Context, referenceID uuid.UUID, state string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE submission_sagas SET state = $2, updated_at = now() WHERE reference_id = $1
	`, referenceID, state)
	return err
}

// SetStateTx is SetState inside the caller's transaction, used when the
// transition must commit atomically with the submission insert.
func (r *SagaRepo) SetStateTx(ctx context.Context, tx pgx.Tx, referenceID uuid.UUID, state string) error {
	_, err := tx.Exec(ctx, `
		UPDATE submission_sagas SET state = $2, updated_at = now() WHERE reference_id = $1
	`, referenceID, state)
	return err
}
