package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/critiqhub/backend/internal/models"
)

type ReputationRepo struct {
	pool *pgxpool.Pool
}

func NewReputationRepo(pool *pgxpool.Pool) *ReputationRepo {
	return &ReputationRepo{pool: pool}
}

func (r *ReputationRepo) GetByJudge(ctx context.Context, judgeID uuid.UUID) (*models.ReputationSnapshot, error) {
	var s models.ReputationSnapshot
	err := r.pool.QueryRow(ctx, `
		SELECT judge_id, total_judgments, consensus_rate, helpfulness_rate, score, tier, updated_at
		FROM reputation_snapshots WHERE judge_id = $1
	`, judgeID).Scan(&s.JudgeID, &s.TotalJudgments, &s.ConsensusRate, &s.HelpfulnessRate, &s.Score, &s.Tier, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert replaces the judge's snapshot. The snapshot is fully derived, so the
// last writer wins.
func (r *ReputationRepo) Upsert(ctx context.Context, s *models.ReputationSnapshot) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO reputation_snapshots (judge_id, total_judgments, consensus_rate, helpfulness_rate, score, tier)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (judge_id) DO UPDATE SET
			total_judgments = EXCLUDED.total_judgments,
			consensus_rate = EXCLUDED.consensus_rate,
			helpfulness_rate = EXCLUDED.helpfulness_rate,
			score = EXCLUDED.score,
			tier = EXCLUDED.tier,
			updated_at = now()
		RETURNING updated_at
	`, s.JudgeID, s.TotalJudgments, s.ConsensusRate, s.HelpfulnessRate, s.Score, s.Tier).Scan(&s.UpdatedAt)
}
