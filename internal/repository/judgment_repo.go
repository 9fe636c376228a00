package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/critiqhub/backend/internal/models"
)

type JudgmentRepo struct {
	pool *pgxpool.Pool
}

func NewJudgmentRepo(pool *pgxpool.Pool) *JudgmentRepo {
	return &JudgmentRepo{pool: pool}
}

func (r *JudgmentRepo) Create(ctx context.Context, j *models.Judgment) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO judgments (id, judge_id, submission_id, rating, agreed_with_majority, reasoning_length, helpful_votes, total_votes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, j.ID, j.JudgeID, j.SubmissionID, j.Rating, j.AgreedWithMajority, j.ReasoningLength, j.HelpfulVotes, j.TotalVotes).Scan(&j.CreatedAt)
}

// StatsByJudge aggregates the judge's full history in one query.
func (r *JudgmentRepo) StatsByJudge(ctx context.Context, judgeID uuid.UUID) (*models.JudgeStats, error) {
	var st models.JudgeStats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE agreed_with_majority),
		       COALESCE(SUM(helpful_votes), 0),
		       COALESCE(SUM(total_votes), 0),
		       COALESCE(AVG(reasoning_length), 0),
		       MAX(created_at)
		FROM judgments WHERE judge_id = $1
	`, judgeID).Scan(&st.TotalJudgments, &st.AgreedJudgments, &st.HelpfulVotes, &st.TotalVotes, &st.AvgReasoningLength, &st.LastJudgmentAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
