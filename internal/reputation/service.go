package reputation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/critiqhub/backend/internal/models"
)

// StatsSource provides the aggregate judgment history for a judge.
type StatsSource interface {
	StatsByJudge(ctx context.Context, judgeID uuid.UUID) (*models.JudgeStats, error)
}

// SnapshotStore persists reputation snapshots.
type SnapshotStore interface {
	GetByJudge(ctx context.Context, judgeID uuid.UUID) (*models.ReputationSnapshot, error)
	Upsert(ctx context.Context, s *models.ReputationSnapshot) error
}

// Service recomputes a judge's snapshot whenever new judgments arrive.
type Service struct {
	Stats     StatsSource
	Snapshots SnapshotStore
	Now       func() time.Time
}

func NewService(stats StatsSource, snapshots SnapshotStore) *Service {
	return &Service{Stats: stats, Snapshots: snapshots, Now: time.Now}
}

// Recompute scores the judge's full history and writes a fresh snapshot.
// The tier never moves backward: a snapshot keeps the higher of the previous
// tier and the one the current score earns.
func (s *Service) Recompute(ctx context.Context, judgeID uuid.UUID) (*models.ReputationSnapshot, error) {
	st, err := s.Stats.StatsByJudge(ctx, judgeID)
	if err != nil {
		return nil, fmt.Errorf("load judge stats: %w", err)
	}

	recencyDays := 9999
	if st.LastJudgmentAt != nil {
		recencyDays = int(s.Now().Sub(*st.LastJudgmentAt).Hours() / 24)
	}
	agreement := 0.0
	if st.TotalJudgments > 0 {
		agreement = float64(st.AgreedJudgments) / float64(st.TotalJudgments)
	}
	helpfulness := 0.5
	if st.TotalVotes > 0 {
		helpfulness = float64(st.HelpfulVotes) / float64(st.TotalVotes)
	}

	score := Score(History{
		TotalJudgments:     st.TotalJudgments,
		HelpfulVotes:       st.HelpfulVotes,
		TotalVotes:         st.TotalVotes,
		AgreementRate:      agreement,
		AvgReasoningLength: st.AvgReasoningLength,
		RecentActivityDays: recencyDays,
	})
	tier := TierFor(st.TotalJudgments, score)

	prev, err := s.Snapshots.GetByJudge(ctx, judgeID)
	if err != nil {
		return nil, fmt.Errorf("load previous snapshot: %w", err)
	}
	if prev != nil {
		tier = HigherTier(prev.Tier, tier)
	}

	snap := &models.ReputationSnapshot{
		JudgeID:         judgeID,
		TotalJudgments:  st.TotalJudgments,
		ConsensusRate:   agreement,
		HelpfulnessRate: helpfulness,
		Score:           score,
		Tier:            tier,
	}
	if err := s.Snapshots.Upsert(ctx, snap); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	return snap, nil
}
