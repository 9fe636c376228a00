package reputation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/critiqhub/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockStats struct {
	stats *models.JudgeStats
}

func (m *mockStats) StatsByJudge(_ context.Context, _ uuid.UUID) (*models.JudgeStats, error) {
	cp := *m.stats
	return &cp, nil
}

type mockSnapshots struct {
	snaps map[uuid.UUID]*models.ReputationSnapshot
}

func newMockSnapshots() *mockSnapshots {
	return &mockSnapshots{snaps: make(map[uuid.UUID]*models.ReputationSnapshot)}
}

func (m *mockSnapshots) GetByJudge(_ context.Context, judgeID uuid.UUID) (*models.ReputationSnapshot, error) {
	s, ok := m.snaps[judgeID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *mockSnapshots) Upsert(_ context.Context, s *models.ReputationSnapshot) error {
	cp := *s
	cp.UpdatedAt = time.Now()
	m.snaps[s.JudgeID] = &cp
	return nil
}

// ---------------------------------------------------------------------------
// 1. TestRecompute
// ---------------------------------------------------------------------------

func TestRecompute(t *testing.T) {
	judge := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-48 * time.Hour)

	stats := &mockStats{stats: &models.JudgeStats{
		TotalJudgments:     200,
		AgreedJudgments:    180,
		HelpfulVotes:       90,
		TotalVotes:         100,
		AvgReasoningLength: 120,
		LastJudgmentAt:     &recent,
	}}
	snaps := newMockSnapshots()
	svc := NewService(stats, snaps)
	svc.Now = func() time.Time { return now }

	snap, err := svc.Recompute(context.Background(), judge)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	// volume 8 + helpfulness 27 + agreement 18 + reasoning 15 + recency 15 = 83
	if snap.Score != 83 {
		t.Errorf("score: got %d, want 83", snap.Score)
	}
	if snap.Tier != models.TierMaster {
		t.Errorf("tier: got %q, want %q", snap.Tier, models.TierMaster)
	}
	if snap.ConsensusRate != 0.9 {
		t.Errorf("consensus rate: got %v, want 0.9", snap.ConsensusRate)
	}
	if snap.HelpfulnessRate != 0.9 {
		t.Errorf("helpfulness rate: got %v, want 0.9", snap.HelpfulnessRate)
	}
	if stored := snaps.snaps[judge]; stored == nil || stored.Score != snap.Score {
		t.Error("snapshot was not persisted")
	}
}

// ---------------------------------------------------------------------------
// 2. TestRecompute_TierNeverDemotes
//    A judge whose score decays keeps the tier already earned.
// ---------------------------------------------------------------------------

func TestRecompute_TierNeverDemotes(t *testing.T) {
	judge := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stale := now.Add(-90 * 24 * time.Hour)

	stats := &mockStats{stats: &models.JudgeStats{
		TotalJudgments: 120,
		LastJudgmentAt: &stale,
	}}
	snaps := newMockSnapshots()
	snaps.snaps[judge] = &models.ReputationSnapshot{JudgeID: judge, Tier: models.TierMaster, Score: 80}

	svc := NewService(stats, snaps)
	svc.Now = func() time.Time { return now }

	snap, err := svc.Recompute(context.Background(), judge)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if snap.Tier != models.TierMaster {
		t.Errorf("tier demoted: got %q, want %q", snap.Tier, models.TierMaster)
	}
	// The score itself still reflects the decayed history.
	if snap.Score >= 80 {
		t.Errorf("expected decayed score below 80, got %d", snap.Score)
	}
}

// ---------------------------------------------------------------------------
// 3. TestRecompute_FirstJudgment
//    No prior snapshot, no votes yet: defaults apply and the tier is new.
// ---------------------------------------------------------------------------

func TestRecompute_FirstJudgment(t *testing.T) {
	judge := uuid.New()
	now := time.Now()
	justNow := now.Add(-time.Minute)

	stats := &mockStats{stats: &models.JudgeStats{
		TotalJudgments:     1,
		AgreedJudgments:    1,
		AvgReasoningLength: 80,
		LastJudgmentAt:     &justNow,
	}}
	snaps := newMockSnapshots()
	svc := NewService(stats, snaps)

	snap, err := svc.Recompute(context.Background(), judge)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if snap.Tier != models.TierNew {
		t.Errorf("tier: got %q, want %q", snap.Tier, models.TierNew)
	}
	if snap.HelpfulnessRate != 0.5 {
		t.Errorf("default helpfulness rate: got %v, want 0.5", snap.HelpfulnessRate)
	}
	if snap.Score < 0 || snap.Score > 100 {
		t.Errorf("score out of bounds: %d", snap.Score)
	}
}
