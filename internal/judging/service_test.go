package judging

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/critiqhub/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockJudgments struct {
	records []*models.Judgment
	failure error
}

func (m *mockJudgments) Create(_ context.Context, j *models.Judgment) error {
	if m.failure != nil {
		return m.failure
	}
	cp := *j
	m.records = append(m.records, &cp)
	return nil
}

type mockLedger struct {
	earned map[string]int // reference -> amount
}

func (m *mockLedger) Earn(_ context.Context, _ uuid.UUID, amount int, referenceID string) (int, error) {
	if m.earned == nil {
		m.earned = make(map[string]int)
	}
	if _, ok := m.earned[referenceID]; ok {
		return 0, fmt.Errorf("unexpected duplicate earn for %s", referenceID)
	}
	m.earned[referenceID] = amount
	return amount, nil
}

func (m *mockLedger) Deduct(context.Context, uuid.UUID, int, string) (int, error) {
	return 0, errors.New("not used")
}
func (m *mockLedger) Refund(context.Context, uuid.UUID, int, string, string) (int, error) {
	return 0, errors.New("not used")
}
func (m *mockLedger) Purchase(context.Context, uuid.UUID, int, string) (int, error) {
	return 0, errors.New("not used")
}
func (m *mockLedger) Payout(context.Context, uuid.UUID, int, string) (int, error) {
	return 0, errors.New("not used")
}

type mockReputations struct {
	recomputed int
	snap       *models.ReputationSnapshot
}

func (m *mockReputations) Recompute(_ context.Context, judgeID uuid.UUID) (*models.ReputationSnapshot, error) {
	m.recomputed++
	if m.snap != nil {
		return m.snap, nil
	}
	return &models.ReputationSnapshot{JudgeID: judgeID, Tier: models.TierNew}, nil
}

// ---------------------------------------------------------------------------
// 1. TestRecordJudgment_AgreedEarnsReward
// ---------------------------------------------------------------------------

func TestRecordJudgment_AgreedEarnsReward(t *testing.T) {
	judgments := &mockJudgments{}
	led := &mockLedger{}
	reps := &mockReputations{}
	svc := NewService(judgments, led, reps, nil)

	j := &models.Judgment{
		JudgeID:            uuid.New(),
		SubmissionID:       uuid.New(),
		Rating:             4,
		AgreedWithMajority: true,
		ReasoningLength:    140,
	}
	snap, err := svc.RecordJudgment(context.Background(), j)
	if err != nil {
		t.Fatalf("RecordJudgment: %v", err)
	}
	if snap == nil {
		t.Fatal("expected a reputation snapshot")
	}
	if len(judgments.records) != 1 {
		t.Fatalf("judgment records: got %d, want 1", len(judgments.records))
	}

	ref := fmt.Sprintf("judgment-%s", judgments.records[0].ID)
	if amount, ok := led.earned[ref]; !ok || amount != RewardCredits {
		t.Errorf("earn for %s: got (%d, %v), want (%d, true)", ref, amount, ok, RewardCredits)
	}
	if reps.recomputed != 1 {
		t.Errorf("reputation recomputes: got %d, want 1", reps.recomputed)
	}
}

// ---------------------------------------------------------------------------
// 2. TestRecordJudgment_DisagreedEarnsNothing
// ---------------------------------------------------------------------------

func TestRecordJudgment_DisagreedEarnsNothing(t *testing.T) {
	judgments := &mockJudgments{}
	led := &mockLedger{}
	reps := &mockReputations{}
	svc := NewService(judgments, led, reps, nil)

	j := &models.Judgment{JudgeID: uuid.New(), SubmissionID: uuid.New(), Rating: 2}
	if _, err := svc.RecordJudgment(context.Background(), j); err != nil {
		t.Fatalf("RecordJudgment: %v", err)
	}
	if len(led.earned) != 0 {
		t.Errorf("disagreeing judgment earned credits: %v", led.earned)
	}
	if reps.recomputed != 1 {
		t.Errorf("reputation recomputes: got %d, want 1", reps.recomputed)
	}
}

// ---------------------------------------------------------------------------
// 3. TestRecordJudgment_RatingBounds
// ---------------------------------------------------------------------------

func TestRecordJudgment_RatingBounds(t *testing.T) {
	svc := NewService(&mockJudgments{}, &mockLedger{}, &mockReputations{}, nil)

	for _, rating := range []int{0, -1, 6} {
		j := &models.Judgment{JudgeID: uuid.New(), SubmissionID: uuid.New(), Rating: rating}
		if _, err := svc.RecordJudgment(context.Background(), j); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got: %v", rating, err)
		}
	}
}
