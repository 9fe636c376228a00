// Package judging ingests judgments from the review flow: it appends the
// record, pays the judge's reward through the ledger, and recomputes the
// judge's reputation snapshot.
package judging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/critiqhub/backend/internal/ledger"
	"github.com/critiqhub/backend/internal/models"
)

// RewardCredits is earned per judgment that agrees with the majority verdict.
const RewardCredits = 1

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// JudgmentStore appends judgment records.
type JudgmentStore interface {
	Create(ctx context.Context, j *models.Judgment) error
}

// Reputations recomputes the judge's snapshot after new history arrives.
type Reputations interface {
	Recompute(ctx context.Context, judgeID uuid.UUID) (*models.ReputationSnapshot, error)
}

type Service interface {
	RecordJudgment(ctx context.Context, j *models.Judgment) (*models.ReputationSnapshot, error)
}

type service struct {
	judgments   JudgmentStore
	ledger      ledger.Service
	reputations Reputations
	logger      *slog.Logger
}

func NewService(judgments JudgmentStore, ledgerSvc ledger.Service, reputations Reputations, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{judgments: judgments, ledger: ledgerSvc, reputations: reputations, logger: logger}
}

var _ Service = (*service)(nil)

// RecordJudgment appends the judgment, awards the earn credit for
// majority-agreeing verdicts (keyed by the judgment id, so retries are safe),
// and returns the recomputed snapshot.
func (s *service) RecordJudgment(ctx context.Context, j *models.Judgment) (*models.ReputationSnapshot, error) {
	if j.Rating < 1 || j.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}

	if err := s.judgments.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("record judgment: %w", err)
	}

	if j.AgreedWithMajority {
		ref := fmt.Sprintf("judgment-%s", j.ID)
		if _, err := s.ledger.Earn(ctx, j.JudgeID, RewardCredits, ref); err != nil {
			return nil, fmt.Errorf("award judgment credit: %w", err)
		}
	}

	snap, err := s.reputations.Recompute(ctx, j.JudgeID)
	if err != nil {
		return nil, fmt.Errorf("recompute reputation: %w", err)
	}
	return snap, nil
}
