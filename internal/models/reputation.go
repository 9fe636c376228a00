package models

import (
	"time"

	"github.com/google/uuid"
)

// Reputation tiers, lowest to highest. A judge's tier never moves backward.
const (
	TierNew      = "new"
	TierVerified = "verified"
	TierExpert   = "expert"
	TierMaster   = "master"
	TierElite    = "elite"
)

// ReputationSnapshot is the derived reputation state for one judge,
// recomputed after every new judgment.
type ReputationSnapshot struct {
	JudgeID         uuid.UUID `json:"judge_id"`
	TotalJudgments  int       `json:"total_judgments"`
	ConsensusRate   float64   `json:"consensus_rate"`
	HelpfulnessRate float64   `json:"helpfulness_rate"`
	Score           int       `json:"score"`
	Tier            string    `json:"tier"`
	UpdatedAt       time.Time `json:"updated_at"`
}
