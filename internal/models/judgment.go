package models

import (
	"time"

	"github.com/google/uuid"
)

// Judgment is an append-only record of one judge's verdict on a submission.
// HelpfulVotes/TotalVotes count reader votes received on the judgment itself.
// JudgeStats is the aggregate history the reputation engine scores from.
type JudgeStats struct {
	TotalJudgments     int
	AgreedJudgments    int
	HelpfulVotes       int
	TotalVotes         int
	AvgReasoningLength float64
	LastJudgmentAt     *time.Time
}

type Judgment struct {
	ID                 uuid.UUID `json:"id"`
	JudgeID            uuid.UUID `json:"judge_id"`
	SubmissionID       uuid.UUID `json:"submission_id"`
	Rating             int       `json:"rating"`
	AgreedWithMajority bool      `json:"agreed_with_majority"`
	ReasoningLength    int       `json:"reasoning_length"`
	HelpfulVotes       int       `json:"helpful_votes"`
	TotalVotes         int       `json:"total_votes"`
	CreatedAt          time.Time `json:"created_at"`
}
