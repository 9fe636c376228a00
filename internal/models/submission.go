package models

import (
	"time"

	"github.com/google/uuid"
)

// Saga states. Transitions are forward-only; PERSISTED/ROUTED are terminal
// success states and FAILED_REFUNDED is the compensated terminal state.
const (
	SagaStateReserved       = "RESERVED"
	SagaStateAssetsUploaded = "ASSETS_UPLOADED"
	SagaStatePersisted      = "PERSISTED"
	SagaStateRouted         = "ROUTED"
	SagaStateFailedRefunded = "FAILED_REFUNDED"
)

type Submission struct {
	ID              uuid.UUID `json:"id"`
	AccountID       uuid.UUID `json:"account_id"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	RequiredCredits int       `json:"required_credits"`
	AssetURLs       []string  `json:"asset_urls,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// SubmissionSaga tracks the reserve -> upload -> persist -> route workflow for
// one submission. reference_id doubles as the ledger idempotency key.
type SubmissionSaga struct {
	ReferenceID     uuid.UUID `json:"reference_id"`
	State           string    `json:"state"`
	RequiredCredits int       `json:"required_credits"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
