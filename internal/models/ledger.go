package models

import (
	"time"

	"github.com/google/uuid"
)

// Ledger entry kinds. At most one entry may exist per
// (account_id, reference_id, kind); enforced by a unique index.
const (
	LedgerKindPurchase = "purchase"
	LedgerKindDeduct   = "deduct"
	LedgerKindRefund   = "refund"
	LedgerKindEarn     = "earn"
	LedgerKindPayout   = "payout"
)

// LedgerEntry is an immutable signed balance change. The log is the source of
// truth; accounts.credit_balance is a cached projection of the per-account sum.
type LedgerEntry struct {
	ID           uuid.UUID `json:"id"`
	AccountID    uuid.UUID `json:"account_id"`
	ReferenceID  string    `json:"reference_id"`
	Kind         string    `json:"kind"`
	Delta        int       `json:"delta"`
	BalanceAfter int       `json:"balance_after"`
	Reason       *string   `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
