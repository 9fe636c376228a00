// Package ledger owns every credit balance mutation. All writes happen inside
// one transaction that locks the account row, and every write is keyed by a
// caller-supplied reference id so retries apply at most once. The entry log is
// the source of truth; accounts.credit_balance is a cached projection.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/critiqhub/backend/internal/models"
	"github.com/critiqhub/backend/internal/pgutils"
)

// AccountStore is the minimal account repository interface for the ledger.
type AccountStore interface {
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Account, error)
	AddBalanceTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) (newBalance int, err error)
}

// EntryStore is the minimal ledger entry interface.
type EntryStore interface {
	InsertTx(ctx context.Context, tx pgx.Tx, e *models.LedgerEntry) error
	FindByReferenceTx(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, referenceID, kind string) (*models.LedgerEntry, error)
}

type Service interface {
	Deduct(ctx context.Context, accountID uuid.UUID, amount int, referenceID string) (int, error)
	Refund(ctx context.Context, accountID uuid.UUID, amount int, referenceID, reason string) (int, error)
	Earn(ctx context.Context, accountID uuid.UUID, amount int, referenceID string) (int, error)
	Purchase(ctx context.Context, accountID uuid.UUID, amount int, referenceID string) (int, error)
	Payout(ctx context.Context, accountID uuid.UUID, amount int, referenceID string) (int, error)
}

type service struct {
	db       pgutils.TxRunner
	accounts AccountStore
	entries  EntryStore
}

// NewService returns a ledger service. db is typically a pgutils.PoolRunner.
func NewService(db pgutils.TxRunner, accounts AccountStore, entries EntryStore) Service {
	return &service{db: db, accounts: accounts, entries: entries}
}

var _ Service = (*service)(nil)

// Deduct removes amount from the account, keyed by referenceID. A replay of a
// recorded deduction returns its balance_after without re-applying.
func (s *service) Deduct(ctx context.Context, accountID uuid.UUID, amount int, referenceID string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.apply(ctx, accountID, -amount, referenceID, models.LedgerKindDeduct, nil)
}

// Earn adds amount to the account, keyed by referenceID. Used for judgment
// rewards and signup grants.
func (s *service) Earn(ctx context.Context, accountID uuid.UUID, amount int, referenceID string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.apply(ctx, accountID, amount, referenceID, models.LedgerKindEarn, nil)
}

// Purchase records a credit top-up, keyed by the payment reference.
func (s *service) Purchase(ctx context.Context, accountID uuid.UUID, amount int, referenceID string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.apply(ctx, accountID, amount, referenceID, models.LedgerKindPurchase, nil)
}

// Payout removes credits being converted to cash. Tier eligibility is checked
// by the caller; the ledger only guarantees the balance cannot go negative.
func (s *service) Payout(ctx context.Context, accountID uuid.UUID, amount int, referenceID string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.apply(ctx, accountID, -amount, referenceID, models.LedgerKindPayout, nil)
}

// Refund returns a prior deduction to the account. It requires a recorded
// deduct entry for referenceID; an exact replay of a recorded refund is a
// no-op returning the prior result.
func (s *service) Refund(ctx context.Context, accountID uuid.UUID, amount int, referenceID, reason string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var newBalance int
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.accounts.GetForUpdateTx(ctx, tx, accountID); err != nil {
			return fmt.Errorf("lock account: %w", err)
		}
		deducted, err := s.entries.FindByReferenceTx(ctx, tx, accountID, referenceID, models.LedgerKindDeduct)
		if err != nil {
			return fmt.Errorf("find deduction: %w", err)
		}
		if deducted == nil {
			return ErrNoMatchingDeduction
		}
		prior, err := s.entries.FindByReferenceTx(ctx, tx, accountID, referenceID, models.LedgerKindRefund)
		if err != nil {
			return fmt.Errorf("find prior refund: %w", err)
		}
		if prior != nil {
			if prior.Delta != amount {
				return ErrAlreadyRefunded
			}
			newBalance = prior.BalanceAfter
			return nil
		}
		if amount != -deducted.Delta {
			return ErrReplayMismatch
		}
		nb, err := s.accounts.AddBalanceTx(ctx, tx, accountID, amount)
		if err != nil {
			return fmt.Errorf("apply refund: %w", err)
		}
		entry := &models.LedgerEntry{
			ID:           uuid.New(),
			AccountID:    accountID,
			ReferenceID:  referenceID,
			Kind:         models.LedgerKindRefund,
			Delta:        amount,
			BalanceAfter: nb,
			Reason:       &reason,
		}
		if err := s.entries.InsertTx(ctx, tx, entry); err != nil {
			return fmt.Errorf("insert refund entry: %w", err)
		}
		newBalance = nb
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// apply is the shared lock-check-write path for single-entry operations.
// delta carries the sign; amount validation works on its magnitude.
func (s *service) apply(ctx context.Context, accountID uuid.UUID, delta int, referenceID, kind string, reason *string) (int, error) {
	if delta == 0 {
		return 0, ErrInvalidAmount
	}
	var newBalance int
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		// The FOR UPDATE lock serializes all ledger writes per account, so a
		// concurrent call with the same reference waits here and then sees
		// the recorded entry below.
		acc, err := s.accounts.GetForUpdateTx(ctx, tx, accountID)
		if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}
		prior, err := s.entries.FindByReferenceTx(ctx, tx, accountID, referenceID, kind)
		if err != nil {
			return fmt.Errorf("find prior entry: %w", err)
		}
		if prior != nil {
			if prior.Delta != delta {
				return ErrReplayMismatch
			}
			newBalance = prior.BalanceAfter
			return nil
		}
		if delta < 0 && acc.CreditBalance < -delta {
			return ErrInsufficientCredits
		}
		nb, err := s.accounts.AddBalanceTx(ctx, tx, accountID, delta)
		if err != nil {
			return fmt.Errorf("apply delta: %w", err)
		}
		entry := &models.LedgerEntry{
			ID:           uuid.New(),
			AccountID:    accountID,
			ReferenceID:  referenceID,
			Kind:         kind,
			Delta:        delta,
			BalanceAfter: nb,
			Reason:       reason,
		}
		if err := s.entries.InsertTx(ctx, tx, entry); err != nil {
			return fmt.Errorf("insert %s entry: %w", kind, err)
		}
		newBalance = nb
		return nil
	})
	if isUniqueViolation(err) {
		// Safety net for drivers without row locks: the entry was written by
		// a concurrent call, so read it back and return its result.
		return s.replayResult(ctx, accountID, delta, referenceID, kind)
	}
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (s *service) replayResult(ctx context.Context, accountID uuid.UUID, delta int, referenceID, kind string) (int, error) {
	var newBalance int
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		prior, err := s.entries.FindByReferenceTx(ctx, tx, accountID, referenceID, kind)
		if err != nil {
			return err
		}
		if prior == nil {
			return fmt.Errorf("entry for reference %s vanished after unique violation", referenceID)
		}
		if prior.Delta != delta {
			return ErrReplayMismatch
		}
		newBalance = prior.BalanceAfter
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
