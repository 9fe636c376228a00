package ledger

import "errors"

var (
	// ErrInvalidAmount is returned when an operation is called with a
	// non-positive amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientCredits is returned when a deduct or payout would take
	// the balance below zero. Nothing is written.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrNoMatchingDeduction is returned when a refund references an id that
	// was never deducted.
	ErrNoMatchingDeduction = errors.New("no matching deduction for reference")

	// ErrAlreadyRefunded is returned when a refund replay carries a different
	// amount than the recorded refund. An exact replay is a silent no-op.
	ErrAlreadyRefunded = errors.New("reference already refunded")

	// ErrReplayMismatch is returned when an idempotent replay carries a
	// different amount than the recorded entry.
	ErrReplayMismatch = errors.New("replay does not match recorded entry")
)
