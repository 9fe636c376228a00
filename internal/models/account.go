package models

import (
	"time"

	"github.com/google/uuid"
)

// WelcomeCredits is granted through the ledger on signup (reference "signup-<id>").
const WelcomeCredits = 3

type Account struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	PasswordHash  string    `json:"-"`
	CreditBalance int       `json:"credit_balance"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
