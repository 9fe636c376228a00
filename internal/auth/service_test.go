package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/critiqhub/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockAccounts struct {
	byEmail map[string]*models.Account
	byID    map[uuid.UUID]*models.Account
}

func newMockAccounts() *mockAccounts {
	return &mockAccounts{
		byEmail: make(map[string]*models.Account),
		byID:    make(map[uuid.UUID]*models.Account),
	}
}

func (m *mockAccounts) Create(_ context.Context, a *models.Account) error {
	if _, ok := m.byEmail[a.Email]; ok {
		return &pgconn.PgError{Code: "23505"}
	}
	cp := *a
	m.byEmail[a.Email] = &cp
	m.byID[a.ID] = &cp
	return nil
}

func (m *mockAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	a, ok := m.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("account not found")
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccounts) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("account not found")
	}
	cp := *a
	return &cp, nil
}

type mockLedger struct {
	earned map[string]int
}

func (m *mockLedger) Earn(_ context.Context, _ uuid.UUID, amount int, referenceID string) (int, error) {
	if m.earned == nil {
		m.earned = make(map[string]int)
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

// ---------------------------------------------------------------------------
// 1. TestSignup
// ---------------------------------------------------------------------------

func TestSignup(t *testing.T) {
	accounts := newMockAccounts()
	led := &mockLedger{}
	svc := NewService(accounts, led, "test-secret")

	acc, err := svc.Signup(context.Background(), "new@example.com", "hunter2!", "New User")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if acc.CreditBalance != models.WelcomeCredits {
		t.Errorf("welcome balance: got %d, want %d", acc.CreditBalance, models.WelcomeCredits)
	}

	// The grant must be ledger-backed, keyed by the account id.
	ref := fmt.Sprintf("signup-%s", acc.ID)
	if amount := led.earned[ref]; amount != models.WelcomeCredits {
		t.Errorf("ledger earn for %s: got %d, want %d", ref, amount, models.WelcomeCredits)
	}

	// Passwords are stored hashed, never verbatim.
	stored := accounts.byEmail["new@example.com"]
	if stored.PasswordHash == "hunter2!" || !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Error("password should be stored as a bcrypt hash")
	}

	// Duplicate email surfaces the sentinel.
	if _, err := svc.Signup(context.Background(), "new@example.com", "other", "Imposter"); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// 2. TestLoginAndValidateToken
// ---------------------------------------------------------------------------

func TestLoginAndValidateToken(t *testing.T) {
	accounts := newMockAccounts()
	svc := NewService(accounts, &mockLedger{}, "test-secret")

	ctx := context.Background()
	acc, err := svc.Signup(ctx, "judge@example.com", "correct horse", "Judge")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	token, err := svc.Login(ctx, "judge@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	id, err := svc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if id != acc.ID {
		t.Errorf("token subject: got %s, want %s", id, acc.ID)
	}

	if _, err := svc.Login(ctx, "judge@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got: %v", err)
	}

	// A token signed with a different secret is rejected.
	other := NewService(accounts, &mockLedger{}, "other-secret")
	otherToken, err := other.Login(ctx, "judge@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login with other service: %v", err)
	}
	if _, err := svc.ValidateToken(ctx, otherToken); err == nil {
		t.Error("token signed with a different secret should be rejected")
	}
}
