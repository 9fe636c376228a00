// Package dashboard is the session-authenticated account surface: balance,
// ledger history, reputation, credit purchase, and cash-out requests.
package dashboard

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/critiqhub/backend/internal/auth"
	"github.com/critiqhub/backend/internal/ledger"
	"github.com/critiqhub/backend/internal/middleware"
	"github.com/critiqhub/backend/internal/models"
	"github.com/critiqhub/backend/internal/reputation"
)

type AccountReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

type LedgerReader interface {
	ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.LedgerEntry, error)
}

type SnapshotReader interface {
	GetByJudge(ctx context.Context, judgeID uuid.UUID) (*models.ReputationSnapshot, error)
}

type APIKeyWriter interface {
	Create(ctx context.Context, accountID uuid.UUID, keyHash string) error
}

type Handler struct {
	Auth      auth.Service
	Accounts  AccountReader
	Entries   LedgerReader
	Snapshots SnapshotReader
	Ledger    ledger.Service
	APIKeys   APIKeyWriter
	Logger    *slog.Logger
}

// authenticate resolves the bearer JWT to an account, or writes a 401.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) *models.Account {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return nil
	}
	accountID, err := h.Auth.ValidateToken(r.Context(), strings.TrimSpace(header[7:]))
	if err != nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return nil
	}
	acc, err := h.Accounts.GetByID(r.Context(), accountID)
	if err != nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return nil
	}
	return acc
}

// GetMe handles GET /api/v1/account/me.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	acc := h.authenticate(w, r)
	if acc == nil {
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// ListCreditLedger handles GET /api/v1/credit-ledger.
func (h *Handler) ListCreditLedger(w http.ResponseWriter, r *http.Request) {
	acc := h.authenticate(w, r)
	if acc == nil {
		return
	}
	entries, err := h.Entries.ListByAccountID(r.Context(), acc.ID)
	if err != nil {
		h.Logger.Error("list ledger", "account_id", acc.ID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*models.LedgerEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetReputation handles GET /api/v1/reputation.
func (h *Handler) GetReputation(w http.ResponseWriter, r *http.Request) {
	acc := h.authenticate(w, r)
	if acc == nil {
		return
	}
	snap, err := h.Snapshots.GetByJudge(r.Context(), acc.ID)
	if err != nil {
		h.Logger.Error("get reputation", "account_id", acc.ID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if snap == nil {
		snap = &models.ReputationSnapshot{JudgeID: acc.ID, Tier: models.TierNew}
	}
	writeJSON(w, http.StatusOK, snap)
}

type purchaseRequest struct {
	Credits          int    `json:"credits"`
	PaymentReference string `json:"payment_reference"`
}

type balanceResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	NewBalance *int   `json:"new_balance,omitempty"`
}

// PurchaseCredits handles POST /api/v1/credits/purchase. Payment processing
// happens upstream; the payment reference is the idempotency key.
func (h *Handler) PurchaseCredits(w http.ResponseWriter, r *http.Request) {
	acc := h.authenticate(w, r)
	if acc == nil {
		return
	}
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Credits <= 0 || req.PaymentReference == "" {
		http.Error(w, `{"error":"credits and payment_reference are required"}`, http.StatusBadRequest)
		return
	}
	balance, err := h.Ledger.Purchase(r.Context(), acc.ID, req.Credits, req.PaymentReference)
	if err != nil {
		h.Logger.Error("purchase credits", "account_id", acc.ID, "error", err)
		http.Error(w, `{"error":"purchase failed"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Success: true, Message: "credits added", NewBalance: &balance})
}

type payoutRequest struct {
	Credits     int    `json:"credits"`
	ReferenceID string `json:"reference_id"`
}

type payoutResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	NewBalance *int   `json:"new_balance,omitempty"`
	CashCents  int    `json:"cash_cents,omitempty"`
}

// RequestPayout handles POST /api/v1/payouts. Cash-out is gated on the
// judge's tier; the rate is the tier's payout multiplier.
func (h *Handler) RequestPayout(w http.ResponseWriter, r *http.Request) {
	acc := h.authenticate(w, r)
	if acc == nil {
		return
	}
	var req payoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Credits <= 0 || req.ReferenceID == "" {
		http.Error(w, `{"error":"credits and reference_id are required"}`, http.StatusBadRequest)
		return
	}

	snap, err := h.Snapshots.GetByJudge(r.Context(), acc.ID)
	if err != nil {
		h.Logger.Error("load snapshot for payout", "account_id", acc.ID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	tier := models.TierNew
	if snap != nil {
		tier = snap.Tier
	}
	rate, eligible := reputation.PayoutRate(tier)
	if !eligible {
		writeJSON(w, http.StatusForbidden, payoutResponse{
			Success: false,
			Message: "cash-out requires verified tier or above",
		})
		return
	}

	balance, err := h.Ledger.Payout(r.Context(), acc.ID, req.Credits, req.ReferenceID)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			writeJSON(w, http.StatusPaymentRequired, payoutResponse{
				Success: false,
				Message: "insufficient credits",
			})
			return
		}
		h.Logger.Error("payout", "account_id", acc.ID, "error", err)
		http.Error(w, `{"error":"payout failed"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, payoutResponse{
		Success:    true,
		Message:    "payout recorded",
		NewBalance: &balance,
		CashCents:  req.Credits * rate,
	})
}

// CreateAPIKey handles POST /api/v1/api-keys. The raw key is returned once
// and only its hash is stored.
func (h *Handler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	acc := h.authenticate(w, r)
	if acc == nil {
		return
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		h.Logger.Error("generate api key", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	key := "chk_" + hex.EncodeToString(raw)
	if err := h.APIKeys.Create(r.Context(), acc.ID, middleware.HashKey(key)); err != nil {
		h.Logger.Error("store api key", "account_id", acc.ID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"api_key": key})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
