package judging

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/critiqhub/backend/internal/middleware"
	"github.com/critiqhub/backend/internal/models"
)

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

type recordJudgmentRequest struct {
	SubmissionID       string `json:"submission_id"`
	Rating             int    `json:"rating"`
	AgreedWithMajority bool   `json:"agreed_with_majority"`
	Reasoning          string `json:"reasoning"`
	HelpfulVotes       int    `json:"helpful_votes"`
	TotalVotes         int    `json:"total_votes"`
}

type recordJudgmentResponse struct {
	JudgmentID string                     `json:"judgment_id"`
	Snapshot   *models.ReputationSnapshot `json:"reputation"`
}

// RecordJudgment handles POST /v1/judgments. The authenticated account is the
// judge.
func (h *Handler) RecordJudgment(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req recordJudgmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	submissionID, err := uuid.Parse(req.SubmissionID)
	if err != nil {
		http.Error(w, `{"error":"invalid submission_id"}`, http.StatusBadRequest)
		return
	}

	j := &models.Judgment{
		JudgeID:            acc.ID,
		SubmissionID:       submissionID,
		Rating:             req.Rating,
		AgreedWithMajority: req.AgreedWithMajority,
		ReasoningLength:    len(req.Reasoning),
		HelpfulVotes:       req.HelpfulVotes,
		TotalVotes:         req.TotalVotes,
	}

	snap, err := h.svc.RecordJudgment(r.Context(), j)
	if err != nil {
		if errors.Is(err, ErrInvalidRating) {
			http.Error(w, `{"error":"rating must be between 1 and 5"}`, http.StatusUnprocessableEntity)
			return
		}
		h.log.Error("record judgment", "judge_id", acc.ID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(recordJudgmentResponse{
		JudgmentID: j.ID.String(),
		Snapshot:   snap,
	})
}
