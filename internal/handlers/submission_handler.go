package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/critiqhub/backend/internal/ledger"
	"github.com/critiqhub/backend/internal/middleware"
	"github.com/critiqhub/backend/internal/models"
	"github.com/critiqhub/backend/internal/submission"
)

// maxRequestBytes bounds the whole multipart request: two assets at the size
// ceiling plus form fields.
const maxRequestBytes = 21 << 20

// SubmissionCreator runs the submission saga.
type SubmissionCreator interface {
	Create(ctx context.Context, accountID uuid.UUID, in submission.Input) (*submission.Result, error)
}

// SubmissionReader loads persisted submissions.
type SubmissionReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
}

// SagaReader loads saga progress for status responses.
type SagaReader interface {
	GetByReference(ctx context.Context, referenceID uuid.UUID) (*models.SubmissionSaga, error)
}

type SubmissionHandler struct {
	Saga        SubmissionCreator
	Submissions SubmissionReader
	Sagas       SagaReader
	Logger      *slog.Logger
}

// CreateSubmission handles POST /v1/submissions.
// Auth -> RateLimit (via middleware) -> Validate -> Saga -> 202.
// Accepts multipart/form-data (title, body, required_credits + asset files)
// or a plain JSON body for asset-less submissions.
func (h *SubmissionHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	in, err := parseCreateRequest(r)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	result, err := h.Saga.Create(r.Context(), acc.ID, *in)
	if err != nil {
		switch {
		case errors.Is(err, submission.ErrValidation):
			writeJSON(w, http.StatusUnprocessableEntity, submission.Result{Success: false, Message: err.Error()})
		case errors.Is(err, ledger.ErrInsufficientCredits):
			writeJSON(w, http.StatusPaymentRequired, submission.Result{Success: false, Message: "insufficient credits"})
		default:
			h.Logger.Error("create submission", "account_id", acc.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, submission.Result{Success: false, Message: "something went wrong"})
		}
		return
	}
	if !result.Success {
		// Compensated saga failure: credits are back, surface a clean error.
		writeJSON(w, http.StatusBadGateway, result)
		return
	}
	writeJSON(w, http.StatusAccepted, result)
}

// GetSubmission handles GET /v1/submissions/{id}: the record plus saga state.
func (h *SubmissionHandler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid submission id"}`, http.StatusBadRequest)
		return
	}

	sub, err := h.Submissions.GetByID(r.Context(), id)
	if err != nil {
		h.Logger.Error("get submission", "submission_id", id, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	saga, err := h.Sagas.GetByReference(r.Context(), id)
	if err != nil {
		h.Logger.Error("get saga", "submission_id", id, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if sub == nil && saga == nil {
		http.Error(w, `{"error":"submission not found"}`, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"submission": sub,
		"saga":       saga,
	})
}

type createSubmissionJSON struct {
	Title           string `json:"title"`
	Body            string `json:"body"`
	RequiredCredits int    `json:"required_credits"`
}

func parseCreateRequest(r *http.Request) (*submission.Input, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		var req createSubmissionJSON
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, errors.New("invalid JSON")
		}
		return &submission.Input{Title: req.Title, Body: req.Body, RequiredCredits: req.RequiredCredits}, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBytes)
	if err := r.ParseMultipartForm(maxRequestBytes); err != nil {
		return nil, errors.New("invalid multipart form")
	}

	credits, err := strconv.Atoi(r.FormValue("required_credits"))
	if err != nil {
		return nil, errors.New("invalid required_credits")
	}
	in := &submission.Input{
		Title:           r.FormValue("title"),
		Body:            r.FormValue("body"),
		RequiredCredits: credits,
	}
	for _, fh := range r.MultipartForm.File["assets"] {
		f, err := fh.Open()
		if err != nil {
			return nil, errors.New("unreadable asset")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, errors.New("unreadable asset")
		}
		in.Assets = append(in.Assets, submission.AssetUpload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return in, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
