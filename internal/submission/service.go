// Package submission orchestrates the submission saga: reserve credits,
// upload assets, persist the record, then hand off to routing. Each step can
// fail; everything after the reservation compensates by refunding and
// best-effort deleting already-uploaded assets.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/critiqhub/backend/internal/ledger"
	"github.com/critiqhub/backend/internal/models"
	"github.com/critiqhub/backend/internal/pgutils"
	"github.com/critiqhub/backend/internal/routing"
)

// ErrReconciliationRequired is raised when compensation itself fails (refund
// error after a failed step). Ops-fatal, not user-fatal: the caller still gets
// a clean generic failure while the condition is logged for reconciliation.
var ErrReconciliationRequired = errors.New("ledger reconciliation required")

// Storage is the object storage collaborator. Remove is best-effort: callers
// log its errors and move on.
type Storage interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (url string, err error)
	Remove(ctx context.Context, paths []string) error
}

// SagaStore persists saga state transitions.
type SagaStore interface {
	Create(ctx context.Context, s *models.SubmissionSaga) error
	SetState(ctx context.Context, referenceID uuid.UUID, state string) error
	SetStateTx(ctx context.Context, tx pgx.Tx, referenceID uuid.UUID, state string) error
}

// SubmissionStore persists the submission record.
type SubmissionStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, s *models.Submission) error
}

// EnqueueRouteTxFunc enqueues routing within the given transaction. Provided
// by main as a closure over river.Client.InsertTx.
type EnqueueRouteTxFunc func(ctx context.Context, tx pgx.Tx, args routing.RouteSubmissionArgs) error

// AssetUpload is one media attachment submitted alongside the request.
type AssetUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Input is the validated request to create a submission.
type Input struct {
	Title           string
	Body            string
	RequiredCredits int
	Assets          []AssetUpload
}

// Result is the caller-facing outcome shape. Message is safe to surface
// verbatim to the end user.
type Result struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	NewBalance   *int      `json:"new_balance,omitempty"`
	SubmissionID uuid.UUID `json:"submission_id"`
}

type Service struct {
	DB           pgutils.TxRunner
	Ledger       ledger.Service
	Sagas        SagaStore
	Submissions  SubmissionStore
	Storage      Storage
	EnqueueRoute EnqueueRouteTxFunc
	Logger       *slog.Logger
}

func NewService(
	db pgutils.TxRunner,
	ledgerSvc ledger.Service,
	sagas SagaStore,
	submissions SubmissionStore,
	storage Storage,
	enqueueRoute EnqueueRouteTxFunc,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		DB:           db,
		Ledger:       ledgerSvc,
		Sagas:        sagas,
		Submissions:  submissions,
		Storage:      storage,
		EnqueueRoute: enqueueRoute,
		Logger:       logger,
	}
}

// Create runs the saga for one submission. Validation and insufficient-credit
// failures return a typed error with nothing to compensate; failures after the
// reservation are compensated and reported as a clean unsuccessful Result.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, in Input) (*Result, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	submissionID := uuid.New()
	refID := submissionID.String()

	// Once credits are reserved the saga must run to completion server-side.
	// A client disconnect must not become an implicit refund path.
	ctx = context.WithoutCancel(ctx)

	newBalance, err := s.Ledger.Deduct(ctx, accountID, in.RequiredCredits, refID)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			return nil, err
		}
		return nil, fmt.Errorf("reserve credits: %w", err)
	}

	if err := s.Sagas.Create(ctx, &models.SubmissionSaga{
		ReferenceID:     submissionID,
		State:           models.SagaStateReserved,
		RequiredCredits: in.RequiredCredits,
	}); err != nil {
		return s.compensate(ctx, submissionID, accountID, in.RequiredCredits, nil, "saga record failed"), nil
	}

	urls, uploadedPaths, err := s.uploadAssets(ctx, submissionID, in.Assets)
	if err != nil {
		s.Logger.Warn("asset upload failed", "submission_id", submissionID, "error", err)
		return s.compensate(ctx, submissionID, accountID, in.RequiredCredits, uploadedPaths, "upload failed"), nil
	}

	if err := s.Sagas.SetState(ctx, submissionID, models.SagaStateAssetsUploaded); err != nil {
		return s.compensate(ctx, submissionID, accountID, in.RequiredCredits, uploadedPaths, "saga transition failed"), nil
	}

	// Persist the record, advance the saga, and enqueue routing in one
	// transaction: either the user has a durable queued request with routing
	// scheduled, or none of it happened.
	err = s.DB.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.Submissions.CreateTx(ctx, tx, &models.Submission{
			ID:              submissionID,
			AccountID:       accountID,
			Title:           in.Title,
			Body:            in.Body,
			RequiredCredits: in.RequiredCredits,
			AssetURLs:       urls,
		}); err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}
		if err := s.Sagas.SetStateTx(ctx, tx, submissionID, models.SagaStatePersisted); err != nil {
			return fmt.Errorf("mark saga persisted: %w", err)
		}
		if err := s.EnqueueRoute(ctx, tx, routing.RouteSubmissionArgs{SubmissionID: submissionID}); err != nil {
			return fmt.Errorf("enqueue routing: %w", err)
		}
		return nil
	})
	if err != nil {
		s.Logger.Warn("submission persistence failed", "submission_id", submissionID, "error", err)
		return s.compensate(ctx, submissionID, accountID, in.RequiredCredits, uploadedPaths, "persistence failed"), nil
	}

	return &Result{
		Success:      true,
		Message:      "submission accepted",
		NewBalance:   &newBalance,
		SubmissionID: submissionID,
	}, nil
}

// uploadAssets fans the uploads out concurrently and joins before returning.
// On any failure it returns the paths that did make it, so the caller can
// clean them up.
func (s *Service) uploadAssets(ctx context.Context, submissionID uuid.UUID, assets []AssetUpload) (urls, uploadedPaths []string, err error) {
	if len(assets) == 0 {
		return nil, nil, nil
	}

	type outcome struct {
		url  string
		path string
		err  error
	}
	results := make([]outcome, len(assets))

	var wg sync.WaitGroup
	for i, a := range assets {
		wg.Add(1)
		go func(i int, a AssetUpload) {
			defer wg.Done()
			// Paths are namespaced per submission, so concurrent sagas never
			// contend on storage keys.
			path := fmt.Sprintf("submissions/%s/%s", submissionID, a.Name)
			url, upErr := s.Storage.Upload(ctx, path, a.Data, a.ContentType)
			results[i] = outcome{url: url, path: path, err: upErr}
		}(i, a)
	}
	wg.Wait()

	var firstErr error
	for _, r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		urls = append(urls, r.url)
		uploadedPaths = append(uploadedPaths, r.path)
	}
	if firstErr != nil {
		return nil, uploadedPaths, firstErr
	}
	return urls, uploadedPaths, nil
}

// compensate refunds the reservation and best-effort deletes uploaded assets,
// then marks the saga FAILED_REFUNDED. If the refund itself fails the saga is
// left in its last state and the condition is logged for reconciliation.
func (s *Service) compensate(ctx context.Context, submissionID, accountID uuid.UUID, amount int, uploadedPaths []string, reason string) *Result {
	if len(uploadedPaths) > 0 {
		if err := s.Storage.Remove(ctx, uploadedPaths); err != nil {
			s.Logger.Error("asset cleanup failed, orphaned objects need reconciliation",
				"submission_id", submissionID, "paths", uploadedPaths, "error", err)
		}
	}

	balance, err := s.Ledger.Refund(ctx, accountID, amount, submissionID.String(), reason)
	if err != nil {
		s.Logger.Error("compensation refund failed",
			"submission_id", submissionID, "account_id", accountID, "amount", amount,
			"reason", reason, "error", errors.Join(ErrReconciliationRequired, err))
		return &Result{
			Success:      false,
			Message:      "submission failed",
			SubmissionID: submissionID,
		}
	}

	if err := s.Sagas.SetState(ctx, submissionID, models.SagaStateFailedRefunded); err != nil {
		s.Logger.Error("failed to mark saga refunded", "submission_id", submissionID, "error", err)
	}

	return &Result{
		Success:      false,
		Message:      "submission failed, credits refunded",
		NewBalance:   &balance,
		SubmissionID: submissionID,
	}
}
