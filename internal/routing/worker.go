// Package routing delivers persisted submissions to the external
// expert-matching collaborator. Jobs are enqueued transactionally with the
// submission insert and processed detached from the request, so a routing
// failure is retried by the queue and never touches the ledger.
package routing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/critiqhub/backend/internal/models"
)

type RouteSubmissionArgs struct {
	SubmissionID uuid.UUID `json:"submission_id"`
}

func (RouteSubmissionArgs) Kind() string { return "route_submission" }

// Router is the fire-and-forget invocation contract of the matching service.
type Router interface {
	RouteRequest(ctx context.Context, submissionID uuid.UUID) error
}

// SagaMarker records the terminal ROUTED transition.
type SagaMarker interface {
	SetState(ctx context.Context, referenceID uuid.UUID, state string) error
}

type RouteSubmissionWorker struct {
	river.WorkerDefaults[RouteSubmissionArgs]
	router Router
	sagas  SagaMarker
	logger *slog.Logger
}

func NewRouteSubmissionWorker(router Router, sagas SagaMarker, logger *slog.Logger) *RouteSubmissionWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RouteSubmissionWorker{router: router, sagas: sagas, logger: logger}
}

func (w *RouteSubmissionWorker) Work(ctx context.Context, job *river.Job[RouteSubmissionArgs]) error {
	args := job.Args

	// Routing failures never refund: the submission is already persisted and
	// the user has their queued request. Returning the error lets the queue
	// retry delivery out of band.
	if err := w.router.RouteRequest(ctx, args.SubmissionID); err != nil {
		w.logger.Warn("routing failed, queue will retry",
			"submission_id", args.SubmissionID, "attempt", job.Attempt, "error", err)
		return fmt.Errorf("route submission %s: %w", args.SubmissionID, err)
	}

	if err := w.sagas.SetState(ctx, args.SubmissionID, models.SagaStateRouted); err != nil {
		return fmt.Errorf("mark saga routed: %w", err)
	}
	return nil
}
