package main

import (
	"log/slog"
	"net/http"

	"github.com/critiqhub/backend/internal/handlers"
	"github.com/critiqhub/backend/internal/judging"
	"github.com/critiqhub/backend/internal/middleware"
	"github.com/critiqhub/backend/internal/repository"
	"github.com/critiqhub/backend/internal/submission"
)

// RegisterV1Routes adds the /v1 machine API to the mux.
// Middleware chain: APIKeyAuth -> (RateLimit on POST /v1/submissions) -> handler.
func RegisterV1Routes(
	mux *http.ServeMux,
	apiKeyRepo *repository.APIKeyRepo,
	submissionRepo *repository.SubmissionRepo,
	sagaRepo *repository.SagaRepo,
	sagaSvc *submission.Service,
	judgingSvc judging.Service,
	limiter *middleware.RateLimiter,
	logger *slog.Logger,
) {
	sh := &handlers.SubmissionHandler{
		Saga:        sagaSvc,
		Submissions: submissionRepo,
		Sagas:       sagaRepo,
		Logger:      logger,
	}
	jh := judging.NewHandler(judgingSvc, logger)

	auth := middleware.APIKeyAuth(apiKeyRepo)

	// The rate limiter sits strictly between auth and the saga so admission
	// is decided before any credits are reserved.
	mux.Handle("POST /v1/submissions", auth(limiter.Handler(http.HandlerFunc(sh.CreateSubmission))))
	mux.Handle("GET /v1/submissions/{id}", auth(http.HandlerFunc(sh.GetSubmission)))
	mux.Handle("POST /v1/judgments", auth(http.HandlerFunc(jh.RecordJudgment)))
}
