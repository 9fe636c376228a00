package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const routeTimeout = 5 * time.Second

// WebhookRouter invokes the matching service over HTTP. It only needs the
// request to be accepted; the matching algorithm itself lives elsewhere.
type WebhookRouter struct {
	endpoint string
	client   *http.Client
}

func NewWebhookRouter(endpoint string) *WebhookRouter {
	return &WebhookRouter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: routeTimeout},
	}
}

var _ Router = (*WebhookRouter)(nil)

func (r *WebhookRouter) RouteRequest(ctx context.Context, submissionID uuid.UUID) error {
	body, err := json.Marshal(map[string]string{"submission_id": submissionID.String()})
	if err != nil {
		return fmt.Errorf("marshal route payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create route request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("call routing service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("routing service returned status %d", resp.StatusCode)
	}
	return nil
}
