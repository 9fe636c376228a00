package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/critiqhub/backend/internal/models"
)

// ---------------------------------------------------------------------------
// 1. TestRateLimiter_BurstThenDeny
// ---------------------------------------------------------------------------

func TestRateLimiter_BurstThenDeny(t *testing.T) {
	rl := NewRateLimiter(10, 3)

	for i := 0; i < 3; i++ {
		if allowed, _ := rl.Check("acct-1"); !allowed {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}

	allowed, retryAfter := rl.Check("acct-1")
	if allowed {
		t.Fatal("request beyond burst should be denied")
	}
	if retryAfter < 1 {
		t.Errorf("retry-after: got %d, want >= 1 second", retryAfter)
	}
}

// ---------------------------------------------------------------------------
// 2. TestRateLimiter_KeysAreIndependent
// ---------------------------------------------------------------------------

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(10, 1)

	if allowed, _ := rl.Check("acct-1"); !allowed {
		t.Fatal("first request for acct-1 should be allowed")
	}
	if allowed, _ := rl.Check("acct-1"); allowed {
		t.Fatal("second request for acct-1 should be denied")
	}
	// A different key has its own untouched bucket.
	if allowed, _ := rl.Check("acct-2"); !allowed {
		t.Error("first request for acct-2 should be allowed")
	}
}

// ---------------------------------------------------------------------------
// 3. TestRateLimiter_DeniedRequestDoesNotConsume
//    A denied request must not push the next allowance further out.
// ---------------------------------------------------------------------------

func TestRateLimiter_DeniedRequestDoesNotConsume(t *testing.T) {
	rl := NewRateLimiter(60, 1)

	if allowed, _ := rl.Check("acct-1"); !allowed {
		t.Fatal("first request should be allowed")
	}

	_, first := rl.Check("acct-1")
	for i := 0; i < 5; i++ {
		rl.Check("acct-1")
	}
	_, after := rl.Check("acct-1")
	if after > first {
		t.Errorf("denied requests consumed tokens: retry-after grew from %d to %d", first, after)
	}
}

// ---------------------------------------------------------------------------
// 4. TestRateLimiter_Handler
// ---------------------------------------------------------------------------

func TestRateLimiter_Handler(t *testing.T) {
	rl := NewRateLimiter(10, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	h := rl.Handler(next)

	acc := &models.Account{ID: uuid.New()}
	req := httptest.NewRequest(http.MethodPost, "/v1/submissions", nil)
	req = req.WithContext(WithAccount(context.Background(), acc))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("first request: got %d, want 202", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response should carry a Retry-After header")
	}

	// Anonymous requests fall back to the remote address key.
	anon := httptest.NewRequest(http.MethodPost, "/v1/submissions", nil)
	anon.RemoteAddr = "203.0.113.7:9999"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, anon)
	if rec.Code != http.StatusAccepted {
		t.Errorf("request under a fresh key: got %d, want 202", rec.Code)
	}
}
