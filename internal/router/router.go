package router

import (
	"net/http"

	"github.com/critiqhub/backend/internal/auth"
	"github.com/critiqhub/backend/internal/dashboard"
)

// New returns an http.Handler serving the session API under /api/v1.
func New(authHandler *auth.Handler, dashHandler *dashboard.Handler) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"

	mux.HandleFunc("POST "+base+"/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST "+base+"/auth/login", authHandler.Login)

	mux.HandleFunc("GET "+base+"/account/me", dashHandler.GetMe)
	mux.HandleFunc("GET "+base+"/credit-ledger", dashHandler.ListCreditLedger)
	mux.HandleFunc("GET "+base+"/reputation", dashHandler.GetReputation)
	mux.HandleFunc("POST "+base+"/credits/purchase", dashHandler.PurchaseCredits)
	mux.HandleFunc("POST "+base+"/payouts", dashHandler.RequestPayout)
	mux.HandleFunc("POST "+base+"/api-keys", dashHandler.CreateAPIKey)

	return mux
}
