package rest

import (
	"net/http"

	"github.com/gharonda/gharonda-backend/internal/transport/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Health  *HealthHandler
	Auth    *AuthHandler
	Listing *ListingHandler
	Wizard  *WizardHandler
	Admin   *AdminHandler
}

// NewRouter mounts all REST routes. The base chain (recovery, request id,
// logging, CORS, rate limiting, token resolution) is applied by the caller;
// here only the per-surface auth requirements are attached.
func NewRouter(h Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.HandleFunc("POST /auth/register", h.Auth.Register)
	mux.HandleFunc("POST /auth/login", h.Auth.Login)
	mux.HandleFunc("POST /auth/refresh", h.Auth.Refresh)
	mux.Handle("POST /auth/logout", requireAuth(h.Auth.Logout))

	mux.HandleFunc("GET /listings", h.Listing.PublicList)
	mux.HandleFunc("GET /listings/{id}", h.Listing.Detail)
	mux.Handle("GET /me/listings", requireAuth(h.Listing.Mine))

	mux.Handle("POST /wizard", requireAuth(h.Wizard.Start))
	mux.Handle("GET /wizard/{id}", requireAuth(h.Wizard.Get))
	mux.Handle("POST /wizard/{id}/advance", requireAuth(h.Wizard.Advance))
	mux.Handle("POST /wizard/{id}/retreat", requireAuth(h.Wizard.Retreat))
	mux.Handle("POST /wizard/{id}/verify", requireAuth(h.Wizard.Verify))
	mux.Handle("POST /wizard/{id}/finalize", requireAuth(h.Wizard.Finalize))

	mux.Handle("GET /admin/listings/pending", requireAdmin(h.Admin.Pending))
	mux.Handle("POST /admin/listings/decide", requireAdmin(h.Admin.Decide))

	return mux
}

func requireAuth(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth()(h)
}

func requireAdmin(h http.HandlerFunc) http.Handler {
	return middleware.RequireAdmin()(h)
}
