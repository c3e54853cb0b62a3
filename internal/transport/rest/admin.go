package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gharonda/gharonda-backend/internal/domain"
	"github.com/gharonda/gharonda-backend/internal/service/moderation"
	"github.com/gharonda/gharonda-backend/pkg/ctxutil"
)

// moderationService defines the decision interface needed by AdminHandler.
type moderationService interface {
	Decide(ctx context.Context, p *domain.Principal, input moderation.DecideInput) (*domain.Listing, error)
}

// pendingLister defines the queue interface needed by AdminHandler.
type pendingLister interface {
	ListPending(ctx context.Context, p domain.Principal, limit, offset int) ([]domain.Listing, int, error)
}

// AdminHandler serves the moderation endpoints. The router additionally
// gates these routes behind the admin middleware.
type AdminHandler struct {
	moderation moderationService
	listings   pendingLister
	log        *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(moderation moderationService, listings pendingLister, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		moderation: moderation,
		listings:   listings,
		log:        logger.With("handler", "admin"),
	}
}

type decideRequest struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

type pendingResponse struct {
	Items []listingResponse `json:"items"`
	Total int               `json:"total"`
}

// Pending returns the moderation queue.
// GET /admin/listings/pending?limit=50&offset=0
func (h *AdminHandler) Pending(w http.ResponseWriter, r *http.Request) {
	p, ok := ctxutil.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := pagination(r)
	items, total, err := h.listings.ListPending(r.Context(), p, limit, offset)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := pendingResponse{Items: make([]listingResponse, 0, len(items)), Total: total}
	for i := range items {
		resp.Items = append(resp.Items, toListingResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Decide applies an approve or reject decision.
// POST /admin/listings/decide
func (h *AdminHandler) Decide(w http.ResponseWriter, r *http.Request) {
	p, ok := ctxutil.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.moderation.Decide(r.Context(), &p, moderation.DecideInput{
		ID:     req.ID,
		Action: req.Action,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toListingResponse(updated))
}
