package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gharonda/gharonda-backend/internal/domain"
	"github.com/gharonda/gharonda-backend/internal/service/listing"
	"github.com/gharonda/gharonda-backend/pkg/ctxutil"
)

// listingService defines the minimal interface needed by ListingHandler.
type listingService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	ListPublic(ctx context.Context, f listing.PublicFilter) ([]domain.Listing, error)
	ListByHost(ctx context.Context, p domain.Principal, limit, offset int) ([]domain.Listing, error)
}

// ListingHandler serves the public catalog and the seller dashboard.
type ListingHandler struct {
	svc listingService
	log *slog.Logger
}

// NewListingHandler creates a ListingHandler.
func NewListingHandler(svc listingService, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{svc: svc, log: logger.With("handler", "listing")}
}

type locationResponse struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Country string `json:"country"`
	ZipCode string `json:"zipCode,omitempty"`
}

type detailsResponse struct {
	Bedrooms  *int   `json:"bedrooms,omitempty"`
	Bathrooms *int   `json:"bathrooms,omitempty"`
	Area      *int   `json:"area,omitempty"`
	Capacity  *int   `json:"capacity,omitempty"`
	Cuisine   string `json:"cuisine,omitempty"`
	Seating   *int   `json:"seating,omitempty"`
}

type listingResponse struct {
	ID               string           `json:"id"`
	HostID           string           `json:"hostId"`
	Kind             string           `json:"kind"`
	Status           string           `json:"status"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Price            float64          `json:"price"`
	Location         locationResponse `json:"location"`
	Photos           []string         `json:"photos"`
	Amenities        []string         `json:"amenities"`
	SecurityFeatures []string         `json:"securityFeatures"`
	Documents        []string         `json:"documents,omitempty"`
	Details          detailsResponse  `json:"details"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

type listingListResponse struct {
	Items []listingResponse `json:"items"`
}

// PublicList handles GET /listings. Only approved listings are visible;
// kind and city narrow the result.
func (h *ListingHandler) PublicList(w http.ResponseWriter, r *http.Request) {
	f := listing.PublicFilter{
		City: r.URL.Query().Get("city"),
	}
	if v := r.URL.Query().Get("kind"); v != "" {
		kind := domain.ListingKind(v)
		if !kind.IsValid() {
			writeError(w, http.StatusBadRequest, "unknown listing kind")
			return
		}
		f.Kind = &kind
	}
	f.Limit, f.Offset = pagination(r)

	items, err := h.svc.ListPublic(r.Context(), f)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toListingListResponse(items))
}

// Detail handles GET /listings/{id}.
func (h *ListingHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	l, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toListingResponse(l))
}

// Mine handles GET /me/listings: the authenticated host's own listings in
// every status.
func (h *ListingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	p, ok := ctxutil.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := pagination(r)
	items, err := h.svc.ListByHost(r.Context(), p, limit, offset)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toListingListResponse(items))
}

func pagination(r *http.Request) (limit, offset int) {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}

func toListingListResponse(items []domain.Listing) listingListResponse {
	out := listingListResponse{Items: make([]listingResponse, 0, len(items))}
	for i := range items {
		out.Items = append(out.Items, toListingResponse(&items[i]))
	}
	return out
}

func toListingResponse(l *domain.Listing) listingResponse {
	resp := listingResponse{
		ID:          l.ID.String(),
		HostID:      l.HostID.String(),
		Kind:        l.Kind.String(),
		Status:      l.Status.String(),
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Location: locationResponse{
			Street:  l.Location.Street,
			City:    l.Location.City,
			State:   l.Location.State,
			Country: l.Location.Country,
			ZipCode: l.Location.ZipCode,
		},
		Photos:           l.Photos,
		Amenities:        l.Amenities,
		SecurityFeatures: l.SecurityFeatures,
		Documents:        l.Documents,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}

	switch {
	case l.Details.Flat != nil:
		resp.Details.Bedrooms = l.Details.Flat.Bedrooms
		resp.Details.Bathrooms = l.Details.Flat.Bathrooms
		resp.Details.Area = l.Details.Flat.Area
	case l.Details.Garden != nil:
		resp.Details.Capacity = l.Details.Garden.Capacity
		resp.Details.Area = l.Details.Garden.Area
	case l.Details.Restaurant != nil:
		resp.Details.Cuisine = l.Details.Restaurant.Cuisine
		resp.Details.Seating = l.Details.Restaurant.Seating
	}

	return resp
}
