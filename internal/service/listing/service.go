// Package listing implements the submission gateway and the listing query
// surface behind the public site, the seller dashboard, and the admin queue.
package listing

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/gharonda/gharonda-backend/internal/access"
	"github.com/gharonda/gharonda-backend/internal/domain"
)

// listingRepo defines the repository interface needed by the listing service.
type listingRepo interface {
	Create(ctx context.Context, l *domain.Listing) (*domain.Listing, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	List(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error)
	Count(ctx context.Context, f domain.ListingFilter) (int, error)
}

// Service implements listing operations.
type Service struct {
	log      *slog.Logger
	listings listingRepo
	gate     *access.Gate
}

// NewService creates a new listing service instance.
func NewService(logger *slog.Logger, listings listingRepo, gate *access.Gate) *Service {
	return &Service{
		log:      logger.With("service", "listing"),
		listings: listings,
		gate:     gate,
	}
}

// Create is the submission gateway: it persists a finalized draft as a
// PENDING listing. The host id is stamped from the authenticated submitter,
// never taken from the payload. Only sellers and admins may submit.
func (s *Service) Create(ctx context.Context, p domain.Principal, l *domain.Listing) (*domain.Listing, error) {
	if err := s.gate.RequireLister(&p); err != nil {
		return nil, err
	}
	if err := validateSubmission(l); err != nil {
		return nil, err
	}

	now := time.Now()
	l.ID = uuid.New()
	l.HostID = p.ID
	l.Status = domain.ListingStatusPending
	l.CreatedAt = now
	l.UpdatedAt = now

	created, err := s.listings.Create(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("listing.Create: %w", err)
	}

	s.log.InfoContext(ctx, "listing submitted",
		slog.String("listing_id", created.ID.String()),
		slog.String("host_id", created.HostID.String()),
		slog.String("kind", created.Kind.String()),
	)

	return created, nil
}

// Get returns one listing by id, any status. The detail page decides what to
// show based on the viewer.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing.Get: %w", err)
	}
	return l, nil
}

// PublicFilter narrows the public catalog query.
type PublicFilter struct {
	Kind   *domain.ListingKind
	City   string
	Limit  int
	Offset int
}

// ListPublic returns APPROVED listings for the public site. No
// authentication required.
func (s *Service) ListPublic(ctx context.Context, f PublicFilter) ([]domain.Listing, error) {
	status := domain.ListingStatusApproved
	out, err := s.listings.List(ctx, domain.ListingFilter{
		Kind:   f.Kind,
		Status: &status,
		City:   f.City,
		Limit:  f.Limit,
		Offset: f.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing.ListPublic: %w", err)
	}
	return out, nil
}

// ListByHost returns the principal's own listings in every status, for the
// seller dashboard.
func (s *Service) ListByHost(ctx context.Context, p domain.Principal, limit, offset int) ([]domain.Listing, error) {
	if err := s.gate.RequireAuthenticated(&p); err != nil {
		return nil, err
	}

	out, err := s.listings.List(ctx, domain.ListingFilter{
		HostID: &p.ID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing.ListByHost: %w", err)
	}
	return out, nil
}

// ListPending returns the moderation queue. Admin only.
func (s *Service) ListPending(ctx context.Context, p domain.Principal, limit, offset int) ([]domain.Listing, int, error) {
	if err := s.gate.RequireAdmin(&p); err != nil {
		return nil, 0, err
	}

	status := domain.ListingStatusPending
	filter := domain.ListingFilter{
		Status: &status,
		Limit:  limit,
		Offset: offset,
	}

	out, err := s.listings.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("listing.ListPending: %w", err)
	}
	total, err := s.listings.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("listing.ListPending count: %w", err)
	}
	return out, total, nil
}

// validateSubmission re-checks the finalized fields at the trust boundary.
// The wizard validates step by step, but the gateway is also reachable from
// tooling, so nothing is assumed.
func validateSubmission(l *domain.Listing) error {
	var errs []domain.FieldError

	if !l.Kind.IsValid() {
		errs = append(errs, domain.FieldError{Field: "kind", Message: "unknown listing kind"})
	}
	if n := utf8.RuneCountInString(l.Title); n < 5 || n > 100 {
		errs = append(errs, domain.FieldError{Field: "title", Message: "must be 5 to 100 characters"})
	}
	if n := utf8.RuneCountInString(l.Description); n < 20 || n > 500 {
		errs = append(errs, domain.FieldError{Field: "description", Message: "must be 20 to 500 characters"})
	}
	if l.Price <= 0 {
		errs = append(errs, domain.FieldError{Field: "price", Message: "must be greater than zero"})
	}
	if l.Location.City == "" {
		errs = append(errs, domain.FieldError{Field: "location", Message: "city is required"})
	}
	if l.Location.Country == "" {
		errs = append(errs, domain.FieldError{Field: "location", Message: "country is required"})
	}
	if len(l.Photos) == 0 {
		errs = append(errs, domain.FieldError{Field: "photos", Message: "at least one photo is required"})
	}
	if len(l.Amenities) == 0 {
		errs = append(errs, domain.FieldError{Field: "amenities", Message: "select at least one"})
	}
	if len(l.SecurityFeatures) == 0 {
		errs = append(errs, domain.FieldError{Field: "security", Message: "select at least one"})
	}

	switch l.Kind {
	case domain.ListingKindFlat:
		if l.Details.Flat == nil {
			errs = append(errs, domain.FieldError{Field: "details", Message: "flat details required"})
		}
	case domain.ListingKindGarden:
		if l.Details.Garden == nil {
			errs = append(errs, domain.FieldError{Field: "details", Message: "marriage garden details required"})
		}
	case domain.ListingKindRestaurant:
		if l.Details.Restaurant == nil {
			errs = append(errs, domain.FieldError{Field: "details", Message: "restaurant details required"})
		}
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
