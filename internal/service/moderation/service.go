// Package moderation implements the admin decision flow over pending
// listings.
package moderation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gharonda/gharonda-backend/internal/access"
	"github.com/gharonda/gharonda-backend/internal/domain"
)

// listingRepo defines the repository interface needed by the moderation
// service.
type listingRepo interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus) (*domain.Listing, error)
}

// Service implements moderation operations.
type Service struct {
	log      *slog.Logger
	listings listingRepo
	gate     *access.Gate
}

// NewService creates a new moderation service instance.
func NewService(logger *slog.Logger, listings listingRepo, gate *access.Gate) *Service {
	return &Service{
		log:      logger.With("service", "moderation"),
		listings: listings,
		gate:     gate,
	}
}

// DecideInput carries an admin decision. ID and Action arrive as strings so
// the service owns their validation.
type DecideInput struct {
	ID     string
	Action string
}

// Decide applies an approve or reject decision to a listing. The write is an
// unconditional overwrite: repeating a decision is idempotent and concurrent
// admins resolve last-write-wins. Checks run in a fixed order so the caller
// always gets the most specific error: authentication, authorization,
// payload shape, then existence.
func (s *Service) Decide(ctx context.Context, p *domain.Principal, input DecideInput) (*domain.Listing, error) {
	if err := s.gate.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	if err := s.gate.RequireAdmin(p); err != nil {
		return nil, err
	}

	id, action, err := parseDecision(input)
	if err != nil {
		return nil, err
	}

	updated, err := s.listings.UpdateStatus(ctx, id, action.Status())
	if err != nil {
		return nil, fmt.Errorf("moderation.Decide: %w", err)
	}

	s.log.InfoContext(ctx, "listing moderated",
		slog.String("listing_id", updated.ID.String()),
		slog.String("action", action.String()),
		slog.String("admin_id", p.ID.String()),
	)

	return updated, nil
}

func parseDecision(input DecideInput) (uuid.UUID, domain.ModerationAction, error) {
	var errs []domain.FieldError

	id, err := uuid.Parse(input.ID)
	if err != nil {
		errs = append(errs, domain.FieldError{Field: "id", Message: "must be a valid listing id"})
	}

	action := domain.ModerationAction(input.Action)
	if !action.IsValid() {
		errs = append(errs, domain.FieldError{Field: "action", Message: "must be approve or reject"})
	}

	if len(errs) > 0 {
		return uuid.Nil, "", domain.NewValidationErrors(errs)
	}
	return id, action, nil
}
