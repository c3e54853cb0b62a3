package wizard

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gharonda/gharonda-backend/internal/domain"
)

// Draft is the transient state of one wizard session. It lives only in the
// session store and is never persisted before finalize.
type Draft struct {
	Kind      domain.ListingKind
	HostID    uuid.UUID
	StepIndex int
	Fields    map[StepID]any
	Verified  bool
}

// SubmissionGateway persists a finalized draft as a PENDING listing. The
// listing service implements it.
type SubmissionGateway interface {
	Create(ctx context.Context, p domain.Principal, l *domain.Listing) (*domain.Listing, error)
}

// Controller drives one draft through the step registry. It validates only
// the active step, never skips, and clamps movement at both ends. Controllers
// are not safe for concurrent use; the session store serializes access.
type Controller struct {
	steps       []Step
	draft       *Draft
	coordinator *Coordinator
	gateway     SubmissionGateway
}

// NewController starts an empty draft of the given kind for the host.
func NewController(kind domain.ListingKind, hostID uuid.UUID, coordinator *Coordinator, gateway SubmissionGateway) (*Controller, error) {
	steps, err := Steps(kind)
	if err != nil {
		return nil, err
	}
	return &Controller{
		steps: steps,
		draft: &Draft{
			Kind:   kind,
			HostID: hostID,
			Fields: make(map[StepID]any),
		},
		coordinator: coordinator,
		gateway:     gateway,
	}, nil
}

// StepIndex returns the current position, 0-based.
func (c *Controller) StepIndex() int { return c.draft.StepIndex }

// StepCount returns the number of steps for this draft's kind.
func (c *Controller) StepCount() int { return len(c.steps) }

// ActiveStep returns the id of the step awaiting input.
func (c *Controller) ActiveStep() StepID { return c.steps[c.draft.StepIndex].ID() }

// Verified reports whether the out-of-band check has passed.
func (c *Controller) Verified() bool { return c.draft.Verified }

// Kind returns the draft's listing kind.
func (c *Controller) Kind() domain.ListingKind { return c.draft.Kind }

// Advance validates the active step's value. On success the normalized value
// is stored and the position moves forward, clamped at the last step. On
// failure the draft is untouched and the ValidationError names the step.
func (c *Controller) Advance(value any) error {
	step := c.steps[c.draft.StepIndex]

	normalized, err := step.Validate(value)
	if err != nil {
		return err
	}

	c.draft.Fields[step.ID()] = normalized
	if c.draft.StepIndex < len(c.steps)-1 {
		c.draft.StepIndex++
	}
	return nil
}

// Retreat moves one step back, clamped at the first step. Previously entered
// values are kept and nothing is re-validated.
func (c *Controller) Retreat() {
	if c.draft.StepIndex > 0 {
		c.draft.StepIndex--
	}
}

// Verify flips the draft's verified flag. It stands in for the out-of-band
// ownership check; the verification step stays unsatisfied until it runs.
func (c *Controller) Verify() {
	c.draft.Verified = true
}

// Finalize is legal only on the last step with the verification passed. It
// resolves photos and documents through the upload coordinator, then submits
// the merged fields to the gateway. Upload or submission failure leaves the
// draft intact so the caller can retry.
func (c *Controller) Finalize(ctx context.Context, p domain.Principal) (*domain.Listing, error) {
	if c.draft.StepIndex != len(c.steps)-1 {
		return nil, domain.NewValidationError(string(c.ActiveStep()), "complete all steps before finalizing")
	}
	if !c.draft.Verified {
		return nil, domain.NewValidationError(string(StepVerification), "verification required")
	}

	listing, err := c.assemble()
	if err != nil {
		return nil, err
	}

	photoURLs, err := c.coordinator.Resolve(ctx, fileRefs(c.draft.Fields[StepPhotos]))
	if err != nil {
		return nil, fmt.Errorf("resolve photos: %w", err)
	}
	documentURLs, err := c.coordinator.Resolve(ctx, fileRefs(c.draft.Fields[StepDocuments]))
	if err != nil {
		return nil, fmt.Errorf("resolve documents: %w", err)
	}
	listing.Photos = photoURLs
	listing.Documents = documentURLs

	created, err := c.gateway.Create(ctx, p, listing)
	if err != nil {
		return nil, fmt.Errorf("submit listing: %w", err)
	}
	return created, nil
}

// assemble builds the listing envelope from the stored step values. Every
// step before the last has been validated by Advance, so missing fields only
// happen on programming errors.
func (c *Controller) assemble() (*domain.Listing, error) {
	title, ok := c.draft.Fields[StepTitle].(string)
	if !ok {
		return nil, missingField(StepTitle)
	}
	description, ok := c.draft.Fields[StepDescription].(string)
	if !ok {
		return nil, missingField(StepDescription)
	}
	location, ok := c.draft.Fields[StepLocation].(domain.Location)
	if !ok {
		return nil, missingField(StepLocation)
	}
	details, ok := c.draft.Fields[StepDetails].(domain.ListingDetails)
	if !ok {
		return nil, missingField(StepDetails)
	}
	price, ok := c.draft.Fields[StepPrice].(float64)
	if !ok {
		return nil, missingField(StepPrice)
	}
	amenities, ok := c.draft.Fields[StepAmenities].([]string)
	if !ok {
		return nil, missingField(StepAmenities)
	}
	security, ok := c.draft.Fields[StepSecurity].([]string)
	if !ok {
		return nil, missingField(StepSecurity)
	}

	return &domain.Listing{
		HostID:           c.draft.HostID,
		Kind:             c.draft.Kind,
		Title:            title,
		Description:      description,
		Price:            price,
		Location:         location,
		Amenities:        amenities,
		SecurityFeatures: security,
		Details:          details,
	}, nil
}

func fileRefs(v any) []FileRef {
	refs, _ := v.([]FileRef)
	return refs
}

func missingField(id StepID) error {
	return domain.NewValidationError(string(id), "step value missing")
}
