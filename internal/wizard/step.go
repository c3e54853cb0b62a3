// Package wizard implements the guided listing-submission flow: an ordered
// step registry per listing kind, a controller that validates one step at a
// time, an upload coordinator that turns local files into hosted URLs at
// finalize, and an in-memory session store with TTL eviction.
package wizard

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gharonda/gharonda-backend/internal/domain"
)

// StepID identifies a wizard step. It doubles as the field key in validation
// errors so clients can attach messages to the offending step.
type StepID string

const (
	StepTitle        StepID = "title"
	StepDescription  StepID = "description"
	StepLocation     StepID = "location"
	StepDetails      StepID = "details"
	StepPrice        StepID = "price"
	StepAmenities    StepID = "amenities"
	StepSecurity     StepID = "security"
	StepPhotos       StepID = "photos"
	StepDocuments    StepID = "documents"
	StepVerification StepID = "verification"
)

const (
	titleMinLen = 5
	titleMaxLen = 100
	descMinLen  = 20
	descMaxLen  = 500
)

// SecurityCatalog is the fixed set of selectable security features.
var SecurityCatalog = []string{
	"cctv",
	"security_guard",
	"gated_community",
	"fire_safety",
	"smoke_alarm",
	"intercom",
}

// FileRef is a local file attached to a photo or document step. Content is
// held in memory until finalize uploads it to the file store.
type FileRef struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
}

// Step validates the input for one wizard position. Validate returns the
// normalized value to store in the draft, or a ValidationError keyed by the
// step id.
type Step interface {
	ID() StepID
	Validate(value any) (any, error)
}

// Steps returns the ordered registry for the given kind. The order is fixed;
// only the details step differs between kinds.
func Steps(kind domain.ListingKind) ([]Step, error) {
	if !kind.IsValid() {
		return nil, domain.NewValidationError("kind", fmt.Sprintf("unknown listing kind %q", kind))
	}
	return []Step{
		textStep{id: StepTitle, minLen: titleMinLen, maxLen: titleMaxLen},
		textStep{id: StepDescription, minLen: descMinLen, maxLen: descMaxLen},
		locationStep{},
		detailsStep{kind: kind},
		priceStep{},
		setStep{id: StepAmenities},
		setStep{id: StepSecurity, catalog: SecurityCatalog},
		filesStep{id: StepPhotos, minFiles: 1},
		filesStep{id: StepDocuments},
		verificationStep{},
	}, nil
}

// ---------------------------------------------------------------------------
// Step variants
// ---------------------------------------------------------------------------

// textStep validates a trimmed string against length bounds.
type textStep struct {
	id     StepID
	minLen int
	maxLen int
}

func (s textStep) ID() StepID { return s.id }

func (s textStep) Validate(value any) (any, error) {
	text, ok := value.(string)
	if !ok {
		return nil, invalidPayload(s.id, "expected a string")
	}

	text = strings.TrimSpace(text)
	n := len([]rune(text))
	if n == 0 {
		return nil, domain.NewValidationError(string(s.id), "required")
	}
	if n < s.minLen {
		return nil, domain.NewValidationError(string(s.id), fmt.Sprintf("must be at least %d characters", s.minLen))
	}
	if n > s.maxLen {
		return nil, domain.NewValidationError(string(s.id), fmt.Sprintf("must be at most %d characters", s.maxLen))
	}
	return text, nil
}

// locationStep validates the address block. City and country are required;
// the rest is optional.
type locationStep struct{}

func (locationStep) ID() StepID { return StepLocation }

func (locationStep) Validate(value any) (any, error) {
	loc, ok := value.(domain.Location)
	if !ok {
		return nil, invalidPayload(StepLocation, "expected a location object")
	}

	loc.Street = strings.TrimSpace(loc.Street)
	loc.City = strings.TrimSpace(loc.City)
	loc.State = strings.TrimSpace(loc.State)
	loc.Country = strings.TrimSpace(loc.Country)
	loc.ZipCode = strings.TrimSpace(loc.ZipCode)

	var errs []domain.FieldError
	if loc.City == "" {
		errs = append(errs, domain.FieldError{Field: string(StepLocation), Message: "city is required"})
	}
	if loc.Country == "" {
		errs = append(errs, domain.FieldError{Field: string(StepLocation), Message: "country is required"})
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}
	return loc, nil
}

// detailsStep validates the kind-specific attributes. Exactly the variant
// matching the wizard's kind must be set, and numbers must be non-negative.
type detailsStep struct {
	kind domain.ListingKind
}

func (detailsStep) ID() StepID { return StepDetails }

func (s detailsStep) Validate(value any) (any, error) {
	details, ok := value.(domain.ListingDetails)
	if !ok {
		return nil, invalidPayload(StepDetails, "expected a details object")
	}

	switch s.kind {
	case domain.ListingKindFlat:
		if details.Flat == nil {
			return nil, domain.NewValidationError(string(StepDetails), "flat details required")
		}
		if err := nonNegative(details.Flat.Bedrooms, "bedrooms"); err != nil {
			return nil, err
		}
		if err := nonNegative(details.Flat.Bathrooms, "bathrooms"); err != nil {
			return nil, err
		}
		if err := nonNegative(details.Flat.Area, "area"); err != nil {
			return nil, err
		}
		details.Garden, details.Restaurant = nil, nil

	case domain.ListingKindGarden:
		if details.Garden == nil {
			return nil, domain.NewValidationError(string(StepDetails), "marriage garden details required")
		}
		if err := nonNegative(details.Garden.Capacity, "capacity"); err != nil {
			return nil, err
		}
		if err := nonNegative(details.Garden.Area, "area"); err != nil {
			return nil, err
		}
		details.Flat, details.Restaurant = nil, nil

	case domain.ListingKindRestaurant:
		if details.Restaurant == nil {
			return nil, domain.NewValidationError(string(StepDetails), "restaurant details required")
		}
		if err := nonNegative(details.Restaurant.Seating, "seating"); err != nil {
			return nil, err
		}
		details.Restaurant.Cuisine = strings.TrimSpace(details.Restaurant.Cuisine)
		details.Flat, details.Garden = nil, nil
	}

	return details, nil
}

func nonNegative(v *int, name string) error {
	if v != nil && *v < 0 {
		return domain.NewValidationError(string(StepDetails), name+" must not be negative")
	}
	return nil
}

// priceStep parses the price from its raw string input. Empty or non-numeric
// input is a validation error, never coerced to zero.
type priceStep struct{}

func (priceStep) ID() StepID { return StepPrice }

func (priceStep) Validate(value any) (any, error) {
	raw, ok := value.(string)
	if !ok {
		return nil, invalidPayload(StepPrice, "expected a string")
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domain.NewValidationError(string(StepPrice), "required")
	}

	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, domain.NewValidationError(string(StepPrice), "must be a number")
	}
	if price <= 0 {
		return nil, domain.NewValidationError(string(StepPrice), "must be greater than zero")
	}
	return price, nil
}

// setStep validates a string selection: at least one entry, deduplicated,
// and restricted to the catalog when one is configured.
type setStep struct {
	id      StepID
	catalog []string
}

func (s setStep) ID() StepID { return s.id }

func (s setStep) Validate(value any) (any, error) {
	items, ok := value.([]string)
	if !ok {
		return nil, invalidPayload(s.id, "expected a list of strings")
	}

	seen := make(map[string]struct{}, len(items))
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		if s.catalog != nil && !inCatalog(s.catalog, item) {
			return nil, domain.NewValidationError(string(s.id), fmt.Sprintf("unknown feature %q", item))
		}
		seen[item] = struct{}{}
		cleaned = append(cleaned, item)
	}

	if len(cleaned) == 0 {
		return nil, domain.NewValidationError(string(s.id), "select at least one")
	}
	return cleaned, nil
}

func inCatalog(catalog []string, item string) bool {
	for _, c := range catalog {
		if c == item {
			return true
		}
	}
	return false
}

// filesStep validates attached local files. Photos require at least one;
// documents have no minimum.
type filesStep struct {
	id       StepID
	minFiles int
}

func (s filesStep) ID() StepID { return s.id }

func (s filesStep) Validate(value any) (any, error) {
	files, ok := value.([]FileRef)
	if !ok {
		return nil, invalidPayload(s.id, "expected a list of files")
	}

	if len(files) < s.minFiles {
		return nil, domain.NewValidationError(string(s.id), "attach at least one file")
	}
	for _, f := range files {
		if strings.TrimSpace(f.Name) == "" {
			return nil, domain.NewValidationError(string(s.id), "file name is required")
		}
		if len(f.Content) == 0 {
			return nil, domain.NewValidationError(string(s.id), fmt.Sprintf("file %q is empty", f.Name))
		}
	}
	return files, nil
}

// verificationStep carries no payload. It is satisfied by the draft's
// verified flag, checked by the controller at finalize.
type verificationStep struct{}

func (verificationStep) ID() StepID { return StepVerification }

func (verificationStep) Validate(any) (any, error) {
	return nil, nil
}

func invalidPayload(id StepID, msg string) error {
	return domain.NewValidationError(string(id), "invalid payload: "+msg)
}
