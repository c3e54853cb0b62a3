package rest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gharonda/gharonda-backend/internal/domain"
	"github.com/gharonda/gharonda-backend/internal/wizard"
	"github.com/gharonda/gharonda-backend/pkg/ctxutil"
)

// WizardHandler serves the listing-submission wizard. Every route requires
// an authenticated principal; sessions are owner-bound inside the store.
type WizardHandler struct {
	store *wizard.Store
	log   *slog.Logger
}

// NewWizardHandler creates a WizardHandler.
func NewWizardHandler(store *wizard.Store, logger *slog.Logger) *WizardHandler {
	return &WizardHandler{store: store, log: logger.With("handler", "wizard")}
}

type startWizardRequest struct {
	Kind string `json:"kind"`
}

type advanceRequest struct {
	Value json.RawMessage `json:"value"`
}

type sessionResponse struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	StepIndex  int       `json:"stepIndex"`
	StepCount  int       `json:"stepCount"`
	ActiveStep string    `json:"activeStep"`
	Verified   bool      `json:"verified"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Start handles POST /wizard.
func (h *WizardHandler) Start(w http.ResponseWriter, r *http.Request) {
	p, ok := ctxutil.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req startWizardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.store.Start(p, domain.ListingKind(req.Kind))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

// Get handles GET /wizard/{id}.
func (h *WizardHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.sessionScope(w, r)
	if !ok {
		return
	}

	sess, err := h.store.Get(id, p)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// Advance handles POST /wizard/{id}/advance. The value payload is decoded
// according to the session's active step.
func (h *WizardHandler) Advance(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.sessionScope(w, r)
	if !ok {
		return
	}

	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.store.Get(id, p)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	value, err := decodeStepValue(sess.ActiveStep, req.Value)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	sess, err = h.store.Advance(id, p, value)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// Retreat handles POST /wizard/{id}/retreat.
func (h *WizardHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.sessionScope(w, r)
	if !ok {
		return
	}

	sess, err := h.store.Retreat(id, p)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// Verify handles POST /wizard/{id}/verify, the simulated out-of-band
// ownership check.
func (h *WizardHandler) Verify(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.sessionScope(w, r)
	if !ok {
		return
	}

	sess, err := h.store.Verify(id, p)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// Finalize handles POST /wizard/{id}/finalize. On success the session is
// gone and the pending listing is returned; on failure the session stays
// live for a retry.
func (h *WizardHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.sessionScope(w, r)
	if !ok {
		return
	}

	created, err := h.store.Finalize(r.Context(), id, p)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toListingResponse(created))
}

func (h *WizardHandler) sessionScope(w http.ResponseWriter, r *http.Request) (domain.Principal, uuid.UUID, bool) {
	p, ok := ctxutil.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return domain.Principal{}, uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return domain.Principal{}, uuid.Nil, false
	}
	return p, id, true
}

type locationPayload struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zipCode"`
}

type detailsPayload struct {
	Flat *struct {
		Bedrooms  *int `json:"bedrooms"`
		Bathrooms *int `json:"bathrooms"`
		Area      *int `json:"area"`
	} `json:"flat"`
	Garden *struct {
		Capacity *int `json:"capacity"`
		Area     *int `json:"area"`
	} `json:"garden"`
	Restaurant *struct {
		Cuisine string `json:"cuisine"`
		Seating *int   `json:"seating"`
	} `json:"restaurant"`
}

// decodeStepValue turns the raw JSON value into the Go type the active step
// validates. A payload that cannot even be decoded is the same class of
// error as one the step rejects.
func decodeStepValue(step wizard.StepID, raw json.RawMessage) (any, error) {
	badPayload := func() error {
		return domain.NewValidationError(string(step), "malformed value payload")
	}

	switch step {
	case wizard.StepTitle, wizard.StepDescription, wizard.StepPrice:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, badPayload()
		}
		return v, nil

	case wizard.StepLocation:
		var v locationPayload
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, badPayload()
		}
		return domain.Location{
			Street:  v.Street,
			City:    v.City,
			State:   v.State,
			Country: v.Country,
			ZipCode: v.ZipCode,
		}, nil

	case wizard.StepDetails:
		var v detailsPayload
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, badPayload()
		}
		var details domain.ListingDetails
		if v.Flat != nil {
			details.Flat = &domain.FlatDetails{
				Bedrooms:  v.Flat.Bedrooms,
				Bathrooms: v.Flat.Bathrooms,
				Area:      v.Flat.Area,
			}
		}
		if v.Garden != nil {
			details.Garden = &domain.GardenDetails{
				Capacity: v.Garden.Capacity,
				Area:     v.Garden.Area,
			}
		}
		if v.Restaurant != nil {
			details.Restaurant = &domain.RestaurantDetails{
				Cuisine: v.Restaurant.Cuisine,
				Seating: v.Restaurant.Seating,
			}
		}
		return details, nil

	case wizard.StepAmenities, wizard.StepSecurity:
		var v []string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, badPayload()
		}
		return v, nil

	case wizard.StepPhotos, wizard.StepDocuments:
		var v []wizard.FileRef
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, badPayload()
		}
		return v, nil

	case wizard.StepVerification:
		return nil, nil

	default:
		return nil, fmt.Errorf("no decoder for step %q", step)
	}
}

func toSessionResponse(s wizard.Session) sessionResponse {
	return sessionResponse{
		ID:         s.ID.String(),
		Kind:       s.Kind.String(),
		StepIndex:  s.StepIndex,
		StepCount:  s.StepCount,
		ActiveStep: string(s.ActiveStep),
		Verified:   s.Verified,
		ExpiresAt:  s.ExpiresAt,
	}
}
