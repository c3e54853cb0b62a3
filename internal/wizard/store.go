package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gharonda/gharonda-backend/internal/access"
	"github.com/gharonda/gharonda-backend/internal/config"
	"github.com/gharonda/gharonda-backend/internal/domain"
)

// Session is a point-in-time view of a wizard session, safe to hand to
// transport code.
type Session struct {
	ID         uuid.UUID
	Kind       domain.ListingKind
	StepIndex  int
	StepCount  int
	ActiveStep StepID
	Verified   bool
	ExpiresAt  time.Time
}

// session is the store-internal record. mu serializes all controller access:
// an in-flight Advance or Finalize blocks re-entrant calls on the same id.
type session struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	ctrl      *Controller
	mu        sync.Mutex
	expiresAt time.Time
}

// Store holds active wizard sessions in memory, keyed by session id. Sessions
// are owner-bound and evicted after their TTL passes; abandonment is simply
// expiry.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session

	ttl        time.Duration
	sweepEvery time.Duration
	maxPerHost int

	gate        *access.Gate
	coordinator *Coordinator
	gateway     SubmissionGateway
	log         *slog.Logger

	now func() time.Time
}

// NewStore creates a Store. Call RunSweeper to start background eviction.
func NewStore(cfg config.WizardConfig, gate *access.Gate, coordinator *Coordinator, gateway SubmissionGateway, logger *slog.Logger) *Store {
	return &Store{
		sessions:    make(map[uuid.UUID]*session),
		ttl:         cfg.SessionTTL,
		sweepEvery:  cfg.SweepInterval,
		maxPerHost:  cfg.MaxPerPrincipal,
		gate:        gate,
		coordinator: coordinator,
		gateway:     gateway,
		log:         logger.With("component", "wizard_store"),
		now:         time.Now,
	}
}

// Start opens a new session of the given kind owned by the principal. Only
// sellers and admins may list, and the refusal happens here, before any
// session state exists. A principal may hold at most MaxPerPrincipal live
// sessions.
func (s *Store) Start(p domain.Principal, kind domain.ListingKind) (Session, error) {
	if err := s.gate.RequireLister(&p); err != nil {
		return Session{}, err
	}

	ctrl, err := NewController(kind, p.ID, s.coordinator, s.gateway)
	if err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	active := 0
	for _, sess := range s.sessions {
		if sess.ownerID == p.ID && sess.expiresAt.After(now) {
			active++
		}
	}
	if s.maxPerHost > 0 && active >= s.maxPerHost {
		return Session{}, fmt.Errorf("wizard: %d active sessions: %w", active, domain.ErrConflict)
	}

	sess := &session{
		id:        uuid.New(),
		ownerID:   p.ID,
		ctrl:      ctrl,
		expiresAt: now.Add(s.ttl),
	}
	s.sessions[sess.id] = sess

	s.log.Info("session started",
		slog.String("session_id", sess.id.String()),
		slog.String("host_id", p.ID.String()),
		slog.String("kind", kind.String()),
	)

	return s.snapshot(sess), nil
}

// Get reports the session's position. Owner-bound: a foreign or expired
// session id resolves to ErrNotFound.
func (s *Store) Get(id uuid.UUID, p domain.Principal) (Session, error) {
	sess, err := s.lookup(id, p)
	if err != nil {
		return Session{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.snapshot(sess), nil
}

// Advance submits a value for the session's active step.
func (s *Store) Advance(id uuid.UUID, p domain.Principal, value any) (Session, error) {
	sess, err := s.lookup(id, p)
	if err != nil {
		return Session{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.ctrl.Advance(value); err != nil {
		return Session{}, err
	}
	s.touch(sess)
	return s.snapshot(sess), nil
}

// Retreat moves the session one step back.
func (s *Store) Retreat(id uuid.UUID, p domain.Principal) (Session, error) {
	sess, err := s.lookup(id, p)
	if err != nil {
		return Session{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.ctrl.Retreat()
	s.touch(sess)
	return s.snapshot(sess), nil
}

// Verify runs the simulated out-of-band check for the session.
func (s *Store) Verify(id uuid.UUID, p domain.Principal) (Session, error) {
	sess, err := s.lookup(id, p)
	if err != nil {
		return Session{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.ctrl.Verify()
	s.touch(sess)
	return s.snapshot(sess), nil
}

// Finalize submits the completed draft. On success the session is removed;
// on failure it stays live so the owner can retry.
func (s *Store) Finalize(ctx context.Context, id uuid.UUID, p domain.Principal) (*domain.Listing, error) {
	sess, err := s.lookup(id, p)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	listing, err := sess.ctrl.Finalize(ctx, p)
	if err != nil {
		s.touch(sess)
		return nil, err
	}

	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()

	s.log.Info("session finalized",
		slog.String("session_id", sess.id.String()),
		slog.String("listing_id", listing.ID.String()),
	)

	return listing, nil
}

// Sweep evicts expired sessions and returns the number removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if !sess.expiresAt.After(now) {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		s.log.Info("sessions evicted", slog.Int("count", removed))
	}
	return removed
}

// RunSweeper evicts expired sessions on the configured interval until the
// context is cancelled. Run it in its own goroutine.
func (s *Store) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// lookup resolves a live session owned by the principal. Unknown, expired,
// and foreign-owned ids all come back as ErrNotFound so session ids cannot
// be probed.
func (s *Store) lookup(id uuid.UUID, p domain.Principal) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("wizard session %s: %w", id, domain.ErrNotFound)
	}
	if !sess.expiresAt.After(s.now()) {
		delete(s.sessions, id)
		return nil, fmt.Errorf("wizard session %s: %w", id, domain.ErrNotFound)
	}
	if sess.ownerID != p.ID {
		return nil, fmt.Errorf("wizard session %s: %w", id, domain.ErrNotFound)
	}
	return sess, nil
}

// touch extends the session's TTL after successful activity.
func (s *Store) touch(sess *session) {
	s.mu.Lock()
	sess.expiresAt = s.now().Add(s.ttl)
	s.mu.Unlock()
}

func (s *Store) snapshot(sess *session) Session {
	return Session{
		ID:         sess.id,
		Kind:       sess.ctrl.Kind(),
		StepIndex:  sess.ctrl.StepIndex(),
		StepCount:  sess.ctrl.StepCount(),
		ActiveStep: sess.ctrl.ActiveStep(),
		Verified:   sess.ctrl.Verified(),
		ExpiresAt:  sess.expiresAt,
	}
}
