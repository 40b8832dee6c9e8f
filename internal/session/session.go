// Package session holds per-conversation state and the orchestrator that
// moves a session from its first hiring request to follow-up dialogue.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/hireagent/internal/catalog"
	"github.com/kalambet/hireagent/internal/intent"
	"github.com/kalambet/hireagent/internal/transcript"
)

// ErrNotFound is returned for an unknown session id.
var ErrNotFound = errors.New("session not found")

// Phase is the session lifecycle state.
type Phase string

const (
	// PhaseFresh: no proposal has been produced yet.
	PhaseFresh Phase = "FRESH"
	// PhaseProposed: the proposal was sent; later inputs are follow-ups.
	PhaseProposed Phase = "PROPOSED"
)

// Session is one conversation. All mutation happens under mu, which the
// orchestrator holds for the whole of a turn.
type Session struct {
	mu sync.Mutex

	id             string
	createdAt      time.Time
	phase          Phase
	intent         intent.HiringIntent
	recommendation catalog.Recommendation
	proposal       string
	turns          []transcript.Turn
}

// View is a point-in-time copy of a session, safe to hand to other goroutines.
type View struct {
	ID             string               `json:"id"`
	CreatedAt      time.Time            `json:"created_at"`
	Phase          Phase                `json:"phase"`
	Intent         *intent.HiringIntent `json:"intent,omitempty"`
	Recommendation string               `json:"recommendation,omitempty"`
	InCatalog      bool                 `json:"in_catalog"`
	Proposal       string               `json:"proposal,omitempty"`
	Turns          []transcript.Turn    `json:"turns"`
}

func (s *Session) view() View {
	v := View{
		ID:        s.id,
		CreatedAt: s.createdAt,
		Phase:     s.phase,
		Proposal:  s.proposal,
		Turns:     append([]transcript.Turn{}, s.turns...),
	}
	if s.phase == PhaseProposed {
		h := s.intent.Clone()
		v.Intent = &h
		v.Recommendation = s.recommendation.Label()
		v.InCatalog = s.recommendation.Known()
	}
	return v
}

// Snapshot returns a copy of the session's current state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Registry keeps sessions in memory, keyed by id. Nothing survives a restart.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session), now: time.Now}
}

// Create starts a FRESH session with a new random id.
func (r *Registry) Create() *Session {
	s := &Session{
		id:        uuid.New().String(),
		createdAt: r.now().UTC(),
		phase:     PhaseFresh,
	}
	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
	return s
}

// Get looks up a session by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Len reports how many sessions are held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
