package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kalambet/hireagent/internal/catalog"
	"github.com/kalambet/hireagent/internal/engine"
	"github.com/kalambet/hireagent/internal/intent"
	"github.com/kalambet/hireagent/internal/storage"
	"github.com/kalambet/hireagent/internal/transcript"
)

// Apology is shown in place of a reply when a model call fails.
const Apology = "Sorry, I'm having trouble reaching our assistant right now. Please try again in a moment."

// ErrEmptyInput is returned for blank user input.
var ErrEmptyInput = errors.New("empty input")

// Extractor turns free text into a hiring intent.
type Extractor interface {
	Extract(ctx context.Context, text string) (intent.HiringIntent, error)
}

// Recommender picks one catalog package for an intent.
type Recommender interface {
	Recommend(ctx context.Context, h intent.HiringIntent) (catalog.Recommendation, error)
}

// Composer writes the pitch for an intent and package.
type Composer interface {
	Compose(ctx context.Context, h intent.HiringIntent, rec catalog.Recommendation) (string, error)
}

// Responder produces follow-up replies.
type Responder interface {
	Respond(ctx context.Context, reply, proposal string, turns []transcript.Turn) (string, error)
}

// LogStore persists one structured row per completed first turn.
type LogStore interface {
	InsertStructuredLog(ctx context.Context, row storage.StructuredLogRow) error
}

// Exporter writes a closed conversation somewhere durable and returns its location.
type Exporter interface {
	Export(turns []transcript.Turn) (string, error)
}

// Deps are the collaborators an Orchestrator sequences. Store and Exporter
// may be nil, which disables persistence or export.
type Deps struct {
	Extractor   Extractor
	Recommender Recommender
	Composer    Composer
	Responder   Responder
	Store       LogStore
	Exporter    Exporter

	// StrictCatalog replaces out-of-catalog recommendations with the
	// Custom Hiring Solution package.
	StrictCatalog bool
}

// Reply is the outcome of one user input.
type Reply struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	Phase     Phase  `json:"phase"`
	// Degraded is set when Text is the apology rather than a model reply.
	Degraded bool `json:"degraded,omitempty"`
	// Exported is the transcript path when this input closed the conversation.
	Exported string `json:"exported,omitempty"`
}

// Orchestrator owns the session registry and runs each turn. One per process.
type Orchestrator struct {
	deps     Deps
	registry *Registry
	now      func() time.Time
}

// NewOrchestrator creates an Orchestrator with an empty registry.
func NewOrchestrator(deps Deps) *Orchestrator {
	return &Orchestrator{deps: deps, registry: NewRegistry(), now: time.Now}
}

// Start creates a new FRESH session.
func (o *Orchestrator) Start() View {
	s := o.registry.Create()
	slog.Debug("session started", "session_id", s.id)
	return s.Snapshot()
}

// Session returns a snapshot of the session with the given id.
func (o *Orchestrator) Session(id string) (View, error) {
	s, err := o.registry.Get(id)
	if err != nil {
		return View{}, err
	}
	return s.Snapshot(), nil
}

// Transcript renders the session's turns as "Role: text" lines.
func (o *Orchestrator) Transcript(id string) (string, error) {
	v, err := o.Session(id)
	if err != nil {
		return "", err
	}
	return transcript.Render(v.Turns), nil
}

// Handle processes one user input. The first input runs extraction,
// recommendation and composition exactly once; every later input is a
// follow-up turn. Inputs to the same session are serialized.
//
// Model failures never surface as errors: the caller gets the apology text
// with Degraded set. The returned error is non-nil only for an unknown
// session or blank input.
func (o *Orchestrator) Handle(ctx context.Context, id, input string) (Reply, error) {
	if strings.TrimSpace(input) == "" {
		return Reply{}, ErrEmptyInput
	}
	s, err := o.registry.Get(id)
	if err != nil {
		return Reply{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseFresh {
		return o.propose(ctx, s, input), nil
	}
	return o.followUp(ctx, s, input), nil
}

func (o *Orchestrator) propose(ctx context.Context, s *Session, input string) Reply {
	log := slog.With("session_id", s.id)

	h, err := o.deps.Extractor.Extract(ctx, input)
	if err != nil {
		return o.fail(log, s, "extraction", err)
	}

	rec, err := o.deps.Recommender.Recommend(ctx, h)
	if err != nil {
		return o.fail(log, s, "recommendation", err)
	}
	if !rec.Known() {
		log.Warn("recommendation outside catalog", "raw", rec.Raw, "strict", o.deps.StrictCatalog)
		if o.deps.StrictCatalog {
			rec = catalog.Recommendation{Package: catalog.Custom, Raw: rec.Raw}
		}
	}

	proposal, err := o.deps.Composer.Compose(ctx, h, rec)
	if err != nil {
		return o.fail(log, s, "proposal", err)
	}

	o.persist(ctx, log, s.id, h)

	s.intent = h
	s.recommendation = rec
	s.proposal = proposal
	s.turns = append(s.turns,
		transcript.Turn{Role: transcript.RoleUser, Text: input},
		transcript.Turn{Role: transcript.RoleAgent, Text: proposal},
	)
	s.phase = PhaseProposed

	log.Info("proposal sent", "package", rec.Label(), "positions", h.PositionCount, "urgent", h.Urgent)
	return Reply{SessionID: s.id, Text: proposal, Phase: s.phase}
}

func (o *Orchestrator) followUp(ctx context.Context, s *Session, input string) Reply {
	log := slog.With("session_id", s.id)

	s.turns = append(s.turns, transcript.Turn{Role: transcript.RoleUser, Text: input})

	reply := Reply{SessionID: s.id, Phase: s.phase}
	text, err := o.deps.Responder.Respond(ctx, input, s.proposal, s.turns)
	if err != nil {
		log.Error("follow-up failed", "error", err)
		text = Apology
		reply.Degraded = true
	}
	s.turns = append(s.turns, transcript.Turn{Role: transcript.RoleAgent, Text: text})
	reply.Text = text

	if IsClosure(input) {
		reply.Exported = o.export(log, s)
	}
	return reply
}

// fail leaves the session FRESH so the next input retries the first turn.
func (o *Orchestrator) fail(log *slog.Logger, s *Session, stage string, err error) Reply {
	if errors.Is(err, engine.ErrServiceCall) {
		log.Error("first turn failed", "stage", stage, "error", err)
	} else {
		log.Error("first turn failed with unexpected error", "stage", stage, "error", err)
	}
	return Reply{SessionID: s.id, Text: Apology, Phase: s.phase, Degraded: true}
}

func (o *Orchestrator) persist(ctx context.Context, log *slog.Logger, id string, h intent.HiringIntent) {
	if o.deps.Store == nil {
		return
	}
	row := storage.StructuredLogRow{
		SessionID:     id,
		Timestamp:     o.now(),
		Industry:      h.Industry,
		Location:      h.Location,
		Roles:         h.JoinedRoles(),
		PositionCount: h.PositionCount,
		Urgent:        h.Urgent,
	}
	if err := o.deps.Store.InsertStructuredLog(ctx, row); err != nil {
		log.Error("persisting structured data", "error", err)
	}
}

func (o *Orchestrator) export(log *slog.Logger, s *Session) string {
	if o.deps.Exporter == nil {
		return ""
	}
	path, err := o.deps.Exporter.Export(s.turns)
	if err != nil {
		log.Error("exporting transcript", "error", fmt.Errorf("session %s: %w", s.id, err))
		return ""
	}
	log.Info("transcript exported", "path", path, "turns", len(s.turns))
	return path
}
