package api

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kalambet/hireagent/internal/composer"
	"github.com/kalambet/hireagent/internal/engine"
	"github.com/kalambet/hireagent/internal/followup"
	"github.com/kalambet/hireagent/internal/intent"
	"github.com/kalambet/hireagent/internal/recommend"
	"github.com/kalambet/hireagent/internal/session"
	"github.com/kalambet/hireagent/internal/storage"
	"github.com/kalambet/hireagent/internal/transcript"
)

// scriptedLLM answers each prompt kind with a fixed reply.
func scriptedLLM(fail bool) engine.Service {
	return engine.ServiceFunc(func(_ context.Context, msgs []engine.Message) (string, error) {
		if fail {
			return "", errors.New("connection refused")
		}
		p := msgs[0].Content
		switch {
		case strings.Contains(p, "Now extract from:"):
			return `{"industry":"fintech","location":"Mumbai","roles":["backend developer"],"number_of_positions":3,"urgency":true}`, nil
		case strings.Contains(p, "smart recruiter assistant"):
			return "Tech Startup Hiring Pack", nil
		case strings.Contains(p, "chat-style proposal"):
			return "Thanks for reaching out! Our Tech Startup Hiring Pack fits.", nil
		case strings.Contains(p, "Client replied:"):
			return "Happy to help!", nil
		}
		return "", errors.New("unexpected prompt")
	})
}

type testEnv struct {
	deps      Deps
	store     *storage.Store
	exportDir string
}

func newTestEnv(t *testing.T, fail bool) testEnv {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	dir := t.TempDir()
	llm := scriptedLLM(fail)
	orch := session.NewOrchestrator(session.Deps{
		Extractor:   intent.NewExtractor(llm),
		Recommender: recommend.New(llm),
		Composer:    composer.New(llm),
		Responder:   followup.New(llm),
		Store:       store,
		Exporter:    transcript.NewExporter(dir),
	})
	return testEnv{
		deps:      Deps{Sessions: orch, Leads: store},
		store:     store,
		exportDir: dir,
	}
}
