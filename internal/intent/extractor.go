package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kalambet/hireagent/internal/engine"
)

// Extractor turns a client's free-text hiring request into a HiringIntent
// with a single model call.
type Extractor struct {
	llm engine.Service
}

// NewExtractor creates an Extractor backed by llm.
func NewExtractor(llm engine.Service) *Extractor {
	return &Extractor{llm: llm}
}

// Extract is best-effort. A response that cannot be parsed degrades to
// Default() with a logged warning and a nil error; the error is non-nil only
// when the model call itself failed, and then it wraps engine.ErrServiceCall.
// Blank input skips the model call.
func (e *Extractor) Extract(ctx context.Context, text string) (HiringIntent, error) {
	if strings.TrimSpace(text) == "" {
		return Default(), nil
	}

	raw, err := e.llm.Invoke(ctx, engine.System(BuildPrompt(text)))
	if err != nil {
		slog.Warn("hiring intent extraction call failed", "error", err)
		return Default(), fmt.Errorf("%w: extraction: %w", engine.ErrServiceCall, err)
	}

	got, err := Decode(raw)
	if err != nil {
		slog.Warn("failed to parse hiring intent from model response", "error", err, "response", raw)
		return Default(), nil
	}
	return got, nil
}
