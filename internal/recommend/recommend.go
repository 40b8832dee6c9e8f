// Package recommend picks one catalog package for a hiring intent.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kalambet/hireagent/internal/catalog"
	"github.com/kalambet/hireagent/internal/engine"
	"github.com/kalambet/hireagent/internal/intent"
)

const recommendTemplate = `You are a smart recruiter assistant at a hiring agency.
Client Info:
- Industry: %s
- Location: %s
- Roles: %s
- Number: %d
- Urgent: %t

Your job is to look at the client's hiring need and suggest the **most suitable service** from this list ONLY:

%s
Read the client's extracted hiring info above and recommend **only ONE** service that best fits their needs.

Think practically, match roles, urgency, size, and type of client.

Return only the service name and nothing else.`

// BuildPrompt embeds the intent fields verbatim alongside the catalog.
func BuildPrompt(h intent.HiringIntent) string {
	var list strings.Builder
	for i, p := range catalog.Packages() {
		fmt.Fprintf(&list, "%d. %s\n", i+1, p)
	}
	return fmt.Sprintf(recommendTemplate,
		h.Industry, h.Location, formatRoles(h.Roles), h.PositionCount, h.Urgent, list.String())
}

func formatRoles(roles []string) string {
	if len(roles) == 0 {
		return "[]"
	}
	quoted := make([]string, len(roles))
	for i, r := range roles {
		quoted[i] = "'" + r + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// Engine asks the model for exactly one catalog package.
type Engine struct {
	llm engine.Service
}

// New creates an Engine backed by llm.
func New(llm engine.Service) *Engine {
	return &Engine{llm: llm}
}

// Recommend returns the decoded pick. Replies outside the catalog come back
// as catalog.Unknown with the raw text; membership is not enforced here. An
// empty reply falls back to the Custom Hiring Solution package.
func (e *Engine) Recommend(ctx context.Context, h intent.HiringIntent) (catalog.Recommendation, error) {
	reply, err := e.llm.Invoke(ctx, engine.System(BuildPrompt(h)))
	if err != nil {
		return catalog.Recommendation{}, fmt.Errorf("%w: recommendation: %w", engine.ErrServiceCall, err)
	}
	rec := catalog.Parse(reply)
	if rec.Raw == "" {
		slog.Warn("recommendation outside catalog", "raw", reply, "fallback", catalog.Custom.String())
		return catalog.Recommendation{Package: catalog.Custom}, nil
	}
	return rec, nil
}
