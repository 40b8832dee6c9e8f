// Package followup produces agent replies once the proposal has been sent.
package followup

import (
	"context"
	"fmt"
	"strings"

	"github.com/kalambet/hireagent/internal/engine"
	"github.com/kalambet/hireagent/internal/transcript"
)

const followUpTemplate = `You are an AI Sales Assistant at a recruitment agency. Your job is to help clients with hiring solutions only.

You should ONLY answer questions related to hiring, recruitment, or staffing needs.

If the client asks something unrelated (like coding, weather, general queries), politely respond that you specialize in recruitment and hiring, and redirect them back to hiring discussion.
Below is your chat:
%s

You had sent this proposal:
"""%s"""

Client replied:
"""%s"""

Reply in a friendly, helpful, confident tone. Keep the tone chatty and natural. Be concise and suggest a suitable proposal.
If client sounds satisfied or ends with a goodbye, thank them and end the conversation.`

// BuildPrompt embeds the rendered history, the proposal and the latest reply.
func BuildPrompt(reply, proposal string, turns []transcript.Turn) string {
	return fmt.Sprintf(followUpTemplate, transcript.Render(turns), proposal, reply)
}

// Engine answers follow-up turns. Closure detection belongs to the caller;
// the prompt only asks the model to wrap up when the client signs off.
type Engine struct {
	llm engine.Service
}

// New creates an Engine backed by llm.
func New(llm engine.Service) *Engine {
	return &Engine{llm: llm}
}

// Respond returns the trimmed next agent utterance. turns must already
// include the client's latest reply.
func (e *Engine) Respond(ctx context.Context, reply, proposal string, turns []transcript.Turn) (string, error) {
	out, err := e.llm.Invoke(ctx, engine.System(BuildPrompt(reply, proposal, turns)))
	if err != nil {
		return "", fmt.Errorf("%w: follow-up: %w", engine.ErrServiceCall, err)
	}
	return strings.TrimSpace(out), nil
}
