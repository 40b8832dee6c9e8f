// Package composer drafts the one-off sales pitch sent after the first turn.
package composer

import (
	"context"
	"fmt"
	"strings"

	"github.com/kalambet/hireagent/internal/catalog"
	"github.com/kalambet/hireagent/internal/engine"
	"github.com/kalambet/hireagent/internal/intent"
)

const proposalTemplate = `You are an AI sales assistant at a hiring agency, chatting with a client on a business messaging platform.
Client Info:
- Industry: %s
- Location: %s
- Roles: %s
- Number: %d
- Urgent: %t
Based on this, you are recommending: **%s**

Write a natural, chat-style proposal that:
1. Thanks them for reaching out
2. Clearly explains WHY this service fits their situation
3. Briefly explains WHAT the service includes (e.g. expert sourcing, speed, role-matching, dedicated recruiter, etc.)
4. Expresses confidence that your agency can deliver
5. Asks if they'd like to schedule a quick call with an expert to proceed

Don't make it sound like a formal email. Make it a confident yet helpful 5-8 sentence **live message**.
Avoid bullet points and keep it flowing like real conversation.`

// BuildPrompt embeds the intent and the chosen package label.
func BuildPrompt(h intent.HiringIntent, rec catalog.Recommendation) string {
	return fmt.Sprintf(proposalTemplate,
		h.Industry, h.Location, h.JoinedRoles(), h.PositionCount, h.Urgent, rec.Reply())
}

// Composer asks the model for the pitch. The five-part structure is advice
// to the model; the reply is not checked against it.
type Composer struct {
	llm engine.Service
}

// New creates a Composer backed by llm.
func New(llm engine.Service) *Composer {
	return &Composer{llm: llm}
}

// Compose returns the trimmed pitch text.
func (c *Composer) Compose(ctx context.Context, h intent.HiringIntent, rec catalog.Recommendation) (string, error) {
	reply, err := c.llm.Invoke(ctx, engine.System(BuildPrompt(h, rec)))
	if err != nil {
		return "", fmt.Errorf("%w: proposal: %w", engine.ErrServiceCall, err)
	}
	return strings.TrimSpace(reply), nil
}
