package api

import (
	"context"

	"github.com/kalambet/hireagent/internal/session"
	"github.com/kalambet/hireagent/internal/storage"
)

// Conversations is the session surface both transports drive.
type Conversations interface {
	Start() session.View
	Session(id string) (session.View, error)
	Transcript(id string) (string, error)
	Handle(ctx context.Context, id, input string) (session.Reply, error)
}

// LeadStore reads back persisted structured rows.
type LeadStore interface {
	ListStructuredLogs(ctx context.Context, limit int) ([]storage.StructuredLogRow, error)
	Columns(ctx context.Context) ([]storage.Column, error)
}

// Deps holds what the HTTP and MCP surfaces need. Leads may be nil when no
// store is configured.
type Deps struct {
	Sessions Conversations
	Leads    LeadStore
}

// maxListLimit caps list endpoints.
const maxListLimit = 500

func clampLimit(limit int) int {
	if limit <= 0 {
		return storage.DefaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
