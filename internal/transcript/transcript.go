// Package transcript models a session's turn history and its plain-text export.
package transcript

import (
	"strings"
)

// Role tags who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Label is the capitalised form used in rendered transcripts.
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAgent:
		return "Agent"
	}
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// Turn is one message in a session.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Line renders the turn as "Role: text".
func (t Turn) Line() string {
	return t.Role.Label() + ": " + t.Text
}

// Render joins turns into newline-separated "Role: text" lines in order.
func Render(turns []Turn) string {
	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = t.Line()
	}
	return strings.Join(lines, "\n")
}
