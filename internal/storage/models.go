package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// StructuredLogRow is one persisted extraction, written once per session.
type StructuredLogRow struct {
	SessionID     string    `json:"session_id"`
	Timestamp     time.Time `json:"timestamp"`
	Industry      string    `json:"industry"`
	Location      string    `json:"location"`
	Roles         string    `json:"roles"` // comma-joined
	PositionCount int       `json:"number_of_positions"`
	Urgent        bool      `json:"urgency"`
}

// Column describes one column of a table as reported by PRAGMA table_info.
type Column struct {
	CID        int    `json:"cid"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"not_null"`
	Default    string `json:"default,omitempty"`
	PrimaryKey bool   `json:"primary_key"`
}
