package intent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultPositionCount is used when the model omits number_of_positions.
const DefaultPositionCount = 1

// HiringIntent is the structured form of a client's first message. It is a
// value type: once extracted for a turn it is only ever copied.
type HiringIntent struct {
	Industry      string   `json:"industry"`
	Location      string   `json:"location"`
	Roles         []string `json:"roles"`
	PositionCount int      `json:"number_of_positions"`
	Urgent        bool     `json:"urgency"`
}

// Default returns the all-defaults intent used whenever extraction fails.
func Default() HiringIntent {
	return HiringIntent{PositionCount: DefaultPositionCount}
}

// Clone returns a copy that shares no memory with h.
func (h HiringIntent) Clone() HiringIntent {
	out := h
	if h.Roles != nil {
		out.Roles = append([]string(nil), h.Roles...)
	}
	return out
}

// JoinedRoles renders the roles as a single comma-joined string.
func (h HiringIntent) JoinedRoles() string {
	return strings.Join(h.Roles, ", ")
}

// wireIntent mirrors the JSON the model is asked to produce. Pointer fields
// distinguish "omitted" from zero values so defaults can be applied.
type wireIntent struct {
	Industry      *string  `json:"industry"`
	Location      *string  `json:"location"`
	Roles         []string `json:"roles"`
	PositionCount *int     `json:"number_of_positions"`
	Urgency       *bool    `json:"urgency"`
}

var errNoObject = errors.New("no JSON object in response")

// Decode parses a model response into a HiringIntent. Markdown fences and
// prose around the object are ignored; anything that still fails to decode
// as the expected shape is an error.
func Decode(raw string) (HiringIntent, error) {
	obj, err := objectSpan(raw)
	if err != nil {
		return Default(), err
	}

	var w wireIntent
	if err := json.NewDecoder(bytes.NewReader(obj)).Decode(&w); err != nil {
		return Default(), fmt.Errorf("decoding hiring intent: %w", err)
	}

	out := Default()
	if w.Industry != nil {
		out.Industry = strings.TrimSpace(*w.Industry)
	}
	if w.Location != nil {
		out.Location = strings.TrimSpace(*w.Location)
	}
	for _, r := range w.Roles {
		if r = strings.TrimSpace(r); r != "" {
			out.Roles = append(out.Roles, r)
		}
	}
	// Negative counts are treated as omitted.
	if w.PositionCount != nil && *w.PositionCount >= 0 {
		out.PositionCount = *w.PositionCount
	}
	if w.Urgency != nil {
		out.Urgent = *w.Urgency
	}
	return out, nil
}

func objectSpan(raw string) ([]byte, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return nil, errNoObject
	}
	return []byte(raw[start : end+1]), nil
}
