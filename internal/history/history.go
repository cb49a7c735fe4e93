// Package history keeps a log of what happened to each session's form:
// random fills, resets, restores, edits and submissions.
package history

import "time"

// Action describes what was done to the form.
type Action string

const (
	ActionFilled    Action = "filled"
	ActionReset     Action = "reset"
	ActionRestored  Action = "restored"
	ActionEdited    Action = "edited"
	ActionSubmitted Action = "submitted"
	ActionRejected  Action = "rejected"
	ActionFailed    Action = "failed"
)

// Actions lists every action in the order they usually happen.
var Actions = []Action{
	ActionFilled, ActionReset, ActionRestored, ActionEdited,
	ActionSubmitted, ActionRejected, ActionFailed,
}

// ValidAction reports whether a is a known action.
func ValidAction(a Action) bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// Event is a single history record.
type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	SessionID string            `json:"session_id"`
	Action    Action            `json:"action"`
	Summary   string            `json:"summary"`
	Status    string            `json:"status,omitempty"`
	Payload   map[string]string `json:"payload,omitempty"`
}
