// Package broadcast implements the change-event stream: a registry of
// WebSocket subscribers and fan-out of mutation events to all of them.
//
// Delivery is fire-and-forget. There is no replay or acknowledgment; a
// client that is not connected when an event is published never sees it.
package broadcast

import "time"

// Action identifies the kind of mutation an event describes.
type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionBulkComplete Action = "bulk_complete"
)

// Event is a single change notification sent to all connected subscribers.
type Event struct {
	Action     Action    `json:"action"`
	SubjectID  int64     `json:"subjectId,omitempty"`
	SubjectIDs []int64   `json:"subjectIds,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	Timestamp  time.Time `json:"timestamp"`

	// Payload carries action-specific detail, e.g. the created component or
	// an upload batch summary.
	Payload any `json:"payload,omitempty"`
}

// NewEvent returns an Event for a single subject, stamped with the current time.
func NewEvent(action Action, subjectID int64) Event {
	return Event{
		Action:    action,
		SubjectID: subjectID,
		Timestamp: time.Now().UTC(),
	}
}
