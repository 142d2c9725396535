package domain

import "time"

// EventType names a client state change observed by the view layer.
type EventType string

const (
	EventSessionChanged     EventType = "session.changed"
	EventThemeChanged       EventType = "theme.changed"
	EventCollectionChanged  EventType = "collection.changed"
	EventSubmissionAccepted EventType = "submission.accepted"
	EventSubmissionRejected EventType = "submission.rejected"
)

// Event is published on every observable transition.
type Event struct {
	Type       EventType `json:"type"`
	Topic      string    `json:"topic"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps an event with the current time.
func NewEvent(t EventType, topic string, data any) Event {
	return Event{Type: t, Topic: topic, Data: data, OccurredAt: time.Now()}
}
