package types

import "time"

// EventType represents the type of real-time event
type EventType string

const (
	EventMediaCommitted EventType = "media.committed"
)

// Event represents a real-time event that can be sent over WebSocket
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// MediaCommittedEvent is pushed to gallery viewers when an upload is
// committed into the catalog.
type MediaCommittedEvent struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Kind        string `json:"kind"`
	CommittedAt string `json:"committed_at"`
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
