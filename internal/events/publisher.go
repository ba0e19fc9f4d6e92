package events

import (
	"time"

	"github.com/GnandeepVenigalla/gd25th-backend/internal/types"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/types/media"
)

// Publisher interface for publishing events
type Publisher interface {
	PublishMediaCommitted(record media.Record, kind media.Kind)
}

// EventPublisher implements the Publisher interface
type EventPublisher struct {
	hub WebSocketHub
}

// WebSocketHub interface for the WebSocket hub
type WebSocketHub interface {
	BroadcastAll(event *types.Event)
	GetClientCount() int
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(hub WebSocketHub) *EventPublisher {
	return &EventPublisher{
		hub: hub,
	}
}

// PublishMediaCommitted pushes a committed upload to every connected gallery
// viewer so open galleries refresh without polling.
func (p *EventPublisher) PublishMediaCommitted(record media.Record, kind media.Kind) {
	// Nothing to do when nobody is watching
	if p.hub.GetClientCount() == 0 {
		return
	}

	eventData := &types.MediaCommittedEvent{
		Key:         record.Key,
		URL:         record.URL,
		Kind:        string(kind),
		CommittedAt: record.UploadDate.UTC().Format(time.RFC3339),
	}

	event := types.NewEvent(types.EventMediaCommitted, eventData)
	p.hub.BroadcastAll(event)
}
