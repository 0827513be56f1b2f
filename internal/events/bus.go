package events

import (
	"sync"
	"time"

	"subtitle-merger/internal/domain"
)

// Type classifies workflow events delivered to the UI.
type Type string

const (
	TypeStatus    Type = "status"
	TypeResult    Type = "result"
	TypeSelection Type = "selection"
	TypeSettings  Type = "settings"
	TypeDialog    Type = "dialog"
)

// Event is a sequenced workflow change.
type Event struct {
	Seq       int64       `json:"seq"`
	Timestamp time.Time   `json:"timestamp"`
	Type      Type        `json:"type"`
	Loading   bool        `json:"loading"`
	Title     string      `json:"title,omitempty"`
	Message   string      `json:"message,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
	Path      string      `json:"path,omitempty"`
	Key       string      `json:"key,omitempty"`
	Value     any         `json:"value,omitempty"`
}

// Bus keeps a bounded history of events for incremental reads.
type Bus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
}

// NewBus creates a buffer holding at most maxEvents events.
func NewBus(maxEvents int) *Bus {
	if maxEvents <= 0 {
		maxEvents = 500
	}

	return &Bus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// Publish appends event, assigning its sequence number and timestamp.
func (b *Bus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}

	return event
}

// Since returns events with a sequence strictly greater than seq.
func (b *Bus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Event, 0, len(b.events))
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}
