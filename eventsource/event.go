// Package eventsource persists ledger notifications as append-only event
// streams and rebuilds ledger state by replay. One stream holds the full
// history of one deployed ledger; stores enforce optimistic concurrency so
// two writers cannot interleave operations on the same stream.
package eventsource

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common store errors.
var (
	ErrConcurrencyConflict = errors.New("eventsource: concurrency conflict")
	ErrStreamNotFound      = errors.New("eventsource: stream not found")
)

// Event is one persisted record in a ledger stream.
type Event struct {
	// ID is a globally unique event identifier.
	ID string `json:"id"`

	// StreamID identifies the ledger this event belongs to.
	StreamID string `json:"stream_id"`

	// Type is the event type name.
	Type string `json:"type"`

	// Data is the JSON-encoded payload.
	Data json.RawMessage `json:"data,omitempty"`

	// Version is the event's position in its stream, starting at 0.
	// Assigned by the store on append.
	Version int `json:"version"`

	// Timestamp records when the event was created.
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event with a fresh ID and JSON-encoded payload.
// A nil payload produces an event without data.
func NewEvent(streamID, eventType string, payload any) (*Event, error) {
	e := &Event{
		ID:        uuid.New().String(),
		StreamID:  streamID,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("eventsource: encoding payload: %w", err)
		}
		e.Data = data
	}
	return e, nil
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("eventsource: event %s has no payload", e.ID)
	}
	return json.Unmarshal(e.Data, v)
}

// EventFilter selects events for Store.ReadAll.
type EventFilter struct {
	// StreamID restricts results to one stream. Empty matches all.
	StreamID string

	// Types restricts results to the listed event types. Empty matches all.
	Types []string
}

func (f EventFilter) matches(e *Event) bool {
	if f.StreamID != "" && e.StreamID != f.StreamID {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if e.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
