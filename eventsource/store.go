package eventsource

import (
	"context"
	"sync"
)

// Store is an append-only event stream store.
type Store interface {
	// Append atomically adds events to a stream. expectedVersion is the
	// version of the last event already in the stream (-1 for a new
	// stream); on mismatch Append fails with ErrConcurrencyConflict.
	// Returns the version of the last appended event.
	Append(ctx context.Context, streamID string, expectedVersion int, events []*Event) (int, error)

	// Read returns a stream's events from fromVersion onward, in order.
	// A missing stream yields an empty slice.
	Read(ctx context.Context, streamID string, fromVersion int) ([]*Event, error)

	// ReadAll returns events across streams matching the filter, in global
	// append order.
	ReadAll(ctx context.Context, filter EventFilter) ([]*Event, error)

	// StreamVersion returns the version of a stream's last event, or -1 if
	// the stream does not exist.
	StreamVersion(ctx context.Context, streamID string) (int, error)

	// DeleteStream removes a stream and all its events.
	DeleteStream(ctx context.Context, streamID string) error

	// Close releases store resources.
	Close() error
}

// MemoryStore is an in-memory Store, intended for tests and ephemeral use.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]*Event
	global  []*Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		streams: make(map[string][]*Event),
	}
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, streamID string, expectedVersion int, events []*Event) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[streamID]
	current := len(stream) - 1
	if current != expectedVersion {
		return 0, ErrConcurrencyConflict
	}

	version := current
	for _, e := range events {
		version++
		e.StreamID = streamID
		e.Version = version
		stream = append(stream, e)
		s.global = append(s.global, e)
	}
	s.streams[streamID] = stream
	return version, nil
}

// Read implements Store.
func (s *MemoryStore) Read(ctx context.Context, streamID string, fromVersion int) ([]*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[streamID]
	var out []*Event
	for _, e := range stream {
		if e.Version >= fromVersion {
			out = append(out, e)
		}
	}
	return out, nil
}

// ReadAll implements Store.
func (s *MemoryStore) ReadAll(ctx context.Context, filter EventFilter) ([]*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, e := range s.global {
		if filter.matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// StreamVersion implements Store.
func (s *MemoryStore) StreamVersion(ctx context.Context, streamID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams[streamID]) - 1, nil
}

// DeleteStream implements Store.
func (s *MemoryStore) DeleteStream(ctx context.Context, streamID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.streams, streamID)
	kept := s.global[:0]
	for _, e := range s.global {
		if e.StreamID != streamID {
			kept = append(kept, e)
		}
	}
	s.global = kept
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
