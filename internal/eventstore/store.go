package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, renderID, eventType string, payload []byte, metadata map[string]string) error

	// GetByRenderID retrieves all events of one render in append order.
	GetByRenderID(ctx context.Context, renderID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}

// Record appends a typed event.
func Record(ctx context.Context, s Store, e Event) error {
	return s.Append(ctx, e.RenderID(), e.Type(), e.Payload(), e.Metadata())
}
