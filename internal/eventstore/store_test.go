package eventstore

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
)

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(MemoryPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEventStoreAppendAndRetrieve(t *testing.T) {
	store := newMemoryStore(t)

	ctx := t.Context()
	eventType := "TestEvent"
	payload := []byte(`{"test": "data"}`)
	metadata := map[string]string{"key": "value"}

	if err := store.Append(ctx, testRenderID, eventType, payload, metadata); err != nil {
		t.Fatalf("failed to append event: %v", err)
	}

	events, err := store.GetByRenderID(ctx, testRenderID)
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.RenderID() != testRenderID {
		t.Errorf("expected render_id %s, got %s", testRenderID, event.RenderID())
	}
	if event.Type() != eventType {
		t.Errorf("expected event_type %s, got %s", eventType, event.Type())
	}
	if !bytes.Equal(event.Payload(), payload) {
		t.Errorf("expected payload %s, got %s", payload, event.Payload())
	}
	if event.Metadata()["key"] != "value" {
		t.Errorf("expected metadata key=value, got %v", event.Metadata())
	}
	if event.ID() == 0 {
		t.Error("expected store-assigned id")
	}
}

func TestEventStoreGetRange(t *testing.T) {
	store := newMemoryStore(t)

	ctx := t.Context()
	now := time.Now()

	for range 3 {
		if err := store.Append(ctx, "render-1", "Event", []byte("{}"), nil); err != nil {
			t.Fatalf("failed to append event: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	events, err := store.GetRange(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("failed to get range: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 events, got %d", len(events))
	}

	events, err = store.GetRange(ctx, now.Add(time.Hour), now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("failed to get range: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events in the future, got %d", len(events))
	}
}

func TestEventStoreMultipleRenders(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()

	_ = store.Append(ctx, "render-1", "Event1", []byte("{}"), nil)
	_ = store.Append(ctx, "render-2", "Event2", []byte("{}"), nil)
	_ = store.Append(ctx, "render-1", "Event3", nil, nil)

	events, err := store.GetByRenderID(ctx, "render-1")
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events for render-1, got %d", len(events))
	}
	if events[0].Type() != "Event1" || events[1].Type() != "Event3" {
		t.Errorf("expected append order, got %s, %s", events[0].Type(), events[1].Type())
	}
	if string(events[1].Payload()) != "{}" {
		t.Errorf("expected nil payload stored as {}, got %q", events[1].Payload())
	}

	events, err = store.GetByRenderID(ctx, "render-2")
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event for render-2, got %d", len(events))
	}
}

func TestEventStorePersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")
	ctx := t.Context()

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.Append(ctx, "render-1", TypeRenderStarted, []byte("{}"), nil); err != nil {
		t.Fatalf("failed to append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	events, err := reopened.GetByRenderID(ctx, "render-1")
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 persisted event, got %d", len(events))
	}
}

func TestEventStoreClosedReturnsClassifiedError(t *testing.T) {
	store, err := NewSQLiteStore(MemoryPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	_ = store.Close()

	err = store.Append(t.Context(), "render-1", "Event", nil, nil)
	if !errors.Is(err, ErrEventAppendFailed) {
		t.Fatalf("expected ErrEventAppendFailed, got %v", err)
	}
	if !ferrors.HasCategory(err, ferrors.CategoryEventStore) {
		t.Errorf("expected eventstore category, got %s", ferrors.GetCategory(err))
	}
}
