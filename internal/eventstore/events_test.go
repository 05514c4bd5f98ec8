package eventstore

import (
	"encoding/json"
	"testing"
	"time"
)

const testRenderID = "render-123"

func TestEventSerialization(t *testing.T) {
	tests := []struct {
		name      string
		createFn  func() (Event, error)
		eventType string
		wantKey   string
	}{
		{
			name: "RenderStarted",
			createFn: func() (Event, error) {
				return NewRenderStarted(testRenderID, "/out", "default", 4)
			},
			eventType: TypeRenderStarted,
			wantKey:   "page_count",
		},
		{
			name: "PageRendered",
			createFn: func() (Event, error) {
				return NewPageRendered(testRenderID, "index.html", "index.tmpl", "abc", 120)
			},
			eventType: TypePageRendered,
			wantKey:   "fingerprint",
		},
		{
			name: "RenderCompleted",
			createFn: func() (Event, error) {
				return NewRenderCompleted(testRenderID, 4, 1500*time.Millisecond)
			},
			eventType: TypeRenderCompleted,
			wantKey:   "duration_ms",
		},
		{
			name: "RenderFailed",
			createFn: func() (Event, error) {
				return NewRenderFailed(testRenderID, "cancelled", "")
			},
			eventType: TypeRenderFailed,
			wantKey:   "reason",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := tt.createFn()
			if err != nil {
				t.Fatalf("failed to create event: %v", err)
			}
			if event.RenderID() != testRenderID {
				t.Errorf("expected render_id %s, got %s", testRenderID, event.RenderID())
			}
			if event.Type() != tt.eventType {
				t.Errorf("expected type %s, got %s", tt.eventType, event.Type())
			}
			if event.Timestamp().IsZero() {
				t.Error("expected timestamp to be set")
			}

			var payload map[string]any
			if err := json.Unmarshal(event.Payload(), &payload); err != nil {
				t.Fatalf("payload is not valid JSON: %v", err)
			}
			if _, ok := payload[tt.wantKey]; !ok {
				t.Errorf("expected payload key %q in %s", tt.wantKey, event.Payload())
			}
			if _, leaked := payload["EventRenderID"]; leaked {
				t.Errorf("base event fields leaked into payload: %s", event.Payload())
			}
		})
	}
}

func TestRenderCompletedDurationIsMilliseconds(t *testing.T) {
	event, err := NewRenderCompleted(testRenderID, 1, 2*time.Second)
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	var payload struct {
		DurationMS int64 `json:"duration_ms"`
	}
	if err := json.Unmarshal(event.Payload(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.DurationMS != 2000 {
		t.Errorf("expected 2000ms, got %d", payload.DurationMS)
	}
}
