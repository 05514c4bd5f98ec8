package eventstore

import (
	"testing"
	"time"
)

func TestRenderHistoryProjection_ApplyEvents(t *testing.T) {
	store := newMemoryStore(t)
	projection := NewRenderHistoryProjection(store, 10)

	start, err := NewRenderStarted(testRenderID, "/site", "default", 2)
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	projection.Apply(start)

	summary, exists := projection.GetRender(testRenderID)
	if !exists {
		t.Fatal("Expected render to exist")
	}
	if summary.Status != StatusRunning {
		t.Errorf("Expected status %q, got %q", StatusRunning, summary.Status)
	}
	if summary.OutputDir != "/site" || summary.PageCount != 2 {
		t.Errorf("Unexpected start fields: %+v", summary)
	}

	for _, url := range []string{"index.html", "pages/a.html"} {
		page, err := NewPageRendered(testRenderID, url, "document.tmpl", "fp-"+url, 10)
		if err != nil {
			t.Fatalf("Failed to create event: %v", err)
		}
		projection.Apply(page)
	}

	done, err := NewRenderCompleted(testRenderID, 2, 3*time.Second)
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	projection.Apply(done)

	summary, _ = projection.GetRender(testRenderID)
	if summary.Status != StatusCompleted {
		t.Errorf("Expected status %q, got %q", StatusCompleted, summary.Status)
	}
	if summary.Written != 2 {
		t.Errorf("Expected 2 written pages, got %d", summary.Written)
	}
	if summary.Fingerprints["pages/a.html"] != "fp-pages/a.html" {
		t.Errorf("Expected fingerprint for pages/a.html, got %v", summary.Fingerprints)
	}
	if summary.Duration != 3*time.Second {
		t.Errorf("Expected duration 3s, got %s", summary.Duration)
	}
	if summary.CompletedAt == nil {
		t.Error("Expected completed_at to be set")
	}

	history := projection.GetHistory()
	if len(history) != 1 || history[0].RenderID != testRenderID {
		t.Fatalf("Expected one history entry for %s, got %v", testRenderID, history)
	}
}

func TestRenderHistoryProjection_RenderFailed(t *testing.T) {
	store := newMemoryStore(t)
	projection := NewRenderHistoryProjection(store, 10)

	start, _ := NewRenderStarted("render-failed", "/site", "default", 3)
	projection.Apply(start)
	fail, _ := NewRenderFailed("render-failed", "listener", "boom")
	projection.Apply(fail)

	summary, exists := projection.GetRender("render-failed")
	if !exists {
		t.Fatal("Expected render to exist")
	}
	if summary.Status != StatusFailed {
		t.Errorf("Expected status %q, got %q", StatusFailed, summary.Status)
	}
	if summary.Reason != "listener" || summary.ErrorMessage != "boom" {
		t.Errorf("Unexpected failure fields: %+v", summary)
	}
	if last := projection.GetLastCompleted(); last == nil || last.RenderID != "render-failed" {
		t.Errorf("Expected last completed to be render-failed, got %v", last)
	}
}

func TestRenderHistoryProjection_Rebuild(t *testing.T) {
	ctx := t.Context()
	store := newMemoryStore(t)

	for _, id := range []string{"render-a", "render-b"} {
		start, _ := NewRenderStarted(id, "/site", "default", 1)
		if err := Record(ctx, store, start); err != nil {
			t.Fatalf("Failed to append: %v", err)
		}
		page, _ := NewPageRendered(id, "index.html", "index.tmpl", "fp", 1)
		if err := Record(ctx, store, page); err != nil {
			t.Fatalf("Failed to append: %v", err)
		}
		done, _ := NewRenderCompleted(id, 1, time.Millisecond)
		if err := Record(ctx, store, done); err != nil {
			t.Fatalf("Failed to append: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	running, _ := NewRenderStarted("render-c", "/site", "default", 1)
	if err := Record(ctx, store, running); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}

	projection := NewRenderHistoryProjection(store, 10)
	if err := projection.Rebuild(ctx); err != nil {
		t.Fatalf("Failed to rebuild: %v", err)
	}

	history := projection.GetHistory()
	if len(history) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(history))
	}
	if history[0].RenderID != "render-b" {
		t.Errorf("Expected newest first, got %s", history[0].RenderID)
	}
	if history[0].Written != 1 {
		t.Errorf("Expected 1 written page, got %d", history[0].Written)
	}
	if s, ok := projection.GetRender("render-c"); !ok || s.Status != StatusRunning {
		t.Errorf("Expected render-c running, got %+v", s)
	}
	if projection.LastSyncTime().IsZero() {
		t.Error("Expected last sync time to be set")
	}
}

func TestRenderHistoryProjection_BoundedHistory(t *testing.T) {
	store := newMemoryStore(t)
	projection := NewRenderHistoryProjection(store, 2)

	for _, id := range []string{"r1", "r2", "r3"} {
		start, _ := NewRenderStarted(id, "/site", "default", 0)
		projection.Apply(start)
		done, _ := NewRenderCompleted(id, 0, time.Millisecond)
		projection.Apply(done)
	}

	history := projection.GetHistory()
	if len(history) != 2 {
		t.Fatalf("Expected history bounded to 2, got %d", len(history))
	}
	if history[0].RenderID != "r3" || history[1].RenderID != "r2" {
		t.Errorf("Unexpected history order: %s, %s", history[0].RenderID, history[1].RenderID)
	}
	if _, ok := projection.GetRender("r1"); ok {
		t.Error("Expected r1 to be pruned")
	}
}
