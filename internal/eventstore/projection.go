package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Render status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RenderSummary is a read model summarizing one render.
type RenderSummary struct {
	RenderID     string            `json:"render_id"`
	Status       string            `json:"status"`
	StartedAt    time.Time         `json:"started_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	Duration     time.Duration     `json:"duration,omitempty"`
	OutputDir    string            `json:"output_dir,omitempty"`
	Theme        string            `json:"theme,omitempty"`
	PageCount    int               `json:"page_count"`
	Written      int               `json:"written"`
	Reason       string            `json:"reason,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Fingerprints map[string]string `json:"fingerprints,omitempty"` // url -> content fingerprint
}

// RenderHistoryProjection maintains an in-memory view of render history,
// reconstructed from events stored in the event store.
type RenderHistoryProjection struct {
	mu       sync.RWMutex
	store    Store
	renders  map[string]*RenderSummary
	history  []*RenderSummary // finished renders, newest first
	maxSize  int
	lastSync time.Time
}

// NewRenderHistoryProjection creates a new projection backed by the given store.
func NewRenderHistoryProjection(store Store, maxHistorySize int) *RenderHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &RenderHistoryProjection{
		store:   store,
		renders: make(map[string]*RenderSummary),
		history: make([]*RenderSummary, 0, maxHistorySize),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from all events in the store.
func (p *RenderHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return ErrProjectionRebuildFailed.Wrap(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.renders = make(map[string]*RenderSummary)
	p.history = make([]*RenderSummary, 0, p.maxSize)

	for _, event := range events {
		p.applyEventLocked(event)
	}

	sort.SliceStable(p.history, func(i, j int) bool {
		return p.history[i].StartedAt.After(p.history[j].StartedAt)
	})
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneLocked()

	p.lastSync = time.Now()
	return nil
}

// Apply processes a single event and updates the projection.
func (p *RenderHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
}

func (p *RenderHistoryProjection) applyEventLocked(event Event) {
	renderID := event.RenderID()
	if renderID == "" {
		return
	}

	summary, exists := p.renders[renderID]
	if !exists {
		summary = &RenderSummary{
			RenderID:  renderID,
			Status:    StatusRunning,
			StartedAt: event.Timestamp(),
		}
		p.renders[renderID] = summary
	}

	switch event.Type() {
	case TypeRenderStarted:
		var payload RenderStarted
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.OutputDir = payload.OutputDir
			summary.Theme = payload.Theme
			summary.PageCount = payload.PageCount
		}
		summary.StartedAt = event.Timestamp()

	case TypePageRendered:
		var payload PageRendered
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Written++
			if summary.Fingerprints == nil {
				summary.Fingerprints = make(map[string]string)
			}
			summary.Fingerprints[payload.URL] = payload.Fingerprint
		}

	case TypeRenderCompleted:
		p.finishLocked(summary, event.Timestamp(), StatusCompleted)
		var payload RenderCompleted
		if err := json.Unmarshal(event.Payload(), &payload); err == nil && payload.DurationMS > 0 {
			summary.Duration = time.Duration(payload.DurationMS) * time.Millisecond
		}

	case TypeRenderFailed:
		p.finishLocked(summary, event.Timestamp(), StatusFailed)
		var payload RenderFailed
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Reason = payload.Reason
			summary.ErrorMessage = payload.Error
		}
	}
}

func (p *RenderHistoryProjection) finishLocked(summary *RenderSummary, at time.Time, status string) {
	summary.CompletedAt = &at
	summary.Duration = at.Sub(summary.StartedAt)
	summary.Status = status

	for _, h := range p.history {
		if h.RenderID == summary.RenderID {
			return
		}
	}
	p.history = append([]*RenderSummary{summary}, p.history...)
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneLocked()
}

// pruneLocked drops finished renders that fell out of the bounded history.
func (p *RenderHistoryProjection) pruneLocked() {
	keep := make(map[string]struct{}, len(p.history))
	for _, h := range p.history {
		keep[h.RenderID] = struct{}{}
	}
	for id, summary := range p.renders {
		if summary.Status == StatusRunning {
			continue
		}
		if _, ok := keep[id]; !ok {
			delete(p.renders, id)
		}
	}
}

// GetHistory returns finished renders, newest first.
func (p *RenderHistoryProjection) GetHistory() []*RenderSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]*RenderSummary, len(p.history))
	copy(result, p.history)
	return result
}

// GetRender returns a copy of the summary for one render.
func (p *RenderHistoryProjection) GetRender(renderID string) (*RenderSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	summary, exists := p.renders[renderID]
	if !exists {
		return nil, false
	}
	cp := *summary
	return &cp, true
}

// GetLastCompleted returns the most recently finished render, or nil.
func (p *RenderHistoryProjection) GetLastCompleted() *RenderSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.history) == 0 {
		return nil
	}
	cp := *p.history[0]
	return &cp
}

// LastSyncTime returns when the projection was last rebuilt.
func (p *RenderHistoryProjection) LastSyncTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSync
}
