package eventstore

import (
	"encoding/json"
	"time"
)

// Event type names.
const (
	TypeRenderStarted   = "RenderStarted"
	TypePageRendered    = "PageRendered"
	TypeRenderCompleted = "RenderCompleted"
	TypeRenderFailed    = "RenderFailed"
)

// RenderStarted is recorded when a render dispatches BeginRender.
type RenderStarted struct {
	BaseEvent
	OutputDir string `json:"output_dir"`
	Theme     string `json:"theme"`
	PageCount int    `json:"page_count"`
}

// NewRenderStarted creates a RenderStarted event.
func NewRenderStarted(renderID, outputDir, theme string, pageCount int) (*RenderStarted, error) {
	e := &RenderStarted{OutputDir: outputDir, Theme: theme, PageCount: pageCount}
	if err := e.init(renderID, TypeRenderStarted, e); err != nil {
		return nil, err
	}
	return e, nil
}

// PageRendered is recorded for each page that reached EndPage.
type PageRendered struct {
	BaseEvent
	URL         string `json:"url"`
	Template    string `json:"template"`
	Fingerprint string `json:"fingerprint"`
	Bytes       int    `json:"bytes"`
}

// NewPageRendered creates a PageRendered event.
func NewPageRendered(renderID, url, template, fingerprint string, size int) (*PageRendered, error) {
	e := &PageRendered{URL: url, Template: template, Fingerprint: fingerprint, Bytes: size}
	if err := e.init(renderID, TypePageRendered, e); err != nil {
		return nil, err
	}
	return e, nil
}

// RenderCompleted is recorded when a render dispatches EndRender.
type RenderCompleted struct {
	BaseEvent
	Pages      int   `json:"pages"`
	DurationMS int64 `json:"duration_ms"`
}

// NewRenderCompleted creates a RenderCompleted event.
func NewRenderCompleted(renderID string, pages int, duration time.Duration) (*RenderCompleted, error) {
	e := &RenderCompleted{Pages: pages, DurationMS: duration.Milliseconds()}
	if err := e.init(renderID, TypeRenderCompleted, e); err != nil {
		return nil, err
	}
	return e, nil
}

// RenderFailed is recorded when a render ends without EndRender.
type RenderFailed struct {
	BaseEvent
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

// NewRenderFailed creates a RenderFailed event.
func NewRenderFailed(renderID, reason, errorMsg string) (*RenderFailed, error) {
	e := &RenderFailed{Reason: reason, Error: errorMsg}
	if err := e.init(renderID, TypeRenderFailed, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *BaseEvent) init(renderID, eventType string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return ErrMarshalPayloadFailed.Wrap(err, "render_id", renderID, "event_type", eventType)
	}
	e.EventRenderID = renderID
	e.EventType = eventType
	e.EventTimestamp = time.Now()
	e.EventPayload = payload
	return nil
}
