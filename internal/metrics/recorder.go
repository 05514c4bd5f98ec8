package metrics

import "time"

// PageResult enumerates per-page outcomes for counters.
type PageResult string

const (
	PageWritten   PageResult = "written"
	PageCancelled PageResult = "cancelled"
	PageFailed    PageResult = "failed"
)

// RenderOutcome enumerates whole-render outcomes.
type RenderOutcome string

const (
	OutcomeSuccess   RenderOutcome = "success"
	OutcomePartial   RenderOutcome = "partial"
	OutcomeCancelled RenderOutcome = "cancelled"
	OutcomeAborted   RenderOutcome = "aborted"
)

// Recorder defines observability hooks for render and page metrics.
type Recorder interface {
	ObserveRenderDuration(d time.Duration)
	ObservePageDuration(template string, d time.Duration)
	IncPageResult(result PageResult)
	IncRenderOutcome(outcome RenderOutcome)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRenderDuration(time.Duration)       {}
func (NoopRecorder) ObservePageDuration(string, time.Duration) {}
func (NoopRecorder) IncPageResult(PageResult)                  {}
func (NoopRecorder) IncRenderOutcome(RenderOutcome)            {}
