package metrics

import (
	"testing"
	"time"
)

type testRecorder struct {
	renders  int
	pages    map[string]int
	results  map[PageResult]int
	outcomes map[RenderOutcome]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{pages: map[string]int{}, results: map[PageResult]int{}, outcomes: map[RenderOutcome]int{}}
}

func (t *testRecorder) ObserveRenderDuration(time.Duration)              { t.renders++ }
func (t *testRecorder) ObservePageDuration(tpl string, _ time.Duration) { t.pages[tpl]++ }
func (t *testRecorder) IncPageResult(r PageResult)                      { t.results[r]++ }
func (t *testRecorder) IncRenderOutcome(o RenderOutcome)                { t.outcomes[o]++ }

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
	_ Recorder = (*testRecorder)(nil)
)

func TestRecorderInterfaceUsage(t *testing.T) {
	tr := newTestRecorder()
	var r Recorder = tr
	r.ObserveRenderDuration(10 * time.Millisecond)
	r.ObservePageDuration("templates/document.tmpl", time.Millisecond)
	r.IncPageResult(PageWritten)
	r.IncRenderOutcome(OutcomePartial)

	if tr.renders != 1 || tr.pages["templates/document.tmpl"] != 1 {
		t.Fatalf("unexpected duration counts: %+v", tr)
	}
	if tr.results[PageWritten] != 1 || tr.outcomes[OutcomePartial] != 1 {
		t.Fatalf("unexpected result counts: %+v", tr)
	}

	var noop NoopRecorder
	noop.ObserveRenderDuration(time.Second)
	noop.IncRenderOutcome(OutcomeSuccess)
}
