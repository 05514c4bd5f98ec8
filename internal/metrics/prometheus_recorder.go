package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	renderDuration prom.Histogram
	pageDuration   *prom.HistogramVec
	pageResults    *prom.CounterVec
	renderOutcomes *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		renderDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docrender",
			Name:      "render_duration_seconds",
			Help:      "Total duration of a render run",
			Buckets:   prom.DefBuckets,
		}),
		pageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docrender",
			Name:      "page_duration_seconds",
			Help:      "Duration of rendering a single page by template",
			Buckets:   prom.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"template"}),
		pageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docrender",
			Name:      "page_results_total",
			Help:      "Page results by outcome",
		}, []string{"result"}),
		renderOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docrender",
			Name:      "render_outcomes_total",
			Help:      "Render runs by final outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.renderDuration, pr.pageDuration, pr.pageResults, pr.renderOutcomes)
	return pr
}

func (p *PrometheusRecorder) ObserveRenderDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.renderDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePageDuration(template string, d time.Duration) {
	if p == nil {
		return
	}
	p.pageDuration.WithLabelValues(template).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(result PageResult) {
	if p == nil {
		return
	}
	p.pageResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncRenderOutcome(outcome RenderOutcome) {
	if p == nil {
		return
	}
	p.renderOutcomes.WithLabelValues(string(outcome)).Inc()
}
