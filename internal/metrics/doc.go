// Package metrics provides observability hooks for render runs.
//
// Components receive a Recorder through dependency injection and default to NoopRecorder,
// so nothing needs nil checks:
//
//	r := render.New(opts, render.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// PrometheusRecorder registers its collectors on the registry it is given. HTTPHandler
// serves that registry (watch mode) and WriteTextfile exports it for one-shot runs picked
// up by a node_exporter textfile collector.
package metrics
