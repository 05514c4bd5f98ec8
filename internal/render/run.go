package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"git.home.luguber.info/inful/docrender/internal/events"
	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
	"git.home.luguber.info/inful/docrender/internal/logfields"
	"git.home.luguber.info/inful/docrender/internal/metrics"
	"git.home.luguber.info/inful/docrender/internal/observability"
	"github.com/google/uuid"
)

// ErrAbortedBeforeStart wraps theme and output-directory failures. Nothing was dispatched
// or written when it is returned.
var ErrAbortedBeforeStart = errors.New("render aborted before start")

// ErrTooManyPageFailures is returned once more pages failed than Config.MaxPageFailures.
var ErrTooManyPageFailures = ferrors.RenderError("too many page failures").Build()

// FailureKind classifies a page-scoped failure.
type FailureKind string

const (
	FailureListener        FailureKind = "listener"
	FailureTemplateMissing FailureKind = "template_missing"
	FailureTemplateCompile FailureKind = "template_compile"
	FailureTemplateLoad    FailureKind = "template_load"
	FailureTemplateExec    FailureKind = "template_exec"
	FailureUnsafePath      FailureKind = "unsafe_path"
	FailureWrite           FailureKind = "write"
)

// ErrOutsideOutput is recorded for pages whose file would land outside the output directory.
var ErrOutsideOutput = ferrors.ValidationError("page file is outside the output directory").Build()

// PageFailure records one page that could not be rendered.
type PageFailure struct {
	URL  string
	Kind FailureKind
	Err  error
}

// PageError is returned by RenderDocument for page-scoped failures.
type PageError struct {
	Kind FailureKind
	Err  error
}

func (e *PageError) Error() string { return fmt.Sprintf("%s: %v", e.Kind, e.Err) }

func (e *PageError) Unwrap() error { return e.Err }

// Report summarizes one Render call.
type Report struct {
	RenderID  string
	Written   []string
	Skipped   []string
	Failed    []PageFailure
	Cancelled bool
	Duration  time.Duration
}

// Outcome classifies the report for metrics.
func (r *Report) Outcome() metrics.RenderOutcome {
	switch {
	case r.Cancelled:
		return metrics.OutcomeCancelled
	case len(r.Failed) > 0:
		return metrics.OutcomePartial
	default:
		return metrics.OutcomeSuccess
	}
}

// Render renders project into outputDirectory.
//
// Theme and directory failures return an error wrapping ErrAbortedBeforeStart and a nil
// report. A BeginRender cancellation returns a cancelled report without pages or EndRender.
// Page failures are collected in the report unless they exceed MaxPageFailures.
func (r *Renderer) Render(ctx context.Context, project any, outputDirectory string) (*Report, error) {
	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	start := time.Now()
	evt, err := r.prepare(project, outputDirectory)
	if err != nil {
		r.recorder.IncRenderOutcome(metrics.OutcomeAborted)
		return nil, fmt.Errorf("%w: %w", ErrAbortedBeforeStart, err)
	}

	report := &Report{RenderID: evt.ID}
	ctx = observability.WithRenderID(ctx, evt.ID)
	log := observability.Logger(ctx, r.logger).With(logfields.OutputDir(outputDirectory))

	finish := func(outcome metrics.RenderOutcome) {
		report.Duration = time.Since(start)
		r.recorder.ObserveRenderDuration(report.Duration)
		r.recorder.IncRenderOutcome(outcome)
	}

	if err := r.renderEvents.Dispatch(ctx, BeginRender, evt); err != nil {
		finish(metrics.OutcomeAborted)
		return report, r.dispatchError(ctx, report, BeginRender, err)
	}
	if evt.Cancelled() {
		log.Info("Render cancelled by a beginRender listener")
		report.Cancelled = true
		finish(metrics.OutcomeCancelled)
		return report, nil
	}

	r.progress.Start(len(evt.URLs))
	for _, m := range evt.URLs {
		if ctx.Err() != nil {
			break
		}
		page := evt.NewPageEvent(m)
		pageStart := time.Now()
		written, err := r.RenderDocument(ctx, page)
		r.recorder.ObservePageDuration(m.TemplateName, time.Since(pageStart))
		r.progress.Tick(m.URL)

		var pe *PageError
		switch {
		case err == nil && written:
			report.Written = append(report.Written, page.URL)
			r.recorder.IncPageResult(metrics.PageWritten)
		case err == nil:
			report.Skipped = append(report.Skipped, page.URL)
			r.recorder.IncPageResult(metrics.PageCancelled)
		case errors.As(err, &pe):
			report.Failed = append(report.Failed, PageFailure{URL: page.URL, Kind: pe.Kind, Err: pe.Err})
			r.recorder.IncPageResult(metrics.PageFailed)
			if limit := r.cfg.MaxPageFailures; limit > 0 && len(report.Failed) > limit {
				r.progress.Done()
				finish(metrics.OutcomeAborted)
				log.Error("Aborting render", logfields.Pages(len(report.Failed)), logfields.Error(err))
				return report, ErrTooManyPageFailures.Wrap(err, "failed", len(report.Failed), "limit", limit)
			}
		default:
			// context done; the next iteration stops the loop
		}
	}
	r.progress.Done()

	if err := ctx.Err(); err != nil {
		report.Cancelled = true
		finish(metrics.OutcomeCancelled)
		return report, err
	}

	evt.Written = slices.Clone(report.Written)
	if err := r.renderEvents.Dispatch(ctx, EndRender, evt); err != nil {
		finish(metrics.OutcomeAborted)
		return report, r.dispatchError(ctx, report, EndRender, err)
	}

	outcome := report.Outcome()
	finish(outcome)
	log.Info("Render finished",
		logfields.Pages(len(report.Written)),
		logfields.DurationMS(float64(report.Duration.Milliseconds())),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed))
	return report, nil
}

func (r *Renderer) prepare(project any, outputDirectory string) (*RenderEvent, error) {
	t, err := r.PrepareTheme()
	if err != nil {
		return nil, err
	}
	urls, err := t.URLs(project)
	if err != nil {
		r.logger.Error("Theme could not map the project", logfields.Theme(r.cfg.Theme), logfields.Error(err))
		return nil, ferrors.WrapError(err, ferrors.CategoryTheme, "theme could not map project").Fatal().Build()
	}
	if err := r.PrepareOutputDirectory(outputDirectory); err != nil {
		return nil, err
	}
	return &RenderEvent{
		ID:              uuid.NewString(),
		OutputDirectory: outputDirectory,
		Project:         project,
		Settings:        r.Settings(),
		URLs:            urls,
	}, nil
}

func (r *Renderer) dispatchError(ctx context.Context, report *Report, name events.Name, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		report.Cancelled = true
		return err
	}
	return ferrors.WrapError(err, ferrors.CategoryPlugin, "render listener failed").
		Fatal().
		WithContext("event", string(name)).
		WithContext("render_id", report.RenderID).
		Build()
}

// RenderDocument renders one page. It returns false without error when a listener cancelled
// the page, and a *PageError for page-scoped failures.
func (r *Renderer) RenderDocument(ctx context.Context, page *PageEvent) (bool, error) {
	ctx = observability.WithURL(observability.WithRenderID(ctx, page.RenderID), page.URL)
	log := observability.Logger(ctx, r.logger).With(logfields.Template(page.TemplateName))

	if err := r.checkFilename(log, page); err != nil {
		return false, err
	}
	if err := r.pageEvents.Dispatch(ctx, BeginPage, page); err != nil {
		return false, r.pageError(ctx, FailureListener, err)
	}
	if page.Cancelled() {
		log.Debug("Page cancelled by a beginPage listener")
		return false, nil
	}

	if page.Template == nil {
		tmpl, err := r.Template(r.templateKey(page.TemplateName))
		if err != nil {
			return false, &PageError{Kind: templateFailureKind(err), Err: err}
		}
		page.Template = tmpl
	}

	contents, err := page.Template.Execute(page)
	if err != nil {
		log.Error("Template execution failed", logfields.Error(err))
		return false, &PageError{Kind: FailureTemplateExec, Err: err}
	}
	page.Contents = contents

	if err := r.pageEvents.Dispatch(ctx, EndPage, page); err != nil {
		return false, r.pageError(ctx, FailureListener, err)
	}
	if page.Cancelled() {
		log.Debug("Page cancelled by an endPage listener")
		return false, nil
	}

	// listeners may have moved the target
	if err := r.checkFilename(log, page); err != nil {
		return false, err
	}
	if err := writeFile(page.Filename, page.Contents); err != nil {
		log.Error("Could not write page", logfields.File(page.Filename), logfields.Error(err))
		return false, &PageError{Kind: FailureWrite, Err: err}
	}
	return true, nil
}

func (r *Renderer) checkFilename(log *slog.Logger, page *PageEvent) error {
	if page.insideRoot() {
		return nil
	}
	log.Error("Refusing to write outside the output directory",
		logfields.File(page.Filename), logfields.OutputDir(page.Root))
	return &PageError{Kind: FailureUnsafePath, Err: ErrOutsideOutput.WithContext("file", page.Filename)}
}

func templateFailureKind(err error) FailureKind {
	switch {
	case errors.Is(err, ErrTemplateNotFound):
		return FailureTemplateMissing
	case errors.Is(err, ErrTemplateCompile):
		return FailureTemplateCompile
	default:
		return FailureTemplateLoad
	}
}

func (r *Renderer) pageError(ctx context.Context, kind FailureKind, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}
	observability.Logger(ctx, r.logger).Error("Page listener failed", logfields.Error(err))
	return &PageError{Kind: kind, Err: err}
}

func writeFile(filename, contents string) error {
	// #nosec G301 -- generated documentation is meant to be world-readable.
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	// #nosec G306 -- see above.
	return os.WriteFile(filename, []byte(contents), 0o644)
}
