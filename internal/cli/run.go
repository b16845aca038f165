package cli

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/local/pdfpages/internal/imagefilter"
	"github.com/local/pdfpages/internal/logger"
	"github.com/local/pdfpages/internal/metrics"
	"github.com/local/pdfpages/internal/split"
	"github.com/local/pdfpages/internal/store"
)

const (
	PipelineFilter = "filter"
	PipelineSplit  = "split"
)

// StatusStore records run status. *store.RedisStatus implements it.
type StatusStore interface {
	Set(ctx context.Context, runID string, st store.Status) error
	Close() error
}

// Run tracks one command invocation: its id, logger, status record and
// metrics export.
type Run struct {
	ID       string
	Pipeline string
	Logger   zerolog.Logger

	ctx         context.Context
	start       time.Time
	status      StatusStore
	metricsFile string
	meta        map[string]interface{}
}

// RunOptions configures StartRun. A nil Status disables status records and an
// empty MetricsFile disables the textfile export.
type RunOptions struct {
	Pipeline    string
	Status      StatusStore
	MetricsFile string
	Metadata    map[string]interface{}
}

// StartRun assigns a run id and records the processing status.
func StartRun(ctx context.Context, opts RunOptions) *Run {
	metrics.Init()
	id := uuid.NewString()
	r := &Run{
		ID:          id,
		Pipeline:    opts.Pipeline,
		Logger:      logger.With(id, opts.Pipeline),
		ctx:         ctx,
		start:       time.Now(),
		status:      opts.Status,
		metricsFile: opts.MetricsFile,
		meta:        map[string]interface{}{},
	}
	for k, v := range opts.Metadata {
		r.meta[k] = v
	}
	r.setStatus(store.Status{Status: store.StatusProcessing, Message: "started", Start: &r.start})
	return r
}

func (r *Run) setStatus(st store.Status) {
	if r.status == nil {
		return
	}
	st.Metadata = r.meta
	if st.Start == nil {
		st.Start = &r.start
	}
	if err := r.status.Set(r.ctx, r.ID, st); err != nil {
		r.Logger.Warn().Err(err).Msg("failed to update run status")
	}
}

// Progress records percent complete.
func (r *Run) Progress(pct int, msg string) {
	r.setStatus(store.Status{Status: store.StatusProcessing, Progress: pct, Message: msg})
}

// Finish records the outcome, writes metrics and releases the status store.
func (r *Run) Finish(err error, meta map[string]interface{}) {
	for k, v := range meta {
		r.meta[k] = v
	}
	end := time.Now()
	result, st := store.StatusSuccess, store.Status{Status: store.StatusSuccess, Progress: 100, Message: "completed", End: &end}
	if err != nil {
		result = store.StatusFailed
		st = store.Status{Status: store.StatusFailed, Message: err.Error(), End: &end}
	}
	r.setStatus(st)

	metrics.ObserveRun(r.Pipeline, result, end.Sub(r.start))
	if r.metricsFile != "" {
		if werr := metrics.WriteTextfile(r.metricsFile); werr != nil {
			r.Logger.Warn().Err(werr).Str("path", r.metricsFile).Msg("failed to write metrics textfile")
		}
	}
	if r.status != nil {
		_ = r.status.Close()
	}
	ev := r.Logger.Info()
	if err != nil {
		ev = r.Logger.Error().Err(err)
	}
	ev.Str("result", result).Dur("duration", end.Sub(r.start)).Msg("run finished")
}

// FilterObserver fans filter progress out to the bar, metrics and status.
type FilterObserver struct {
	run      *Run
	progress *FilterProgress
	selected int
	done     int
}

func NewFilterObserver(run *Run, progress *FilterProgress) *FilterObserver {
	return &FilterObserver{run: run, progress: progress}
}

func (o *FilterObserver) PagesSelected(pages []int, totalPages int) {
	o.selected = len(pages)
	o.run.meta["total_pages"] = totalPages
	o.run.meta["selected_pages"] = len(pages)
	if o.progress != nil {
		o.progress.PagesSelected(pages, totalPages)
	}
}

func (o *FilterObserver) PageDone(page int, stats imagefilter.Stats) {
	o.done++
	metrics.AddPages(PipelineFilter, 1)
	metrics.ObserveKeptRatio(stats.Ratio())
	if o.progress != nil {
		o.progress.PageDone(page, stats)
	}
	if o.selected > 0 {
		o.run.Progress(o.done*100/o.selected, "filtering pages")
	}
}

// SplitObserver fans part notifications out to the reporter, metrics and status.
type SplitObserver struct {
	run      *Run
	reporter *PartReporter
	parts    int
	written  int
}

func NewSplitObserver(run *Run, reporter *PartReporter, parts int) *SplitObserver {
	return &SplitObserver{run: run, reporter: reporter, parts: parts}
}

func (o *SplitObserver) PartWritten(p split.Part) {
	o.written++
	metrics.IncPartsWritten()
	metrics.AddPages(PipelineSplit, p.Range.Size())
	if o.reporter != nil {
		o.reporter.PartWritten(p)
	}
	if o.parts > 0 {
		o.run.Progress(o.written*100/o.parts, "writing parts")
	}
}
