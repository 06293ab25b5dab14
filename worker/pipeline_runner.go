package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"modelwire/internal/pipeline"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// PipelineRun is satisfied by *pipeline.Pipeline.
type PipelineRun interface {
	Run(ctx context.Context, date string, window time.Duration) (pipeline.Result, error)
}

// PipelineRunner triggers the daily pipeline on a cron schedule. A tick that
// fires while a run is still in progress is skipped.
type PipelineRunner struct {
	Pipeline   PipelineRun
	Schedule   string // standard 5-field cron expression
	Location   *time.Location
	Window     time.Duration
	RunOnStart bool

	running atomic.Bool
	runs    atomic.Int64
}

func (w *PipelineRunner) Name() string { return "pipeline-runner" }

func (w *PipelineRunner) Start(ctx context.Context) error {
	if w.Pipeline == nil {
		return errors.New("pipeline runner: no pipeline")
	}
	loc := w.Location
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(w.Schedule, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", w.Schedule, err)
	}

	if w.RunOnStart {
		go w.RunOnce(ctx)
	}
	c.Start()
	slog.Info("pipeline runner: scheduled", "cron", w.Schedule, "timezone", loc.String())

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	return nil
}

// RunOnce runs the pipeline for today unless a run is already in progress.
// It reports whether a run was started.
func (w *PipelineRunner) RunOnce(ctx context.Context) bool {
	if !w.running.CompareAndSwap(false, true) {
		slog.Warn("pipeline runner: previous run still in progress, skipping")
		return false
	}
	defer w.running.Store(false)
	w.runs.Add(1)

	runID := uuid.NewString()
	start := time.Now()
	res, err := w.Pipeline.Run(ctx, "", w.Window)
	if err != nil {
		slog.Error("pipeline runner: run failed", "run_id", runID, "error", err)
		return true
	}
	slog.Info("pipeline runner: run finished",
		"run_id", runID,
		"date", res.Date,
		"items", len(res.Record.Items),
		"notable", len(res.Record.Notable),
		"method", res.Method,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return true
}

// Runs returns how many runs have started.
func (w *PipelineRunner) Runs() int64 { return w.runs.Load() }
