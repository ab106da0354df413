package fixup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/meddot/meddot-backend/pkg/logger"
	"github.com/meddot/meddot-backend/pkg/metrics"
)

type RunnerParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Metrics  *metrics.StepMetrics
	// Lock is optional. Without it runs are not coordinated.
	Lock   Lock
	DryRun bool
}

// Runner executes every registered step once, in order. A failing step never
// stops the steps after it.
type Runner struct {
	logg     *logger.Logger
	registry *Registry
	metrics  *metrics.StepMetrics
	lock     Lock
	dryRun   bool
	now      func() time.Time
}

func NewRunner(params RunnerParams) (*Runner, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	return &Runner{
		logg:     params.Logger,
		registry: registry,
		metrics:  params.Metrics,
		lock:     params.Lock,
		dryRun:   params.DryRun,
		now:      time.Now,
	}, nil
}

type StepResult struct {
	Step     string
	Err      error
	Duration time.Duration
	Skipped  bool
}

type Report struct {
	Results []StepResult
	// Locked is set when another run held the lock and nothing executed.
	Locked bool
}

func (r Report) Failed() int {
	failed := 0
	for _, res := range r.Results {
		if res.Err != nil {
			failed++
		}
	}
	return failed
}

// Err combines every step failure, or returns nil when all steps passed.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Step, res.Err))
		}
	}
	return multierr.Combine(errs...)
}

func (r *Runner) Run(ctx context.Context) Report {
	ctx = r.logg.WithField(ctx, "event", "fixup.run")

	if r.lock != nil && !r.dryRun {
		locked, err := r.lock.Acquire(ctx)
		switch {
		case err != nil:
			r.logg.Error(ctx, "fixup lock unavailable; continuing without it", err)
		case !locked:
			r.logg.Warn(ctx, "another fixup run holds the lock; skipping")
			return Report{Locked: true}
		default:
			defer func() {
				if relErr := r.lock.Release(ctx); relErr != nil {
					r.logg.Error(ctx, "failed to release fixup lock", relErr)
				}
			}()
		}
	}

	steps := r.registry.Steps()
	report := Report{Results: make([]StepResult, 0, len(steps))}
	r.logg.Info(r.logg.WithFields(ctx, map[string]any{"steps": len(steps), "dry_run": r.dryRun}), "fixup starting")
	for _, step := range steps {
		report.Results = append(report.Results, r.runStep(ctx, step))
	}

	summary := r.logg.WithFields(ctx, map[string]any{
		"steps":  len(report.Results),
		"failed": report.Failed(),
	})
	if err := report.Err(); err != nil {
		r.logg.Warn(r.logg.WithField(summary, "errors", err.Error()), "fixup finished with failures")
	} else {
		r.logg.Info(summary, "fixup finished")
	}
	return report
}

func (r *Runner) runStep(ctx context.Context, step Step) (res StepResult) {
	res.Step = step.Name()
	stepCtx := r.logg.WithField(ctx, "step", res.Step)

	if r.dryRun {
		res.Skipped = true
		r.logg.Info(stepCtx, "step planned")
		return res
	}

	defer func() {
		if rec := recover(); rec != nil {
			res.Err = fmt.Errorf("panic: %v", rec)
			r.logg.Error(stepCtx, "step failed", res.Err)
			r.metrics.IncFailure(res.Step)
		}
	}()

	r.logg.Info(stepCtx, "step start")
	start := r.now()
	err := step.Run(stepCtx)
	res.Duration = r.now().Sub(start)
	res.Err = err
	r.metrics.ObserveDuration(res.Step, res.Duration)

	stepCtx = r.logg.WithField(stepCtx, "duration_ms", res.Duration.Milliseconds())
	if err != nil {
		r.logg.Error(stepCtx, "step failed", err)
		r.metrics.IncFailure(res.Step)
		return res
	}
	r.logg.Info(stepCtx, "step succeeded")
	r.metrics.IncSuccess(res.Step)
	return res
}
