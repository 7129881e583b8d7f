// Package smoke runs an ordered list of MealMax API checks and stops at the
// first one that fails.
package smoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mealmax/mealmax-smoke/internal/client"
	"github.com/mealmax/mealmax-smoke/internal/config"
)

// Step is one named check. Run must issue at most one HTTP call.
type Step struct {
	Name string
	Run  func(ctx context.Context, s *Session) error
}

// Observer is notified after every executed step.
type Observer interface {
	ObserveStep(step string, passed bool, d time.Duration)
}

// StepError names the step that stopped the run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

type StepResult struct {
	Name     string
	Passed   bool
	Duration time.Duration
	Err      error
}

// Result is the outcome of a run. Steps holds only the steps that executed;
// Skipped lists the ones the failure prevented.
type Result struct {
	RunID    string
	BaseURL  string
	Started  time.Time
	Finished time.Time
	Steps    []StepResult
	Skipped  []string
	Failure  *StepError
}

func (r Result) Passed() bool { return r.Failure == nil }

func (r Result) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}

type Option func(*Runner)

func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observers = append(r.observers, o) }
}

func WithRunID(id string) Option {
	return func(r *Runner) { r.runID = id }
}

type Runner struct {
	cfg       config.RunConfig
	client    *client.Client
	stdout    io.Writer
	stderr    io.Writer
	observers []Observer
	runID     string
}

func NewRunner(cfg config.RunConfig, c *client.Client, stdout, stderr io.Writer, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		client: c,
		stdout: stdout,
		stderr: stderr,
		runID:  uuid.NewString(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes steps in order. The first failing step ends the run; its
// diagnostic goes to stderr and the remaining steps are reported as skipped.
func (r *Runner) Run(ctx context.Context, steps []Step) Result {
	log := slog.With("runId", r.runID)
	sess := newSession(r.cfg, r.client, r.stdout)
	res := Result{RunID: r.runID, BaseURL: r.cfg.BaseURL, Started: time.Now()}

	for i, step := range steps {
		start := time.Now()
		log.Debug("step start", "step", step.Name, "index", i)

		err := ctx.Err()
		if err == nil {
			err = step.Run(ctx, sess)
		}
		d := time.Since(start)

		res.Steps = append(res.Steps, StepResult{Name: step.Name, Passed: err == nil, Duration: d, Err: err})
		for _, o := range r.observers {
			o.ObserveStep(step.Name, err == nil, d)
		}

		if err != nil {
			res.Failure = &StepError{Step: step.Name, Err: err}
			for _, rest := range steps[i+1:] {
				res.Skipped = append(res.Skipped, rest.Name)
			}
			r.diagnose(res.Failure)
			log.Debug("step failed", "step", step.Name, "ms", d.Milliseconds(), "err", err)
			break
		}
		_, _ = fmt.Fprintf(r.stdout, "PASS  %s\n", step.Name)
		log.Debug("step passed", "step", step.Name, "ms", d.Milliseconds())
	}

	res.Finished = time.Now()
	if res.Passed() {
		_, _ = fmt.Fprintf(r.stdout, "All %d smoke checks passed.\n", len(res.Steps))
	}
	return res
}

func (r *Runner) diagnose(f *StepError) {
	_, _ = fmt.Fprintf(r.stderr, "FAIL  %s: %v\n", f.Step, f.Err)

	var re *ResponseError
	if errors.As(f.Err, &re) && len(re.Body) > 0 {
		_, _ = fmt.Fprintf(r.stderr, "Response (HTTP %d): %s\n", re.StatusCode, re.Body)
	}

	var te *client.TransportError
	if errors.As(f.Err, &te) && !errors.Is(f.Err, context.Canceled) {
		_, _ = fmt.Fprintf(r.stderr, "Is the MealMax service reachable at %s?\n", r.cfg.BaseURL)
	}
}
