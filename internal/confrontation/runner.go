package confrontation

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Timing is the outcome of one contender on one scenario.
type Timing struct {
	Contender string        `json:"contender"`
	Supported bool          `json:"supported"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// Result holds every contender's timing for a scenario.
type Result struct {
	Scenario string   `json:"scenario"`
	Title    string   `json:"title"`
	Timings  []Timing `json:"timings"`
}

// Round is a full pass over the scenarios with a fixed iteration count.
type Round struct {
	Iterations int      `json:"iterations"`
	Results    []Result `json:"results"`
}

// Report is the outcome of a run.
type Report struct {
	Rounds []Round `json:"rounds"`
}

// Runner times scenarios for each configured iteration count.
type Runner struct {
	cfg       *Config
	logger    *slog.Logger
	scenarios []Scenario
	now       func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger used for progress messages.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithScenarios replaces the default scenarios.
func WithScenarios(scenarios ...Scenario) RunnerOption {
	return func(r *Runner) {
		r.scenarios = scenarios
	}
}

// WithClock replaces time.Now for measurements.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner creates a Runner. A nil cfg uses DefaultConfig.
func NewRunner(cfg *Config, opts ...RunnerOption) *Runner {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	r := &Runner{
		cfg:       cfg,
		logger:    slog.Default(),
		scenarios: Scenarios(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the warm up, when enabled, and then one round per iteration
// count. It stops at the first failing bench or when ctx is done.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	if r.cfg.Warmup {
		r.logger.Info("warming up")
		if _, err := r.round(ctx, 1); err != nil {
			return nil, err
		}
	}

	report := &Report{}
	for _, n := range r.cfg.Iterations {
		r.logger.Info("running round", "iterations", n)
		round, err := r.round(ctx, n)
		if err != nil {
			return nil, err
		}
		report.Rounds = append(report.Rounds, *round)
	}

	return report, nil
}

func (r *Runner) round(ctx context.Context, n int) (*Round, error) {
	round := &Round{Iterations: n}
	for _, s := range r.scenarios {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := Result{Scenario: s.Name, Title: s.Title}
		for _, contender := range Contenders {
			bench, ok := s.Benches[contender]
			if !ok || bench == nil {
				result.Timings = append(result.Timings, Timing{Contender: contender})
				continue
			}

			start := r.now()
			if err := bench(n); err != nil {
				return nil, fmt.Errorf("%s/%s with %d iterations: %w", s.Name, contender, n, err)
			}
			elapsed := r.now().Sub(start)

			r.logger.Debug("bench finished",
				"scenario", s.Name,
				"contender", contender,
				"iterations", n,
				"elapsed", elapsed,
			)
			result.Timings = append(result.Timings, Timing{
				Contender: contender,
				Supported: true,
				Elapsed:   elapsed,
			})
		}
		round.Results = append(round.Results, result)
	}

	return round, nil
}
