package pipeline

import (
	"context"
	"log/slog"
)

// Step is one reconnaissance technique in the fixed execution order.
// Steps receive the shared state and append their findings to it.
//
// Design decision: an interface rather than function types, because
// steps carry configuration and collaborators, and Name() gives the
// runner something meaningful to log per step.
type Step interface {
	// Do executes the technique. A returned error means the step failed
	// as a whole; expected-empty outcomes (service unreachable, no
	// results) are absorbed inside the step and return nil.
	Do(ctx context.Context, state *State) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs steps in sequence against one execution's state.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError keeps later techniques running after one fails.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps the pipeline running after a step fails.
//
// Design decision: scans default to continuing, because the techniques
// are independent: a dead certificate-transparency service should not
// cost the crawl results. The flag exists so tests and callers that
// need fail-fast behavior can have it.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a Pipeline. Steps are added with AddStep in execution
// order.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence. Cancellation is checked between
// steps; individual steps handle their own timeouts.
//
// Returns the first step error when continueOnError is false, or nil
// once every step has run (failures are logged).
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("running step", "step", step.Name(), "target", state.Execution.Target)

		if err := step.Do(ctx, state); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"target", state.Execution.Target,
				"reason", err,
			)
			if !p.continueOnError {
				return err
			}
		}
	}
	return nil
}
