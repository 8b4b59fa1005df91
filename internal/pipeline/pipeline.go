package pipeline

import (
	"context"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/htmlgrader/internal/checks"
	"github.com/nao1215/htmlgrader/internal/model"
	"github.com/nao1215/htmlgrader/internal/source"
)

// State carries the values produced by the steps of one check.
// The parsed document lives here only for the duration of the run.
type State struct {
	// Checks is the selector list as loaded from the checks file.
	Checks checks.List

	// Document is the raw document with its origin metadata.
	Document *source.Document

	// Parsed is the DOM built from Document.
	Parsed *goquery.Document

	// Report holds the selector results.
	Report *model.Report

	// Run is the report plus metadata, ready for output and history.
	Run *model.Run

	// Steps lists the names of the steps that completed.
	Steps []string
}

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Do executes the step. A returned error stops the pipeline.
	Do(ctx context.Context, state *State) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
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
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence and returns the first error.
// Cancellation is checked between steps; steps that block honor ctx
// themselves.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Debug("pipeline cancelled",
				"step", step.Name(),
				"reason", err,
			)
			return err
		}

		p.logger.Debug("executing step", "step", step.Name())

		if err := step.Do(ctx, state); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"error", err,
			)
			return err
		}
		state.Steps = append(state.Steps, step.Name())
	}
	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
