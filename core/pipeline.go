package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/santiagomed/modkit/logger"
)

// Pipeline runs a statically assembled set of steps for one generation
// domain: sort by phase, execute sequentially, fold the results.
//
// A failed step aborts the run. Files already written by earlier steps stay
// on disk; rerunning the pipeline is the recovery path since every step is
// idempotent per path.
type Pipeline[P any] struct {
	steps           []Step[P]
	requireScaffold bool
	validate        func(P) error
	publisher       StepPublisher
	logger          logger.Logger
}

type Option[P any] func(*Pipeline[P])

// RequireScaffold makes a run without exactly one Scaffold result fail with
// ErrConfiguration.
func RequireScaffold[P any]() Option[P] {
	return func(p *Pipeline[P]) { p.requireScaffold = true }
}

// WithValidator installs a precondition check that runs before any step.
func WithValidator[P any](fn func(P) error) Option[P] {
	return func(p *Pipeline[P]) { p.validate = fn }
}

func WithPublisher[P any](pub StepPublisher) Option[P] {
	return func(p *Pipeline[P]) {
		if pub != nil {
			p.publisher = pub
		}
	}
}

func WithLogger[P any](l logger.Logger) Option[P] {
	return func(p *Pipeline[P]) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline orders steps by phase, then by ID, so the execution order does
// not depend on the order steps were supplied in.
func NewPipeline[P any](steps []Step[P], opts ...Option[P]) *Pipeline[P] {
	sorted := make([]Step[P], len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Phase() != sorted[j].Phase() {
			return sorted[i].Phase() < sorted[j].Phase()
		}
		return sorted[i].ID() < sorted[j].ID()
	})

	p := &Pipeline[P]{
		steps:     sorted,
		publisher: &DefaultStepPublisher{},
		logger:    logger.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Steps returns the steps in execution order.
func (p *Pipeline[P]) Steps() []Step[P] {
	out := make([]Step[P], len(p.steps))
	copy(out, p.steps)
	return out
}

// Run executes every step and returns the folded result, or the first error.
// No partial result accompanies an error.
func (p *Pipeline[P]) Run(ctx context.Context, params P) (*GenerationResult, error) {
	if p.validate != nil {
		if err := p.validate(params); err != nil {
			p.logger.Error(fmt.Sprintf("Validation failed: %v", err))
			return nil, err
		}
	}

	p.logger.Info("Starting pipeline execution")
	acc := &accumulator{}
	for i, step := range p.steps {
		ev := StepEvent{ID: step.ID(), Phase: step.Phase(), Index: i, Total: len(p.steps)}
		if err := ctx.Err(); err != nil {
			p.logger.Info("Pipeline execution cancelled")
			return nil, err
		}

		p.logger.Debug(fmt.Sprintf("Executing step %d/%d: %s (%s)", i+1, len(p.steps), ev.ID, ev.Phase))
		startTime := time.Now()
		res := step.Execute(ctx, params)
		if err := acc.add(ev, res); err != nil {
			p.logger.Error(fmt.Sprintf("Error executing step %s: %v", ev.ID, err))
			p.publisher.Error(ev, err)
			return nil, err
		}
		p.logger.Info(fmt.Sprintf("Step %s completed in %v", ev.ID, time.Since(startTime)))
		p.publisher.PublishStep(ev)
	}

	if p.requireScaffold && acc.scaffold == nil {
		err := ConfigurationErrorf("no step produced a scaffold result")
		p.logger.Error(err.Error())
		return nil, err
	}

	p.logger.Info("Pipeline execution completed")
	return acc.result(), nil
}

type accumulator struct {
	scaffold   *ScaffoldOutput
	settings   bool
	buildLogic bool
	messages   []string
}

// add folds one step result. A Failure or a contract violation stops the run.
func (a *accumulator) add(ev StepEvent, res StepResult) error {
	switch r := res.(type) {
	case Failure:
		err := r.Err
		if err == nil {
			err = errors.New("step reported failure without an error")
		}
		return &StepError{StepID: ev.ID, Phase: ev.Phase, Err: err}
	case Scaffold:
		if a.scaffold != nil {
			return ConfigurationErrorf("step %s produced a second scaffold result", ev.ID)
		}
		out := r.Output
		a.scaffold = &out
	case Settings:
		a.settings = a.settings || r.Updated
		a.note(r.Message)
	case BuildLogic:
		a.buildLogic = a.buildLogic || r.Updated
		a.note(r.Message)
	case Success:
		a.note(r.Message)
	case nil:
		return ConfigurationErrorf("step %s returned no result", ev.ID)
	default:
		return ConfigurationErrorf("step %s returned unknown result %T", ev.ID, res)
	}
	return nil
}

func (a *accumulator) note(msg string) {
	if strings.TrimSpace(msg) != "" {
		a.messages = append(a.messages, msg)
	}
}

func (a *accumulator) result() *GenerationResult {
	r := &GenerationResult{
		SettingsUpdated:   a.settings,
		BuildLogicUpdated: a.buildLogic,
	}
	msgs := a.messages
	if a.scaffold != nil {
		r.Created = append([]string(nil), a.scaffold.Created...)
		r.Skipped = append([]string(nil), a.scaffold.Skipped...)
		if strings.TrimSpace(a.scaffold.Message) != "" {
			msgs = append([]string{a.scaffold.Message}, msgs...)
		}
	}
	r.Message = strings.Join(msgs, "\n")
	return r
}
