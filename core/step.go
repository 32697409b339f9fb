package core

import "context"

// Step is a single phase-tagged unit of generation work over params P.
//
// Execute may read and write the file system. It must be idempotent per path:
// running it again against a tree that already reflects a previous run reports
// skipped or unchanged state and never duplicates content.
type Step[P any] interface {
	// ID is the fully-qualified step identity, e.g. "settings-includes".
	// It breaks ordering ties inside a phase.
	ID() string
	Phase() Phase
	Execute(ctx context.Context, params P) StepResult
}

// StepFunc adapts a function to the Step interface.
type StepFunc[P any] struct {
	StepID    string
	StepPhase Phase
	Fn        func(ctx context.Context, params P) StepResult
}

// NewStep returns a Step backed by fn.
func NewStep[P any](id string, phase Phase, fn func(ctx context.Context, params P) StepResult) *StepFunc[P] {
	return &StepFunc[P]{StepID: id, StepPhase: phase, Fn: fn}
}

func (s *StepFunc[P]) ID() string   { return s.StepID }
func (s *StepFunc[P]) Phase() Phase { return s.StepPhase }
func (s *StepFunc[P]) Execute(ctx context.Context, params P) StepResult {
	return s.Fn(ctx, params)
}

// StepEvent describes a step for progress publishers.
type StepEvent struct {
	ID    string
	Phase Phase
	Index int
	Total int
}

// StepPublisher receives progress events from a running pipeline.
type StepPublisher interface {
	PublishStep(ev StepEvent)
	Error(ev StepEvent, err error)
}

type DefaultStepPublisher struct{}

func (p *DefaultStepPublisher) PublishStep(ev StepEvent) {}

func (p *DefaultStepPublisher) Error(ev StepEvent, err error) {}
