package cli

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/santiagomed/modkit/core"
	"github.com/santiagomed/modkit/logger"
)

// Job is one generation run: a generator's Generate bound to its params.
type Job func(ctx context.Context) (*core.GenerationResult, error)

// Outcome is what a finished job reports back.
type Outcome struct {
	Result *core.GenerationResult
	Err    error
}

type ExecutionRequest struct {
	Job        Job
	ResultChan chan Outcome
	CreatedAt  time.Time
}

// ErrEngineStopped is reported for jobs submitted after Shutdown.
var ErrEngineStopped = errors.New("engine stopped")

// Engine runs generation jobs off the UI goroutine. It has a single worker,
// so at most one run is active against a project at any time.
type Engine struct {
	logger       logger.Logger
	requests     chan ExecutionRequest
	workerWG     sync.WaitGroup
	shutdownChan chan struct{}
	stopOnce     sync.Once
}

func NewEngine(l logger.Logger) *Engine {
	if l == nil {
		l = logger.NewNullLogger()
	}
	return &Engine{
		logger:       l,
		requests:     make(chan ExecutionRequest, 16),
		shutdownChan: make(chan struct{}),
	}
}

func (e *Engine) Start(ctx context.Context) {
	e.workerWG.Add(1)
	go e.worker(ctx)
}

func (e *Engine) worker(ctx context.Context) {
	defer e.workerWG.Done()
	for {
		select {
		case req := <-e.requests:
			e.logger.Debug("Picked up generation request")
			res, err := req.Job(ctx)
			req.ResultChan <- Outcome{Result: res, Err: err}
			close(req.ResultChan)
		case <-ctx.Done():
			return
		case <-e.shutdownChan:
			return
		}
	}
}

// Submit queues job and returns the channel its outcome is delivered on.
func (e *Engine) Submit(job Job) <-chan Outcome {
	resultChan := make(chan Outcome, 1)
	req := ExecutionRequest{Job: job, ResultChan: resultChan, CreatedAt: time.Now()}
	select {
	case <-e.shutdownChan:
		resultChan <- Outcome{Err: ErrEngineStopped}
		close(resultChan)
		return resultChan
	default:
	}
	select {
	case e.requests <- req:
	case <-e.shutdownChan:
		resultChan <- Outcome{Err: ErrEngineStopped}
		close(resultChan)
	}
	return resultChan
}

func (e *Engine) Shutdown(timeout time.Duration) {
	e.stopOnce.Do(func() { close(e.shutdownChan) })

	done := make(chan struct{})
	go func() {
		e.workerWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("Engine shut down gracefully")
	case <-time.After(timeout):
		e.logger.Warn("Shutdown timed out, a generation run may still be active")
	}
}
