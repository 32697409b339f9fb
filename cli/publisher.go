package cli

import (
	"fmt"

	"github.com/santiagomed/modkit/core"
	"github.com/santiagomed/modkit/logger"
)

// stepError pairs a failed step with its error.
type stepError struct {
	ev  core.StepEvent
	err error
}

func (e stepError) Error() string {
	return fmt.Sprintf("%s: %v", e.ev.ID, e.err)
}

// CliStepPublisher forwards pipeline progress to the terminal UI.
type CliStepPublisher struct {
	stepChan  chan core.StepEvent
	errorChan chan stepError
	logger    logger.Logger
}

func NewCliStepPublisher(logger logger.Logger) *CliStepPublisher {
	return &CliStepPublisher{
		stepChan:  make(chan core.StepEvent, 100),
		errorChan: make(chan stepError, 10),
		logger:    logger,
	}
}

func (p *CliStepPublisher) PublishStep(ev core.StepEvent) {
	select {
	case p.stepChan <- ev:
		p.logger.Debug(fmt.Sprintf("Published step: %s", ev.ID))
	default:
		p.logger.Warn(fmt.Sprintf("Failed to publish step: %s. Channel full.", ev.ID))
	}
}

func (p *CliStepPublisher) Error(ev core.StepEvent, err error) {
	select {
	case p.errorChan <- stepError{ev: ev, err: err}:
		p.logger.Debug(fmt.Sprintf("Published error for step: %s", ev.ID))
	default:
		p.logger.Warn(fmt.Sprintf("Failed to publish error for step: %s. Channel full.", ev.ID))
	}
}
