package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the generation error taxonomy. Check with errors.Is.
var (
	// ErrConfiguration marks a broken pipeline contract: a missing or duplicate
	// primary result, or a token that resolves to nothing.
	ErrConfiguration = errors.New("configuration error")

	// ErrStep marks a failure reported by a step's own operation.
	ErrStep = errors.New("step failure")

	// ErrValidation marks a precondition that failed before any step ran.
	ErrValidation = errors.New("validation error")
)

// ConfigurationErrorf returns an error wrapping ErrConfiguration.
func ConfigurationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// ValidationErrorf returns an error wrapping ErrValidation.
func ValidationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// StepError is the orchestrator's failure when a step returns Failure.
type StepError struct {
	StepID string
	Phase  Phase
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s (%s) failed: %v", e.StepID, e.Phase, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Is makes every StepError match ErrStep.
func (e *StepError) Is(target error) bool {
	return target == ErrStep
}
