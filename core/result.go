package core

import "fmt"

// StepResult is the closed set of outcomes a step can produce: Scaffold,
// Settings, BuildLogic, Success or Failure.
type StepResult interface {
	isStepResult()
}

// ScaffoldOutput is the primary generated-artifact payload of a run.
type ScaffoldOutput struct {
	Created []string
	Skipped []string
	Message string
}

// Record files path under Created when it was written, Skipped otherwise.
func (o *ScaffoldOutput) Record(path string, written bool) {
	if written {
		o.Created = append(o.Created, path)
	} else {
		o.Skipped = append(o.Skipped, path)
	}
}

type Scaffold struct {
	Output ScaffoldOutput
}

// Settings reports whether a settings file was changed.
type Settings struct {
	Updated bool
	Message string
}

// BuildLogic reports whether build logic (catalog, composite build) was changed.
type BuildLogic struct {
	Updated bool
	Message string
}

type Success struct {
	Message string
}

type Failure struct {
	Err error
}

func (Scaffold) isStepResult()   {}
func (Settings) isStepResult()   {}
func (BuildLogic) isStepResult() {}
func (Success) isStepResult()    {}
func (Failure) isStepResult()    {}

// Fail wraps err into a Failure result.
func Fail(err error) StepResult {
	return Failure{Err: err}
}

// Failf builds a Failure from a formatted message. %w verbs are honoured.
func Failf(format string, args ...interface{}) StepResult {
	return Failure{Err: fmt.Errorf(format, args...)}
}

// GenerationResult is the folded outcome of one orchestrator run. It is built
// once after every step succeeded and never mutated afterwards.
type GenerationResult struct {
	Created           []string
	Skipped           []string
	SettingsUpdated   bool
	BuildLogicUpdated bool
	Message           string
}

// Changed reports whether the run wrote anything.
func (r *GenerationResult) Changed() bool {
	return len(r.Created) > 0 || r.SettingsUpdated || r.BuildLogicUpdated
}
