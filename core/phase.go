package core

import "fmt"

// Phase is the coarse ordering bucket a step runs in. Steps execute in
// non-decreasing phase order; steps sharing a phase must not depend on each
// other's side effects.
type Phase int

const (
	PhaseScaffold Phase = iota
	PhaseGenerate
	PhaseConfigure
	PhaseDI
)

func (p Phase) String() string {
	switch p {
	case PhaseScaffold:
		return "scaffold"
	case PhaseGenerate:
		return "generate"
	case PhaseConfigure:
		return "configure"
	case PhaseDI:
		return "di"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}
