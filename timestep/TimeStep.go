// Package timestep implements records of single decisions made during
// an episode of a search task
package timestep

import (
	"fmt"
)

// StepType denotes the type of step that a TimeStep can be, either the
// first decision in an episode, a middle decision, or the last decision
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single decision in an episode: the
// action that was taken, the actions that were legal, the costs the
// learned policy predicted for every action and the cost-to-go the
// reference assigned to every action.
type TimeStep struct {
	stepType StepType
	Number   int
	Action   int
	Limit    []int
	Costs    []float64
	RefCosts []float64
}

// New returns a new TimeStep
func New(t StepType, n, action int, limit []int, costs,
	refCosts []float64) TimeStep {
	return TimeStep{t, n, action, limit, costs, refCosts}
}

// First returns whether a TimeStep is the first in an episode
func (t *TimeStep) First() bool {
	return t.stepType == First
}

// Mid returns whether a TimeStep is a middle step in an episode
func (t *TimeStep) Mid() bool {
	return t.stepType == Mid
}

// Last returns whether a TimeStep is the last step in an episode
func (t *TimeStep) Last() bool {
	return t.stepType == Last
}

// SetLast marks the TimeStep as the last in its episode. A TimeStep
// that is both the first and last in an episode stays First.
func (t *TimeStep) SetLast() {
	if t.stepType != First {
		t.stepType = Last
	}
}

// Type returns the StepType of the TimeStep
func (t *TimeStep) Type() StepType {
	return t.stepType
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Action:  %v  |  Legal: %v  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.stepType, t.Action, t.Limit, t.Number)
}
