// Package sequence implements a sequence labeling search task: each
// token of an input sequence must be given a label, left to right. The
// task's loss is the Hamming loss, which decomposes over tokens, so the
// task's reference can compute exact costs to go.
package sequence

import (
	"fmt"

	"github.com/samuelfneumann/golts/environment"
	"github.com/samuelfneumann/golts/utils/intutils"
)

// Example is a sequence of tokens together with its gold labels.
//
// If Allowed is non-nil, Allowed[i] restricts the labels that may be
// given to token i. Labels are numbered [0, NumLabels).
type Example struct {
	Tokens    []int
	Labels    []int
	Allowed   [][]int
	NumLabels int
}

// NewExample returns a new Example in which every label may be given to
// every token
func NewExample(tokens, labels []int, nLabels int) (*Example, error) {
	if len(tokens) != len(labels) {
		return nil, fmt.Errorf("newExample: %v tokens but %v labels",
			len(tokens), len(labels))
	}
	if nLabels <= 0 {
		return nil, fmt.Errorf("newExample: expected at least one label, "+
			"got %v", nLabels)
	}
	for _, l := range labels {
		if l < 0 || l >= nLabels {
			return nil, fmt.Errorf("newExample: label %v out of range "+
				"[0, %v)", l, nLabels)
		}
	}
	return &Example{Tokens: tokens, Labels: labels, NumLabels: nLabels}, nil
}

// MkEnv returns a new Env in which the Example is labeled
func (ex *Example) MkEnv() environment.Env {
	return NewEnv(ex)
}

// Env is the environment in which a single Example is labeled. The
// current state is the position of the next token to label, which is
// the length of the trajectory.
type Env struct {
	environment.Base
	ex  *Example
	all []int
}

// NewEnv returns a new Env over ex
func NewEnv(ex *Example) *Env {
	return &Env{
		Base: environment.NewBase(ex.NumLabels, len(ex.Tokens)),
		ex:   ex,
		all:  intutils.Range(ex.NumLabels),
	}
}

// Example returns the Example being labeled
func (e *Env) Example() *Example {
	return e.ex
}

// Tokens returns the input tokens
func (e *Env) Tokens() []int {
	return e.ex.Tokens
}

// Actions returns the labels that may be given to the current token
func (e *Env) Actions() []int {
	t := e.T()
	if e.ex.Allowed != nil && t < len(e.ex.Allowed) &&
		e.ex.Allowed[t] != nil {
		return e.ex.Allowed[t]
	}
	return e.all
}

// Output returns the labels given so far
func (e *Env) Output() []int {
	return e.Trajectory()
}

// Episode labels every token of the Example with p
func (e *Env) Episode(p environment.Policy) error {
	for e.T() < e.Horizon() {
		a := p.Act(e)
		if !intutils.Contains(e.Actions(), a) {
			return fmt.Errorf("episode: label %v is not allowed at "+
				"position %v", a, e.T())
		}
		e.Append(a)
	}
	return nil
}

// Reference is the optimal policy of the sequence labeling task, which
// gives every token its gold label
type Reference struct{}

// env returns e as an *Env, panicking if it is not one
func (Reference) env(e environment.Env) *Env {
	env, ok := e.(*Env)
	if !ok {
		panic(fmt.Sprintf("reference: expected *sequence.Env, got %T", e))
	}
	return env
}

// Act returns the gold label of the current token
func (r Reference) Act(e environment.Env) int {
	env := r.env(e)
	return env.ex.Labels[env.T()]
}

// SetMinCostsToGo sets the cost to go of the gold label to 0 and of
// every other label to 1
func (r Reference) SetMinCostsToGo(e environment.Env, costs []float64) {
	env := r.env(e)
	gold := env.ex.Labels[env.T()]
	for i := range costs {
		costs[i] = 1.0
	}
	costs[gold] = 0.0
}
