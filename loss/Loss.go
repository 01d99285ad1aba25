// Package loss implements accumulators of scalar task metrics over
// episodes and runs
package loss

import (
	"fmt"

	"github.com/samuelfneumann/golts/environment"
)

// Evaluator computes the loss of a completed episode of e on the
// example truth. If the loss is undefined for the episode, then ok is
// false and the episode is ignored by running-mean losses.
type Evaluator interface {
	Evaluate(truth environment.Example, e environment.Env) (val float64,
		ok bool)
}

// EvaluatorFunc allows ordinary functions to be used as Evaluators
type EvaluatorFunc func(truth environment.Example,
	e environment.Env) (float64, bool)

// Evaluate calls f(truth, e)
func (f EvaluatorFunc) Evaluate(truth environment.Example,
	e environment.Env) (float64, bool) {
	return f(truth, e)
}

// Loss accumulates an Evaluator's values over many episodes.
//
// If CorpusLevel is true, then the Evaluator computes a metric over
// the whole corpus seen so far, and each call to Add replaces the total
// with the latest value, pinning Count to 1. Otherwise, Get returns the
// running mean of all values added.
type Loss struct {
	Name        string
	CorpusLevel bool
	Count       int
	Total       float64

	eval Evaluator
}

// New returns a new Loss
func New(name string, corpusLevel bool, eval Evaluator) *Loss {
	if eval == nil {
		panic("new: nil Evaluator")
	}
	return &Loss{Name: name, CorpusLevel: corpusLevel, eval: eval}
}

// Evaluate returns the loss of a single episode without accumulating it
func (l *Loss) Evaluate(truth environment.Example,
	e environment.Env) (float64, bool) {
	return l.eval.Evaluate(truth, e)
}

// Add evaluates the episode e on truth, accumulates the value and
// returns the current value of the Loss
func (l *Loss) Add(truth environment.Example, e environment.Env) float64 {
	val, ok := l.eval.Evaluate(truth, e)
	l.Observe(val, ok)
	return l.Get()
}

// Observe accumulates a precomputed value. If ok is false, the value
// is ignored unless the Loss is corpus level.
func (l *Loss) Observe(val float64, ok bool) {
	if l.CorpusLevel {
		l.Total = val
		l.Count = 1
	} else if ok {
		l.Total += val
		l.Count++
	}
}

// Get returns the value of the Loss
func (l *Loss) Get() float64 {
	if l.Count > 0 {
		return l.Total / float64(l.Count)
	}
	return 0
}

// Reset clears the accumulated values
func (l *Loss) Reset() {
	l.Count = 0
	l.Total = 0
}

func (l *Loss) String() string {
	return fmt.Sprintf("%v: %.4f", l.Name, l.Get())
}
