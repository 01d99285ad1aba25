// Package features implements feature computations for search tasks
// which are cached per example (Static) or per timestep (Actor).
//
// Features are cached because many environments only make sense to
// featurize once per example or once per step, and because dynamic
// features must be computed in order, left to right, to match
// recurrent computations. Caches are invalidated explicitly: every
// feature-bearing component implements Resetter, and components whose
// features depend on the trajectory additionally implement Rewinder.
package features

import (
	"github.com/samuelfneumann/golts/environment"
	"gonum.org/v1/gonum/mat"
)

// Resetter is a component that caches features of an example. A
// Resetter must drop all of its cached features when NewExample is
// called.
type Resetter interface {
	NewExample()
}

// Rewinder is a component whose cached features depend on the
// trajectory of an episode. Rewind drops only those features, so that
// an example may be replayed while keeping its static features.
type Rewinder interface {
	Rewind()
}

// Featurizer computes the feature vector of the current state of an
// environment. The returned vector has length Dim().
type Featurizer interface {
	Dim() int
	Forward(e environment.Env) *mat.VecDense
}

// NewExample calls NewExample on each argument that is a Resetter,
// in order
func NewExample(components ...interface{}) {
	for _, c := range components {
		if r, ok := c.(Resetter); ok {
			r.NewExample()
		}
	}
}

// Rewind calls Rewind on each argument that is a Rewinder, in order
func Rewind(components ...interface{}) {
	for _, c := range components {
		if r, ok := c.(Rewinder); ok {
			r.Rewind()
		}
	}
}
