package features

import (
	"fmt"

	"github.com/samuelfneumann/golts/environment"
	"gonum.org/v1/gonum/mat"
)

// StaticFunc computes the static features of an environment. The
// returned matrix should have one row per input element and one
// column per feature.
type StaticFunc func(e environment.Env) *mat.Dense

// Static implements features that are a function of the example only,
// and not of the actions taken. The features are computed at most once
// per example: the first call to Forward computes them and every
// subsequent call returns the identical matrix until NewExample is
// called.
type Static struct {
	dim      int
	fn       StaticFunc
	features *mat.Dense
}

// NewStatic returns a new Static of dimension dim that computes its
// features with fn
func NewStatic(dim int, fn StaticFunc) *Static {
	if fn == nil {
		panic("newStatic: nil feature function")
	}
	return &Static{dim: dim, fn: fn}
}

// Dim returns the dimension of the features
func (s *Static) Dim() int {
	return s.dim
}

// Forward returns the features of the example e, computing them if
// they have not yet been computed for the current example
func (s *Static) Forward(e environment.Env) *mat.Dense {
	if s.features == nil {
		features := s.fn(e)
		if features == nil {
			panic("forward: static feature function returned no features")
		}
		if _, c := features.Dims(); c != s.dim {
			panic(fmt.Sprintf("forward: static features have dimension %v, "+
				"expected %v", c, s.dim))
		}
		s.features = features
	}
	return s.features
}

// NewExample drops the cached features
func (s *Static) NewExample() {
	s.features = nil
}
