package features

import (
	"github.com/samuelfneumann/golts/environment"
	"gonum.org/v1/gonum/mat"
)

// Attention extracts the part of some features that is relevant to the
// current timestep. For example, in a sequence labeling task one may
// only want to look at the features of the word currently being
// labeled.
//
// Arity is the number of places the Attention looks at. An Arity of 0
// denotes attention over the whole input, in which case Forward returns
// a single vector.
//
// Attention that is ActorDependent reads the dynamic state of the Actor
// that owns it. Such Attention is given a reference to its Actor with
// SetActor when the Actor is constructed.
type Attention interface {
	Arity() int
	Dim() int
	ActorDependent() bool
	SetActor(a *Actor)
	Forward(e environment.Env) []mat.Vector
}

// OutOfBounds returns a zero-initialized placeholder to be used when an
// Attention target lies outside the input. The placeholder has
// max(arity, 1) rows and dim columns.
func OutOfBounds(arity, dim int) *mat.Dense {
	if arity < 1 {
		arity = 1
	}
	return mat.NewDense(arity, dim, nil)
}

// AttendAt attends to a single row of some Static features. The row is
// chosen by a position function of the current state, which defaults to
// the current timestep. Positions outside the input attend to an
// out-of-bounds placeholder.
type AttendAt struct {
	features *Static
	position func(e environment.Env) int
	oob      *mat.Dense
}

// NewAttendAt returns a new AttendAt over the argument features. If
// position is nil, then the current timestep len(e.Trajectory()) is
// attended to.
func NewAttendAt(f *Static, position func(e environment.Env) int) *AttendAt {
	if position == nil {
		position = func(e environment.Env) int {
			return len(e.Trajectory())
		}
	}
	return &AttendAt{
		features: f,
		position: position,
		oob:      OutOfBounds(1, f.Dim()),
	}
}

// Arity returns the number of places attended to
func (a *AttendAt) Arity() int { return 1 }

// Dim returns the dimension of the attended features
func (a *AttendAt) Dim() int { return a.features.Dim() }

// ActorDependent returns false, AttendAt does not depend on an Actor
func (a *AttendAt) ActorDependent() bool { return false }

// SetActor panics, AttendAt does not depend on an Actor
func (a *AttendAt) SetActor(*Actor) {
	panic("setActor: AttendAt is not actor dependent")
}

// Forward returns the attended row of features
func (a *AttendAt) Forward(e environment.Env) []mat.Vector {
	features := a.features.Forward(e)
	n, _ := features.Dims()

	i := a.position(e)
	if i < 0 || i >= n {
		return []mat.Vector{a.oob.RowView(0)}
	}
	return []mat.Vector{features.RowView(i)}
}

// NewExample invalidates the underlying Static features
func (a *AttendAt) NewExample() {
	a.features.NewExample()
}

// AttendHidden attends to the hidden state of its Actor, which is the
// feature vector the Actor computed at the previous timestep
type AttendHidden struct {
	actor *Actor
	dim   int
}

// NewAttendHidden returns a new AttendHidden for an Actor of dimension
// dim
func NewAttendHidden(dim int) *AttendHidden {
	return &AttendHidden{dim: dim}
}

// Arity returns the number of places attended to
func (a *AttendHidden) Arity() int { return 1 }

// Dim returns the dimension of the attended features
func (a *AttendHidden) Dim() int { return a.dim }

// ActorDependent returns true
func (a *AttendHidden) ActorDependent() bool { return true }

// SetActor sets the Actor whose hidden state is attended to
func (a *AttendHidden) SetActor(actor *Actor) {
	a.actor = actor
}

// Forward returns the hidden state of the Actor
func (a *AttendHidden) Forward(e environment.Env) []mat.Vector {
	if a.actor == nil {
		panic("forward: AttendHidden used before SetActor")
	}
	return []mat.Vector{a.actor.Hidden()}
}
