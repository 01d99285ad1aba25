package features

import (
	"fmt"

	"github.com/samuelfneumann/golts/environment"
	"gonum.org/v1/gonum/mat"
)

// ActorFunc computes the features of the current timestep from the
// outputs x of all of an Actor's Attention modules
type ActorFunc func(e environment.Env, x []mat.Vector) *mat.VecDense

// Concat is an ActorFunc which concatenates the outputs of all
// Attention modules
func Concat(_ environment.Env, x []mat.Vector) *mat.VecDense {
	n := 0
	for _, v := range x {
		n += v.Len()
	}

	data := make([]float64, 0, n)
	for _, v := range x {
		for i := 0; i < v.Len(); i++ {
			data = append(data, v.AtVec(i))
		}
	}
	return mat.NewVecDense(n, data)
}

// Actor computes features dynamically as a policy runs. Features are
// computed once per timestep and cached. The cache is sized to the
// horizon of the environment on the first call to Forward after the
// cache was invalidated.
//
// Features must be computed strictly left to right: Forward panics if
// it is called at timestep t before the features of timestep t-1 were
// computed.
type Actor struct {
	dim       int
	attention []Attention
	fn        ActorFunc

	t        int
	horizon  int
	nActions int
	features []*mat.VecDense
}

// NewActor returns a new Actor of dimension dim which computes its
// features with fn from the outputs of the argument Attention modules.
// If fn is nil, Concat is used. Actor dependent Attention modules are
// given a reference to the new Actor.
func NewActor(dim int, attention []Attention, fn ActorFunc) *Actor {
	if fn == nil {
		fn = Concat
	}

	a := &Actor{
		dim:       dim,
		attention: attention,
		fn:        fn,
	}

	for _, att := range attention {
		if att.ActorDependent() {
			att.SetActor(a)
		}
	}
	return a
}

// Dim returns the dimension of the Actor's features
func (a *Actor) Dim() int {
	return a.dim
}

// Horizon returns the horizon the cache was sized to, or 0 if no
// features have been computed since the cache was last invalidated
func (a *Actor) Horizon() int {
	return a.horizon
}

// NumActions returns the number of actions of the environment the
// cache was sized for
func (a *Actor) NumActions() int {
	return a.nActions
}

// reset sizes the cache to the horizon of e
func (a *Actor) reset(e environment.Env) {
	a.t = 0
	a.horizon = e.Horizon()
	a.nActions = e.NumActions()
	a.features = make([]*mat.VecDense, a.horizon)
}

// Forward returns the features of the current timestep of e, which is
// the length of its trajectory
func (a *Actor) Forward(e environment.Env) *mat.VecDense {
	if a.features == nil {
		a.reset(e)
	}

	a.t = len(e.Trajectory())
	if a.t < 0 {
		panic(fmt.Sprintf("forward: expected t >= 0, got %v", a.t))
	}
	if a.t >= a.horizon {
		panic(fmt.Sprintf("forward: expected t < T, got t=%v T=%v", a.t,
			a.horizon))
	}

	if a.features[a.t] != nil {
		return a.features[a.t]
	}

	if a.t > 0 && a.features[a.t-1] == nil {
		panic(fmt.Sprintf("forward: features for timestep %v requested "+
			"before timestep %v was computed", a.t, a.t-1))
	}

	x := make([]mat.Vector, 0, len(a.attention))
	for _, att := range a.attention {
		x = append(x, att.Forward(e)...)
	}

	features := a.fn(e, x)
	if features == nil {
		panic("forward: actor function returned no features")
	}
	if features.Len() != a.dim {
		panic(fmt.Sprintf("forward: actor features have dimension %v, "+
			"expected %v", features.Len(), a.dim))
	}

	a.features[a.t] = features
	a.t++
	return features
}

// Hidden returns the features computed at the timestep preceding the
// current one, or a zero vector at the first timestep
func (a *Actor) Hidden() mat.Vector {
	if a.features == nil || a.t == 0 || a.features[a.t-1] == nil {
		return mat.NewVecDense(a.dim, nil)
	}
	return a.features[a.t-1]
}

// Computed returns whether the features of timestep t are cached
func (a *Actor) Computed(t int) bool {
	return a.features != nil && t >= 0 && t < len(a.features) &&
		a.features[t] != nil
}

// Rewind drops all per-timestep features while keeping the static
// features of the Actor's Attention modules
func (a *Actor) Rewind() {
	a.t = 0
	a.features = nil
}

// NewExample drops all cached features, including the static features
// attended to by the Actor's Attention modules
func (a *Actor) NewExample() {
	a.Rewind()
	for _, att := range a.attention {
		if r, ok := att.(Resetter); ok {
			r.NewExample()
		}
	}
}
