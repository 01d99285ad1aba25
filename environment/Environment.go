// Package environment outlines the interfaces and structs needed to
// implement concrete search tasks, each of which is a sequential
// decision process over a discrete set of actions
package environment

import "fmt"

// Policy is anything that can choose actions in an Env. The state of
// the episode is the Env itself.
//
// NewExample is called at the start of every episode run through
// RunEpisode so that the Policy may invalidate any features it has
// cached for a previous example.
type Policy interface {
	Act(e Env) int
	NewExample()
}

// Env implements a search task (an MDP over discrete actions). Actions
// are numbered [0, NumActions()).
//
// Concrete environments implement Episode, which performs a complete
// run through the environment acting according to the argument Policy
// and appending each action taken to the trajectory. Episode should not
// be called directly, use RunEpisode instead.
//
// Rewind resets only the trajectory-dependent state of an Env so that
// the same example can be replayed with a different Policy. Learning
// algorithms that replay episodes (e.g. LOLS) require it.
type Env interface {
	Horizon() int
	NumActions() int

	// Actions returns the legal actions in the current state. The
	// order of the returned actions is meaningful, it breaks ties
	// between equally good actions.
	Actions() []int

	// Trajectory returns the actions taken so far in the episode
	Trajectory() []int

	Episode(p Policy) error
	Rewind()
}

// Example is a single training or evaluation example, which knows how
// to construct the Env in which it is solved
type Example interface {
	MkEnv() Env
}

// RunEpisode runs a complete episode of e acting according to p. The
// Policy is informed of the new example before the episode starts.
func RunEpisode(e Env, p Policy) error {
	p.NewExample()
	if err := e.Episode(p); err != nil {
		return fmt.Errorf("runEpisode: %v", err)
	}
	return nil
}

// Base implements the bookkeeping common to all environments: the
// number of actions, the horizon, and the trajectory of actions taken.
// Concrete environments should embed Base and use Append to record
// actions.
type Base struct {
	nActions   int
	horizon    int
	trajectory []int
}

// NewBase returns a new Base for an environment with nActions actions
// and episodes of at most horizon steps
func NewBase(nActions, horizon int) Base {
	if nActions <= 0 {
		panic(fmt.Sprintf("newBase: environments must have at least one "+
			"action, got %v", nActions))
	}
	if horizon < 0 {
		panic(fmt.Sprintf("newBase: horizon must be non-negative, got %v",
			horizon))
	}
	return Base{
		nActions:   nActions,
		horizon:    horizon,
		trajectory: make([]int, 0, horizon),
	}
}

// NumActions returns the number of actions in the environment
func (b *Base) NumActions() int {
	return b.nActions
}

// Horizon returns the maximum number of steps in an episode
func (b *Base) Horizon() int {
	return b.horizon
}

// Trajectory returns the actions taken so far in the current episode
func (b *Base) Trajectory() []int {
	return b.trajectory
}

// T returns the current timestep, which is the number of actions
// taken so far
func (b *Base) T() int {
	return len(b.trajectory)
}

// Append records that action a was taken. Append panics if the
// trajectory would exceed the horizon or if a is not an action.
func (b *Base) Append(a int) {
	if a < 0 || a >= b.nActions {
		panic(fmt.Sprintf("append: action %v out of range [0, %v)", a,
			b.nActions))
	}
	if len(b.trajectory) >= b.horizon {
		panic(fmt.Sprintf("append: trajectory would exceed horizon %v",
			b.horizon))
	}
	b.trajectory = append(b.trajectory, a)
}

// Rewind clears the trajectory. Environments with additional dynamic
// state should override Rewind and call Base.Rewind.
func (b *Base) Rewind() {
	b.trajectory = make([]int, 0, b.horizon)
}
