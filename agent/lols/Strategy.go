package lols

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Kind is the kind of decision a RunStrategy makes at a timestep
type Kind int

const (
	// Ref follows the reference
	Ref Kind = iota

	// Learn follows the learned policy
	Learn

	// Act takes a fixed action
	Act
)

func (k Kind) String() string {
	switch k {
	case Ref:
		return "Ref"
	case Learn:
		return "Learn"
	case Act:
		return "Act"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Choice is the decision of a RunStrategy at a single timestep. Action
// is only meaningful if Kind is Act.
type Choice struct {
	Kind   Kind
	Action int
}

// FollowRef returns a Choice to follow the reference
func FollowRef() Choice { return Choice{Kind: Ref} }

// FollowLearned returns a Choice to follow the learned policy
func FollowLearned() Choice { return Choice{Kind: Learn} }

// ActOn returns a Choice to take action a
func ActOn(a int) Choice { return Choice{Kind: Act, Action: a} }

func (c Choice) String() string {
	if c.Kind == Act {
		return fmt.Sprintf("Act(%v)", c.Action)
	}
	return c.Kind.String()
}

// RunStrategy decides how an EpisodeRunner acts at each timestep
type RunStrategy func(t int) Choice

// Always returns a RunStrategy that makes the same Choice at every
// timestep
func Always(c Choice) RunStrategy {
	return func(int) Choice { return c }
}

// OneStepDeviation returns a RunStrategy which follows rollin before
// timestep devT, takes action devA at devT, and follows rollout after
// devT
func OneStepDeviation(rollin, rollout RunStrategy, devT,
	devA int) RunStrategy {
	return func(t int) Choice {
		switch {
		case t == devT:
			return ActOn(devA)
		case t < devT:
			return rollin(t)
		default:
			return rollout(t)
		}
	}
}

// Replay returns a RunStrategy that takes the actions of trajectory in
// order
func Replay(trajectory []int) RunStrategy {
	return func(t int) Choice {
		if t < 0 || t >= len(trajectory) {
			panic(fmt.Sprintf("replay: no action recorded at timestep %v", t))
		}
		return ActOn(trajectory[t])
	}
}

// TiedRandomness memoizes one random draw per timestep so that all
// decisions made at the same timestep, across any number of runs,
// observe the same random value
type TiedRandomness struct {
	tied map[int]float64
	rng  func() float64
}

// NewTiedRandomness returns a new TiedRandomness drawing from rng. If
// rng is nil, draws are made from the golang.org/x/exp/rand global
// source.
func NewTiedRandomness(rng func() float64) *TiedRandomness {
	if rng == nil {
		rng = rand.Float64
	}
	return &TiedRandomness{tied: make(map[int]float64), rng: rng}
}

// Draw returns the random value tied to timestep t, drawing it if this
// is the first request for t since the last Reset
func (r *TiedRandomness) Draw(t int) float64 {
	if v, ok := r.tied[t]; ok {
		return v
	}
	v := r.rng()
	r.tied[t] = v
	return v
}

// Reset forgets all drawn values
func (r *TiedRandomness) Reset() {
	r.tied = make(map[int]float64)
}
