package lols

import (
	"fmt"
)

// Mixture determines how often the choice between the reference and the
// learned policy is made during roll-in and roll-out
type Mixture string

const (
	// MixPerState chooses between the reference and the learned policy
	// independently at every timestep
	MixPerState Mixture = "PerState"

	// MixPerRoll chooses once per episode
	MixPerRoll Mixture = "PerRoll"
)

// LearningMethod determines how the cost vector of an explored action
// is estimated from the bandit feedback of a single episode
type LearningMethod string

const (
	LearnBiased LearningMethod = "Biased"
	LearnIPS    LearningMethod = "IPS"
	LearnDR     LearningMethod = "DR"
)

// Exploration determines how an action is explored at the deviation
// timestep of an episode
type Exploration string

const (
	ExploreUniform         Exploration = "Uniform"
	ExploreBoltzmann       Exploration = "Boltzmann"
	ExploreBoltzmannBiased Exploration = "BoltzmannBiased"
)

// Config configures the LOLS and BanditLOLS learning algorithms.
//
// PRollinRef and PRolloutRef are the probabilities of following the
// reference rather than the learned policy during roll-in and roll-out.
// LearningMethod, Exploration and Epsilon are only used by BanditLOLS.
// Epsilon is the probability of exploring at the deviation timestep.
type Config struct {
	PRollinRef     float64
	PRolloutRef    float64
	Mixture        Mixture
	LearningMethod LearningMethod
	Exploration    Exploration
	Epsilon        float64
}

// DefaultConfig returns a Config which always rolls in with the learned
// policy and always rolls out with the reference, mixing per roll,
// exploring uniformly at the deviation timestep and learning from
// inverse propensity scored costs
func DefaultConfig() Config {
	return Config{
		PRollinRef:     0.0,
		PRolloutRef:    1.0,
		Mixture:        MixPerRoll,
		LearningMethod: LearnIPS,
		Exploration:    ExploreUniform,
		Epsilon:        1.0,
	}
}

// Validate returns an error describing why the Config is invalid, if it
// is
func (c Config) Validate() error {
	if c.PRollinRef < 0 || c.PRollinRef > 1 {
		return fmt.Errorf("validate: roll-in probability must be in "+
			"[0, 1], got %v", c.PRollinRef)
	}
	if c.PRolloutRef < 0 || c.PRolloutRef > 1 {
		return fmt.Errorf("validate: roll-out probability must be in "+
			"[0, 1], got %v", c.PRolloutRef)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("validate: epsilon must be in [0, 1], got %v",
			c.Epsilon)
	}

	switch c.Mixture {
	case MixPerState, MixPerRoll:
	default:
		return fmt.Errorf("validate: unknown mixture %q, must be one of "+
			"[%v, %v]", c.Mixture, MixPerState, MixPerRoll)
	}

	switch c.LearningMethod {
	case LearnBiased, LearnIPS, LearnDR:
	default:
		return fmt.Errorf("validate: unknown learning method %q, must be "+
			"one of [%v, %v, %v]", c.LearningMethod, LearnBiased, LearnIPS,
			LearnDR)
	}

	switch c.Exploration {
	case ExploreUniform, ExploreBoltzmann, ExploreBoltzmannBiased:
	default:
		return fmt.Errorf("validate: unknown exploration %q, must be one "+
			"of [%v, %v, %v]", c.Exploration, ExploreUniform,
			ExploreBoltzmann, ExploreBoltzmannBiased)
	}

	return nil
}
