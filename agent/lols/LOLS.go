package lols

import (
	"fmt"

	"github.com/samuelfneumann/golts/agent"
	"github.com/samuelfneumann/golts/environment"
	"github.com/samuelfneumann/golts/loss"
	"github.com/samuelfneumann/golts/network"
	"github.com/samuelfneumann/golts/utils/floatutils"
	"golang.org/x/exp/rand"
)

// LOLS is a LearningAlg which trains a policy with full one-step
// deviations. For each example, it rolls in once to build a backbone
// trajectory. Then, for every timestep t of the backbone and every
// legal action a at t, it replays the backbone up to t, takes a, rolls
// out to the end of the episode and records the loss. The policy's
// predicted costs at t are regressed towards these losses.
//
// Each call to Train runs O(horizon x legal actions) episodes.
//
// With MixPerState, the roll-in and roll-out decisions at timestep t
// are made by comparing a single draw, tied to t across all episodes of
// the example, against PRollinRef and PRolloutRef respectively.
type LOLS struct {
	reference agent.Reference
	policy    agent.CostPredictor
	loss      *loss.Loss
	config    Config
	rng       *rand.Rand

	objective *network.Objective
}

// New returns a new LOLS learning algorithm. The reference must be an
// agent.CostSetter.
func New(reference agent.Reference, policy agent.CostPredictor,
	l *loss.Loss, config Config, seed uint64) (*LOLS, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	if _, ok := reference.(agent.CostSetter); !ok {
		return nil, fmt.Errorf("new: reference %T cannot set costs to go",
			reference)
	}
	return &LOLS{
		reference: reference,
		policy:    policy,
		loss:      l,
		config:    config,
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

// strategies returns the roll-in and roll-out strategies for a single
// example
func (l *LOLS) strategies() (rollin, rollout RunStrategy) {
	choose := func(ref bool) Choice {
		if ref {
			return FollowRef()
		}
		return FollowLearned()
	}

	if l.config.Mixture == MixPerState {
		tied := NewTiedRandomness(l.rng.Float64)
		rollin = func(t int) Choice {
			return choose(tied.Draw(t) <= l.config.PRollinRef)
		}
		rollout = func(t int) Choice {
			return choose(tied.Draw(t) <= l.config.PRolloutRef)
		}
		return rollin, rollout
	}

	rollin = Always(choose(l.rng.Float64() < l.config.PRollinRef))
	rollout = Always(choose(l.rng.Float64() < l.config.PRolloutRef))
	return rollin, rollout
}

// run rewinds e and runs a single episode with strategy, returning the
// loss of the episode and the runner that recorded it
func (l *LOLS) run(ex environment.Example, e environment.Env,
	strategy RunStrategy) (float64, *EpisodeRunner, error) {
	e.Rewind()
	runner := NewEpisodeRunner(l.policy, strategy, l.reference)
	if err := environment.RunEpisode(e, runner); err != nil {
		return 0, nil, fmt.Errorf("run: %v", err)
	}
	cost, _ := l.loss.Evaluate(ex, e)
	return cost, runner, nil
}

// Train trains the policy on a single example and returns the loss of
// the backbone roll-in
func (l *LOLS) Train(ex environment.Example) (float64, error) {
	env := ex.MkEnv()
	nActions := env.NumActions()
	l.policy.NewExample()

	rollin, rollout := l.strategies()

	loss0, backbone, err := l.run(ex, env, rollin)
	if err != nil {
		return 0, fmt.Errorf("train: could not roll in: %v", err)
	}
	traj0 := backbone.Trajectory()
	limit0 := backbone.LimitedActions()

	objective := &network.Objective{}
	for t, pred := range backbone.Costs() {
		costs := make([]float64, nActions)
		for _, a := range limit0[t] {
			cost, _, err := l.run(ex, env, OneStepDeviation(Replay(traj0),
				rollout, t, a))
			if err != nil {
				return 0, fmt.Errorf("train: could not deviate to action "+
					"%v at timestep %v: %v", a, t, err)
			}
			costs[a] = cost
		}

		// Illegal actions keep a cost of 0 and take part in the shift
		shift := floatutils.Min(costs...)
		for a := range costs {
			costs[a] -= shift
		}

		objective.Merge(l.policy.ForwardPartialComplete(pred, costs,
			limit0[t]))
	}

	if !floatutils.IsFinite(objective.Value()) {
		return 0, fmt.Errorf("train: objective is not finite: %v",
			objective.Value())
	}
	if err := objective.Backward(); err != nil {
		return 0, fmt.Errorf("train: %v", err)
	}
	if err := l.policy.Step(); err != nil {
		return 0, fmt.Errorf("train: %v", err)
	}
	l.objective = objective

	return loss0, nil
}

// Objective returns the objective of the most recent call to Train
func (l *LOLS) Objective() *network.Objective {
	return l.objective
}
