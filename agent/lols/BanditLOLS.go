package lols

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/golts/agent"
	"github.com/samuelfneumann/golts/environment"
	"github.com/samuelfneumann/golts/loss"
	"github.com/samuelfneumann/golts/network"
	"github.com/samuelfneumann/golts/utils/intutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/sampleuv"
)

const (
	// illegalCost is the surrogate cost of illegal actions during
	// Boltzmann exploration
	illegalCost = 1e10

	// minPropensity is the smallest propensity used by biased
	// Boltzmann exploration
	minPropensity = 1e-4
)

// BanditLOLS is a Learner which learns from the bandit feedback of a
// single episode. At a single deviation timestep drawn uniformly from
// [1, T], it explores an action and afterwards uses the loss of the
// whole episode as an estimate of the cost of that action.
//
// A BanditLOLS is used for exactly one episode: construct it, run an
// episode with it, then call Update with the episode's loss.
type BanditLOLS struct {
	reference agent.Reference
	policy    agent.CostPredictor
	baseline  Baseline
	config    Config
	rng       *rand.Rand

	rollinRef  func() bool
	rolloutRef func() bool

	t       int
	started bool

	devT      int
	devA      int
	explored  bool
	devWeight float64
	devLegal  []int
	devCosts  network.Prediction
}

// NewBanditLOLS returns a new BanditLOLS for a single episode. The
// baseline may be nil. If rng is nil, a new source seeded with 0 is
// used.
func NewBanditLOLS(reference agent.Reference, policy agent.CostPredictor,
	config Config, baseline Baseline, rng *rand.Rand) (*BanditLOLS, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newBanditLOLS: %v", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}

	b := &BanditLOLS{
		reference: reference,
		policy:    policy,
		baseline:  baseline,
		config:    config,
		rng:       rng,
	}

	if config.Mixture == MixPerRoll {
		useInRef := b.coin(config.PRollinRef)
		useOutRef := b.coin(config.PRolloutRef)
		b.rollinRef = func() bool { return useInRef }
		b.rolloutRef = func() bool { return useOutRef }
	} else {
		b.rollinRef = func() bool { return b.coin(config.PRollinRef) }
		b.rolloutRef = func() bool { return b.coin(config.PRolloutRef) }
	}

	return b, nil
}

// coin returns true with probability p
func (b *BanditLOLS) coin(p float64) bool {
	return b.rng.Float64() < p
}

// Act chooses the action to take in the current state of e
func (b *BanditLOLS) Act(e environment.Env) int {
	if !b.started {
		if e.Horizon() < 1 {
			panic(fmt.Sprintf("act: expected horizon >= 1, got %v",
				e.Horizon()))
		}
		b.started = true
		b.t = 0
		b.devT = 1 + b.rng.Intn(e.Horizon())
	}

	b.t++
	switch {
	case b.t == b.devT:
		if b.rng.Float64() > b.config.Epsilon {
			return b.policy.Act(e)
		}
		b.devCosts = b.policy.PredictCosts(e)
		b.devLegal = intutils.Copy(e.Actions())
		b.devA, b.devWeight = b.explore(b.devCosts.Costs)
		b.explored = true
		return b.devA

	case b.t < b.devT && b.rollinRef(), b.t > b.devT && b.rolloutRef():
		// The policy still acts so that its features stay in order
		b.policy.Act(e)
		return b.reference.Act(e)

	default:
		return b.policy.Act(e)
	}
}

// explore samples an action to explore among the legal actions at the
// deviation timestep, returning the action and its importance weight
func (b *BanditLOLS) explore(costs []float64) (int, float64) {
	switch b.config.Exploration {
	case ExploreUniform:
		a := b.devLegal[b.rng.Intn(len(b.devLegal))]
		return a, float64(len(b.devLegal))

	case ExploreBoltzmann, ExploreBoltzmannBiased:
		probs := boltzmann(costs, b.devLegal)
		a, ok := sampleuv.NewWeighted(probs, b.rng).Take()
		if !ok {
			panic("explore: could not sample an action")
		}
		biased := b.config.Exploration == ExploreBoltzmannBiased
		return a, importanceWeight(probs[a], biased)

	default:
		panic(fmt.Sprintf("explore: unknown exploration %v",
			b.config.Exploration))
	}
}

// boltzmann returns the probability of exploring each action under the
// softmax of the negative costs. Actions not in legal are given the
// surrogate cost illegalCost.
func boltzmann(costs []float64, legal []int) []float64 {
	probs := make([]float64, len(costs))
	for i := range probs {
		probs[i] = -illegalCost
	}
	for _, a := range legal {
		probs[a] = -costs[a]
	}

	shift := floats.Max(probs)
	for i := range probs {
		probs[i] = math.Exp(probs[i] - shift)
	}
	floats.Scale(1/floats.Sum(probs), probs)
	return probs
}

// importanceWeight returns the importance weight of an action explored
// with probability p. If biased, p is floored at minPropensity.
func importanceWeight(p float64, biased bool) float64 {
	if biased {
		p = math.Max(p, minPropensity)
	}
	return 1 / p
}

// NewExample informs the policy that a new example has started
func (b *BanditLOLS) NewExample() {
	b.policy.NewExample()
}

// Update trains the policy on the explored action using the loss of the
// episode. Update is a no-op if no action was explored during the
// episode.
func (b *BanditLOLS) Update(loss float64) error {
	if !b.explored {
		return nil
	}

	var baseline float64
	if b.baseline != nil {
		baseline = b.baseline.Value()
	}
	truth := b.BuildCostVector(baseline, loss)

	obj := b.policy.ForwardPartialComplete(b.devCosts, truth, b.devLegal)
	if err := obj.Backward(); err != nil {
		return fmt.Errorf("update: %v", err)
	}
	if err := b.policy.Step(); err != nil {
		return fmt.Errorf("update: %v", err)
	}

	if b.baseline != nil {
		b.baseline.Update(loss)
	}
	return nil
}

// BuildCostVector returns the estimated cost of every action given the
// loss of the episode
func (b *BanditLOLS) BuildCostVector(baseline, loss float64) []float64 {
	costs := make([]float64, b.policy.NumActions())

	switch b.config.LearningMethod {
	case LearnBiased:
		for i := range costs {
			costs[i] = -baseline
		}
		costs[b.devA] = b.devWeight - baseline

	case LearnIPS:
		for i := range costs {
			costs[i] = -baseline
		}
		costs[b.devA] = loss*b.devWeight - baseline

	case LearnDR:
		copy(costs, b.devCosts.Costs)
		costs[b.devA] += b.devWeight * (loss - costs[b.devA])

	default:
		panic(fmt.Sprintf("buildCostVector: unknown learning method %v",
			b.config.LearningMethod))
	}

	return costs
}

// Deviation returns the deviation timestep, the explored action and
// its importance weight. If no action was explored, ok is false.
func (b *BanditLOLS) Deviation() (t, a int, weight float64, ok bool) {
	return b.devT, b.devA, b.devWeight, b.explored
}

// Bandit is a LearningAlg which trains a policy with one BanditLOLS
// episode per example
type Bandit struct {
	reference agent.Reference
	policy    agent.CostPredictor
	loss      *loss.Loss
	config    Config
	baseline  Baseline
	rng       *rand.Rand
}

// NewBandit returns a new Bandit learning algorithm. The baseline may be
// nil.
func NewBandit(reference agent.Reference, policy agent.CostPredictor,
	l *loss.Loss, config Config, baseline Baseline,
	seed uint64) (*Bandit, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newBandit: %v", err)
	}
	return &Bandit{
		reference: reference,
		policy:    policy,
		loss:      l,
		config:    config,
		baseline:  baseline,
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

// Train runs a single BanditLOLS episode on ex and updates the policy
// with its loss, which is returned
func (b *Bandit) Train(ex environment.Example) (float64, error) {
	env := ex.MkEnv()
	learner, err := NewBanditLOLS(b.reference, b.policy, b.config,
		b.baseline, b.rng)
	if err != nil {
		return 0, fmt.Errorf("train: %v", err)
	}

	if err := environment.RunEpisode(env, learner); err != nil {
		return 0, fmt.Errorf("train: could not run episode: %v", err)
	}

	l, _ := b.loss.Evaluate(ex, env)
	if err := learner.Update(l); err != nil {
		return 0, fmt.Errorf("train: could not update: %v", err)
	}
	return l, nil
}
