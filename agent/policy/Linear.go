// Package policy implements cost-sensitive policies using linear
// function approximation
package policy

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/golts/environment"
	"github.com/samuelfneumann/golts/features"
	"github.com/samuelfneumann/golts/initwfn"
	"github.com/samuelfneumann/golts/network"
	"github.com/samuelfneumann/golts/solver"
	"github.com/samuelfneumann/golts/utils/floatutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Linear implements a policy that predicts the cost of every action
// with a linear regressor on the features of the current state, and
// acts by choosing the action of lowest predicted cost.
//
// The policy owns an explicit list of feature-bearing components which
// are notified when a new example starts (NewExample) or when the
// current example is replayed (Rewind). The Featurizer is always the
// first component in the list.
type Linear struct {
	features   features.Featurizer
	components []interface{}
	model      *network.Linear
	solver     *solver.Solver
	nActions   int
	seed       rand.Source
}

// NewLinear returns a new Linear policy over nActions actions. The
// regressor's weights are initialized with init, or to zero if init is
// nil. Gradients are applied with s. Any components given are reset
// along with the Featurizer f.
func NewLinear(f features.Featurizer, nActions int, init *initwfn.InitWFn,
	s *solver.Solver, seed uint64, components ...interface{}) (*Linear,
	error) {
	if f == nil {
		return nil, fmt.Errorf("newLinear: nil featurizer")
	}
	if s == nil {
		return nil, fmt.Errorf("newLinear: nil solver")
	}

	model, err := network.NewLinear(f.Dim(), nActions, init)
	if err != nil {
		return nil, fmt.Errorf("newLinear: could not create regressor: %v",
			err)
	}

	return &Linear{
		features:   f,
		components: append([]interface{}{f}, components...),
		model:      model,
		solver:     s,
		nActions:   nActions,
		seed:       rand.NewSource(seed),
	}, nil
}

// NumActions returns the number of actions the policy predicts costs
// for
func (p *Linear) NumActions() int {
	return p.nActions
}

// Model returns the regressor of the policy
func (p *Linear) Model() *network.Linear {
	return p.model
}

// PredictCosts returns the predicted cost of every action in the
// current state of e
func (p *Linear) PredictCosts(e environment.Env) network.Prediction {
	return p.model.Predict(p.features.Forward(e))
}

// costs returns the predicted costs of the actions in the current state
// of e. If limit is non-nil, actions not in limit have infinite cost.
func (p *Linear) costs(e environment.Env, limit []int) []float64 {
	pred := p.PredictCosts(e).Costs
	if limit == nil {
		return pred
	}

	costs := make([]float64, len(pred))
	for i := range costs {
		costs[i] = math.Inf(1)
	}
	for _, a := range limit {
		costs[a] = pred[a]
	}
	return costs
}

// Act returns the greedy action among the legal actions of e
func (p *Linear) Act(e environment.Env) int {
	return p.Greedy(e, e.Actions())
}

// Greedy returns the action of lowest predicted cost. If limit is
// non-nil, only actions in limit are considered and ties are broken by
// the order of limit.
func (p *Linear) Greedy(e environment.Env, limit []int) int {
	costs := p.PredictCosts(e).Costs
	if limit == nil {
		return floatutils.ArgMin(costs...)
	}
	return floatutils.ArgMinOver(costs, limit)
}

// Probabilities returns the probability of each action under the
// softmax of the negative predicted costs. Actions outside limit have
// zero probability. If limit is nil, all actions are considered.
func (p *Linear) Probabilities(e environment.Env, limit []int) []float64 {
	if limit != nil && len(limit) == 0 {
		panic("probabilities: no actions to choose from")
	}
	costs := p.costs(e, limit)

	// Shift by the minimum finite cost for numerical stability
	shift := math.Inf(1)
	for _, c := range costs {
		if c < shift {
			shift = c
		}
	}

	probs := make([]float64, len(costs))
	for i, c := range costs {
		if math.IsInf(c, 1) {
			continue
		}
		probs[i] = math.Exp(-(c - shift))
	}
	floats.Scale(1/floats.Sum(probs), probs)
	return probs
}

// Stochastic samples an action from the softmax of the negative
// predicted costs, restricted to limit if limit is non-nil. The action
// and the probabilities it was sampled from are returned.
func (p *Linear) Stochastic(e environment.Env, limit []int) (int,
	[]float64) {
	probs := p.Probabilities(e, limit)
	dist := distuv.NewCategorical(probs, p.seed)
	return int(dist.Rand()), probs
}

// Forward returns the Objective measuring the squared error of the
// predicted costs in the current state of e against truth. The truth
// may be an int (the single correct action), an []int (a set of correct
// actions) or an []float64 (a cost for every action). Correct actions
// have target cost 0 and all other actions target cost 1. If limit is
// non-nil, only actions in limit contribute to the Objective.
func (p *Linear) Forward(e environment.Env, truth interface{},
	limit []int) (*network.Objective, error) {
	target := make([]float64, p.nActions)

	switch truth := truth.(type) {
	case int:
		if err := p.fillCorrect(target, []int{truth}); err != nil {
			return nil, fmt.Errorf("forward: %v", err)
		}

	case []int:
		if err := p.fillCorrect(target, truth); err != nil {
			return nil, fmt.Errorf("forward: %v", err)
		}

	case []float64:
		if len(truth) != p.nActions {
			return nil, fmt.Errorf("forward: expected %v costs, got %v",
				p.nActions, len(truth))
		}
		copy(target, truth)

	default:
		return nil, fmt.Errorf("forward: unsupported truth type %T", truth)
	}

	return p.ForwardPartialComplete(p.PredictCosts(e), target, limit), nil
}

// fillCorrect sets target to 0 for correct actions and 1 otherwise
func (p *Linear) fillCorrect(target []float64, correct []int) error {
	for i := range target {
		target[i] = 1.0
	}
	for _, a := range correct {
		if a < 0 || a >= p.nActions {
			return fmt.Errorf("action %v out of range [0, %v)", a,
				p.nActions)
		}
		target[a] = 0.0
	}
	return nil
}

// ForwardPartialComplete returns the Objective measuring the squared
// error of pred against target on the actions in legal. If legal is
// nil, all actions contribute.
func (p *Linear) ForwardPartialComplete(pred network.Prediction,
	target []float64, legal []int) *network.Objective {
	obj := network.NewObjective(p.model)
	obj.Add(pred, target, legal)
	return obj
}

// Step applies the gradients accumulated in the regressor
func (p *Linear) Step() error {
	if err := p.model.Step(p.solver); err != nil {
		return fmt.Errorf("step: %v", err)
	}
	return nil
}

// NewExample drops all cached features of the policy's components
func (p *Linear) NewExample() {
	features.NewExample(p.components...)
}

// Rewind drops the cached features of the policy's components that
// depend on the trajectory
func (p *Linear) Rewind() {
	features.Rewind(p.components...)
}

// GobEncode implements the gob.GobEncoder interface
func (p *Linear) GobEncode() ([]byte, error) {
	return p.model.GobEncode()
}

// GobDecode implements the gob.GobDecoder interface. The decoded
// weights must match the shape of the policy's regressor.
func (p *Linear) GobDecode(in []byte) error {
	model := &network.Linear{}
	if err := model.GobDecode(in); err != nil {
		return err
	}
	if model.Features() != p.features.Dim() || model.Outputs() != p.nActions {
		return fmt.Errorf("gobDecode: regressor of shape (%v, %v) does not "+
			"match policy of shape (%v, %v)", model.Features(),
			model.Outputs(), p.features.Dim(), p.nActions)
	}
	p.model = model
	return nil
}
