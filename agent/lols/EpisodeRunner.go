// Package lols implements the LOLS (locally optimal learning to search)
// family of learning algorithms, which train a cost-sensitive policy
// by rolling in to a state, deviating from it, and rolling out to
// measure the cost of the deviation.
package lols

import (
	"fmt"

	"github.com/samuelfneumann/golts/agent"
	"github.com/samuelfneumann/golts/environment"
	"github.com/samuelfneumann/golts/network"
	"github.com/samuelfneumann/golts/timestep"
	"github.com/samuelfneumann/golts/utils/intutils"
)

// EpisodeRunner acts in an environment according to a RunStrategy and
// records every decision it makes: the action taken, the legal
// actions, the costs the policy predicted and the reference's costs to
// go.
//
// The policy is queried at every timestep, even when its action is not
// taken, so that its features are computed in order.
type EpisodeRunner struct {
	policy    agent.CostPredictor
	strategy  RunStrategy
	reference agent.Reference

	t     int
	steps []timestep.TimeStep
	preds []network.Prediction
}

// NewEpisodeRunner returns a new EpisodeRunner. The reference must be
// an agent.CostSetter.
func NewEpisodeRunner(policy agent.CostPredictor, strategy RunStrategy,
	reference agent.Reference) *EpisodeRunner {
	return &EpisodeRunner{
		policy:    policy,
		strategy:  strategy,
		reference: reference,
	}
}

// Act chooses the action to take in the current state of e according to
// the runner's RunStrategy and records the decision
func (r *EpisodeRunner) Act(e environment.Env) int {
	choice := r.strategy(r.t)
	pol := r.policy.Act(e)

	setter, ok := r.reference.(agent.CostSetter)
	if !ok {
		panic(fmt.Sprintf("act: reference %T cannot set costs to go",
			r.reference))
	}
	refCosts := make([]float64, r.policy.NumActions())
	setter.SetMinCostsToGo(e, refCosts)

	var a int
	switch choice.Kind {
	case Ref:
		a = r.reference.Act(e)
	case Learn:
		a = pol
	case Act:
		a = choice.Action
	default:
		panic(fmt.Sprintf("act: run strategy yielded an invalid choice %v",
			choice))
	}

	legal := intutils.Copy(e.Actions())
	if !intutils.Contains(legal, a) {
		panic(fmt.Sprintf("act: run strategy insisted on illegal action %v, "+
			"legal actions are %v", a, legal))
	}

	pred := r.policy.PredictCosts(e)

	stepType := timestep.Mid
	if r.t == 0 {
		stepType = timestep.First
	}
	r.steps = append(r.steps, timestep.New(stepType, r.t, a, legal,
		pred.Costs, refCosts))
	r.preds = append(r.preds, pred)
	r.t++

	return a
}

// NewExample drops the trajectory-dependent features of the policy. The
// static features of the example are kept, so that an example can be
// replayed many times while computing them only once.
func (r *EpisodeRunner) NewExample() {
	r.policy.Rewind()
}

// Steps returns the decisions recorded so far. The last decision is
// marked as the last step of the episode.
func (r *EpisodeRunner) Steps() []timestep.TimeStep {
	if len(r.steps) > 0 {
		r.steps[len(r.steps)-1].SetLast()
	}
	return r.steps
}

// Trajectory returns the actions taken so far
func (r *EpisodeRunner) Trajectory() []int {
	traj := make([]int, len(r.steps))
	for i, step := range r.steps {
		traj[i] = step.Action
	}
	return traj
}

// LimitedActions returns the legal actions of each timestep so far
func (r *EpisodeRunner) LimitedActions() [][]int {
	limits := make([][]int, len(r.steps))
	for i, step := range r.steps {
		limits[i] = step.Limit
	}
	return limits
}

// Costs returns the policy's predictions at each timestep so far
func (r *EpisodeRunner) Costs() []network.Prediction {
	return r.preds
}

// RefCosts returns the reference's costs to go at each timestep so far
func (r *EpisodeRunner) RefCosts() [][]float64 {
	costs := make([][]float64, len(r.steps))
	for i, step := range r.steps {
		costs[i] = step.RefCosts
	}
	return costs
}
