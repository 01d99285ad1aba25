// Package agent defines the interfaces of the policies, references and
// learning algorithms of learning to search
package agent

import (
	"github.com/samuelfneumann/golts/environment"
	"github.com/samuelfneumann/golts/network"
)

// Policy represents a policy that chooses actions in an environment.
//
// Act chooses an action among the legal actions of the current state.
// Greedy chooses the lowest cost action, restricted to limit if limit
// is non-nil. Rewind drops any features the Policy has cached that
// depend on the trajectory, so that the current example can be replayed.
type Policy interface {
	environment.Policy
	Greedy(e environment.Env, limit []int) int
	Rewind()
}

// CostPredictor is a Policy that predicts the cost of every action and
// can be trained to regress those costs towards target costs.
//
// ForwardPartialComplete returns the Objective measuring the error of a
// previous prediction against target on the actions in legal. Gradients
// of Objectives are accumulated by Objective.Backward and applied by
// Step.
type CostPredictor interface {
	Policy
	NumActions() int
	PredictCosts(e environment.Env) network.Prediction
	ForwardPartialComplete(pred network.Prediction, target []float64,
		legal []int) *network.Objective
	Step() error
}

// Reference is an expert policy available during training
type Reference interface {
	Act(e environment.Env) int
}

// CostSetter is a Reference that can compute the minimum achievable
// cost-to-go of every action in the current state of an environment.
// SetMinCostsToGo fills costs in place; costs has one entry per action.
type CostSetter interface {
	Reference
	SetMinCostsToGo(e environment.Env, costs []float64)
}

// Learner is a Policy that updates itself from the loss of a complete
// episode it acted in
type Learner interface {
	environment.Policy
	Update(loss float64) error
}

// LearningAlg is a learning algorithm that trains a policy on a single
// example at a time. Train returns the task loss incurred on the example.
type LearningAlg interface {
	Train(ex environment.Example) (float64, error)
}
