package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Objective is a sum of squared errors between the Predictions of a
// Linear regressor and target outputs. Each term may restrict the error
// to a subset of the outputs (e.g. to the legal actions in a state).
//
// Terms are accumulated with Add and Merge; Backward then computes the
// gradient of the whole sum with respect to the regressor's parameters
// in a single pass through a Gorgonia graph and accumulates it into the
// regressor. The errors are summed, not averaged.
//
// The zero value is an empty Objective that adopts the regressor of
// the first Objective merged into it.
type Objective struct {
	model *Linear

	inputs  []float64 // terms x features
	targets []float64 // terms x outputs
	masks   []float64 // terms x outputs
	terms   int

	value    float64
	backward bool
}

// NewObjective returns a new, empty Objective over the regressor model
func NewObjective(model *Linear) *Objective {
	return &Objective{model: model}
}

// Add adds the squared error between pred and target, restricted to
// the outputs in mask, to the Objective. If mask is nil, then all
// outputs contribute.
func (o *Objective) Add(pred Prediction, target []float64, mask []int) {
	if o.model == nil {
		panic("add: objective has no regressor")
	}
	if o.backward {
		panic("add: objective has already been back-propagated")
	}
	if pred.Input == nil || pred.Input.Len() != o.model.features {
		panic("add: prediction was not made by the objective's regressor")
	}
	if len(target) != o.model.outputs || len(pred.Costs) != o.model.outputs {
		panic(fmt.Sprintf("add: invalid target length\n\twant(%v)"+
			"\n\thave(%v)", o.model.outputs, len(target)))
	}

	m := make([]float64, o.model.outputs)
	if mask == nil {
		for i := range m {
			m[i] = 1.0
		}
	} else {
		for _, i := range mask {
			m[i] = 1.0
		}
	}

	for i := range m {
		if m[i] == 0 {
			continue
		}
		diff := pred.Costs[i] - target[i]
		o.value += diff * diff
	}

	o.inputs = append(o.inputs, pred.Input.RawVector().Data...)
	o.targets = append(o.targets, target...)
	o.masks = append(o.masks, m...)
	o.terms++
}

// Merge adds all terms of other to the Objective
func (o *Objective) Merge(other *Objective) {
	if other == nil || other.terms == 0 {
		return
	}
	if o.model == nil {
		o.model = other.model
	}
	if o.model != other.model {
		panic("merge: objectives are over different regressors")
	}
	if o.backward {
		panic("merge: objective has already been back-propagated")
	}

	o.inputs = append(o.inputs, other.inputs...)
	o.targets = append(o.targets, other.targets...)
	o.masks = append(o.masks, other.masks...)
	o.terms += other.terms
	o.value += other.value
}

// Value returns the current value of the Objective
func (o *Objective) Value() float64 {
	return o.value
}

// Len returns the number of terms in the Objective
func (o *Objective) Len() int {
	return o.terms
}

// Backward computes the gradient of the Objective with respect to the
// regressor's weights and accumulates it into the regressor. Backward
// may be called only once per Objective. An empty Objective is a no-op.
func (o *Objective) Backward() error {
	if o.backward {
		return fmt.Errorf("backward: objective has already been " +
			"back-propagated")
	}
	o.backward = true
	if o.terms == 0 {
		return nil
	}

	l := o.model
	g := G.NewGraph()
	weights, bias := l.nodes(g)

	inputs := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(o.terms, l.features),
		G.WithName("features"),
		G.WithValue(tensor.New(
			tensor.WithShape(o.terms, l.features),
			tensor.WithBacking(o.inputs),
		)),
	)
	targets := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(o.terms, l.outputs),
		G.WithName("targets"),
		G.WithValue(tensor.New(
			tensor.WithShape(o.terms, l.outputs),
			tensor.WithBacking(o.targets),
		)),
	)
	masks := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(o.terms, l.outputs),
		G.WithName("masks"),
		G.WithValue(tensor.New(
			tensor.WithShape(o.terms, l.outputs),
			tensor.WithBacking(o.masks),
		)),
	)

	pred, err := fwd(inputs, weights, bias)
	if err != nil {
		return fmt.Errorf("backward: %v", err)
	}

	// Squared error on the unmasked outputs only
	errs := G.Must(G.Sub(pred, targets))
	errs = G.Must(G.HadamardProd(errs, masks))
	errs = G.Must(G.Square(errs))
	cost := G.Must(G.Sum(errs))

	if _, err := G.Grad(cost, weights, bias); err != nil {
		return fmt.Errorf("backward: could not compute gradient: %v", err)
	}

	vm := G.NewTapeMachine(g, G.BindDualValues(weights, bias))
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return fmt.Errorf("backward: could not run graph: %v", err)
	}

	weightsGrad, err := weights.Grad()
	if err != nil {
		return fmt.Errorf("backward: no weights gradient: %v", err)
	}
	biasGrad, err := bias.Grad()
	if err != nil {
		return fmt.Errorf("backward: no bias gradient: %v", err)
	}
	if err := l.accumulate(weightsGrad, biasGrad); err != nil {
		return fmt.Errorf("backward: %v", err)
	}

	if v, ok := cost.Value().Data().(float64); ok {
		o.value = v
	}
	return nil
}
