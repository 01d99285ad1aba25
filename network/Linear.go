// Package network implements the differentiable cost regressors that
// policies use to predict the cost of each action, on top of the
// Gorgonia gradient engine.
package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/samuelfneumann/golts/initwfn"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Prediction is the output of a Linear regressor for a single input.
// It remembers the input so that an Objective on the prediction can be
// differentiated later with respect to the regressor's weights.
type Prediction struct {
	Input *mat.VecDense
	Costs []float64
}

// param is a single learnable tensor of a regressor together with its
// accumulated gradient. It implements G.ValueGrad so that it can be
// stepped by any Gorgonia Solver.
type param struct {
	value *tensor.Dense
	grad  *tensor.Dense
}

// Value implements the G.Valuer interface
func (p param) Value() G.Value { return p.value }

// Grad implements the G.ValueGrad interface
func (p param) Grad() (G.Value, error) { return p.grad, nil }

// Linear implements a linear regressor from features to one output per
// action: y = xW + b. Gradients of Objectives built on the regressor's
// Predictions are accumulated by Objective.Backward and applied by
// Step.
type Linear struct {
	features int
	outputs  int

	weights param // features x outputs
	bias    param // 1 x outputs

	// weightsView shares its backing data with weights so that
	// predictions can be made with gonum without a graph
	weightsView *mat.Dense
}

// NewLinear returns a new Linear regressor with the given number of
// input features and outputs. Weights are initialized with init, or
// to zero if init is nil. Biases are always initialized to zero.
func NewLinear(features, outputs int, init *initwfn.InitWFn) (*Linear,
	error) {
	if features <= 0 || outputs <= 0 {
		return nil, fmt.Errorf("newLinear: invalid shape (%v, %v)", features,
			outputs)
	}

	var w []float64
	if init != nil {
		w = init.Values(features, outputs)
	} else {
		w = make([]float64, features*outputs)
	}
	if len(w) != features*outputs {
		return nil, fmt.Errorf("newLinear: weight initializer returned %v "+
			"values, expected %v", len(w), features*outputs)
	}

	l := &Linear{features: features, outputs: outputs}
	l.setData(w, make([]float64, outputs))
	return l, nil
}

// setData sets the backing data of the weights and bias
func (l *Linear) setData(w, b []float64) {
	l.weights = param{
		value: tensor.New(tensor.WithShape(l.features, l.outputs),
			tensor.WithBacking(w)),
		grad: tensor.New(tensor.Of(tensor.Float64),
			tensor.WithShape(l.features, l.outputs)),
	}
	l.bias = param{
		value: tensor.New(tensor.WithShape(1, l.outputs),
			tensor.WithBacking(b)),
		grad: tensor.New(tensor.Of(tensor.Float64),
			tensor.WithShape(1, l.outputs)),
	}
	l.weightsView = mat.NewDense(l.features, l.outputs, w)
}

// Features returns the number of input features
func (l *Linear) Features() int {
	return l.features
}

// Outputs returns the number of outputs
func (l *Linear) Outputs() int {
	return l.outputs
}

// Weights returns the weights of the regressor as a features x outputs
// matrix. The returned matrix shares its data with the regressor.
func (l *Linear) Weights() *mat.Dense {
	return l.weightsView
}

// Bias returns the bias of the regressor. The returned slice shares its
// data with the regressor.
func (l *Linear) Bias() []float64 {
	return l.bias.value.Data().([]float64)
}

// Predict computes the outputs of the regressor on input x
func (l *Linear) Predict(x mat.Vector) Prediction {
	if x.Len() != l.features {
		panic(fmt.Sprintf("predict: invalid number of features\n\twant(%v)"+
			"\n\thave(%v)", l.features, x.Len()))
	}

	input := mat.VecDenseCopyOf(x)
	out := mat.NewVecDense(l.outputs, nil)
	out.MulVec(l.weightsView.T(), input)

	costs := out.RawVector().Data
	bias := l.Bias()
	for i := range costs {
		costs[i] += bias[i]
	}
	return Prediction{Input: input, Costs: costs}
}

// fwd adds the forward pass of the regressor on x to the graph of x,
// using weights and bias as the regressor's parameter nodes
func fwd(x, weights, bias *G.Node) (*G.Node, error) {
	pred, err := G.Mul(x, weights)
	if err != nil {
		return nil, fmt.Errorf("fwd: could not multiply weights: %v", err)
	}

	// Broadcast the bias weights to all samples along the batch
	// dimension
	pred, err = G.BroadcastAdd(pred, bias, nil, []byte{0})
	if err != nil {
		return nil, fmt.Errorf("fwd: could not add bias: %v", err)
	}
	return pred, nil
}

// nodes adds the parameters of the regressor to graph g
func (l *Linear) nodes(g *G.ExprGraph) (weights, bias *G.Node) {
	weights = G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(l.features, l.outputs),
		G.WithName("weights"),
		G.WithValue(l.weights.value),
	)
	bias = G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(1, l.outputs),
		G.WithName("bias"),
		G.WithValue(l.bias.value),
	)
	return weights, bias
}

// accumulate adds gradients to those already accumulated
func (l *Linear) accumulate(weightsGrad, biasGrad G.Value) error {
	for _, pair := range []struct {
		dst *tensor.Dense
		src G.Value
	}{{l.weights.grad, weightsGrad}, {l.bias.grad, biasGrad}} {
		dst := pair.dst.Data().([]float64)
		src, ok := pair.src.Data().([]float64)
		if !ok || len(src) != len(dst) {
			return fmt.Errorf("accumulate: gradient of invalid shape %v",
				pair.src.Shape())
		}
		for i := range dst {
			dst[i] += src[i]
		}
	}
	return nil
}

// Model returns the learnable parameters of the regressor together
// with their accumulated gradients
func (l *Linear) Model() []G.ValueGrad {
	return []G.ValueGrad{l.weights, l.bias}
}

// Grads returns copies of the accumulated gradients of the weights and
// bias
func (l *Linear) Grads() (weights, bias []float64) {
	weights = append([]float64(nil), l.weights.grad.Data().([]float64)...)
	bias = append([]float64(nil), l.bias.grad.Data().([]float64)...)
	return weights, bias
}

// ZeroGrad clears the accumulated gradients
func (l *Linear) ZeroGrad() {
	l.weights.grad.Zero()
	l.bias.grad.Zero()
}

// Step applies the accumulated gradients with solver and then clears
// them
func (l *Linear) Step(solver G.Solver) error {
	if err := solver.Step(l.Model()); err != nil {
		return fmt.Errorf("step: could not step solver: %v", err)
	}
	l.ZeroGrad()
	return nil
}

// linearGob is the gob-encodable representation of a Linear
type linearGob struct {
	Features int
	Outputs  int
	Weights  []float64
	Bias     []float64
}

// GobEncode implements the gob.GobEncoder interface
func (l *Linear) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	err := enc.Encode(linearGob{
		Features: l.features,
		Outputs:  l.outputs,
		Weights:  l.weights.value.Data().([]float64),
		Bias:     l.Bias(),
	})
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (l *Linear) GobDecode(in []byte) error {
	var decoded linearGob
	dec := gob.NewDecoder(bytes.NewReader(in))
	if err := dec.Decode(&decoded); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}
	if len(decoded.Weights) != decoded.Features*decoded.Outputs ||
		len(decoded.Bias) != decoded.Outputs {
		return fmt.Errorf("gobDecode: inconsistent shapes")
	}

	l.features = decoded.Features
	l.outputs = decoded.Outputs
	l.setData(decoded.Weights, decoded.Bias)
	return nil
}
