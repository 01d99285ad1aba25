package network

import (
	"math"
	"testing"

	"github.com/samuelfneumann/golts/initwfn"
	"github.com/samuelfneumann/golts/solver"
	"gonum.org/v1/gonum/mat"
)

const tolerance = 1e-9

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestLinearPredict(t *testing.T) {
	init, err := initwfn.NewConstant(0.5)
	if err != nil {
		t.Fatal(err)
	}
	l, err := NewLinear(2, 3, init)
	if err != nil {
		t.Fatal(err)
	}
	copy(l.Bias(), []float64{1, 0, -1})

	pred := l.Predict(mat.NewVecDense(2, []float64{1, 2}))
	want := []float64{2.5, 1.5, 0.5}
	for i := range want {
		if !closeTo(pred.Costs[i], want[i]) {
			t.Errorf("predict: output %v want(%v) have(%v)", i, want[i],
				pred.Costs[i])
		}
	}
}

func TestNewLinearInvalidShape(t *testing.T) {
	if _, err := NewLinear(0, 3, nil); err == nil {
		t.Errorf("newLinear: expected error on zero features")
	}
}

func TestObjectiveBackwardAndStep(t *testing.T) {
	l, err := NewLinear(2, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	x := mat.NewVecDense(2, []float64{1, 2})

	obj := NewObjective(l)
	obj.Add(l.Predict(x), []float64{1, 0}, nil)
	if !closeTo(obj.Value(), 1.0) {
		t.Errorf("value: want(1) have(%v)", obj.Value())
	}

	if err := obj.Backward(); err != nil {
		t.Fatal(err)
	}
	if !closeTo(obj.Value(), 1.0) {
		t.Errorf("backward: value want(1) have(%v)", obj.Value())
	}

	// d/dW (xW + b - y)^2 = 2 (xW + b - y) x
	weights, bias := l.Grads()
	wantWeights := []float64{-2, 0, -4, 0}
	wantBias := []float64{-2, 0}
	for i := range wantWeights {
		if !closeTo(weights[i], wantWeights[i]) {
			t.Errorf("backward: weight gradient %v want(%v) have(%v)", i,
				wantWeights[i], weights[i])
		}
	}
	for i := range wantBias {
		if !closeTo(bias[i], wantBias[i]) {
			t.Errorf("backward: bias gradient %v want(%v) have(%v)", i,
				wantBias[i], bias[i])
		}
	}

	if err := obj.Backward(); err == nil {
		t.Errorf("backward: expected error on second call")
	}

	s, err := solver.NewVanilla(0.1, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Step(s); err != nil {
		t.Fatal(err)
	}

	pred := l.Predict(x)
	if !closeTo(pred.Costs[0], 1.2) || !closeTo(pred.Costs[1], 0) {
		t.Errorf("step: want(1.2, 0) have(%v, %v)", pred.Costs[0],
			pred.Costs[1])
	}

	weights, bias = l.Grads()
	for _, g := range append(weights, bias...) {
		if g != 0 {
			t.Errorf("step: expected gradients to be cleared")
			break
		}
	}
}

func TestObjectiveMask(t *testing.T) {
	l, err := NewLinear(1, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	x := mat.NewVecDense(1, []float64{1})

	obj := NewObjective(l)
	obj.Add(l.Predict(x), []float64{5, 1, 2}, []int{1, 2})
	if !closeTo(obj.Value(), 5) {
		t.Errorf("value: want(5) have(%v)", obj.Value())
	}

	if err := obj.Backward(); err != nil {
		t.Fatal(err)
	}
	_, bias := l.Grads()
	want := []float64{0, -2, -4}
	for i := range want {
		if !closeTo(bias[i], want[i]) {
			t.Errorf("backward: bias gradient %v want(%v) have(%v)", i,
				want[i], bias[i])
		}
	}
}

func TestObjectiveMerge(t *testing.T) {
	l, err := NewLinear(1, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	x := mat.NewVecDense(1, []float64{1})

	var total Objective
	for _, target := range [][]float64{{1, 0}, {0, 2}} {
		obj := NewObjective(l)
		obj.Add(l.Predict(x), target, nil)
		total.Merge(obj)
	}

	if total.Len() != 2 {
		t.Errorf("merge: want(2) terms have(%v)", total.Len())
	}
	if !closeTo(total.Value(), 5) {
		t.Errorf("merge: value want(5) have(%v)", total.Value())
	}
	if err := total.Backward(); err != nil {
		t.Fatal(err)
	}
	if !closeTo(total.Value(), 5) {
		t.Errorf("backward: value want(5) have(%v)", total.Value())
	}
}

func TestEmptyObjective(t *testing.T) {
	var obj Objective
	if err := obj.Backward(); err != nil {
		t.Errorf("backward: expected empty objective to be a no-op, got %v",
			err)
	}
	if obj.Value() != 0 {
		t.Errorf("value: want(0) have(%v)", obj.Value())
	}
}

func TestLinearGob(t *testing.T) {
	init, err := initwfn.NewUniform(-1, 1)
	if err != nil {
		t.Fatal(err)
	}
	l, err := NewLinear(3, 2, init)
	if err != nil {
		t.Fatal(err)
	}

	data, err := l.GobEncode()
	if err != nil {
		t.Fatal(err)
	}
	var decoded Linear
	if err := decoded.GobDecode(data); err != nil {
		t.Fatal(err)
	}

	if !mat.Equal(l.Weights(), decoded.Weights()) {
		t.Errorf("gobDecode: weights differ")
	}
}
