package lols

import (
	"math"
	"testing"

	"github.com/samuelfneumann/golts/environment"
	"github.com/samuelfneumann/golts/environment/sequence"
	"github.com/samuelfneumann/golts/network"
	"github.com/samuelfneumann/golts/utils/intutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func TestBuildCostVector(t *testing.T) {
	p, _ := newTask(t, []int{0}, 1, 3, 0)

	for _, test := range []struct {
		method LearningMethod
		want   []float64
	}{
		{LearnIPS, []float64{-0.5, -0.5, 5.5}},
		{LearnBiased, []float64{-0.5, -0.5, 3.5}},
		{LearnDR, []float64{1, 2, -3}},
	} {
		config := DefaultConfig()
		config.LearningMethod = test.method
		b, err := NewBanditLOLS(sequence.Reference{}, p, config, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		b.devA = 2
		b.devWeight = 4
		b.devCosts = network.Prediction{
			Input: mat.NewVecDense(1, []float64{1}),
			Costs: []float64{1, 2, 3},
		}

		costs := b.BuildCostVector(0.5, 1.5)
		for i := range test.want {
			if math.Abs(costs[i]-test.want[i]) > 1e-9 {
				t.Errorf("buildCostVector(%v): want(%v) have(%v)", test.method,
					test.want, costs)
				break
			}
		}
	}
}

func TestNewBanditLOLSRejectsInvalidConfig(t *testing.T) {
	p, _ := newTask(t, []int{0}, 1, 3, 0)
	config := DefaultConfig()
	config.Exploration = "Thompson"
	if _, err := NewBanditLOLS(sequence.Reference{}, p, config, nil,
		nil); err == nil {
		t.Errorf("newBanditLOLS: expected error on unknown exploration")
	}
}

func TestBanditLOLSExploresOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(4))

	for _, exploration := range []Exploration{ExploreUniform,
		ExploreBoltzmann, ExploreBoltzmannBiased} {
		for i := 0; i < 20; i++ {
			p, _ := newTask(t, []int{0, 1, 2}, 3, 3, 0)
			ex := &sequence.Example{
				Tokens:    []int{0, 1, 2},
				Labels:    []int{1, 1, 2},
				Allowed:   [][]int{{1, 2}, {1, 2}, {1, 2}},
				NumLabels: 3,
			}

			config := DefaultConfig()
			config.Exploration = exploration
			b, err := NewBanditLOLS(sequence.Reference{}, p, config, nil, rng)
			if err != nil {
				t.Fatal(err)
			}
			env := ex.MkEnv()
			if err := environment.RunEpisode(env, b); err != nil {
				t.Fatal(err)
			}

			devT, devA, weight, ok := b.Deviation()
			if !ok {
				t.Fatalf("act: expected exploration with epsilon 1")
			}
			if devT < 1 || devT > 3 {
				t.Errorf("act: deviation timestep %v outside [1, 3]", devT)
			}
			if !intutils.Contains([]int{1, 2}, devA) {
				t.Errorf("explore(%v): explored illegal action %v",
					exploration, devA)
			}
			if env.Trajectory()[devT-1] != devA {
				t.Errorf("act: explored action %v was not taken at %v",
					devA, devT)
			}

			switch exploration {
			case ExploreUniform:
				if weight != 2 {
					t.Errorf("explore: uniform weight want(2) have(%v)",
						weight)
				}

			default:
				// Equal predicted costs give equal propensities
				if math.Abs(weight-2) > 1e-9 {
					t.Errorf("explore(%v): weight want(2) have(%v)",
						exploration, weight)
				}
			}
		}
	}
}

func TestBoltzmannImportanceWeights(t *testing.T) {
	probs := boltzmann([]float64{0, 30}, []int{0, 1})

	rare := math.Exp(-30) / (1 + math.Exp(-30))
	if math.Abs(probs[1]-rare) > 1e-9*rare {
		t.Errorf("boltzmann: want(%v) have(%v)", rare, probs[1])
	}
	if math.Abs(probs[0]+probs[1]-1) > 1e-12 {
		t.Errorf("boltzmann: expected a distribution, have %v", probs)
	}

	if w := importanceWeight(probs[1], false); math.Abs(w-1/rare) > 1e-6/rare {
		t.Errorf("importanceWeight: want(%v) have(%v)", 1/rare, w)
	}
	if w := importanceWeight(probs[1], true); math.Abs(w-1e4) > 1e-6 {
		t.Errorf("importanceWeight: biased want(10000) have(%v)", w)
	}

	// The floor does not change likely actions
	want := 1 / probs[0]
	for _, biased := range []bool{false, true} {
		if w := importanceWeight(probs[0], biased); math.Abs(w-want) > 1e-12 {
			t.Errorf("importanceWeight(%v): want(%v) have(%v)", biased, want,
				w)
		}
	}
}

func TestBoltzmannMasksIllegalActions(t *testing.T) {
	probs := boltzmann([]float64{-5, 0, 5}, []int{2})
	if probs[0] != 0 || probs[1] != 0 || probs[2] != 1 {
		t.Errorf("boltzmann: want([0 0 1]) have(%v)", probs)
	}
}

func TestBanditLOLSUpdate(t *testing.T) {
	p, ex := newTask(t, []int{0, 1}, 2, 3, 0)
	baseline := NewEWMA(0.5, 0)

	// No exploration with epsilon 0
	config := DefaultConfig()
	config.Epsilon = 0
	b, err := NewBanditLOLS(sequence.Reference{}, p, config, baseline, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := environment.RunEpisode(ex.MkEnv(), b); err != nil {
		t.Fatal(err)
	}
	if err := b.Update(1); err != nil {
		t.Fatal(err)
	}
	if baseline.Value() != 0 {
		t.Errorf("update: expected no-op without exploration, baseline %v",
			baseline.Value())
	}
	for _, v := range p.Model().Bias() {
		if v != 0 {
			t.Errorf("update: expected no-op without exploration, bias %v",
				p.Model().Bias())
			break
		}
	}

	config.Epsilon = 1
	b, err = NewBanditLOLS(sequence.Reference{}, p, config, baseline, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := environment.RunEpisode(ex.MkEnv(), b); err != nil {
		t.Fatal(err)
	}
	if err := b.Update(1); err != nil {
		t.Fatal(err)
	}
	if baseline.Value() != 0.5 {
		t.Errorf("update: baseline want(0.5) have(%v)", baseline.Value())
	}

	_, devA, _, _ := b.Deviation()
	if p.Model().Bias()[devA] <= 0 {
		t.Errorf("update: expected the explored action's cost to increase, "+
			"bias %v", p.Model().Bias())
	}
}

func TestBanditTrain(t *testing.T) {
	p, ex := newTask(t, []int{0, 1, 2}, 3, 3, 0)

	config := DefaultConfig()
	config.LearningMethod = LearnDR
	config.Exploration = ExploreBoltzmann
	alg, err := NewBandit(sequence.Reference{}, p, sequence.NewHammingLoss(),
		config, NewEWMA(0.1, 0), 2)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 20; i++ {
		loss, err := alg.Train(ex)
		if err != nil {
			t.Fatal(err)
		}
		if loss < 0 || loss > 3 {
			t.Errorf("train: loss %v outside [0, 3]", loss)
		}
	}
}
