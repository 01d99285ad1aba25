package lols

import (
	"math"
	"testing"

	"github.com/samuelfneumann/golts/agent/policy"
	"github.com/samuelfneumann/golts/environment"
	"github.com/samuelfneumann/golts/environment/sequence"
	"github.com/samuelfneumann/golts/initwfn"
	"github.com/samuelfneumann/golts/solver"
	"golang.org/x/exp/rand"
)

// newTask returns a linear policy for a sequence labeling task with
// nTokens tokens and nLabels labels, with all weights initialized to
// init, together with an example labeling tokens with their value
// modulo nLabels
func newTask(t *testing.T, tokens []int, nTokens, nLabels int,
	init float64) (*policy.Linear, *sequence.Example) {
	s, err := solver.NewVanilla(0.05, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	w, err := initwfn.NewConstant(init)
	if err != nil {
		t.Fatal(err)
	}

	featurizer, _ := sequence.NewFeaturizer(nTokens)
	p, err := policy.NewLinear(featurizer, nLabels, w, s, 1)
	if err != nil {
		t.Fatal(err)
	}

	labeler := sequence.Modulo(nLabels)
	labels := make([]int, len(tokens))
	for i, tok := range tokens {
		labels[i] = labeler(tok)
	}
	ex, err := sequence.NewExample(tokens, labels, nLabels)
	if err != nil {
		t.Fatal(err)
	}
	return p, ex
}

// predicted returns the cost p predicts for label a of token tok
func predicted(p *policy.Linear, tok, a int) float64 {
	return p.Model().Weights().At(tok, a) + p.Model().Bias()[a]
}

// actOnly is a reference that cannot compute costs to go
type actOnly struct{}

func (actOnly) Act(environment.Env) int { return 0 }

func TestLOLSLearnsReference(t *testing.T) {
	p, ex := newTask(t, []int{0, 1}, 2, 3, 0.5)

	config := DefaultConfig()
	config.PRollinRef = 0
	config.PRolloutRef = 1
	l := sequence.NewHammingLoss()
	alg, err := New(sequence.Reference{}, p, l, config, 1)
	if err != nil {
		t.Fatal(err)
	}

	var first, last float64
	for i := 0; i < 100; i++ {
		if _, err := alg.Train(ex); err != nil {
			t.Fatal(err)
		}
		obj := alg.Objective()
		if math.IsNaN(obj.Value()) || math.IsInf(obj.Value(), 0) {
			t.Fatalf("train: objective is not finite: %v", obj.Value())
		}
		if obj.Len() != 2 {
			t.Errorf("train: want(2) objective terms have(%v)", obj.Len())
		}
		if i == 0 {
			first = obj.Value()
		}
		last = obj.Value()
	}

	// Every legal action has cost 0.5 before training, against targets
	// of 0 for the gold label and 1 otherwise
	if math.Abs(first-1.5) > 1e-9 {
		t.Errorf("train: initial objective want(1.5) have(%v)", first)
	}
	if last >= first {
		t.Errorf("train: expected objective to decrease, first %v last %v",
			first, last)
	}

	for i, tok := range ex.Tokens {
		gold := ex.Labels[i]
		if c := predicted(p, tok, gold); c >= 0.5 {
			t.Errorf("train: expected gold cost of token %v to decrease "+
				"below 0.5, have %v", tok, c)
		}
	}

	env := ex.MkEnv()
	if err := environment.RunEpisode(env, p); err != nil {
		t.Fatal(err)
	}
	if loss, _ := l.Evaluate(ex, env); loss != 0 {
		t.Errorf("train: want(0) test loss have(%v) with output %v", loss,
			env.Trajectory())
	}
}

func TestLOLSMixPerState(t *testing.T) {
	p, ex := newTask(t, []int{0, 1, 2}, 3, 3, 0)

	config := DefaultConfig()
	config.Mixture = MixPerState
	config.PRollinRef = 0.5
	config.PRolloutRef = 0.5
	alg, err := New(sequence.Reference{}, p, sequence.NewHammingLoss(),
		config, 3)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		loss, err := alg.Train(ex)
		if err != nil {
			t.Fatal(err)
		}
		if loss < 0 || loss > 3 {
			t.Errorf("train: loss %v outside [0, 3]", loss)
		}
	}
}

func TestLOLSShiftsByWholeCostVector(t *testing.T) {
	p, _ := newTask(t, []int{0, 1}, 2, 3, 0)
	ex := &sequence.Example{
		Tokens:    []int{0, 1},
		Labels:    []int{1, 1},
		Allowed:   [][]int{nil, {1, 2}},
		NumLabels: 3,
	}

	alg, err := New(sequence.Reference{}, p, sequence.NewHammingLoss(),
		DefaultConfig(), 0)
	if err != nil {
		t.Fatal(err)
	}
	loss, err := alg.Train(ex)
	if err != nil {
		t.Fatal(err)
	}

	// With equal costs the policy mislabels the first token, so both
	// legal deviations at the second token cost at least 1. The illegal
	// action keeps cost 0, leaving targets (1, 0, 1) and (_, 1, 2).
	if loss != 1 {
		t.Errorf("train: want(1) backbone loss have(%v)", loss)
	}
	if v := alg.Objective().Value(); math.Abs(v-7) > 1e-9 {
		t.Errorf("train: want(7) objective have(%v)", v)
	}
}

// zeroSource is a rand.Source which always returns 0
type zeroSource struct{}

func (zeroSource) Uint64() uint64 { return 0 }
func (zeroSource) Seed(uint64)    {}

func TestMixPerStateFollowsReferenceAtProbability(t *testing.T) {
	p, _ := newTask(t, []int{0}, 1, 2, 0)

	config := DefaultConfig()
	config.Mixture = MixPerState
	config.PRollinRef = 0
	config.PRolloutRef = 0
	alg, err := New(sequence.Reference{}, p, sequence.NewHammingLoss(),
		config, 0)
	if err != nil {
		t.Fatal(err)
	}
	alg.rng = rand.New(zeroSource{})

	// A draw equal to the probability follows the reference
	rollin, rollout := alg.strategies()
	if c := rollin(0); c != FollowRef() {
		t.Errorf("rollin: want(%v) have(%v)", FollowRef(), c)
	}
	if c := rollout(0); c != FollowRef() {
		t.Errorf("rollout: want(%v) have(%v)", FollowRef(), c)
	}
}

func TestLOLSRejectsReferenceWithoutCosts(t *testing.T) {
	p, _ := newTask(t, []int{0}, 1, 2, 0)
	if _, err := New(actOnly{}, p, sequence.NewHammingLoss(),
		DefaultConfig(), 0); err == nil {
		t.Errorf("new: expected error on reference without costs to go")
	}
}

func TestLOLSEmptyExample(t *testing.T) {
	p, ex := newTask(t, []int{}, 1, 2, 0)
	alg, err := New(sequence.Reference{}, p, sequence.NewHammingLoss(),
		DefaultConfig(), 0)
	if err != nil {
		t.Fatal(err)
	}
	loss, err := alg.Train(ex)
	if err != nil {
		t.Fatal(err)
	}
	if loss != 0 || alg.Objective().Len() != 0 {
		t.Errorf("train: expected no loss and no objective terms on an " +
			"empty example")
	}
}

func TestEpisodeRunnerRecords(t *testing.T) {
	p, ex := newTask(t, []int{0, 1}, 2, 3, 0)
	runner := NewEpisodeRunner(p, Always(FollowRef()), sequence.Reference{})

	env := ex.MkEnv()
	if err := environment.RunEpisode(env, runner); err != nil {
		t.Fatal(err)
	}

	traj := runner.Trajectory()
	if len(traj) != 2 || traj[0] != 0 || traj[1] != 1 {
		t.Errorf("trajectory: want([0 1]) have(%v)", traj)
	}

	refCosts := runner.RefCosts()
	want := [][]float64{{0, 1, 1}, {1, 0, 1}}
	for i := range want {
		for j := range want[i] {
			if refCosts[i][j] != want[i][j] {
				t.Errorf("refCosts: timestep %v want(%v) have(%v)", i,
					want[i], refCosts[i])
				break
			}
		}
	}

	for i, limit := range runner.LimitedActions() {
		if len(limit) != 3 {
			t.Errorf("limitedActions: timestep %v want(3) actions have(%v)",
				i, limit)
		}
	}
	if len(runner.Costs()) != 2 {
		t.Errorf("costs: want(2) predictions have(%v)", len(runner.Costs()))
	}

	steps := runner.Steps()
	if !steps[0].First() || !steps[1].Last() {
		t.Errorf("steps: expected first and last steps, have %v", steps)
	}
}

func TestEpisodeRunnerPanicsOnIllegalAction(t *testing.T) {
	p, _ := newTask(t, []int{0}, 1, 3, 0)
	ex := &sequence.Example{
		Tokens:    []int{0},
		Labels:    []int{1},
		Allowed:   [][]int{{1, 2}},
		NumLabels: 3,
	}
	runner := NewEpisodeRunner(p, Always(ActOn(0)), sequence.Reference{})

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("act: expected panic on illegal action")
		}
	}()
	environment.RunEpisode(ex.MkEnv(), runner)
}

func TestEpisodeRunnerPanicsOnInvalidChoice(t *testing.T) {
	p, ex := newTask(t, []int{0}, 1, 2, 0)
	runner := NewEpisodeRunner(p, Always(Choice{Kind: Kind(7)}),
		sequence.Reference{})

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("act: expected panic on invalid choice")
		}
	}()
	environment.RunEpisode(ex.MkEnv(), runner)
}

func TestEpisodeRunnerPanicsWithoutCosts(t *testing.T) {
	p, ex := newTask(t, []int{0}, 1, 2, 0)
	runner := NewEpisodeRunner(p, Always(FollowRef()), actOnly{})

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("act: expected panic on reference without costs to go")
		}
	}()
	environment.RunEpisode(ex.MkEnv(), runner)
}
