// Package experiment implements functionality for running an experiment
package experiment

import (
	"fmt"

	"github.com/samuelfneumann/golts/agent"
	"github.com/samuelfneumann/golts/agent/lols"
	"github.com/samuelfneumann/golts/agent/policy"
	"github.com/samuelfneumann/golts/environment"
	"github.com/samuelfneumann/golts/environment/sequence"
	"github.com/samuelfneumann/golts/experiment/checkpointer"
	"github.com/samuelfneumann/golts/experiment/trackers"
	"github.com/samuelfneumann/golts/initwfn"
	"github.com/samuelfneumann/golts/loss"
	"github.com/samuelfneumann/golts/solver"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments train a policy on a dataset for a number of epochs,
// sending the loss of every training example and of every evaluation
// to Trackers, which cache the data in RAM to be later saved to disk
// with Save. Run runs all epochs, RunEpoch runs a single one.
type Experiment interface {
	Run() error
	RunEpoch(epoch int) error

	// Save all tracked data to disk
	Save() error

	// Adds a new trackers.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t trackers.Tracker)
}

// Algorithm is a learning to search algorithm an experiment can run
type Algorithm string

const (
	LOLS       Algorithm = "LOLS"
	BanditLOLS Algorithm = "BanditLOLS"
)

// TaskConfig describes a randomly generated sequence labeling task
type TaskConfig struct {
	Train  int // Number of training examples
	Test   int // Number of test examples
	Length int // Length of each sequence
	Tokens int // Number of distinct tokens
	Labels int // Number of distinct labels
}

// Validate returns an error describing why the TaskConfig is invalid,
// if it is
func (t TaskConfig) Validate() error {
	if t.Train < 0 || t.Test < 0 {
		return fmt.Errorf("validate: dataset sizes must be non-negative, "+
			"got %v and %v", t.Train, t.Test)
	}
	if t.Length < 0 {
		return fmt.Errorf("validate: sequence length must be non-negative, "+
			"got %v", t.Length)
	}
	if t.Tokens <= 0 || t.Labels <= 0 {
		return fmt.Errorf("validate: expected at least one token and "+
			"label, got %v and %v", t.Tokens, t.Labels)
	}
	return nil
}

// Config represents a configuration of an experiment
type Config struct {
	Algorithm
	LOLS lols.Config
	Task TaskConfig

	Solver  *solver.Solver
	InitWFn *initwfn.InitWFn

	Epochs int

	// BaselineRate is the rate of the EWMA baseline used by BanditLOLS,
	// no baseline is used if BaselineRate is 0
	BaselineRate float64

	// CheckpointEvery is the number of examples between checkpoints of
	// the policy, no checkpoints are saved if CheckpointEvery is 0
	CheckpointEvery int
	CheckpointFile  string

	Seed uint64
}

// DefaultConfig returns the default configuration of an experiment
func DefaultConfig() Config {
	s, err := solver.NewDefaultAdam(0.01, 1)
	if err != nil {
		panic(fmt.Sprintf("defaultConfig: %v", err))
	}
	init, err := initwfn.NewZeroes()
	if err != nil {
		panic(fmt.Sprintf("defaultConfig: %v", err))
	}

	return Config{
		Algorithm: LOLS,
		LOLS:      lols.DefaultConfig(),
		Task: TaskConfig{
			Train:  100,
			Test:   20,
			Length: 5,
			Tokens: 10,
			Labels: 3,
		},
		Solver:         s,
		InitWFn:        init,
		Epochs:         5,
		CheckpointFile: "policy",
	}
}

// Validate returns an error describing why the Config is invalid, if it
// is
func (c Config) Validate() error {
	switch c.Algorithm {
	case LOLS, BanditLOLS:
	default:
		return fmt.Errorf("validate: unknown algorithm %q", c.Algorithm)
	}
	if err := c.LOLS.Validate(); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if err := c.Task.Validate(); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if c.Solver == nil {
		return fmt.Errorf("validate: no solver")
	}
	if c.Epochs < 0 {
		return fmt.Errorf("validate: epochs must be non-negative, got %v",
			c.Epochs)
	}
	if c.BaselineRate < 0 || c.BaselineRate > 1 {
		return fmt.Errorf("validate: baseline rate must be in [0, 1], got %v",
			c.BaselineRate)
	}
	if c.CheckpointEvery < 0 {
		return fmt.Errorf("validate: checkpoint interval must be "+
			"non-negative, got %v", c.CheckpointEvery)
	}
	return nil
}

// CreateExp creates the Experiment described by the Config. The
// Experiment trains a linear policy on a randomly generated sequence
// labeling task.
func (c Config) CreateExp(t ...trackers.Tracker) (*Trainer, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createExp: %v", err)
	}

	labeler := sequence.Modulo(c.Task.Labels)
	train, err := sequence.Generate(c.Task.Train, c.Task.Length,
		c.Task.Tokens, c.Task.Labels, labeler, c.Seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not generate training "+
			"data: %v", err)
	}
	test, err := sequence.Generate(c.Task.Test, c.Task.Length,
		c.Task.Tokens, c.Task.Labels, labeler, c.Seed+1)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not generate test "+
			"data: %v", err)
	}

	featurizer, _ := sequence.NewFeaturizer(c.Task.Tokens)
	p, err := policy.NewLinear(featurizer, c.Task.Labels, c.InitWFn,
		c.Solver, c.Seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create policy: %v", err)
	}

	alg, err := c.algorithm(p)
	if err != nil {
		return nil, fmt.Errorf("createExp: %v", err)
	}

	var check []checkpointer.Checkpointer
	if c.CheckpointEvery > 0 {
		n, err := checkpointer.NewNStep(c.CheckpointEvery, p,
			checkpointer.FilenameEnumerator(0, c.CheckpointFile, ".bin"))
		if err != nil {
			return nil, fmt.Errorf("createExp: %v", err)
		}
		check = append(check, n)
	}

	return NewTrainer(alg, p, sequence.NewHammingLoss(), train, test,
		c.Epochs, t, check), nil
}

// algorithm returns the learning algorithm described by the Config
func (c Config) algorithm(p *policy.Linear) (agent.LearningAlg, error) {
	ref := sequence.Reference{}
	l := sequence.NewHammingLoss()

	switch c.Algorithm {
	case LOLS:
		alg, err := lols.New(ref, p, l, c.LOLS, c.Seed)
		if err != nil {
			return nil, fmt.Errorf("algorithm: %v", err)
		}
		return alg, nil

	case BanditLOLS:
		var baseline lols.Baseline
		if c.BaselineRate > 0 {
			baseline = lols.NewEWMA(c.BaselineRate, 0)
		}
		alg, err := lols.NewBandit(ref, p, l, c.LOLS, baseline, c.Seed)
		if err != nil {
			return nil, fmt.Errorf("algorithm: %v", err)
		}
		return alg, nil
	}

	return nil, fmt.Errorf("algorithm: no such algorithm %v", c.Algorithm)
}

// Evaluate runs p greedily on every example of data and returns the
// mean loss
func Evaluate(p environment.Policy, data []environment.Example,
	l *loss.Loss) (float64, error) {
	l.Reset()
	for _, ex := range data {
		env := ex.MkEnv()
		if err := environment.RunEpisode(env, p); err != nil {
			return 0, fmt.Errorf("evaluate: %v", err)
		}
		l.Add(ex, env)
	}
	return l.Get(), nil
}
