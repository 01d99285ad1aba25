package experiment

import (
	"fmt"
	"log"

	"github.com/samuelfneumann/golts/agent"
	"github.com/samuelfneumann/golts/environment"
	"github.com/samuelfneumann/golts/experiment/checkpointer"
	"github.com/samuelfneumann/golts/experiment/trackers"
	"github.com/samuelfneumann/golts/loss"
	"github.com/samuelfneumann/golts/utils/progressbar"
)

// Trainer is an Experiment that trains a policy with a learning to
// search algorithm one example at a time. After each epoch over the
// training data, the policy is evaluated greedily on the test data.
type Trainer struct {
	alg    agent.LearningAlg
	policy environment.Policy
	eval   *loss.Loss

	train, test []environment.Example
	epochs      int
	examples    int

	trackers      []trackers.Tracker
	checkpointers []checkpointer.Checkpointer

	// Verbose determines whether a progress bar and per-epoch summaries
	// are printed
	Verbose bool
}

// NewTrainer creates and returns a new Trainer, which trains with alg
// for the given number of epochs and evaluates policy with eval. The
// t parameter is a slice of trackers.Tracker which determine what data
// is saved. The check parameter determines when the policy is
// checkpointed.
func NewTrainer(alg agent.LearningAlg, policy environment.Policy,
	eval *loss.Loss, train, test []environment.Example, epochs int,
	t []trackers.Tracker, check []checkpointer.Checkpointer) *Trainer {
	return &Trainer{
		alg:           alg,
		policy:        policy,
		eval:          eval,
		train:         train,
		test:          test,
		epochs:        epochs,
		trackers:      t,
		checkpointers: check,
	}
}

// Register registers a trackers.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (t *Trainer) Register(tr trackers.Tracker) {
	t.trackers = append(t.trackers, tr)
}

// Examples returns the number of examples trained on so far
func (t *Trainer) Examples() int {
	return t.examples
}

// RunEpoch trains on every training example once and then evaluates
// the policy on the test examples
func (t *Trainer) RunEpoch(epoch int) error {
	var pbar *progressbar.ManualProgressBar
	if t.Verbose {
		pbar = progressbar.NewManualProgressBar(40, len(t.train))
	}

	var total float64
	for i, ex := range t.train {
		l, err := t.alg.Train(ex)
		if err != nil {
			return fmt.Errorf("runEpoch: could not train on example %v: %v",
				i, err)
		}
		total += l
		t.examples++

		t.track(trackers.Record{
			Phase:   trackers.Train,
			Epoch:   epoch,
			Example: t.examples,
			Loss:    l,
		})
		if err := t.checkpoint(); err != nil {
			return fmt.Errorf("runEpoch: %v", err)
		}

		if pbar != nil {
			pbar.Increment()
			pbar.Describe("train loss: %.4f", total/float64(i+1))
			pbar.Display()
		}
	}

	if pbar != nil {
		pbar.Close()
	}

	testLoss, err := t.Evaluate()
	if err != nil {
		return fmt.Errorf("runEpoch: %v", err)
	}
	t.track(trackers.Record{
		Phase:   trackers.Test,
		Epoch:   epoch,
		Example: t.examples,
		Loss:    testLoss,
	})

	if t.Verbose {
		var trainLoss float64
		if len(t.train) > 0 {
			trainLoss = total / float64(len(t.train))
		}
		log.Printf("epoch %v: train %v %.4f | test %v %.4f", epoch,
			t.eval.Name, trainLoss, t.eval.Name, testLoss)
	}
	return nil
}

// Run runs the entire experiment for all epochs
func (t *Trainer) Run() error {
	for epoch := 0; epoch < t.epochs; epoch++ {
		if err := t.RunEpoch(epoch); err != nil {
			return fmt.Errorf("run: %v", err)
		}
	}
	return nil
}

// Evaluate returns the mean loss of the policy acting greedily on the
// test examples
func (t *Trainer) Evaluate() (float64, error) {
	return Evaluate(t.policy, t.test, t.eval)
}

// Save saves all the data cached by the Trackers to disk
func (t *Trainer) Save() error {
	for _, tr := range t.trackers {
		if err := tr.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

// track tracks the record by caching its data in each Tracker
func (t *Trainer) track(r trackers.Record) {
	for _, tr := range t.trackers {
		tr.Track(r)
	}
}

// checkpoint checkpoints the policy with each Checkpointer
func (t *Trainer) checkpoint() error {
	for _, c := range t.checkpointers {
		if err := c.Checkpoint(t.examples); err != nil {
			return fmt.Errorf("checkpoint: %v", err)
		}
	}
	return nil
}
