package sequence

import (
	"github.com/samuelfneumann/golts/environment"
	"github.com/samuelfneumann/golts/loss"
)

// Hamming is a loss.Evaluator that counts the tokens whose predicted
// label differs from the gold label. Tokens which were not labeled
// count as errors.
type Hamming struct{}

// Evaluate returns the Hamming loss of the labels predicted in e. If
// truth is not an *Example or e is not an *Env, no value is returned.
func (Hamming) Evaluate(truth environment.Example,
	e environment.Env) (float64, bool) {
	ex, ok := truth.(*Example)
	if !ok {
		return 0, false
	}
	env, ok := e.(*Env)
	if !ok {
		return 0, false
	}

	output := env.Output()
	var errs float64
	for i, label := range ex.Labels {
		if i >= len(output) || output[i] != label {
			errs++
		}
	}
	return errs, true
}

// NewHammingLoss returns a running mean of the Hamming loss
func NewHammingLoss() *loss.Loss {
	return loss.New("hamming", false, Hamming{})
}
