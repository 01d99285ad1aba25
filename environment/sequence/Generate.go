package sequence

import (
	"fmt"

	"github.com/samuelfneumann/golts/environment"
	"github.com/samuelfneumann/golts/features"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Labeler labels a token
type Labeler func(token int) int

// Modulo returns a Labeler which labels token i with i mod nLabels
func Modulo(nLabels int) Labeler {
	return func(token int) int { return token % nLabels }
}

// Generate returns n random Examples of the given length. Tokens are
// sampled uniformly from [0, nTokens) and labeled with labeler.
func Generate(n, length, nTokens, nLabels int, labeler Labeler,
	seed uint64) ([]environment.Example, error) {
	if nTokens <= 0 {
		return nil, fmt.Errorf("generate: expected at least one token, "+
			"got %v", nTokens)
	}
	if length < 0 {
		return nil, fmt.Errorf("generate: expected non-negative length, "+
			"got %v", length)
	}

	// Create the weights for the uniform categorical distribution
	weights := make([]float64, nTokens)
	for i := range weights {
		weights[i] = 1.0 / float64(nTokens)
	}
	dist := distuv.NewCategorical(weights, rand.NewSource(seed))

	data := make([]environment.Example, n)
	for i := range data {
		tokens := make([]int, length)
		labels := make([]int, length)
		for j := range tokens {
			tokens[j] = int(dist.Rand())
			labels[j] = labeler(tokens[j])
		}

		ex, err := NewExample(tokens, labels, nLabels)
		if err != nil {
			return nil, fmt.Errorf("generate: %v", err)
		}
		data[i] = ex
	}
	return data, nil
}

// NewOneHot returns Static features which represent each token of a
// sequence as a one-hot vector over nTokens tokens
func NewOneHot(nTokens int) *features.Static {
	return features.NewStatic(nTokens, func(e environment.Env) *mat.Dense {
		env, ok := e.(*Env)
		if !ok {
			panic(fmt.Sprintf("oneHot: expected *sequence.Env, got %T", e))
		}

		tokens := env.Tokens()
		rows := len(tokens)
		if rows == 0 {
			// Empty inputs still have a well-formed feature matrix
			return mat.NewDense(1, nTokens, nil)
		}

		f := mat.NewDense(rows, nTokens, nil)
		for i, tok := range tokens {
			f.Set(i, tok, 1.0)
		}
		return f
	})
}

// NewFeaturizer returns an Actor which featurizes the current token as a
// one-hot vector, together with the Static features it attends to
func NewFeaturizer(nTokens int) (*features.Actor, *features.Static) {
	static := NewOneHot(nTokens)
	attention := []features.Attention{features.NewAttendAt(static, nil)}
	return features.NewActor(nTokens, attention, nil), static
}
