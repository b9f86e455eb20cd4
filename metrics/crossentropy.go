package metrics

import (
	"math"

	"github.com/kilavvy/composer/pkg/errors"
	"github.com/kilavvy/composer/tensor"
)

// LanguageCrossEntropy accumulates summed per-token loss and token
// count, summarizing to the mean loss per token.
type LanguageCrossEntropy struct {
	counter
	sumLoss     float64
	totalTokens int64
}

// NewLanguageCrossEntropy creates an empty cross-entropy accumulator.
func NewLanguageCrossEntropy() *LanguageCrossEntropy {
	return &LanguageCrossEntropy{}
}

// Update absorbs a batch of per-token losses.
func (m *LanguageCrossEntropy) Update(perTokenLoss []float64) error {
	if len(perTokenLoss) == 0 {
		return errors.ErrEmptyData
	}
	if err := errors.CheckNumericalStability("LanguageCrossEntropy.Update", perTokenLoss); err != nil {
		return err
	}
	for _, l := range perTokenLoss {
		m.sumLoss += l
	}
	m.totalTokens += int64(len(perTokenLoss))
	m.recordUpdate()
	return nil
}

// Compute returns the mean per-token loss as a scalar tensor. With no
// absorbed updates it warns and returns NaN.
func (m *LanguageCrossEntropy) Compute() (any, error) {
	if warnIfUnsampled("LanguageCrossEntropy", &m.counter) || m.totalTokens == 0 {
		return tensor.Scalar(math.NaN()), nil
	}
	return tensor.Scalar(m.sumLoss / float64(m.totalTokens)), nil
}

// Reset returns the metric to its initial state.
func (m *LanguageCrossEntropy) Reset() {
	m.sumLoss = 0
	m.totalTokens = 0
	m.resetCount()
}
