package metrics

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/kilavvy/composer/core/parallel"
	"github.com/kilavvy/composer/pkg/errors"
	"github.com/kilavvy/composer/tensor"
)

// Sequential below this many predictions per Update call.
const accuracyParallelThreshold = 1 << 12

// MulticlassAccuracy accumulates the fraction of predictions matching
// their targets over a fixed number of classes.
type MulticlassAccuracy struct {
	counter
	numClasses int
	correct    int64
	total      int64
}

// NewMulticlassAccuracy creates an accuracy accumulator for numClasses classes.
func NewMulticlassAccuracy(numClasses int) (*MulticlassAccuracy, error) {
	if numClasses < 2 {
		return nil, errors.NewValueError("NewMulticlassAccuracy", fmt.Sprintf("need at least 2 classes, got %d", numClasses))
	}
	return &MulticlassAccuracy{numClasses: numClasses}, nil
}

// Update absorbs a batch of class predictions and targets.
func (m *MulticlassAccuracy) Update(preds, targets []int) error {
	if len(preds) == 0 {
		return errors.ErrEmptyData
	}
	if len(preds) != len(targets) {
		return errors.NewDimensionError("MulticlassAccuracy.Update", len(preds), len(targets), 0)
	}
	for i, p := range preds {
		if p < 0 || p >= m.numClasses {
			return errors.NewValueError("MulticlassAccuracy.Update", fmt.Sprintf("prediction %d outside [0, %d)", p, m.numClasses))
		}
		if t := targets[i]; t < 0 || t >= m.numClasses {
			return errors.NewValueError("MulticlassAccuracy.Update", fmt.Sprintf("target %d outside [0, %d)", t, m.numClasses))
		}
	}

	var correct int64
	parallel.RunWithThreshold(len(preds), accuracyParallelThreshold, func(start, end int) {
		var local int64
		for i := start; i < end; i++ {
			if preds[i] == targets[i] {
				local++
			}
		}
		atomic.AddInt64(&correct, local)
	})

	m.correct += correct
	m.total += int64(len(preds))
	m.recordUpdate()
	return nil
}

// Compute returns the accumulated accuracy as a scalar tensor. With no
// absorbed updates it warns and returns NaN.
func (m *MulticlassAccuracy) Compute() (any, error) {
	if warnIfUnsampled("MulticlassAccuracy", &m.counter) || m.total == 0 {
		return tensor.Scalar(math.NaN()), nil
	}
	return tensor.Scalar(float64(m.correct) / float64(m.total)), nil
}

// Reset returns the metric to its initial state.
func (m *MulticlassAccuracy) Reset() {
	m.correct = 0
	m.total = 0
	m.resetCount()
}
