package metrics

import (
	"github.com/kilavvy/composer/pkg/errors"
)

// BinaryStats accumulates a binary confusion matrix and summarizes to a
// mapping of precision, recall, and f1. Its mapping-shaped summary is
// what distinguishes it from the scalar metrics in this package.
type BinaryStats struct {
	counter
	tp, fp, fn, tn int64
}

// NewBinaryStats creates an empty binary statistics accumulator.
func NewBinaryStats() *BinaryStats {
	return &BinaryStats{}
}

// Update absorbs a batch of binary predictions and targets.
func (m *BinaryStats) Update(preds, targets []bool) error {
	if len(preds) == 0 {
		return errors.ErrEmptyData
	}
	if len(preds) != len(targets) {
		return errors.NewDimensionError("BinaryStats.Update", len(preds), len(targets), 0)
	}
	for i, p := range preds {
		switch {
		case p && targets[i]:
			m.tp++
		case p && !targets[i]:
			m.fp++
		case !p && targets[i]:
			m.fn++
		default:
			m.tn++
		}
	}
	m.recordUpdate()
	return nil
}

// Compute returns a map summary with precision, recall, and f1.
// Ill-defined ratios (zero denominators) come back as 0 rather than
// NaN. With no absorbed updates it warns first.
func (m *BinaryStats) Compute() (any, error) {
	warnIfUnsampled("BinaryStats", &m.counter)
	precision := errors.SafeDivide(float64(m.tp), float64(m.tp+m.fp))
	recall := errors.SafeDivide(float64(m.tp), float64(m.tp+m.fn))
	f1 := errors.SafeDivide(2*precision*recall, precision+recall)
	return map[string]any{
		"precision": precision,
		"recall":    recall,
		"f1":        f1,
	}, nil
}

// Reset returns the metric to its initial state.
func (m *BinaryStats) Reset() {
	m.tp, m.fp, m.fn, m.tn = 0, 0, 0, 0
	m.resetCount()
}
