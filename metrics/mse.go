package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kilavvy/composer/pkg/errors"
	"github.com/kilavvy/composer/tensor"
)

// MeanSquaredError buffers targets and predictions and summarizes to
// the mean squared error over everything absorbed so far.
type MeanSquaredError struct {
	counter
	yTrue []float64
	yPred []float64
}

// NewMeanSquaredError creates an empty MSE accumulator.
func NewMeanSquaredError() *MeanSquaredError {
	return &MeanSquaredError{}
}

// Update absorbs a batch of targets and predictions.
func (m *MeanSquaredError) Update(yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return errors.ErrEmptyData
	}
	if len(yTrue) != len(yPred) {
		return errors.NewDimensionError("MeanSquaredError.Update", len(yTrue), len(yPred), 0)
	}
	m.yTrue = append(m.yTrue, yTrue...)
	m.yPred = append(m.yPred, yPred...)
	m.recordUpdate()
	return nil
}

// Compute returns the accumulated MSE as a scalar tensor. With no
// absorbed updates it warns and returns NaN.
func (m *MeanSquaredError) Compute() (any, error) {
	if warnIfUnsampled("MeanSquaredError", &m.counter) || len(m.yTrue) == 0 {
		return tensor.Scalar(math.NaN()), nil
	}
	mse, err := MSE(
		mat.NewVecDense(len(m.yTrue), m.yTrue),
		mat.NewVecDense(len(m.yPred), m.yPred),
	)
	if err != nil {
		return nil, err
	}
	return tensor.Scalar(mse), nil
}

// Reset returns the metric to its initial state.
func (m *MeanSquaredError) Reset() {
	m.yTrue = nil
	m.yPred = nil
	m.resetCount()
}
