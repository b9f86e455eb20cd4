// Package traintime represents positions in a training run: epochs,
// batches, samples, tokens, or a fraction of total duration. Values are
// immutable and compared by strict unit and value equality, which is
// what checkpoint comparison relies on.
package traintime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kilavvy/composer/pkg/errors"
)

// Unit enumerates the supported training time units.
type Unit string

const (
	// Epoch counts full passes over the training set ("ep").
	Epoch Unit = "ep"
	// Batch counts optimization steps ("ba").
	Batch Unit = "ba"
	// Sample counts individual training examples ("sp").
	Sample Unit = "sp"
	// Token counts consumed tokens, for language models ("tok").
	Token Unit = "tok"
	// Duration counts thousandths of the total run length ("dur").
	Duration Unit = "dur"
)

// units in suffix-match order: longer suffixes first so "tok" is not
// mistaken for no suffix and "dur" beats nothing.
var unitSuffixes = []Unit{Token, Duration, Epoch, Batch, Sample}

// Valid reports whether u is one of the recognized units.
func (u Unit) Valid() bool {
	switch u {
	case Epoch, Batch, Sample, Token, Duration:
		return true
	}
	return false
}

// String returns the unit suffix, e.g. "ep".
func (u Unit) String() string {
	return string(u)
}

// Time is an immutable training-time value: a count paired with a unit.
type Time struct {
	value int64
	unit  Unit
}

// New creates a Time from a value and unit. The unit must be valid.
func New(value int64, unit Unit) (Time, error) {
	if !unit.Valid() {
		return Time{}, errors.NewValueError("traintime.New", fmt.Sprintf("invalid unit %q", string(unit)))
	}
	return Time{value: value, unit: unit}, nil
}

// MustNew is New but panics on an invalid unit. For literals in tests
// and fixtures.
func MustNew(value int64, unit Unit) Time {
	t, err := New(value, unit)
	if err != nil {
		panic(err)
	}
	return t
}

// Epochs creates a Time counting epochs.
func Epochs(n int64) Time { return Time{value: n, unit: Epoch} }

// Batches creates a Time counting batches.
func Batches(n int64) Time { return Time{value: n, unit: Batch} }

// Samples creates a Time counting samples.
func Samples(n int64) Time { return Time{value: n, unit: Sample} }

// Tokens creates a Time counting tokens.
func Tokens(n int64) Time { return Time{value: n, unit: Token} }

// Value returns the count.
func (t Time) Value() int64 { return t.value }

// Unit returns the unit.
func (t Time) Unit() Unit { return t.unit }

// String returns the canonical textual form, e.g. "10ep".
func (t Time) String() string {
	return strconv.FormatInt(t.value, 10) + string(t.unit)
}

// Add returns t advanced by n in the same unit.
func (t Time) Add(n int64) Time {
	return Time{value: t.value + n, unit: t.unit}
}

// Parse parses a textual time value such as "10ep" or "500ba".
func Parse(s string) (Time, error) {
	for _, u := range unitSuffixes {
		if !strings.HasSuffix(s, string(u)) {
			continue
		}
		num := strings.TrimSuffix(s, string(u))
		value, err := strconv.ParseInt(num, 10, 64)
		if err != nil {
			return Time{}, errors.NewValueError("traintime.Parse", fmt.Sprintf("invalid value in %q", s))
		}
		return Time{value: value, unit: u}, nil
	}
	return Time{}, errors.NewValueError("traintime.Parse", fmt.Sprintf("no recognized unit suffix in %q", s))
}
