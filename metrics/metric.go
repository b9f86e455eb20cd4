// Package metrics provides stateful metric accumulators and functional
// regression metrics. Accumulators ingest samples via their Update
// methods and produce a summary on demand through Compute; the summary
// is either a scalar tensor or a string-keyed mapping.
package metrics

import (
	"github.com/kilavvy/composer/pkg/errors"
)

// Metric is a stateful accumulator. Compute returns either a
// *tensor.Dense scalar or a map[string]any summary.
//
// The update count is exposed mutably: checkpoint restore writes it
// back, and state comparison nudges it around Compute to suppress the
// zero-sample warning. Metrics are not safe for concurrent use.
type Metric interface {
	// Compute returns the current summary value.
	Compute() (any, error)

	// UpdateCount returns how many Update calls the metric has absorbed.
	UpdateCount() int

	// SetUpdateCount overwrites the absorbed-update counter.
	SetUpdateCount(n int)

	// Reset returns the metric to its initial state.
	Reset()
}

// counter implements the update-count part of Metric, embedded by every
// accumulator in this package.
type counter struct {
	updates int
}

// UpdateCount returns the absorbed-update counter.
func (c *counter) UpdateCount() int { return c.updates }

// SetUpdateCount overwrites the absorbed-update counter.
func (c *counter) SetUpdateCount(n int) { c.updates = n }

func (c *counter) recordUpdate() { c.updates++ }

func (c *counter) resetCount() { c.updates = 0 }

// warnIfUnsampled emits a ZeroSampleWarning when the metric has never
// been updated and reports whether it did.
func warnIfUnsampled(name string, c *counter) bool {
	if c.updates == 0 {
		errors.Warn(errors.NewZeroSampleWarning(name))
		return true
	}
	return false
}
