// Package compare implements recursive deep equality over nested
// training state: primitives, sequences, string-keyed mappings, dense
// and distributed tensors, and metric accumulators. The first
// divergence aborts the comparison with an error naming the path at
// which the two values differ.
//
// Intended for test suites comparing checkpoints:
//
//	if err := compare.DeepCompare(dict1, dict2, compare.WithTolerance(1e-7, 1e-5)); err != nil {
//	    t.Fatal(err)
//	}
package compare

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/kilavvy/composer/core/traintime"
	"github.com/kilavvy/composer/metrics"
	"github.com/kilavvy/composer/pkg/errors"
	"github.com/kilavvy/composer/state"
	"github.com/kilavvy/composer/tensor"
)

// Tolerance is a named pair of absolute and relative bounds.
type Tolerance struct {
	Abs float64
	Rel float64
}

// hostArrayTolerance governs host-side numeric arrays (gonum matrices
// and vectors). It is deliberately independent of the caller-supplied
// tensor tolerance: host arrays in checkpoint fixtures tolerate looser
// drift, and the two regimes must not be unified.
var hostArrayTolerance = Tolerance{Abs: 0.1, Rel: 0.1}

// fusedParamGroupPath is the one location where the fused flag is
// compared by truthiness, so a CPU checkpoint (flag absent or zero) can
// be compared against a GPU checkpoint (flag true).
const fusedParamGroupPath = "/state/optimizers/Adam/param_groups/0"

type config struct {
	atol       float64
	rtol       float64
	ignoreKeys map[string]struct{}
}

// Option configures a DeepCompare call.
type Option func(*config)

// WithTolerance sets the absolute and relative tolerance applied to
// dense tensors and metric summaries. Both default to 0 (exact).
func WithTolerance(atol, rtol float64) Option {
	return func(c *config) {
		c.atol = atol
		c.rtol = rtol
	}
}

// WithIgnoreKeys skips the given mapping keys anywhere in the tree.
// Ignored keys still count toward mapping sizes; only their values go
// unchecked.
func WithIgnoreKeys(keys ...string) Option {
	return func(c *config) {
		if c.ignoreKeys == nil {
			c.ignoreKeys = make(map[string]struct{}, len(keys))
		}
		for _, k := range keys {
			c.ignoreKeys[k] = struct{}{}
		}
	}
}

// DeepCompare recursively compares two nested values and returns an
// error describing the first path at which they diverge, or nil if the
// structures match within tolerance.
func DeepCompare(item1, item2 any, opts ...Option) error {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return checkItem(item1, item2, "", &cfg)
}

// checkItem dispatches on the runtime type of item1. The branch order
// is fixed and the variant set is closed: values outside it fail fast
// rather than falling back to reflection.
func checkItem(item1, item2 any, path Path, cfg *config) error {
	if item1 == nil {
		if item2 != nil {
			return errors.NewValueMismatchError(path.String(), item1, item2)
		}
		return nil
	}

	switch v1 := item1.(type) {
	case string:
		return checkScalar(v1, item2, path)
	case bool:
		return checkScalar(v1, item2, path)
	case int:
		return checkScalar(v1, item2, path)
	case int64:
		return checkScalar(v1, item2, path)
	case float32:
		return checkScalar(v1, item2, path)
	case float64:
		return checkScalar(v1, item2, path)
	case time.Duration:
		return checkScalar(v1, item2, path)
	case traintime.Time:
		return checkScalar(v1, item2, path)
	case traintime.Unit:
		return checkScalar(v1, item2, path)

	case *tensor.Dense:
		t2, ok := item2.(*tensor.Dense)
		if !ok {
			return errors.NewTypeMismatchError(path.String(), v1, item2)
		}
		t1 := v1
		if t1.Device() != t2.Device() {
			t1 = t1.CPU()
			t2 = t2.CPU()
		}
		if !t1.AllClose(t2, cfg.atol, cfg.rtol) {
			return errors.NewValueMismatchError(path.String(), v1, t2)
		}
		return nil

	case *mat.Dense:
		a2, ok := item2.(*mat.Dense)
		if !ok {
			return errors.NewTypeMismatchError(path.String(), v1, item2)
		}
		if !matrixAllClose(v1, a2) {
			return errors.NewValueMismatchError(path.String(), v1, a2)
		}
		return nil

	case *mat.VecDense:
		a2, ok := item2.(*mat.VecDense)
		if !ok {
			return errors.NewTypeMismatchError(path.String(), v1, item2)
		}
		if !matrixAllClose(v1, a2) {
			return errors.NewValueMismatchError(path.String(), v1, a2)
		}
		return nil

	case map[string]any:
		m2, ok := item2.(map[string]any)
		if !ok {
			return errors.NewTypeMismatchError(path.String(), v1, item2)
		}
		return checkMapping(v1, m2, path, cfg)

	case []any:
		return checkSequence(v1, item2, path, cfg)
	case state.Tuple:
		// Tuples and lists are interchangeable: rebuild paths such as
		// rank-0 broadcast turn one into the other without semantic
		// change, so only positional contents matter.
		return checkSequence(v1, item2, path, cfg)

	case *tensor.Sharded:
		s2, ok := item2.(*tensor.Sharded)
		if !ok {
			return errors.NewTypeMismatchError(path.String(), v1, item2)
		}
		return checkItem(v1.LocalShard(), s2.LocalShard(), path, cfg)

	case *tensor.DTensor:
		d2, ok := item2.(*tensor.DTensor)
		if !ok {
			return errors.NewTypeMismatchError(path.String(), v1, item2)
		}
		return checkItem(v1.ToLocal(), d2.ToLocal(), path, cfg)

	case metrics.Metric:
		m2, ok := item2.(metrics.Metric)
		if !ok {
			return errors.NewTypeMismatchError(path.String(), v1, item2)
		}
		return checkMetric(v1, m2, path, cfg)

	default:
		return errors.NewUnsupportedTypeError(path.String(), fmt.Sprintf("%T", item1))
	}
}

// checkScalar requires the identical concrete type on both sides, then
// exact value equality.
func checkScalar[T comparable](v1 T, item2 any, path Path) error {
	v2, ok := item2.(T)
	if !ok {
		return errors.NewTypeMismatchError(path.String(), v1, item2)
	}
	if v1 != v2 {
		return errors.NewValueMismatchError(path.String(), v1, v2)
	}
	return nil
}

// checkSequence compares two sequences by length then pairwise by
// position. The second operand may be either sequence kind.
func checkSequence(s1 []any, item2 any, path Path, cfg *config) error {
	var s2 []any
	switch v2 := item2.(type) {
	case []any:
		s2 = v2
	case state.Tuple:
		s2 = v2
	default:
		return errors.NewTypeMismatchError(path.String(), s1, item2)
	}

	if len(s1) != len(s2) {
		return errors.NewValueMismatchError(path.String(), s1, s2)
	}
	for i := range s1 {
		if err := checkItem(s1[i], s2[i], path.Index(i), cfg); err != nil {
			return err
		}
	}
	return nil
}

// checkMapping compares two string-keyed mappings: equal effective key
// count, then per-key recursion in sorted key order so the reported
// first divergence is deterministic.
func checkMapping(m1, m2 map[string]any, path Path, cfg *config) error {
	// Newer upstream schedulers dropped the legacy verbose field, so a
	// scheduler state dict from one version may carry it while the
	// other does not. Inside scheduler LR state the key is excluded
	// from both sides; the inputs themselves are never mutated.
	lower := strings.ToLower(path.String())
	dropVerbose := strings.Contains(lower, "schedulers") && strings.Contains(lower, "lr")

	len1, len2 := len(m1), len(m2)
	if dropVerbose {
		if _, ok := m1["verbose"]; ok {
			len1--
		}
		if _, ok := m2["verbose"]; ok {
			len2--
		}
	}
	if len1 != len2 {
		return errors.NewValueMismatchError(path.String(), m1, m2)
	}

	keys := make([]string, 0, len(m1))
	for k := range m1 {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if dropVerbose && k == "verbose" {
			continue
		}
		if _, ignored := cfg.ignoreKeys[k]; ignored {
			continue
		}
		val1 := m1[k]
		val2, ok := m2[k]
		if !ok {
			return errors.NewKeyMissingError(path.String(), k)
		}

		// The fused flag only exists on checkpoints written from
		// fused-optimizer GPU runs; at its one known location it is
		// compared by truthiness so CPU and GPU checkpoints match.
		if k == "fused" && path.String() == fusedParamGroupPath {
			b1, err := truthy(val1, path.Key(k))
			if err != nil {
				return err
			}
			b2, err := truthy(val2, path.Key(k))
			if err != nil {
				return err
			}
			if b1 != b2 {
				return errors.NewValueMismatchError(path.Key(k).String(), val1, val2)
			}
			continue
		}

		if err := checkItem(val1, val2, path.Key(k), cfg); err != nil {
			return err
		}
	}
	return nil
}

// checkMetric compares two metric accumulators through their computed
// summaries. Each side's update count is nudged up so computing an
// untouched metric does not emit a zero-sample warning; the restore is
// deferred and therefore happens on every exit path, including
// failures, leaving the metrics observably unchanged.
func checkMetric(m1, m2 metrics.Metric, path Path, cfg *config) error {
	if reflect.TypeOf(m1) != reflect.TypeOf(m2) {
		return errors.NewTypeMismatchError(path.String(), m1, m2)
	}

	m1.SetUpdateCount(m1.UpdateCount() + 1)
	m2.SetUpdateCount(m2.UpdateCount() + 1)
	defer func() {
		m1.SetUpdateCount(m1.UpdateCount() - 1)
		m2.SetUpdateCount(m2.UpdateCount() - 1)
	}()

	c1, err := m1.Compute()
	if err != nil {
		return errors.Wrapf(err, "%s: computing first metric summary", path.String())
	}
	c2, err := m2.Compute()
	if err != nil {
		return errors.Wrapf(err, "%s: computing second metric summary", path.String())
	}

	switch s1 := c1.(type) {
	case *tensor.Dense:
		s2, ok := c2.(*tensor.Dense)
		if !ok {
			return errors.NewTypeMismatchError(path.String(), s1, c2)
		}
		// NaN equals NaN here: two untouched metrics both summarize to
		// NaN and must compare equal.
		if !s1.AllCloseNaN(s2, cfg.atol, cfg.rtol) {
			return errors.NewValueMismatchError(path.String(), s1, s2)
		}
		return nil
	case map[string]any:
		s2, ok := c2.(map[string]any)
		if !ok {
			return errors.NewTypeMismatchError(path.String(), s1, c2)
		}
		return checkMapping(s1, s2, path, cfg)
	default:
		return errors.NewUnsupportedTypeError(path.String(), fmt.Sprintf("metric summary %T", c1))
	}
}

// truthy converts a fused-style flag to its boolean interpretation.
func truthy(v any, path Path) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case int:
		return b != 0, nil
	case int64:
		return b != 0, nil
	case float64:
		return b != 0, nil
	default:
		return false, errors.NewUnsupportedTypeError(path.String(), fmt.Sprintf("truthiness of %T", v))
	}
}

// matrixAllClose applies the fixed host-array tolerance element-wise.
func matrixAllClose(a, b mat.Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return false
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			x, y := a.At(i, j), b.At(i, j)
			if x == y {
				continue
			}
			if math.Abs(x-y) > hostArrayTolerance.Abs+hostArrayTolerance.Rel*math.Abs(y) {
				return false
			}
		}
	}
	return true
}
