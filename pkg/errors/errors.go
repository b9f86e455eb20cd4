// Package errors provides error handling and the warning system for the
// whole project. Comparison failures are structured errors: each carries
// the path into the nested state where the divergence was found, so a
// failing test names the exact offending field.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// Default handler logs to standard error
		log.Printf("Composer-Warning: %v\n", w)
	}
	// zerolog sink, registered lazily by pkg/log to avoid a circular import
	zerologWarnFunc func(warning error)
)

// SetWarningHandler sets the warning handler for the whole library.
// It controls how warnings such as ZeroSampleWarning are processed.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // swallow warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc registers the zerolog warning sink (set by pkg/log).
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning. When a zerolog sink is registered it is emitted
// as a structured log event, otherwise the plain handler is used.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// ZeroSampleWarning is emitted when a metric summary is computed before
// the metric has ingested any samples. The summary is still returned
// (NaN where the value is undefined).
type ZeroSampleWarning struct {
	Metric string
}

func (w *ZeroSampleWarning) Error() string {
	return fmt.Sprintf("metric %s computed with no accumulated samples; the returned value is undefined", w.Metric)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *ZeroSampleWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("type", "ZeroSampleWarning")
}

// NewZeroSampleWarning creates a new ZeroSampleWarning.
func NewZeroSampleWarning(metric string) *ZeroSampleWarning {
	return &ZeroSampleWarning{Metric: metric}
}

// DataConversionWarning is emitted when tensor values are implicitly
// converted between dtypes (e.g. float16 storage widened to float64).
type DataConversionWarning struct {
	FromType string
	ToType   string
	Reason   string
}

func (w *DataConversionWarning) Error() string {
	return fmt.Sprintf("data converted from %s to %s. Reason: %s", w.FromType, w.ToType, w.Reason)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *DataConversionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("from_type", w.FromType).
		Str("to_type", w.ToType).
		Str("reason", w.Reason).
		Str("type", "DataConversionWarning")
}

// NewDataConversionWarning creates a new DataConversionWarning.
func NewDataConversionWarning(from, to, reason string) *DataConversionWarning {
	return &DataConversionWarning{FromType: from, ToType: to, Reason: reason}
}

// ===========================================================================
//
//	Structured comparison errors
//
// ===========================================================================

// TypeMismatchError reports that the runtime types of the two compared
// values disagree at a path where identical types are required.
type TypeMismatchError struct {
	Path  string
	Left  any
	Right any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("composer: %s differs in type: %T != %T", e.Path, e.Left, e.Right)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *TypeMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Str("left_type", fmt.Sprintf("%T", e.Left)).
		Str("right_type", fmt.Sprintf("%T", e.Right)).
		Str("type", "TypeMismatchError")
}

// NewTypeMismatchError creates a TypeMismatchError with a stack trace.
func NewTypeMismatchError(path string, left, right any) error {
	err := &TypeMismatchError{Path: path, Left: left, Right: right}
	return errors.WithStack(err)
}

// ValueMismatchError reports that two values of matching type differ
// beyond tolerance (or exactly, on exact-equality branches).
type ValueMismatchError struct {
	Path  string
	Left  any
	Right any
}

func (e *ValueMismatchError) Error() string {
	return fmt.Sprintf("composer: %s differs: %v != %v", e.Path, e.Left, e.Right)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *ValueMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Interface("left", e.Left).
		Interface("right", e.Right).
		Str("type", "ValueMismatchError")
}

// NewValueMismatchError creates a ValueMismatchError with a stack trace.
func NewValueMismatchError(path string, left, right any) error {
	err := &ValueMismatchError{Path: path, Left: left, Right: right}
	return errors.WithStack(err)
}

// KeyMissingError reports a mapping key present on the left side only.
type KeyMissingError struct {
	Path string
	Key  string
}

func (e *KeyMissingError) Error() string {
	return fmt.Sprintf("composer: %s: key %q missing from second mapping", e.Path, e.Key)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *KeyMissingError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Str("key", e.Key).
		Str("type", "KeyMissingError")
}

// NewKeyMissingError creates a KeyMissingError with a stack trace.
func NewKeyMissingError(path, key string) error {
	err := &KeyMissingError{Path: path, Key: key}
	return errors.WithStack(err)
}

// UnsupportedTypeError reports a value whose runtime type matches none
// of the recognized comparison branches.
type UnsupportedTypeError struct {
	Path     string
	TypeName string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("composer: %s: unsupported item type %s", e.Path, e.TypeName)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *UnsupportedTypeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Str("type_name", e.TypeName).
		Str("type", "UnsupportedTypeError")
}

// NewUnsupportedTypeError creates an UnsupportedTypeError with a stack trace.
func NewUnsupportedTypeError(path, typeName string) error {
	err := &UnsupportedTypeError{Path: path, TypeName: typeName}
	return errors.WithStack(err)
}

// ShapeMismatchError reports tensors or arrays whose shapes disagree.
type ShapeMismatchError struct {
	Op       string
	Expected []int
	Got      []int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("composer: %s: shape mismatch. Expected %v, got %v", e.Op, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *ShapeMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Ints("expected", e.Expected).
		Ints("got", e.Got).
		Str("type", "ShapeMismatchError")
}

// NewShapeMismatchError creates a ShapeMismatchError with a stack trace.
func NewShapeMismatchError(op string, expected, got []int) error {
	err := &ShapeMismatchError{Op: op, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// DimensionError reports vector or matrix operands of mismatched size.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("composer: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValueError is a general invalid-argument error.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("composer: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// CheckpointError is a general error around saving or loading state.
type CheckpointError struct {
	Op   string
	Kind string
	Err  error
}

func (e *CheckpointError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("composer: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("composer: %s: %s", e.Op, e.Kind)
}

func (e *CheckpointError) Unwrap() error {
	return e.Err
}

// NewCheckpointError creates a CheckpointError with a stack trace.
func NewCheckpointError(op, kind string, err error) error {
	ckptErr := &CheckpointError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(ckptErr)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches the target error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As reports whether err can be cast to the target type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an existing error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an existing error with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrNotImplemented indicates an unimplemented feature.
	ErrNotImplemented = New("not implemented")

	// ErrEmptyData indicates empty input data.
	ErrEmptyData = New("empty data")
)
