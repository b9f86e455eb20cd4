// Package tensor provides the dense, sharded, and distributed tensor
// value types that checkpoint state dicts carry. Tensors here are
// host-side values: data lives in memory as float64, the dtype records
// the storage precision, and the device is placement metadata.
package tensor

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"math"

	"github.com/kilavvy/composer/core/parallel"
	"github.com/kilavvy/composer/pkg/errors"
)

// Below this many elements comparison stays sequential; goroutine
// fan-out costs more than it saves on small tensors.
const parallelThreshold = 1 << 14

// Dense is an in-memory multi-dimensional numeric value.
type Dense struct {
	shape  []int
	dtype  DType
	device Device
	data   []float64
}

func numElements(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, errors.NewValueError("tensor.New", fmt.Sprintf("negative dimension %d", d))
		}
		n *= d
	}
	return n, nil
}

func cloneShape(shape []int) []int {
	out := make([]int, len(shape))
	copy(out, shape)
	return out
}

// New creates a CPU float64 tensor from shape and row-major data.
func New(shape []int, data []float64) (*Dense, error) {
	n, err := numElements(shape)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, errors.NewShapeMismatchError("tensor.New", []int{n}, []int{len(data)})
	}
	d := make([]float64, len(data))
	copy(d, data)
	return &Dense{shape: cloneShape(shape), dtype: Float64, device: CPU, data: d}, nil
}

// MustNew is New but panics on error. For literals in tests and fixtures.
func MustNew(shape []int, data []float64) *Dense {
	t, err := New(shape, data)
	if err != nil {
		panic(err)
	}
	return t
}

// Scalar creates a zero-dimensional tensor holding a single value.
func Scalar(v float64) *Dense {
	return &Dense{shape: []int{}, dtype: Float64, device: CPU, data: []float64{v}}
}

// Full creates a tensor with every element set to v.
func Full(shape []int, v float64) (*Dense, error) {
	n, err := numElements(shape)
	if err != nil {
		return nil, err
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = v
	}
	return &Dense{shape: cloneShape(shape), dtype: Float64, device: CPU, data: data}, nil
}

// Zeros creates a zero-filled tensor.
func Zeros(shape []int) (*Dense, error) {
	return Full(shape, 0)
}

// FromFloat16 decodes half-precision bits into a tensor tagged Float16.
func FromFloat16(shape []int, bits []uint16) (*Dense, error) {
	n, err := numElements(shape)
	if err != nil {
		return nil, err
	}
	if n != len(bits) {
		return nil, errors.NewShapeMismatchError("tensor.FromFloat16", []int{n}, []int{len(bits)})
	}
	return &Dense{shape: cloneShape(shape), dtype: Float16, device: CPU, data: decodeFloat16(bits)}, nil
}

// FromBFloat16 decodes bfloat16 bits into a tensor tagged BFloat16.
func FromBFloat16(shape []int, bits []uint16) (*Dense, error) {
	n, err := numElements(shape)
	if err != nil {
		return nil, err
	}
	if n != len(bits) {
		return nil, errors.NewShapeMismatchError("tensor.FromBFloat16", []int{n}, []int{len(bits)})
	}
	return &Dense{shape: cloneShape(shape), dtype: BFloat16, device: CPU, data: decodeBFloat16(bits)}, nil
}

// Shape returns a copy of the tensor's dimensions.
func (t *Dense) Shape() []int {
	return cloneShape(t.shape)
}

// DType returns the storage precision the tensor is tagged with.
func (t *Dense) DType() DType { return t.dtype }

// Device returns the tensor's placement.
func (t *Dense) Device() Device { return t.device }

// Len returns the number of elements.
func (t *Dense) Len() int { return len(t.data) }

// At returns the element at flat (row-major) index i.
func (t *Dense) At(i int) float64 { return t.data[i] }

// Item returns the value of a single-element tensor.
func (t *Dense) Item() (float64, error) {
	if len(t.data) != 1 {
		return 0, errors.NewValueError("tensor.Item", fmt.Sprintf("tensor has %d elements, want 1", len(t.data)))
	}
	return t.data[0], nil
}

// Float64s returns a copy of the tensor's values in row-major order.
func (t *Dense) Float64s() []float64 {
	out := make([]float64, len(t.data))
	copy(out, t.data)
	return out
}

// Float16Bits encodes the values as half-precision bits.
func (t *Dense) Float16Bits() []uint16 { return encodeFloat16(t.data) }

// BFloat16Bits encodes the values as bfloat16 bits.
func (t *Dense) BFloat16Bits() []uint16 { return encodeBFloat16(t.data) }

// To returns a view of the tensor tagged with the given placement.
// Data is shared: relocation is a metadata change in this library.
func (t *Dense) To(device Device) *Dense {
	if t.device == device {
		return t
	}
	return &Dense{shape: t.shape, dtype: t.dtype, device: device, data: t.data}
}

// CPU returns the tensor relocated to the host placement.
func (t *Dense) CPU() *Dense {
	return t.To(CPU)
}

// SameShape reports whether both tensors have identical dimensions.
func (t *Dense) SameShape(other *Dense) bool {
	if len(t.shape) != len(other.shape) {
		return false
	}
	for i, d := range t.shape {
		if d != other.shape[i] {
			return false
		}
	}
	return true
}

// String returns a short description like tensor(shape=[2 3], dtype=float32, device=cpu).
func (t *Dense) String() string {
	return fmt.Sprintf("tensor(shape=%v, dtype=%s, device=%s)", t.shape, t.dtype, t.device)
}

// closeAt implements the torch allclose predicate for one element pair:
// |a-b| <= atol + rtol*|b|.
func closeAt(a, b, atol, rtol float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= atol+rtol*math.Abs(b)
}

// AllClose reports whether every element pair satisfies
// |a-b| <= atol + rtol*|b|. Shapes must match; NaN never equals NaN.
func (t *Dense) AllClose(other *Dense, atol, rtol float64) bool {
	return t.allClose(other, atol, rtol, false)
}

// AllCloseNaN is AllClose with NaN treated as equal to NaN, which is
// what metric summaries need (an untouched metric computes NaN on both
// sides).
func (t *Dense) AllCloseNaN(other *Dense, atol, rtol float64) bool {
	return t.allClose(other, atol, rtol, true)
}

func (t *Dense) allClose(other *Dense, atol, rtol float64, equalNaN bool) bool {
	if !t.SameShape(other) {
		return false
	}
	a, b := t.data, other.data
	return parallel.All(len(a), parallelThreshold, func(i int) bool {
		if equalNaN && math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			return true
		}
		return closeAt(a[i], b[i], atol, rtol)
	})
}

// denseWire is the serialized form shared by the gob and JSON codecs.
type denseWire struct {
	Shape  []int     `json:"shape"`
	DType  string    `json:"dtype"`
	Device string    `json:"device"`
	Data   []float64 `json:"data"`
}

func (t *Dense) wire() denseWire {
	return denseWire{
		Shape:  t.shape,
		DType:  t.dtype.String(),
		Device: t.device.String(),
		Data:   t.data,
	}
}

func (t *Dense) fromWire(w denseWire) error {
	n, err := numElements(w.Shape)
	if err != nil {
		return err
	}
	if n != len(w.Data) {
		return errors.NewShapeMismatchError("tensor.decode", []int{n}, []int{len(w.Data)})
	}
	device, ok := ParseDevice(w.Device)
	if !ok {
		return errors.NewValueError("tensor.decode", fmt.Sprintf("invalid device %q", w.Device))
	}
	dtype, ok := parseDType(w.DType)
	if !ok {
		return errors.NewValueError("tensor.decode", fmt.Sprintf("invalid dtype %q", w.DType))
	}
	t.shape = w.Shape
	t.dtype = dtype
	t.device = device
	t.data = w.Data
	return nil
}

func parseDType(s string) (DType, bool) {
	for _, d := range []DType{Float64, Float32, Float16, BFloat16} {
		if d.String() == s {
			return d, true
		}
	}
	return 0, false
}

// GobEncode implements gob.GobEncoder.
func (t *Dense) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(t.wire()); err != nil {
		return nil, errors.Wrap(err, "tensor: gob encode")
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (t *Dense) GobDecode(data []byte) error {
	var w denseWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return errors.Wrap(err, "tensor: gob decode")
	}
	return t.fromWire(w)
}

// MarshalJSON implements json.Marshaler.
func (t *Dense) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.wire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Dense) UnmarshalJSON(data []byte) error {
	var w denseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(err, "tensor: json decode")
	}
	return t.fromWire(w)
}
