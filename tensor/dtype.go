package tensor

import (
	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"

	"github.com/kilavvy/composer/pkg/errors"
)

// DType is the element type a tensor was stored with. Values are held
// as float64 in memory regardless; the dtype records the checkpoint
// storage precision and drives encode/decode.
type DType int

const (
	// Float64 is full double precision.
	Float64 DType = iota
	// Float32 is single precision.
	Float32
	// Float16 is IEEE 754 half precision.
	Float16
	// BFloat16 is the truncated brain floating point format.
	BFloat16
)

// String returns the lowercase dtype name.
func (d DType) String() string {
	switch d {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	default:
		return "unknown"
	}
}

// Valid reports whether d is a recognized dtype.
func (d DType) Valid() bool {
	return d >= Float64 && d <= BFloat16
}

// decodeFloat16 widens raw half-precision bits to float64.
func decodeFloat16(bits []uint16) []float64 {
	out := make([]float64, len(bits))
	for i, b := range bits {
		out[i] = float64(float16.Frombits(b).Float32())
	}
	return out
}

// encodeFloat16 narrows values to half-precision bits.
func encodeFloat16(values []float64) []uint16 {
	out := make([]uint16, len(values))
	for i, v := range values {
		out[i] = float16.Fromfloat32(float32(v)).Bits()
	}
	return out
}

// decodeBFloat16 widens raw bfloat16 bits to float64.
func decodeBFloat16(bits []uint16) []float64 {
	out := make([]float64, len(bits))
	for i, b := range bits {
		out[i] = float64(bfloat16.ToFloat32(bfloat16.BF16(b)))
	}
	return out
}

// encodeBFloat16 narrows values to bfloat16 bits.
func encodeBFloat16(values []float64) []uint16 {
	out := make([]uint16, len(values))
	for i, v := range values {
		out[i] = uint16(bfloat16.FromFloat32(float32(v)))
	}
	return out
}

// roundTrip pushes values through the storage encoding of dtype, so an
// in-memory tensor matches what a checkpoint written at that precision
// would hold.
func roundTrip(values []float64, dtype DType) []float64 {
	switch dtype {
	case Float64:
		out := make([]float64, len(values))
		copy(out, values)
		return out
	case Float32:
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = float64(float32(v))
		}
		return out
	case Float16:
		return decodeFloat16(encodeFloat16(values))
	case BFloat16:
		return decodeBFloat16(encodeBFloat16(values))
	default:
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
}

// AsType returns a copy of t stored at the given precision. Narrowing
// conversions emit a DataConversionWarning.
func (t *Dense) AsType(dtype DType) (*Dense, error) {
	if !dtype.Valid() {
		return nil, errors.NewValueError("tensor.AsType", "invalid dtype")
	}
	if dtype > t.dtype {
		errors.Warn(errors.NewDataConversionWarning(
			t.dtype.String(), dtype.String(), "narrowing tensor storage precision"))
	}
	return &Dense{
		shape:  cloneShape(t.shape),
		dtype:  dtype,
		device: t.device,
		data:   roundTrip(t.data, dtype),
	}, nil
}
