package tensor

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"math"
	"testing"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		shape   []int
		data    []float64
		wantErr bool
	}{
		{
			name:    "matching shape and data",
			shape:   []int{2, 3},
			data:    []float64{1, 2, 3, 4, 5, 6},
			wantErr: false,
		},
		{
			name:    "scalar shape",
			shape:   []int{},
			data:    []float64{7},
			wantErr: false,
		},
		{
			name:    "size mismatch",
			shape:   []int{2, 2},
			data:    []float64{1, 2, 3},
			wantErr: true,
		},
		{
			name:    "negative dimension",
			shape:   []int{-1, 4},
			data:    []float64{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.shape, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAllClose(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		atol float64
		rtol float64
		want bool
	}{
		{
			name: "identical",
			a:    []float64{1, 2, 3},
			b:    []float64{1, 2, 3},
			want: true,
		},
		{
			name: "within atol",
			a:    []float64{1.0, 2.0},
			b:    []float64{1.05, 2.05},
			atol: 0.1,
			want: true,
		},
		{
			name: "outside atol",
			a:    []float64{1.0, 2.0},
			b:    []float64{1.2, 2.0},
			atol: 0.1,
			want: false,
		},
		{
			name: "within rtol",
			a:    []float64{100.0},
			b:    []float64{101.0},
			rtol: 0.02,
			want: true,
		},
		{
			name: "zero tolerance exact",
			a:    []float64{1.0},
			b:    []float64{1.0 + 1e-12},
			want: false,
		},
		{
			name: "nan never equals nan",
			a:    []float64{math.NaN()},
			b:    []float64{math.NaN()},
			atol: 1,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := MustNew([]int{len(tt.a)}, tt.a)
			tb := MustNew([]int{len(tt.b)}, tt.b)
			if got := ta.AllClose(tb, tt.atol, tt.rtol); got != tt.want {
				t.Errorf("AllClose() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllCloseNaN(t *testing.T) {
	a := MustNew([]int{2}, []float64{math.NaN(), 1})
	b := MustNew([]int{2}, []float64{math.NaN(), 1})
	if !a.AllCloseNaN(b, 0, 0) {
		t.Error("AllCloseNaN() should treat NaN as equal to NaN")
	}
	if a.AllClose(b, 0, 0) {
		t.Error("AllClose() should not treat NaN as equal to NaN")
	}
}

func TestAllCloseShapeMismatch(t *testing.T) {
	a := MustNew([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	b := MustNew([]int{3, 2}, []float64{1, 2, 3, 4, 5, 6})
	if a.AllClose(b, 1, 1) {
		t.Error("AllClose() must be false for mismatched shapes")
	}
}

func TestDeviceRelocation(t *testing.T) {
	a := MustNew([]int{2}, []float64{1, 2})
	if !a.Device().IsCPU() {
		t.Fatalf("new tensor should be on cpu, got %s", a.Device())
	}

	gpu := a.To(CUDA(1))
	if gpu.Device().String() != "cuda:1" {
		t.Errorf("Device() = %s, want cuda:1", gpu.Device())
	}
	// Relocation is metadata only; values are unchanged.
	if !gpu.AllClose(a, 0, 0) {
		t.Error("relocated tensor should hold identical values")
	}

	back := gpu.CPU()
	if !back.Device().IsCPU() {
		t.Errorf("CPU() device = %s, want cpu", back.Device())
	}
	if a.CPU() != a {
		t.Error("CPU() on a cpu tensor should return the receiver")
	}
}

func TestParseDevice(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "cpu", want: "cpu", ok: true},
		{in: "cuda:0", want: "cuda:0", ok: true},
		{in: "cuda:3", want: "cuda:3", ok: true},
		{in: "cuda:", ok: false},
		{in: "cuda:-1", ok: false},
		{in: "tpu:0", ok: false},
	}
	for _, tt := range tests {
		d, ok := ParseDevice(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseDevice(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && d.String() != tt.want {
			t.Errorf("ParseDevice(%q) = %s, want %s", tt.in, d, tt.want)
		}
	}
}

func TestFloat16RoundTrip(t *testing.T) {
	orig := MustNew([]int{4}, []float64{0, 1, -2.5, 0.333251953125})
	bits := orig.Float16Bits()

	decoded, err := FromFloat16([]int{4}, bits)
	if err != nil {
		t.Fatalf("FromFloat16() error = %v", err)
	}
	if decoded.DType() != Float16 {
		t.Errorf("DType() = %s, want float16", decoded.DType())
	}
	// All chosen values are exactly representable in half precision.
	if !decoded.AllClose(orig, 0, 0) {
		t.Errorf("round trip changed values: %v != %v", decoded.Float64s(), orig.Float64s())
	}
}

func TestBFloat16RoundTrip(t *testing.T) {
	orig := MustNew([]int{3}, []float64{1.0, -0.5, 256.0})
	bits := orig.BFloat16Bits()

	decoded, err := FromBFloat16([]int{3}, bits)
	if err != nil {
		t.Fatalf("FromBFloat16() error = %v", err)
	}
	if decoded.DType() != BFloat16 {
		t.Errorf("DType() = %s, want bfloat16", decoded.DType())
	}
	if !decoded.AllClose(orig, 0, 0) {
		t.Errorf("round trip changed values: %v != %v", decoded.Float64s(), orig.Float64s())
	}
}

func TestAsTypeNarrowing(t *testing.T) {
	orig := MustNew([]int{2}, []float64{1.0 / 3.0, 2.0 / 3.0})

	half, err := orig.AsType(Float16)
	if err != nil {
		t.Fatalf("AsType() error = %v", err)
	}
	if half.DType() != Float16 {
		t.Errorf("DType() = %s, want float16", half.DType())
	}
	// Narrowed storage drifts from the original but stays within half
	// precision of it.
	if half.AllClose(orig, 0, 0) {
		t.Error("half-precision storage should not be bit-identical to float64")
	}
	if !half.AllClose(orig, 1e-3, 0) {
		t.Error("half-precision storage drifted further than expected")
	}
}

func TestGobRoundTrip(t *testing.T) {
	orig := MustNew([]int{2, 2}, []float64{1, 2, 3, 4}).To(CUDA(0))

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(orig); err != nil {
		t.Fatalf("gob encode error = %v", err)
	}
	var decoded Dense
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("gob decode error = %v", err)
	}

	if decoded.Device() != CUDA(0) {
		t.Errorf("Device() = %s, want cuda:0", decoded.Device())
	}
	if !decoded.AllClose(orig, 0, 0) {
		t.Errorf("round trip changed values")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	orig := MustNew([]int{2}, []float64{1.5, -2.5})

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("json marshal error = %v", err)
	}
	var decoded Dense
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if !decoded.AllClose(orig, 0, 0) {
		t.Errorf("round trip changed values")
	}
}

func TestShardedValidation(t *testing.T) {
	local := MustNew([]int{2}, []float64{1, 2})

	tests := []struct {
		name    string
		meta    ShardMeta
		wantErr bool
	}{
		{
			name:    "valid",
			meta:    ShardMeta{GlobalShape: []int{4}, Offsets: []int{2}, Rank: 1, WorldSize: 2},
			wantErr: false,
		},
		{
			name:    "rank outside world",
			meta:    ShardMeta{GlobalShape: []int{4}, Offsets: []int{0}, Rank: 2, WorldSize: 2},
			wantErr: true,
		},
		{
			name:    "zero world size",
			meta:    ShardMeta{GlobalShape: []int{4}, Offsets: []int{0}, Rank: 0, WorldSize: 0},
			wantErr: true,
		},
		{
			name:    "offsets arity mismatch",
			meta:    ShardMeta{GlobalShape: []int{4, 4}, Offsets: []int{0}, Rank: 0, WorldSize: 2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSharded(local, tt.meta)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSharded() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && s.LocalShard() != local {
				t.Error("LocalShard() should return the wrapped tensor")
			}
		})
	}
}

func TestDTensorLocalView(t *testing.T) {
	local := MustNew([]int{4}, []float64{1, 2, 3, 4})

	d, err := NewDTensor(local, Replicate(), 0, 4)
	if err != nil {
		t.Fatalf("NewDTensor() error = %v", err)
	}
	if d.ToLocal() != local {
		t.Error("ToLocal() should return the wrapped tensor")
	}
	if !d.Placement().IsReplicated() {
		t.Error("Placement() should be replicated")
	}

	sharded, err := NewDTensor(local, ShardAlong(1), 1, 2)
	if err != nil {
		t.Fatalf("NewDTensor() error = %v", err)
	}
	if sharded.Placement().IsReplicated() || sharded.Placement().Dim() != 1 {
		t.Errorf("Placement() = %s, want shard(dim=1)", sharded.Placement())
	}

	if _, err := NewDTensor(local, Replicate(), 5, 2); err == nil {
		t.Error("NewDTensor() should reject rank outside world")
	}
}
