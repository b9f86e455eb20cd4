package traintime

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Time
		wantErr bool
	}{
		{
			name: "epochs",
			in:   "10ep",
			want: Epochs(10),
		},
		{
			name: "batches",
			in:   "500ba",
			want: Batches(500),
		},
		{
			name: "samples",
			in:   "2048sp",
			want: Samples(2048),
		},
		{
			name: "tokens",
			in:   "1000000tok",
			want: Tokens(1000000),
		},
		{
			name: "duration",
			in:   "750dur",
			want: MustNew(750, Duration),
		},
		{
			name: "zero",
			in:   "0ep",
			want: Epochs(0),
		},
		{
			name:    "missing suffix",
			in:      "10",
			wantErr: true,
		},
		{
			name:    "missing value",
			in:      "ep",
			wantErr: true,
		},
		{
			name:    "unknown unit",
			in:      "10steps",
			wantErr: true,
		},
		{
			name:    "empty",
			in:      "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, orig := range []Time{Epochs(3), Batches(120), Samples(0), Tokens(1 << 20), MustNew(500, Duration)} {
		parsed, err := Parse(orig.String())
		if err != nil {
			t.Errorf("Parse(%q) error = %v", orig.String(), err)
			continue
		}
		if parsed != orig {
			t.Errorf("Parse(%q) = %v, want %v", orig.String(), parsed, orig)
		}
	}
}

func TestEquality(t *testing.T) {
	// Same count in different units never compares equal.
	if Epochs(1) == Batches(1) {
		t.Error("1ep must not equal 1ba")
	}
	if Epochs(1) != Epochs(1) {
		t.Error("1ep must equal 1ep")
	}
}

func TestNewRejectsInvalidUnit(t *testing.T) {
	if _, err := New(1, Unit("xx")); err == nil {
		t.Error("New() should reject unknown units")
	}
}

func TestAdd(t *testing.T) {
	got := Batches(10).Add(5)
	if got != Batches(15) {
		t.Errorf("Add() = %v, want 15ba", got)
	}
}

func TestGobRoundTrip(t *testing.T) {
	orig := Samples(3840)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(orig); err != nil {
		t.Fatalf("gob encode error = %v", err)
	}
	var decoded Time
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("gob decode error = %v", err)
	}
	if decoded != orig {
		t.Errorf("round trip = %v, want %v", decoded, orig)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	orig := Epochs(7)

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("json marshal error = %v", err)
	}
	if string(data) != `"7ep"` {
		t.Errorf("marshal = %s, want \"7ep\"", data)
	}

	var decoded Time
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if decoded != orig {
		t.Errorf("round trip = %v, want %v", decoded, orig)
	}
}
