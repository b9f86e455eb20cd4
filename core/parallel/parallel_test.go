package parallel

import (
	"sync/atomic"
	"testing"
)

func TestRunCoversEveryIndex(t *testing.T) {
	tests := []struct {
		name  string
		items int
	}{
		{name: "empty", items: 0},
		{name: "single", items: 1},
		{name: "fewer than cores", items: 3},
		{name: "large", items: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			touched := make([]int32, tt.items)
			Run(tt.items, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&touched[i], 1)
				}
			})
			for i, n := range touched {
				if n != 1 {
					t.Fatalf("index %d visited %d times, want exactly once", i, n)
				}
			}
		})
	}
}

func TestRunWithThresholdSequentialBelow(t *testing.T) {
	var calls int
	RunWithThreshold(100, 1000, func(start, end int) {
		calls++
		if start != 0 || end != 100 {
			t.Errorf("sequential range = [%d, %d), want [0, 100)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("fn called %d times, want 1 (sequential path)", calls)
	}
}

func TestAll(t *testing.T) {
	tests := []struct {
		name      string
		items     int
		threshold int
		failAt    int // -1 for no failure
		want      bool
	}{
		{name: "all pass sequential", items: 100, threshold: 1000, failAt: -1, want: true},
		{name: "fail sequential", items: 100, threshold: 1000, failAt: 50, want: false},
		{name: "all pass parallel", items: 50000, threshold: 100, failAt: -1, want: true},
		{name: "fail parallel", items: 50000, threshold: 100, failAt: 49999, want: false},
		{name: "fail at first", items: 10, threshold: 0, failAt: 0, want: false},
		{name: "empty", items: 0, threshold: 0, failAt: -1, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := All(tt.items, tt.threshold, func(i int) bool {
				return i != tt.failAt
			})
			if got != tt.want {
				t.Errorf("All() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllStopsEarly(t *testing.T) {
	var evaluated atomic.Int64
	items := 1 << 20
	ok := All(items, 0, func(i int) bool {
		evaluated.Add(1)
		return i != 0
	})
	if ok {
		t.Fatal("All() = true, want false")
	}
	// Workers stop scanning new chunks after the counterexample; far
	// fewer than all indices should have been evaluated.
	if n := evaluated.Load(); n >= int64(items) {
		t.Errorf("evaluated %d of %d indices, expected early exit", n, items)
	}
}
