package state_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/kilavvy/composer/compare"
	"github.com/kilavvy/composer/core/traintime"
	"github.com/kilavvy/composer/state"
	"github.com/kilavvy/composer/tensor"
)

// trainedState builds a populated State resembling a small resumed run.
func trainedState(t *testing.T) *state.State {
	t.Helper()

	s := state.New("compare-demo")
	s.Model["layer0.weight"] = tensor.MustNew([]int{2, 2}, []float64{0.1, 0.2, 0.3, 0.4})
	s.Model["layer0.bias"] = tensor.MustNew([]int{2}, []float64{0.01, 0.02})

	s.Optimizers["Adam"] = &state.OptimizerState{
		ParamGroups: []map[string]any{
			{"lr": 0.001, "weight_decay": 0.0, "fused": false},
		},
		ParamState: map[string]map[string]any{
			"layer0.weight": {
				"step":    int64(12),
				"exp_avg": tensor.MustNew([]int{2, 2}, []float64{0.5, 0.5, 0.5, 0.5}),
			},
		},
	}

	s.Schedulers["StepLR"] = map[string]any{
		"step_size": int64(30),
		"gamma":     0.1,
		"last_lr":   []any{0.001},
	}

	s.Progress = state.RestoreProgress(
		traintime.Epochs(2),
		traintime.Batches(120),
		traintime.Samples(3840),
		traintime.Tokens(0),
	)
	return s
}

func TestStateDictShape(t *testing.T) {
	dict := trainedState(t).Dict()

	root, ok := dict["state"].(map[string]any)
	require.True(t, ok, "dict must be rooted at \"state\"")
	require.Equal(t, "compare-demo", root["run_name"])

	for _, key := range []string{"model", "optimizers", "schedulers", "timestamp"} {
		require.Contains(t, root, key)
	}

	optimizers := root["optimizers"].(map[string]any)
	adam := optimizers["Adam"].(map[string]any)
	require.Contains(t, adam, "param_groups")
	require.Contains(t, adam, "state")

	timestamp := root["timestamp"].(map[string]any)
	require.Equal(t, traintime.Epochs(2), timestamp["epoch"])
}

func TestStateDictIsolation(t *testing.T) {
	s := trainedState(t)
	dict := s.Dict()

	// Mutating the State after Dict() must not reach the built dict.
	s.Schedulers["StepLR"]["gamma"] = 0.5

	root := dict["state"].(map[string]any)
	schedulers := root["schedulers"].(map[string]any)
	stepLR := schedulers["StepLR"].(map[string]any)
	require.Equal(t, 0.1, stepLR["gamma"])
}

func TestCheckpointRoundTrip(t *testing.T) {
	s := trainedState(t)
	dict := s.Dict()

	meta := state.CheckpointMeta{
		Version:   "0.3.1",
		Framework: "composer",
		CreatedAt: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
		Tags:      []string{"resume", "smoke"},
	}

	path := filepath.Join(t.TempDir(), "ckpt.gob")
	require.NoError(t, state.SaveCheckpoint(path, dict, meta))

	loaded, loadedMeta, err := state.LoadCheckpoint(path)
	require.NoError(t, err)

	if diff := cmp.Diff(meta, loadedMeta); diff != "" {
		t.Errorf("metadata changed across round trip (-want +got):\n%s", diff)
	}
	require.NoError(t, compare.DeepCompare(dict, loaded))
}

func TestCheckpointRoundTripDetectsDrift(t *testing.T) {
	s := trainedState(t)
	path := filepath.Join(t.TempDir(), "ckpt.gob")
	require.NoError(t, state.SaveCheckpoint(path, s.Dict(), state.CheckpointMeta{}))

	loaded, _, err := state.LoadCheckpoint(path)
	require.NoError(t, err)

	// Drift one parameter and the comparison must name it.
	s.Model["layer0.bias"] = tensor.MustNew([]int{2}, []float64{0.01, 0.99})
	err = compare.DeepCompare(s.Dict(), loaded)
	require.Error(t, err)
	require.Contains(t, err.Error(), "/state/model/layer0.bias")
}

func TestLoadCheckpointMissingFile(t *testing.T) {
	_, _, err := state.LoadCheckpoint(filepath.Join(t.TempDir(), "missing.gob"))
	require.Error(t, err)
}

func TestLoadCheckpointCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.gob")
	require.NoError(t, os.WriteFile(path, []byte("not a gob stream"), 0o644))

	_, _, err := state.LoadCheckpoint(path)
	require.Error(t, err)
}

func TestExportJSON(t *testing.T) {
	dict := trainedState(t).Dict()

	var buf bytes.Buffer
	require.NoError(t, state.ExportJSON(&buf, dict))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	root := decoded["state"].(map[string]any)
	require.Equal(t, "compare-demo", root["run_name"])
}

func TestProgressAdvance(t *testing.T) {
	p := state.NewProgress()
	p.AdvanceBatch(32, 1024)
	p.AdvanceBatch(32, 1024)
	p.AdvanceEpoch()

	require.Equal(t, traintime.Epochs(1), p.Epoch())
	require.Equal(t, traintime.Batches(2), p.Batch())
	require.Equal(t, traintime.Samples(64), p.Sample())
	require.Equal(t, traintime.Tokens(2048), p.Token())
}

func TestTimestampMatchesRestoredProgress(t *testing.T) {
	a := state.RestoreProgress(
		traintime.Epochs(1), traintime.Batches(10),
		traintime.Samples(320), traintime.Tokens(0),
	)
	b := state.NewProgress()
	for i := 0; i < 10; i++ {
		b.AdvanceBatch(32, 0)
	}
	b.AdvanceEpoch()

	require.NoError(t, compare.DeepCompare(a.Timestamp(), b.Timestamp()))
}
