// Package state models the serializable pieces of a training run: model
// parameters, optimizer and scheduler state, and run progress. Its
// Dict form — a nested map[string]any rooted at "state" — is the
// structure checkpoints persist and the compare package walks.
package state

import (
	"github.com/kilavvy/composer/tensor"
)

// OptimizerState is the serializable state of one optimizer.
type OptimizerState struct {
	// ParamGroups holds the hyperparameters of each parameter group
	// (lr, betas, weight_decay, flags like fused).
	ParamGroups []map[string]any

	// ParamState holds per-parameter buffers keyed by parameter name
	// (e.g. exp_avg and exp_avg_sq tensors for Adam).
	ParamState map[string]map[string]any
}

// Dict returns the optimizer state as a nested state-dict fragment.
func (o *OptimizerState) Dict() map[string]any {
	groups := make([]any, len(o.ParamGroups))
	for i, g := range o.ParamGroups {
		groups[i] = copyAnyMap(g)
	}
	paramState := make(map[string]any, len(o.ParamState))
	for name, buffers := range o.ParamState {
		paramState[name] = copyAnyMap(buffers)
	}
	return map[string]any{
		"param_groups": groups,
		"state":        paramState,
	}
}

// State is the full serializable state of a training run.
type State struct {
	// RunName identifies the run.
	RunName string

	// Model maps parameter names to their tensors.
	Model map[string]*tensor.Dense

	// Optimizers maps optimizer names (e.g. "Adam") to their state.
	Optimizers map[string]*OptimizerState

	// Schedulers maps scheduler names (e.g. "StepLR") to their
	// serialized fields.
	Schedulers map[string]map[string]any

	// Progress is the training position.
	Progress *Progress
}

// New creates an empty State for the given run.
func New(runName string) *State {
	return &State{
		RunName:    runName,
		Model:      make(map[string]*tensor.Dense),
		Optimizers: make(map[string]*OptimizerState),
		Schedulers: make(map[string]map[string]any),
		Progress:   NewProgress(),
	}
}

// Dict returns the nested state dict rooted at "state". Leaf tensors
// are shared with the State, container maps and slices are fresh.
func (s *State) Dict() map[string]any {
	model := make(map[string]any, len(s.Model))
	for name, t := range s.Model {
		model[name] = t
	}

	optimizers := make(map[string]any, len(s.Optimizers))
	for name, o := range s.Optimizers {
		optimizers[name] = o.Dict()
	}

	schedulers := make(map[string]any, len(s.Schedulers))
	for name, fields := range s.Schedulers {
		schedulers[name] = copyAnyMap(fields)
	}

	return map[string]any{
		"state": map[string]any{
			"run_name":   s.RunName,
			"model":      model,
			"optimizers": optimizers,
			"schedulers": schedulers,
			"timestamp":  s.Progress.Timestamp(),
		},
	}
}

// copyAnyMap shallow-copies a state-dict fragment so callers mutating
// the State cannot corrupt an already-built dict (and vice versa).
// Leaf values, including tensors, stay shared.
func copyAnyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
