// Package composer provides deep comparison of nested training state
// for machine learning test suites.
//
// The library models the serializable pieces of a training run (model
// parameter tensors, optimizer and scheduler state, run progress) and
// compares two such states recursively, reporting the exact path at
// which they first diverge.
//
// # Packages
//
//   - compare: recursive deep equality over nested state dicts
//   - tensor: dense tensors with device placement, plus sharded and
//     distributed wrappers
//   - metrics: metric accumulators whose summaries can be compared
//   - state: state dicts, run progress, and gob checkpoints
//   - core/traintime: training-time values such as "10ep" and "500ba"
//   - pkg/errors: structured errors and the warning system
//   - pkg/log: structured logging
//
// # Quick Start
//
// Compare two reloaded checkpoints:
//
//	dict1, _, err := state.LoadCheckpoint("run_a.gob")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dict2, _, err := state.LoadCheckpoint("run_b.gob")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := compare.DeepCompare(dict1, dict2, compare.WithTolerance(1e-7, 1e-5)); err != nil {
//	    log.Fatal(err) // names the first diverging path
//	}
package composer
