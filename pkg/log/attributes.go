// Standard attribute keys for state comparison and checkpoint logging.
// Keys follow a hierarchical naming convention (e.g. "compare.path",
// "tensor.shape") to enable structured filtering.

package log

// Comparison context.
const (
	// PathKey is the slash-delimited location inside a nested state dict.
	// Examples: "/state/model", "/state/optimizers/Adam/param_groups/0"
	PathKey = "compare.path"

	// OperationKey specifies the operation being performed.
	// Standard values: "deep_compare", "save", "load", "compute"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "compare", "state", "metrics", "tensor"
	ComponentKey = "ml.component"
)

// Tensor and data characteristics.
const (
	// ShapeKey is the tensor or array shape, e.g. [64, 128].
	ShapeKey = "tensor.shape"

	// DTypeKey is the tensor element type. Examples: "float32", "bfloat16"
	DTypeKey = "tensor.dtype"

	// DeviceKey is the tensor placement. Examples: "cpu", "cuda:0"
	DeviceKey = "tensor.device"

	// SamplesKey is the number of samples involved in an operation.
	SamplesKey = "data.samples"
)

// Metric context.
const (
	// MetricKey is the metric name. Examples: "MulticlassAccuracy"
	MetricKey = "metric.name"

	// UpdateCountKey is a metric's accumulated update count.
	UpdateCountKey = "metric.update_count"
)

// Checkpoint context.
const (
	// CheckpointKey is the checkpoint file path.
	CheckpointKey = "checkpoint.path"

	// RankKey is the process rank owning the local shard or replica.
	RankKey = "dist.rank"

	// WorldSizeKey is the number of participating processes.
	WorldSizeKey = "dist.world_size"
)

// Performance.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error context.
const (
	// ErrorTypeKey categorizes the type of error encountered.
	// Examples: "TypeMismatchError", "UnsupportedTypeError"
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)
