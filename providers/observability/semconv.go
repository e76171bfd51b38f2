package observability

// Semantic conventions for observability attributes, span names and metric
// names emitted by the normalization pipeline. Using these constants keeps
// dashboards and log queries stable across components.

// --- Pipeline Stage Spans ---

const (
	// StageExtract is the span covering JSON-span isolation in raw text
	StageExtract = "normalize.extract"

	// StageParse is the span covering the tolerant-parse repair ladder
	StageParse = "normalize.parse"

	// StageCoerce is the span covering alias and type coercion
	StageCoerce = "normalize.coerce"

	// StageValidate is the span covering structural validation
	StageValidate = "normalize.validate"

	// StageReconcile is the span covering constraint reconciliation
	StageReconcile = "normalize.reconcile"
)

// --- Pipeline Attributes ---

const (
	// AttrStage is the pipeline stage a metric belongs to
	AttrStage = "normalize.stage"

	// AttrInputBytes is the size of the raw text handed to extraction
	AttrInputBytes = "normalize.input.bytes"

	// AttrSpanTruncated marks a candidate span cut off mid-structure
	AttrSpanTruncated = "normalize.span.truncated"

	// AttrFailureKind is the error taxonomy kind of a failed run
	AttrFailureKind = "normalize.failure.kind"

	// AttrScenesCount is the number of scenes in the produced plan
	AttrScenesCount = "plan.scenes.count"

	// AttrPlanDuration is the reconciled total plan duration in seconds
	AttrPlanDuration = "plan.duration.total_sec"

	// AttrRepairAttempt is the name of a syntactic repair attempt
	AttrRepairAttempt = "normalize.repair.attempt"
)

// --- Span Status Attributes ---

const (
	// AttrStatus is the final status of a span ("ok", "error", "unset")
	AttrStatus = "status"

	// AttrStatusDescription is the human-readable status detail
	AttrStatusDescription = "status.description"
)

// --- Metric Names ---

const (
	// MetricNormalizeSuccess counts successful normalization runs
	MetricNormalizeSuccess = "sceneplan.normalize.success"

	// MetricNormalizeFailure counts failed runs, attributed by kind
	MetricNormalizeFailure = "sceneplan.normalize.failure"

	// MetricStageDuration records per-stage wall time in milliseconds
	MetricStageDuration = "sceneplan.normalize.stage.duration_ms"
)
