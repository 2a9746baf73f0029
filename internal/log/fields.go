package log

// Common field names for structured logging.
const (
	FieldComponent      = "component"
	FieldError          = "error"
	FieldDurationMS     = "duration_ms"
	FieldMethod         = "method"
	FieldPath           = "path"
	FieldStatus         = "status"
	FieldDatasetVersion = "dataset_version"
	FieldTransactions   = "transactions"
	FieldMonths         = "months"
	FieldPatterns       = "patterns"
	FieldPreset         = "preset"
)

// Component names used across the binaries.
const (
	ComponentServer    = "server"
	ComponentAnalytics = "analytics"
	ComponentImport    = "import"
	ComponentStorage   = "storage"
	ComponentWorker    = "worker"
	ComponentAMQP      = "amqp"
)
