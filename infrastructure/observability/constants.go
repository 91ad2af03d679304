package observability

// Metric name prefixes
const (
	MetricPrefix = "arena"
)

// Metric names
const (
	// Engine operations
	OperationsTotal   = MetricPrefix + ".operations_total"
	OperationDuration = MetricPrefix + ".operation.duration"

	// Money flow, in lamports
	WagersTotal      = MetricPrefix + ".wagers_total"
	WageredVolume    = MetricPrefix + ".wagers.volume"
	SettlementsTotal = MetricPrefix + ".settlements_total"
	SettledVolume    = MetricPrefix + ".settlements.volume"
	FeesCollected    = MetricPrefix + ".settlements.fees"
	ClaimsTotal      = MetricPrefix + ".claims_total"
	ClaimedVolume    = MetricPrefix + ".claims.volume"
)

// Label keys
const (
	LabelOperation = "operation"
	LabelErrorKind = "error_kind"
	LabelSide      = "side"
)

// ErrorKindNone labels operations that succeeded
const ErrorKindNone = "none"
