package risk

import (
	"errors"
	"fmt"
)

// ErrUnknownGrade is returned when a grade outside the four-color scale
// reaches the aggregator.
var ErrUnknownGrade = errors.New("unknown grade")

// InvalidMetricError reports a metric that is missing, of the wrong kind, or
// not a finite number.
type InvalidMetricError struct {
	Metric MetricKind
	Reason string
}

func (e *InvalidMetricError) Error() string {
	if e.Metric == "" {
		return fmt.Sprintf("invalid metric: %s", e.Reason)
	}
	return fmt.Sprintf("invalid metric %s: %s", e.Metric, e.Reason)
}

// InsufficientDataError reports an aggregation attempted without any grades.
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return "insufficient data: " + e.Reason
}
