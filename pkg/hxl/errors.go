package hxl

import (
	"errors"
	"fmt"
)

// ErrHashtagsNotFound signals that no row in the scanned window of the
// input qualified as a hashtag row, meaning the input as a whole lacks
// HXL structure. It is distinct from a malformed individual tag spec.
var ErrHashtagsNotFound = errors.New("HXL hashtags not found in first 25 rows")

// ErrSourceConsumed is returned when Iterate is called a second time on
// a single-pass streaming source. Wrap the dataset in Cache first when
// replay is needed.
var ErrSourceConsumed = errors.New("streaming source already consumed")

// ErrAggregateNotCalculated is returned when an "is min" / "is max"
// query is matched against a row before CalcAggregate has run. This is
// a caller-side ordering bug, not a data problem.
var ErrAggregateNotCalculated = errors.New("aggregate query matched before CalcAggregate")

// TagSpecError reports a malformed hashtag or tag-pattern spec. Raised
// at parse time, never deferred to iteration.
type TagSpecError struct {
	Spec   string
	Reason string
}

func (e *TagSpecError) Error() string {
	return fmt.Sprintf("bad tag spec %q: %s", e.Spec, e.Reason)
}

// QuerySpecError reports a malformed row-query spec.
type QuerySpecError struct {
	Spec   string
	Reason string
}

func (e *QuerySpecError) Error() string {
	return fmt.Sprintf("bad row query %q: %s", e.Spec, e.Reason)
}

// AggregatorSpecError reports a malformed aggregator spec passed to the
// count filter.
type AggregatorSpecError struct {
	Spec   string
	Reason string
}

func (e *AggregatorSpecError) Error() string {
	return fmt.Sprintf("bad aggregator spec %q: %s", e.Spec, e.Reason)
}

// FilterSpecError reports a malformed filter parameter spec, such as a
// rename or add-columns pattern.
type FilterSpecError struct {
	Filter string
	Spec   string
	Reason string
}

func (e *FilterSpecError) Error() string {
	return fmt.Sprintf("%s: bad spec %q: %s", e.Filter, e.Spec, e.Reason)
}
