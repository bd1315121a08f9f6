package hxl

import (
	"regexp"
	"sort"
	"strings"
)

// AggregatorSpec describes one aggregation column for the count
// filter, parsed from a spec of the form "name(pattern) as
// Header#tag": count(), sum(#affected), average(#affected),
// min(#affected), max(#affected). A malformed spec fails at
// construction, never during iteration.
type AggregatorSpec struct {
	Type    string
	Pattern *TagPattern
	Column  *Column
}

var aggregatorRE = regexp.MustCompile(
	`^\s*(count|sum|average|min|max)\s*\(\s*([^)]*?)\s*\)\s+as\s+(.+?)\s*$`,
)

// ParseAggregator parses a single aggregator spec string.
func ParseAggregator(spec string) (*AggregatorSpec, error) {
	m := aggregatorRE.FindStringSubmatch(spec)
	if m == nil {
		return nil, &AggregatorSpecError{Spec: spec, Reason: "expected name(pattern) as Header#tag"}
	}
	a := &AggregatorSpec{Type: m[1]}
	if m[2] != "" {
		pattern, err := ParseTagPattern(m[2])
		if err != nil {
			return nil, &AggregatorSpecError{Spec: spec, Reason: err.Error()}
		}
		a.Pattern = pattern
	} else if a.Type != "count" {
		return nil, &AggregatorSpecError{Spec: spec, Reason: a.Type + " requires a tag pattern"}
	}
	column, err := parseColumnSpec(m[3])
	if err != nil {
		return nil, &AggregatorSpecError{Spec: spec, Reason: err.Error()}
	}
	a.Column = column
	return a, nil
}

// ParseAggregators parses a list of aggregator specs.
func ParseAggregators(specs ...string) ([]*AggregatorSpec, error) {
	aggregators := make([]*AggregatorSpec, 0, len(specs))
	for _, spec := range specs {
		if strings.TrimSpace(spec) == "" {
			continue
		}
		a, err := ParseAggregator(spec)
		if err != nil {
			return nil, err
		}
		aggregators = append(aggregators, a)
	}
	return aggregators, nil
}

// parseColumnSpec parses "Header#tag+attrs" with the header optional.
func parseColumnSpec(spec string) (*Column, error) {
	hash := strings.Index(spec, "#")
	if hash < 0 {
		return nil, &TagSpecError{Spec: spec, Reason: "missing hashtag"}
	}
	column, err := ParseColumn(spec[hash:], strings.TrimSpace(spec[:hash]), -1)
	if err != nil {
		return nil, err
	}
	return column, nil
}

// aggregatorState accumulates one aggregator over one group of rows.
// Count is unconditional; the numeric aggregators only see rows whose
// target value parses as a number, and report empty when no row
// qualified. The average is maintained incrementally so intermediate
// states are always consistent running averages.
type aggregatorState struct {
	spec    *AggregatorSpec
	rows    int
	numeric int
	sum     float64
	average float64
	min     float64
	max     float64
}

func (s *aggregatorState) addRow(row *Row) {
	s.rows++
	if s.spec.Type == "count" {
		return
	}
	n, ok := ParseNumber(row.Get(s.spec.Pattern))
	if !ok {
		return
	}
	s.numeric++
	s.sum += n
	s.average += (n - s.average) / float64(s.numeric)
	if s.numeric == 1 || n < s.min {
		s.min = n
	}
	if s.numeric == 1 || n > s.max {
		s.max = n
	}
}

func (s *aggregatorState) value() string {
	if s.spec.Type == "count" {
		return FormatNumber(float64(s.rows))
	}
	if s.numeric == 0 {
		return ""
	}
	switch s.spec.Type {
	case "sum":
		return FormatNumber(s.sum)
	case "average":
		return FormatNumber(s.average)
	case "min":
		return FormatNumber(s.min)
	case "max":
		return FormatNumber(s.max)
	}
	return ""
}

// CountFilter is a caching filter that groups rows by a key built from
// the tag patterns (the first matching value per pattern, in pattern
// order) and emits one output row per group: the key values followed
// by each aggregator's final value, in sorted key order.
type CountFilter struct {
	*CachingFilter
	patterns    []*TagPattern
	aggregators []*AggregatorSpec
}

// NewCountFilter builds an aggregation over the source. With no
// aggregators, a single "count() as Count#meta+count" is used.
func NewCountFilter(source Source, patterns []*TagPattern, aggregators []*AggregatorSpec) *CountFilter {
	if len(aggregators) == 0 {
		aggregators = []*AggregatorSpec{{
			Type:   "count",
			Column: NewColumn("#meta", []string{"count"}, "Count"),
		}}
	}
	f := &CountFilter{patterns: patterns, aggregators: aggregators}
	f.CachingFilter = newCachingFilter(source, f)
	return f
}

// filterColumns derives one output column per key pattern, reusing the
// first matching source column where one exists, then appends the
// aggregator columns.
func (f *CountFilter) filterColumns(columns []*Column) ([]*Column, error) {
	out := make([]*Column, 0, len(f.patterns)+len(f.aggregators))
	for _, p := range f.patterns {
		var match *Column
		for _, column := range columns {
			if p.Match(column) {
				match = column
				break
			}
		}
		if match != nil {
			out = append(out, match.Clone())
		} else {
			out = append(out, NewColumn(p.Tag, sortedKeys(p.IncludeAttributes), ""))
		}
	}
	for _, a := range f.aggregators {
		out = append(out, a.Column)
	}
	return out, nil
}

type countGroup struct {
	keyParts []string
	states   []*aggregatorState
}

func (f *CountFilter) filterRows(rows []*Row) ([][]string, error) {
	groups := map[string]*countGroup{}
	for _, row := range rows {
		parts := make([]string, len(f.patterns))
		for i, p := range f.patterns {
			parts[i] = row.Get(p)
		}
		key := strings.Join(parts, keySeparator)
		group := groups[key]
		if group == nil {
			group = &countGroup{keyParts: parts}
			for _, a := range f.aggregators {
				group.states = append(group.states, &aggregatorState{spec: a})
			}
			groups[key] = group
		}
		for _, state := range group.states {
			state.addRow(row)
		}
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([][]string, 0, len(groups))
	for _, key := range keys {
		group := groups[key]
		values := make([]string, 0, len(group.keyParts)+len(group.states))
		values = append(values, group.keyParts...)
		for _, state := range group.states {
			values = append(values, state.value())
		}
		out = append(out, values)
	}
	return out, nil
}
