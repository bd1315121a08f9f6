package hxl

import (
	"fmt"
	"regexp"
)

// ReplaceDataFilter is a streaming filter that substitutes values in
// columns matching the given patterns (every column when none are
// given). In literal mode the whole cell is replaced when its
// normalised form equals the normalised original; in regex mode the
// original is a regular expression applied to the raw value, and the
// replacement may use $1-style group references. Optional queries
// restrict which rows are touched.
type ReplaceDataFilter struct {
	*StreamingFilter
	original    string
	replacement string
	patterns    []*TagPattern
	queries     []*RowQuery
	re          *regexp.Regexp
	indexes     []int
}

// NewReplaceDataFilter builds a value substitution over the source.
func NewReplaceDataFilter(source Source, original, replacement string, patterns []*TagPattern, useRegex bool, queries []*RowQuery) (*ReplaceDataFilter, error) {
	f := &ReplaceDataFilter{
		original:    original,
		replacement: replacement,
		patterns:    patterns,
		queries:     queries,
	}
	if useRegex {
		re, err := regexp.Compile(original)
		if err != nil {
			return nil, &FilterSpecError{Filter: "replace_data", Spec: original, Reason: fmt.Sprintf("bad regular expression: %v", err)}
		}
		f.re = re
	}
	f.StreamingFilter = newStreamingFilter(source, f)
	return f, nil
}

func (f *ReplaceDataFilter) filterColumns(columns []*Column) ([]*Column, error) {
	f.indexes = f.indexes[:0]
	for i, column := range columns {
		if len(f.patterns) == 0 || MatchAny(column, f.patterns) {
			f.indexes = append(f.indexes, i)
		}
	}
	return columns, nil
}

func (f *ReplaceDataFilter) filterRow(row *Row) ([]string, bool, error) {
	if len(f.queries) > 0 {
		touched, err := anyQueryMatches(f.queries, row)
		if err != nil {
			return nil, false, err
		}
		if !touched {
			return row.Values, true, nil
		}
	}
	values := make([]string, len(row.Values))
	copy(values, row.Values)
	for _, idx := range f.indexes {
		if idx >= len(values) {
			continue
		}
		if f.re != nil {
			values[idx] = f.re.ReplaceAllString(values[idx], f.replacement)
		} else if NormaliseString(values[idx]) == NormaliseString(f.original) {
			values[idx] = f.replacement
		}
	}
	return values, true, nil
}
