package hxl

// RowFilter is a streaming filter that selects rows by query. An empty
// query list always matches, making the filter a pass-through. The
// optional mask restricts which rows are even tested: a row failing
// the mask passes through untouched, bypassing the include/exclude
// test entirely. With reverse set, rows matching the queries are
// dropped instead of kept.
type RowFilter struct {
	*StreamingFilter
	queries []*RowQuery
	mask    []*RowQuery
	reverse bool
}

// NewRowFilter builds a row-selection filter over the source.
func NewRowFilter(source Source, queries, mask []*RowQuery, reverse bool) *RowFilter {
	f := &RowFilter{queries: queries, mask: mask, reverse: reverse}
	f.StreamingFilter = newStreamingFilter(source, f)
	return f
}

// filterColumns passes the column set through unchanged. Aggregate
// queries ("is min" / "is max") run their pre-pass here, which
// requires the source to be replayable; the caller is responsible for
// caching upstream first.
func (f *RowFilter) filterColumns(columns []*Column) ([]*Column, error) {
	for _, q := range f.queries {
		if q.NeedsAggregate() {
			if err := q.CalcAggregate(f.StreamingFilter.source); err != nil {
				return nil, err
			}
		}
	}
	return columns, nil
}

func (f *RowFilter) filterRow(row *Row) ([]string, bool, error) {
	if len(f.mask) > 0 {
		masked, err := anyQueryMatches(f.mask, row)
		if err != nil {
			return nil, false, err
		}
		if !masked {
			return row.Values, true, nil
		}
	}
	matched := true
	if len(f.queries) > 0 {
		m, err := anyQueryMatches(f.queries, row)
		if err != nil {
			return nil, false, err
		}
		matched = m
	}
	if matched == f.reverse {
		return nil, false, nil
	}
	return row.Values, true, nil
}

func anyQueryMatches(queries []*RowQuery, row *Row) (bool, error) {
	for _, q := range queries {
		ok, err := q.MatchRow(row)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
