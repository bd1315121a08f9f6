package hxl

// DeduplicationFilter drops rows whose key repeats one already seen in
// the same pass. The key covers the columns matching the given
// patterns, or the whole row when none are given. Optional queries
// restrict which rows are even considered: a row matching none of them
// passes through unconditionally.
//
// Nominally streaming, but the set of seen keys grows without bound,
// so the whole key space must fit in memory. The set is scoped to the
// iterator, so a fresh pass over a replayable upstream starts clean.
type DeduplicationFilter struct {
	source   Source
	patterns []*TagPattern
	queries  []*RowQuery
}

// NewDeduplicationFilter builds a deduplication over the source.
func NewDeduplicationFilter(source Source, patterns []*TagPattern, queries []*RowQuery) *DeduplicationFilter {
	return &DeduplicationFilter{source: source, patterns: patterns, queries: queries}
}

// Columns passes the column set through unchanged.
func (f *DeduplicationFilter) Columns() ([]*Column, error) {
	return f.source.Columns()
}

// Iterate starts a pass with an empty seen-key set.
func (f *DeduplicationFilter) Iterate() (RowIterator, error) {
	upstream, err := f.source.Iterate()
	if err != nil {
		return nil, err
	}
	return &dedupIterator{filter: f, upstream: upstream, seen: map[string]bool{}}, nil
}

type dedupIterator struct {
	filter   *DeduplicationFilter
	upstream RowIterator
	seen     map[string]bool
	rowCount int
}

func (it *dedupIterator) Next() (*Row, bool, error) {
	for {
		row, ok, err := it.upstream.Next()
		if err != nil || !ok {
			return nil, false, err
		}
		if len(it.filter.queries) > 0 {
			considered, err := anyQueryMatches(it.filter.queries, row)
			if err != nil {
				return nil, false, err
			}
			if !considered {
				return it.emit(row), true, nil
			}
		}
		key := row.Key(it.filter.patterns)
		if it.seen[key] {
			continue
		}
		it.seen[key] = true
		return it.emit(row), true, nil
	}
}

func (it *dedupIterator) emit(row *Row) *Row {
	out := &Row{
		Columns:         row.Columns,
		Values:          row.Values,
		RowNumber:       it.rowCount,
		SourceRowNumber: row.SourceRowNumber,
	}
	it.rowCount++
	return out
}
