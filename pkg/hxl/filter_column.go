package hxl

// ColumnFilter is a streaming filter that cuts the column set down.
// The blacklist is checked first: any match rejects the column. A
// surviving column must then match the whitelist, when one is given.
// Column resolution records which source indexes survive, so rows are
// remapped without re-testing patterns per row.
type ColumnFilter struct {
	*StreamingFilter
	include []*TagPattern
	exclude []*TagPattern
	indexes []int
}

// NewColumnFilter builds a column cut over the source. Either pattern
// list may be empty.
func NewColumnFilter(source Source, include, exclude []*TagPattern) *ColumnFilter {
	f := &ColumnFilter{include: include, exclude: exclude}
	f.StreamingFilter = newStreamingFilter(source, f)
	return f
}

func (f *ColumnFilter) filterColumns(columns []*Column) ([]*Column, error) {
	f.indexes = f.indexes[:0]
	var kept []*Column
	for i, column := range columns {
		if MatchAny(column, f.exclude) {
			continue
		}
		if len(f.include) > 0 && !MatchAny(column, f.include) {
			continue
		}
		f.indexes = append(f.indexes, i)
		kept = append(kept, column)
	}
	return kept, nil
}

func (f *ColumnFilter) filterRow(row *Row) ([]string, bool, error) {
	values := make([]string, len(f.indexes))
	for i, idx := range f.indexes {
		values[i] = row.Value(idx)
	}
	return values, true, nil
}
