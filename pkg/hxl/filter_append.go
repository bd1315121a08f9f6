package hxl

// AppendFilter concatenates one or more datasets after the primary
// one. Neither streaming nor caching: a custom iterator walks the
// primary fully, then each appended source in turn.
//
// Column alignment is computed once: each appended source's columns
// map to a matching output column when one exists (first match wins,
// and a claimed column is removed from the candidate pool so a second
// identical column of the same source claims the next one), to a brand
// new output column when addColumns is set, or to nothing. Appended
// rows are remapped into a zero-filled template of the final width.
// Optional queries filter the appended rows only; primary rows always
// pass.
type AppendFilter struct {
	primary    Source
	appended   []Source
	addColumns bool
	queries    []*RowQuery

	columns  []*Column
	maps     [][]int
	resolved bool
	colErr   error
}

// NewAppendFilter builds a concatenation of the appended sources after
// the primary.
func NewAppendFilter(primary Source, appended []Source, addColumns bool, queries []*RowQuery) *AppendFilter {
	return &AppendFilter{primary: primary, appended: appended, addColumns: addColumns, queries: queries}
}

// Columns resolves the combined column set and the per-source index
// maps, once.
func (f *AppendFilter) Columns() ([]*Column, error) {
	if f.resolved {
		return f.columns, f.colErr
	}
	f.resolved = true

	primaryColumns, err := f.primary.Columns()
	if err != nil {
		f.colErr = err
		return nil, err
	}
	out := make([]*Column, len(primaryColumns))
	copy(out, primaryColumns)

	f.maps = make([][]int, len(f.appended))
	for si, source := range f.appended {
		sourceColumns, err := source.Columns()
		if err != nil {
			f.colErr = err
			return nil, err
		}
		claimed := map[int]bool{}
		indexMap := make([]int, len(sourceColumns))
		for ci, column := range sourceColumns {
			indexMap[ci] = -1
			for oi, outColumn := range out {
				if claimed[oi] || !column.Equal(outColumn) {
					continue
				}
				indexMap[ci] = oi
				claimed[oi] = true
				break
			}
			if indexMap[ci] < 0 && f.addColumns {
				out = append(out, column.Clone())
				indexMap[ci] = len(out) - 1
				claimed[len(out)-1] = true
			}
		}
		f.maps[si] = indexMap
	}
	f.columns = out
	return f.columns, nil
}

// Iterate walks the primary source, then each appended source.
func (f *AppendFilter) Iterate() (RowIterator, error) {
	columns, err := f.Columns()
	if err != nil {
		return nil, err
	}
	primary, err := f.primary.Iterate()
	if err != nil {
		return nil, err
	}
	return &appendIterator{filter: f, columns: columns, current: primary, sourceIdx: -1}, nil
}

type appendIterator struct {
	filter    *AppendFilter
	columns   []*Column
	current   RowIterator
	sourceIdx int
	rowCount  int
}

func (it *appendIterator) Next() (*Row, bool, error) {
	for {
		row, ok, err := it.current.Next()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			it.sourceIdx++
			if it.sourceIdx >= len(it.filter.appended) {
				return nil, false, nil
			}
			next, err := it.filter.appended[it.sourceIdx].Iterate()
			if err != nil {
				return nil, false, err
			}
			it.current = next
			continue
		}
		if it.sourceIdx >= 0 && len(it.filter.queries) > 0 {
			keep, err := anyQueryMatches(it.filter.queries, row)
			if err != nil {
				return nil, false, err
			}
			if !keep {
				continue
			}
		}
		values := make([]string, len(it.columns))
		if it.sourceIdx < 0 {
			copy(values, row.Values)
		} else {
			for ci, oi := range it.filter.maps[it.sourceIdx] {
				if oi >= 0 {
					values[oi] = row.Value(ci)
				}
			}
		}
		out := &Row{
			Columns:         it.columns,
			Values:          values,
			RowNumber:       it.rowCount,
			SourceRowNumber: row.SourceRowNumber,
		}
		it.rowCount++
		return out, true, nil
	}
}
