package hxl

// The two filter composition strategies. A streaming filter processes
// one upstream row at a time and cannot reorder or replay; a caching
// filter materialises its whole upstream once and can do both. In each
// case column resolution happens exactly once, before any row work,
// and may leave side effects (index maps) behind for the row phase.

// rowTransform is the streaming filter contract: filterColumns runs
// once when the column set is first needed; filterRow runs once per
// upstream row, returning ok=false to drop the row.
type rowTransform interface {
	filterColumns(columns []*Column) ([]*Column, error)
	filterRow(row *Row) (values []string, ok bool, err error)
}

// StreamingFilter adapts a rowTransform into a Source. The filter
// itself holds no per-run state beyond the memoised column set, so a
// fresh Iterate starts a clean pass provided the upstream is itself
// replayable.
type StreamingFilter struct {
	source   Source
	tr       rowTransform
	columns  []*Column
	resolved bool
	colErr   error
}

func newStreamingFilter(source Source, tr rowTransform) *StreamingFilter {
	return &StreamingFilter{source: source, tr: tr}
}

// Columns resolves and memoises the output column set.
func (f *StreamingFilter) Columns() ([]*Column, error) {
	if !f.resolved {
		f.resolved = true
		upstream, err := f.source.Columns()
		if err != nil {
			f.colErr = err
		} else {
			f.columns, f.colErr = f.tr.filterColumns(upstream)
		}
	}
	return f.columns, f.colErr
}

// Iterate wraps a fresh upstream iterator.
func (f *StreamingFilter) Iterate() (RowIterator, error) {
	columns, err := f.Columns()
	if err != nil {
		return nil, err
	}
	upstream, err := f.source.Iterate()
	if err != nil {
		return nil, err
	}
	return &streamIterator{tr: f.tr, columns: columns, upstream: upstream}, nil
}

type streamIterator struct {
	tr       rowTransform
	columns  []*Column
	upstream RowIterator
	rowCount int
}

func (it *streamIterator) Next() (*Row, bool, error) {
	for {
		row, ok, err := it.upstream.Next()
		if err != nil || !ok {
			return nil, false, err
		}
		values, keep, err := it.tr.filterRow(row)
		if err != nil {
			return nil, false, err
		}
		if !keep {
			continue
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

// rowsTransform is the caching filter contract: filterColumns and
// filterRows each run exactly once over the filter's lifetime, with
// the whole upstream materialised for filterRows.
type rowsTransform interface {
	filterColumns(columns []*Column) ([]*Column, error)
	filterRows(rows []*Row) ([][]string, error)
}

// CachingFilter adapts a rowsTransform into a replayable Source. The
// row cache is captured once, so replay is safe regardless of whether
// the upstream itself is.
type CachingFilter struct {
	source   Source
	tr       rowsTransform
	columns  []*Column
	resolved bool
	colErr   error
	saved    [][]string
	loaded   bool
	loadErr  error
}

func newCachingFilter(source Source, tr rowsTransform) *CachingFilter {
	return &CachingFilter{source: source, tr: tr}
}

// Columns resolves and memoises the output column set.
func (f *CachingFilter) Columns() ([]*Column, error) {
	if !f.resolved {
		f.resolved = true
		upstream, err := f.source.Columns()
		if err != nil {
			f.colErr = err
		} else {
			f.columns, f.colErr = f.tr.filterColumns(upstream)
		}
	}
	return f.columns, f.colErr
}

// Iterate materialises the upstream on first use, then replays the
// saved rows without touching the upstream again.
func (f *CachingFilter) Iterate() (RowIterator, error) {
	columns, err := f.Columns()
	if err != nil {
		return nil, err
	}
	if !f.loaded {
		f.loaded = true
		f.saved, f.loadErr = f.load()
	}
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return &replayIterator{columns: columns, rows: f.saved}, nil
}

func (f *CachingFilter) load() ([][]string, error) {
	it, err := f.source.Iterate()
	if err != nil {
		return nil, err
	}
	var rows []*Row
	for {
		row, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	return f.tr.filterRows(rows)
}

type replayIterator struct {
	columns []*Column
	rows    [][]string
	pos     int
}

func (it *replayIterator) Next() (*Row, bool, error) {
	if it.pos >= len(it.rows) {
		return nil, false, nil
	}
	row := &Row{
		Columns:         it.columns,
		Values:          it.rows[it.pos],
		RowNumber:       it.pos,
		SourceRowNumber: -1,
	}
	it.pos++
	return row, true, nil
}
