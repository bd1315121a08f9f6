package hxl

import (
	"github.com/hxlpipe/runtime/internal/logger"
)

// hashtagRowScanLimit bounds how many leading rows are examined for the
// hashtag row before the input is declared untagged.
const hashtagRowScanLimit = 25

// RawRowReader yields raw rows of cells from some tabular input, in
// order. ok is false when the input is exhausted.
type RawRowReader interface {
	ReadRawRow() (cells []string, ok bool, err error)
}

// Data wraps already-loaded raw rows (header rows, hashtag row, data
// rows) into a Dataset. The backing slice is retained, not copied, and
// the resulting source is replayable.
func Data(rows [][]string) (*Dataset, error) {
	for i := 0; i < len(rows) && i < hashtagRowScanLimit; i++ {
		if !isHashtagRow(rows[i]) {
			continue
		}
		var headerRow []string
		if i > 0 {
			headerRow = rows[i-1]
		}
		return NewDataset(&tableSource{
			columns:   buildColumns(rows[i], headerRow),
			rows:      rows[i+1:],
			dataStart: i + 1,
		}), nil
	}
	return nil, ErrHashtagsNotFound
}

// NewReader detects the hashtag row in the reader's leading rows and
// returns a Dataset streaming the remaining rows. The source is
// single-pass: a second Iterate returns ErrSourceConsumed. Wrap in
// Cache when a filter chain needs replay.
func NewReader(r RawRowReader) (*Dataset, error) {
	var buffered [][]string
	for len(buffered) < hashtagRowScanLimit {
		cells, ok, err := r.ReadRawRow()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		buffered = append(buffered, cells)
		if !isHashtagRow(cells) {
			continue
		}
		i := len(buffered) - 1
		var headerRow []string
		if i > 0 {
			headerRow = buffered[i-1]
		}
		return NewDataset(&readerSource{
			columns:   buildColumns(cells, headerRow),
			reader:    r,
			dataStart: i + 1,
		}), nil
	}
	return nil, ErrHashtagsNotFound
}

// isHashtagRow applies the fuzzy detection rule: at least one cell
// parses as a hashtag spec, and at least half of the non-empty cells
// do.
func isHashtagRow(cells []string) bool {
	nonEmpty, tagged := 0, 0
	for _, cell := range cells {
		if IsEmpty(cell) {
			continue
		}
		nonEmpty++
		if c, err := ParseColumn(cell, "", -1); err == nil && c != nil {
			tagged++
		}
	}
	return tagged > 0 && 2*tagged >= nonEmpty
}

// buildColumns turns the recognised hashtag row into the column list,
// taking headers from the row above it. Cells that fail the hashtag
// grammar become untagged columns rather than aborting the load.
func buildColumns(tagRow, headerRow []string) []*Column {
	width := len(tagRow)
	if len(headerRow) > width {
		width = len(headerRow)
	}
	columns := make([]*Column, width)
	for i := 0; i < width; i++ {
		raw, header := "", ""
		if i < len(tagRow) {
			raw = tagRow[i]
		}
		if i < len(headerRow) {
			header = headerRow[i]
		}
		column, err := ParseColumn(raw, header, i)
		if err != nil {
			logger.Warn("malformed hashtag, treating column as untagged",
				"spec", raw, "column", i)
		}
		if column == nil {
			column = NewColumn("", nil, header)
			column.ColumnNumber = i
		}
		columns[i] = column
	}
	return columns
}

// tableSource is the replayable in-memory source behind Data.
type tableSource struct {
	columns   []*Column
	rows      [][]string
	dataStart int
}

func (s *tableSource) Columns() ([]*Column, error) {
	return s.columns, nil
}

func (s *tableSource) Iterate() (RowIterator, error) {
	return &tableIterator{source: s}, nil
}

type tableIterator struct {
	source *tableSource
	pos    int
}

func (it *tableIterator) Next() (*Row, bool, error) {
	if it.pos >= len(it.source.rows) {
		return nil, false, nil
	}
	raw := it.source.rows[it.pos]
	values := make([]string, len(raw))
	copy(values, raw)
	row := &Row{
		Columns:         it.source.columns,
		Values:          values,
		RowNumber:       it.pos,
		SourceRowNumber: it.source.dataStart + it.pos,
	}
	it.pos++
	return row, true, nil
}

// readerSource streams data rows straight from a RawRowReader.
type readerSource struct {
	columns   []*Column
	reader    RawRowReader
	dataStart int
	consumed  bool
}

func (s *readerSource) Columns() ([]*Column, error) {
	return s.columns, nil
}

func (s *readerSource) Iterate() (RowIterator, error) {
	if s.consumed {
		return nil, ErrSourceConsumed
	}
	s.consumed = true
	return &readerIterator{source: s}, nil
}

type readerIterator struct {
	source *readerSource
	pos    int
}

func (it *readerIterator) Next() (*Row, bool, error) {
	cells, ok, err := it.source.reader.ReadRawRow()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	row := &Row{
		Columns:         it.source.columns,
		Values:          cells,
		RowNumber:       it.pos,
		SourceRowNumber: it.source.dataStart + it.pos,
	}
	it.pos++
	return row, true, nil
}
