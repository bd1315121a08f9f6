// Package tabio reads and writes HXL-tagged CSV: optional header rows,
// one hashtag row, then data rows. It is thin glue over encoding/csv;
// spreadsheet formats and encoding quirks are out of scope.
package tabio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/hxlpipe/runtime/pkg/hxl"
)

// csvRowReader adapts a csv.Reader to the raw-row interface.
type csvRowReader struct {
	reader *csv.Reader
}

func (r *csvRowReader) ReadRawRow() ([]string, bool, error) {
	cells, err := r.reader.Read()
	if err == io.EOF {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading csv row: %w", err)
	}
	return cells, true, nil
}

// NewReader wraps a CSV stream as a single-pass Dataset. Rows may have
// ragged widths.
func NewReader(r io.Reader) (*hxl.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return hxl.NewReader(&csvRowReader{reader: cr})
}

// Load reads an entire CSV stream into a replayable Dataset.
func Load(r io.Reader) (*hxl.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return hxl.Data(rows)
}

// LoadFile reads a CSV file into a replayable Dataset.
func LoadFile(path string) (*hxl.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	d, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Write emits the dataset as HXL-tagged CSV: a header row when any
// column carries one, the hashtag row, then the data rows. Returns the
// number of data rows written.
func Write(w io.Writer, d *hxl.Dataset) (int, error) {
	columns, err := d.Columns()
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)

	hasHeaders := false
	headers := make([]string, len(columns))
	tags := make([]string, len(columns))
	for i, column := range columns {
		headers[i] = column.Header
		tags[i] = column.DisplayTag()
		if column.Header != "" {
			hasHeaders = true
		}
	}
	if hasHeaders {
		if err := cw.Write(headers); err != nil {
			return 0, fmt.Errorf("writing header row: %w", err)
		}
	}
	if err := cw.Write(tags); err != nil {
		return 0, fmt.Errorf("writing hashtag row: %w", err)
	}

	it, err := d.Iterate()
	if err != nil {
		return 0, err
	}
	written := 0
	for {
		row, ok, err := it.Next()
		if err != nil {
			return written, err
		}
		if !ok {
			break
		}
		values := make([]string, len(columns))
		for i := range columns {
			values[i] = row.Value(i)
		}
		if err := cw.Write(values); err != nil {
			return written, fmt.Errorf("writing row %d: %w", row.RowNumber, err)
		}
		written++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("flushing csv: %w", err)
	}
	return written, nil
}

// WriteFile writes the dataset to a CSV file, creating or truncating
// it.
func WriteFile(path string, d *hxl.Dataset) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	n, err := Write(f, d)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("closing %s: %w", path, err)
	}
	return n, nil
}
