package hxl_test

import (
	"errors"
	"testing"

	"github.com/hxlpipe/runtime/pkg/hxl"
)

// sliceReader feeds pre-built rows through the RawRowReader interface.
type sliceReader struct {
	rows [][]string
	pos  int
}

func (r *sliceReader) ReadRawRow() ([]string, bool, error) {
	if r.pos >= len(r.rows) {
		return nil, false, nil
	}
	row := r.rows[r.pos]
	r.pos++
	return row, true, nil
}

func TestDataSkipsLeadingJunkRows(t *testing.T) {
	d, err := hxl.Data([][]string{
		{"3W Report, March 2018"},
		{},
		{"Org", "Sector"},
		{"#org", "#sector"},
		{"Org A", "WASH"},
	})
	if err != nil {
		t.Fatal(err)
	}

	headers, err := d.Headers()
	if err != nil {
		t.Fatal(err)
	}
	if headers[0] != "Org" || headers[1] != "Sector" {
		t.Errorf("Headers = %v", headers)
	}

	values := datasetValues(t, d)
	if len(values) != 1 || values[0][0] != "Org A" {
		t.Errorf("values = %v", values)
	}
}

func TestDataHashtagRowFirst(t *testing.T) {
	d, err := hxl.Data([][]string{
		{"#org", "#sector"},
		{"Org A", "WASH"},
	})
	if err != nil {
		t.Fatal(err)
	}
	hasHeaders, err := d.HasHeaders()
	if err != nil {
		t.Fatal(err)
	}
	if hasHeaders {
		t.Error("HasHeaders = true, want false")
	}
}

func TestDataFuzzyDetectionThreshold(t *testing.T) {
	// Half of the non-empty cells parse as hashtags, which is enough;
	// the failing cell becomes an untagged column.
	d, err := hxl.Data([][]string{
		{"Org", "Notes"},
		{"#org", "Comments"},
		{"Org A", "free text"},
	})
	if err != nil {
		t.Fatal(err)
	}
	columns, err := d.Columns()
	if err != nil {
		t.Fatal(err)
	}
	if columns[0].Tag != "#org" {
		t.Errorf("columns[0].Tag = %q", columns[0].Tag)
	}
	if columns[1].Tag != "" || columns[1].Header != "Notes" {
		t.Errorf("columns[1] = %q / %q, want untagged with header", columns[1].Tag, columns[1].Header)
	}
}

func TestDataBelowThresholdNotDetected(t *testing.T) {
	// One hashtag among three non-empty cells is below half.
	_, err := hxl.Data([][]string{
		{"#org", "Notes", "More"},
		{"Org A", "x", "y"},
	})
	if !errors.Is(err, hxl.ErrHashtagsNotFound) {
		t.Errorf("err = %v, want ErrHashtagsNotFound", err)
	}
}

func TestDataNoHashtagRow(t *testing.T) {
	_, err := hxl.Data([][]string{
		{"Org", "Sector"},
		{"Org A", "WASH"},
	})
	if !errors.Is(err, hxl.ErrHashtagsNotFound) {
		t.Errorf("err = %v, want ErrHashtagsNotFound", err)
	}
}

func TestDataScanLimit(t *testing.T) {
	var rows [][]string
	for i := 0; i < 30; i++ {
		rows = append(rows, []string{"junk"})
	}
	rows = append(rows, []string{"#org"}, []string{"Org A"})
	if _, err := hxl.Data(rows); !errors.Is(err, hxl.ErrHashtagsNotFound) {
		t.Errorf("err = %v, want ErrHashtagsNotFound past the scan limit", err)
	}
}

func TestDataWidthFromWiderHeaderRow(t *testing.T) {
	d, err := hxl.Data([][]string{
		{"Org", "Sector", "Notes"},
		{"#org", "#sector"},
		{"Org A", "WASH", "extra"},
	})
	if err != nil {
		t.Fatal(err)
	}
	columns, err := d.Columns()
	if err != nil {
		t.Fatal(err)
	}
	if len(columns) != 3 {
		t.Fatalf("got %d columns, want 3", len(columns))
	}
	if columns[2].Tag != "" || columns[2].Header != "Notes" {
		t.Errorf("columns[2] = %q / %q", columns[2].Tag, columns[2].Header)
	}
}

func TestReaderStreamsRows(t *testing.T) {
	d, err := hxl.NewReader(&sliceReader{rows: [][]string{
		{"Org", "Sector"},
		{"#org", "#sector"},
		{"Org A", "WASH"},
		{"Org B", "Health"},
	}})
	if err != nil {
		t.Fatal(err)
	}

	it, err := d.Iterate()
	if err != nil {
		t.Fatal(err)
	}
	row, ok, err := it.Next()
	if err != nil || !ok {
		t.Fatalf("Next = (%v, %v)", ok, err)
	}
	if row.SourceRowNumber != 2 {
		t.Errorf("SourceRowNumber = %d, want 2", row.SourceRowNumber)
	}
	if row.Get(hxl.MustParseTagPattern("#sector")) != "WASH" {
		t.Errorf("row = %v", row.Values)
	}
}

func TestReaderNoHashtags(t *testing.T) {
	_, err := hxl.NewReader(&sliceReader{rows: [][]string{
		{"Org", "Sector"},
		{"Org A", "WASH"},
	}})
	if !errors.Is(err, hxl.ErrHashtagsNotFound) {
		t.Errorf("err = %v, want ErrHashtagsNotFound", err)
	}
}

func TestDataSourceRowNumbers(t *testing.T) {
	d, err := hxl.Data([][]string{
		{"Org"},
		{"#org"},
		{"Org A"},
		{"Org B"},
	})
	if err != nil {
		t.Fatal(err)
	}
	it, err := d.Iterate()
	if err != nil {
		t.Fatal(err)
	}
	want := 2
	for {
		row, ok, err := it.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		if row.SourceRowNumber != want {
			t.Errorf("SourceRowNumber = %d, want %d", row.SourceRowNumber, want)
		}
		want++
	}
}
