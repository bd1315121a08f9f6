package hxl_test

import (
	"reflect"
	"testing"

	"github.com/hxlpipe/runtime/pkg/hxl"
)

func sortColumn(t *testing.T, rows [][]string, patterns []string, reverse bool) []string {
	t.Helper()
	d, err := hxl.Data(rows)
	if err != nil {
		t.Fatal(err)
	}
	sorted, err := d.Sort(patterns, reverse)
	if err != nil {
		t.Fatal(err)
	}
	values := datasetValues(t, sorted)
	out := make([]string, len(values))
	for i, row := range values {
		out[i] = row[0]
	}
	return out
}

func TestSortNumbersBeforeStrings(t *testing.T) {
	got := sortColumn(t, [][]string{
		{"#affected"},
		{"x"},
		{"20"},
		{"3"},
		{"100"},
	}, []string{"#affected"}, false)
	want := []string{"3", "20", "100", "x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sorted = %v, want %v", got, want)
	}
}

func TestSortDateColumnNormalises(t *testing.T) {
	got := sortColumn(t, [][]string{
		{"#date"},
		{"3 Feb 2018"},
		{"2018-01-15"},
		{"2017-12-31"},
	}, []string{"#date"}, false)
	want := []string{"2017-12-31", "2018-01-15", "3 Feb 2018"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sorted = %v, want %v", got, want)
	}
}

func TestSortReverse(t *testing.T) {
	got := sortColumn(t, [][]string{
		{"#affected"},
		{"1"},
		{"3"},
		{"2"},
	}, []string{"#affected"}, true)
	want := []string{"3", "2", "1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sorted = %v, want %v", got, want)
	}
}

func TestSortMultipleKeys(t *testing.T) {
	d := testData(t)
	sorted, err := d.Sort([]string{"#sector", "#affected"}, false)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"Org B", "Health", "Plains", "200", "2018-02-01"},
		{"Org A", "WASH", "Coast", "100", "2018-01-01"},
		{"Org A", "WASH", "Plains", "300", "2018-03-01"},
	}
	if got := datasetValues(t, sorted); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
}

func TestSortNoPatternsUsesWholeRow(t *testing.T) {
	d, err := hxl.Data([][]string{
		{"#org", "#affected"},
		{"b", "1"},
		{"a", "2"},
		{"a", "1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	sorted, err := d.Sort(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"a", "1"},
		{"a", "2"},
		{"b", "1"},
	}
	if got := datasetValues(t, sorted); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
}
