package hxl_test

import (
	"reflect"
	"testing"
)

func TestWithRowsAnyQueryMatches(t *testing.T) {
	d := testData(t)
	filtered, err := d.WithRows("sector=health", "adm1=coast")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"Org A", "WASH", "Coast", "100", "2018-01-01"},
		{"Org B", "Health", "Plains", "200", "2018-02-01"},
	}
	if got := datasetValues(t, filtered); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
}

func TestWithRowsNoQueriesPassesAll(t *testing.T) {
	d := testData(t)
	filtered, err := d.WithRows()
	if err != nil {
		t.Fatal(err)
	}
	if got := datasetValues(t, filtered); len(got) != 3 {
		t.Errorf("got %d rows, want 3", len(got))
	}
}

func TestWithoutRows(t *testing.T) {
	d := testData(t)
	filtered, err := d.WithoutRows("sector=wash")
	if err != nil {
		t.Fatal(err)
	}
	got := datasetValues(t, filtered)
	if len(got) != 1 || got[0][1] != "Health" {
		t.Errorf("values = %v", got)
	}
}

func TestWithRowsMask(t *testing.T) {
	d := testData(t)

	// The mask limits the test to WASH rows: the Health row bypasses
	// the query entirely, the 100 row fails it, the 300 row passes.
	filtered, err := d.WithRowsMasked([]string{"sector=wash"}, []string{"affected>150"})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"Org B", "Health", "Plains", "200", "2018-02-01"},
		{"Org A", "WASH", "Plains", "300", "2018-03-01"},
	}
	if got := datasetValues(t, filtered); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
}

func TestWithRowsAggregateQuery(t *testing.T) {
	d := testData(t)
	filtered, err := d.WithRows("affected is max")
	if err != nil {
		t.Fatal(err)
	}
	got := datasetValues(t, filtered)
	if len(got) != 1 || got[0][3] != "300" {
		t.Errorf("values = %v, want the single 300 row", got)
	}
}

func TestWithRowsBadQuery(t *testing.T) {
	d := testData(t)
	if _, err := d.WithRows("no operator here"); err == nil {
		t.Error("expected a query parse error")
	}
}

func TestRowFilterRenumbersRows(t *testing.T) {
	d := testData(t)
	filtered, err := d.WithoutRows("adm1=coast")
	if err != nil {
		t.Fatal(err)
	}
	it, err := filtered.Iterate()
	if err != nil {
		t.Fatal(err)
	}
	expect := 0
	for {
		row, ok, err := it.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		if row.RowNumber != expect {
			t.Errorf("RowNumber = %d, want %d", row.RowNumber, expect)
		}
		expect++
	}
	if expect != 2 {
		t.Errorf("iterated %d rows, want 2", expect)
	}
}
