package hxl_test

import (
	"reflect"
	"testing"
)

func TestReplaceDataLiteral(t *testing.T) {
	d := testData(t)

	// Literal mode matches whole cells after normalisation.
	replaced, err := d.ReplaceData("wash", "WASH & Sanitation", "#sector", false)
	if err != nil {
		t.Fatal(err)
	}
	values := datasetValues(t, replaced)
	if values[0][1] != "WASH & Sanitation" || values[2][1] != "WASH & Sanitation" {
		t.Errorf("values = %v", values)
	}
	if values[1][1] != "Health" {
		t.Errorf("non-matching cell changed: %v", values[1])
	}
}

func TestReplaceDataLiteralNoPartialMatch(t *testing.T) {
	d := testData(t)
	replaced, err := d.ReplaceData("was", "x", "#sector", false)
	if err != nil {
		t.Fatal(err)
	}
	values := datasetValues(t, replaced)
	if values[0][1] != "WASH" {
		t.Errorf("partial literal match should not replace: %v", values[0])
	}
}

func TestReplaceDataRegex(t *testing.T) {
	d := testData(t)
	replaced, err := d.ReplaceData("^Org (.+)$", "Organisation $1", "#org", true)
	if err != nil {
		t.Fatal(err)
	}
	values := datasetValues(t, replaced)
	want := []string{"Organisation A", "Organisation B", "Organisation A"}
	for i, row := range values {
		if row[0] != want[i] {
			t.Errorf("row %d org = %q, want %q", i, row[0], want[i])
		}
	}
}

func TestReplaceDataBadRegex(t *testing.T) {
	d := testData(t)
	if _, err := d.ReplaceData("[", "x", "#org", true); err == nil {
		t.Error("expected a regex compile error")
	}
}

func TestReplaceDataAllColumnsWhenNoPattern(t *testing.T) {
	d := testData(t)
	replaced, err := d.ReplaceData("plains", "Inland", "", false)
	if err != nil {
		t.Fatal(err)
	}
	values := datasetValues(t, replaced)
	if values[1][2] != "Inland" || values[2][2] != "Inland" {
		t.Errorf("values = %v", values)
	}
}

func TestReplaceDataQueriesGateRows(t *testing.T) {
	d := testData(t)
	replaced, err := d.ReplaceData("plains", "Inland", "#adm1", false, "affected>250")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"Org A", "WASH", "Coast", "100", "2018-01-01"},
		{"Org B", "Health", "Plains", "200", "2018-02-01"},
		{"Org A", "WASH", "Inland", "300", "2018-03-01"},
	}
	if got := datasetValues(t, replaced); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
}
