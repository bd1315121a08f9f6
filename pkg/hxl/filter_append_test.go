package hxl_test

import (
	"reflect"
	"testing"

	"github.com/hxlpipe/runtime/pkg/hxl"
)

func TestAppendAlignsColumnsByTag(t *testing.T) {
	primary := mergeSource(t, [][]string{
		{"#org", "#sector"},
		{"Org A", "WASH"},
	})
	other := mergeSource(t, [][]string{
		{"#sector", "#org"},
		{"Health", "Org B"},
	})

	appended, err := primary.Append(other, false)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"Org A", "WASH"},
		{"Org B", "Health"},
	}
	if got := datasetValues(t, appended); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
}

func TestAppendAddColumns(t *testing.T) {
	primary := mergeSource(t, [][]string{
		{"#org"},
		{"Org A"},
	})
	other := mergeSource(t, [][]string{
		{"#org", "#adm1"},
		{"Org B", "Coast"},
	})

	// Without addColumns the extra #adm1 column is dropped.
	appended, err := primary.Append(other, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := datasetValues(t, appended); !reflect.DeepEqual(got, [][]string{{"Org A"}, {"Org B"}}) {
		t.Errorf("values = %v", got)
	}

	// With addColumns it joins the output, empty for primary rows.
	appended, err = primary.Append(other, true)
	if err != nil {
		t.Fatal(err)
	}
	tags, err := appended.Tags()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tags, []string{"#org", "#adm1"}) {
		t.Errorf("Tags = %v", tags)
	}
	want := [][]string{
		{"Org A", ""},
		{"Org B", "Coast"},
	}
	if got := datasetValues(t, appended); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
}

func TestAppendDuplicateTagsClaimDistinctColumns(t *testing.T) {
	primary := mergeSource(t, [][]string{
		{"#org", "#org"},
		{"A1", "A2"},
	})
	other := mergeSource(t, [][]string{
		{"#org", "#org"},
		{"B1", "B2"},
	})

	appended, err := primary.Append(other, false)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"A1", "A2"},
		{"B1", "B2"},
	}
	if got := datasetValues(t, appended); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
}

func TestAppendQueriesFilterAppendedRowsOnly(t *testing.T) {
	primary := mergeSource(t, [][]string{
		{"#org", "#sector"},
		{"Org A", "Health"},
	})
	other := mergeSource(t, [][]string{
		{"#org", "#sector"},
		{"Org B", "WASH"},
		{"Org C", "Health"},
	})

	// The primary Health row survives even though it fails the query.
	appended, err := primary.Append(other, false, "sector=wash")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"Org A", "Health"},
		{"Org B", "WASH"},
	}
	if got := datasetValues(t, appended); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
}

func TestAppendQueriesFollowEachSourceLayout(t *testing.T) {
	primary := mergeSource(t, [][]string{
		{"#org", "#sector"},
		{"Base", "Protection"},
	})
	straight := mergeSource(t, [][]string{
		{"#org", "#sector"},
		{"NGO A", "WASH"},
		{"NGO X", "Health"},
	})
	reversed := mergeSource(t, [][]string{
		{"#sector", "#org"},
		{"WASH", "NGO B"},
		{"Health", "NGO Y"},
	})

	// The same query instances filter rows from both appended sources,
	// so matching must track each source's own column positions.
	appended, err := primary.AppendAll([]*hxl.Dataset{straight, reversed}, false, "sector=WASH")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"Base", "Protection"},
		{"NGO A", "WASH"},
		{"NGO B", "WASH"},
	}
	if got := datasetValues(t, appended); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
}

func TestAppendAll(t *testing.T) {
	primary := mergeSource(t, [][]string{
		{"#org"},
		{"Org A"},
	})
	second := mergeSource(t, [][]string{
		{"#org"},
		{"Org B"},
	})
	third := mergeSource(t, [][]string{
		{"#org"},
		{"Org C"},
	})

	appended, err := primary.AppendAll([]*hxl.Dataset{second, third}, false)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"Org A"}, {"Org B"}, {"Org C"}}
	if got := datasetValues(t, appended); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
}
