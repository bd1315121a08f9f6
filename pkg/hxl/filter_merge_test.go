package hxl_test

import (
	"reflect"
	"testing"

	"github.com/hxlpipe/runtime/pkg/hxl"
)

func mergePrimary(t *testing.T) *hxl.Dataset {
	t.Helper()
	d, err := hxl.Data([][]string{
		{"#adm1", "#affected"},
		{"Coast", "100"},
		{"Plains", "200"},
		{"Mountains", "300"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func mergeSource(t *testing.T, rows [][]string) *hxl.Dataset {
	t.Helper()
	d, err := hxl.Data(rows)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestMergeDataAppendsColumn(t *testing.T) {
	primary := mergePrimary(t)
	lookup := mergeSource(t, [][]string{
		{"#adm1", "#population"},
		{"coast", "5000"},
		{"PLAINS", "9000"},
	})

	merged, err := primary.MergeData(lookup, "#adm1", "#population", false, false)
	if err != nil {
		t.Fatal(err)
	}

	tags, err := merged.Tags()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tags, []string{"#adm1", "#affected", "#population"}) {
		t.Errorf("Tags = %v", tags)
	}

	// Keys are normalised, unmatched rows stay empty.
	want := [][]string{
		{"Coast", "100", "5000"},
		{"Plains", "200", "9000"},
		{"Mountains", "300", ""},
	}
	if got := datasetValues(t, merged); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
}

func TestMergeDataLastKeyWins(t *testing.T) {
	primary := mergePrimary(t)
	lookup := mergeSource(t, [][]string{
		{"#adm1", "#population"},
		{"Coast", "1111"},
		{"Coast", "5000"},
	})

	merged, err := primary.MergeData(lookup, "#adm1", "#population", false, false)
	if err != nil {
		t.Fatal(err)
	}
	got := datasetValues(t, merged)
	if got[0][2] != "5000" {
		t.Errorf("merged value = %q, want the later 5000", got[0][2])
	}
}

func TestMergeDataReplaceInPlace(t *testing.T) {
	primary := mergeSource(t, [][]string{
		{"#adm1", "#population"},
		{"Coast", ""},
		{"Plains", "old"},
	})
	lookup := mergeSource(t, [][]string{
		{"#adm1", "#population"},
		{"Coast", "5000"},
		{"Plains", "9000"},
	})

	// Without overwrite, only empty primary cells are filled.
	merged, err := primary.MergeData(lookup, "#adm1", "#population", true, false)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"Coast", "5000"},
		{"Plains", "old"},
	}
	if got := datasetValues(t, merged); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}

	// With overwrite, non-empty cells are clobbered too.
	merged, err = primary.MergeData(lookup, "#adm1", "#population", true, true)
	if err != nil {
		t.Fatal(err)
	}
	want = [][]string{
		{"Coast", "5000"},
		{"Plains", "9000"},
	}
	if got := datasetValues(t, merged); !reflect.DeepEqual(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
}
