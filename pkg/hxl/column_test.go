package hxl_test

import (
	"testing"

	"github.com/hxlpipe/runtime/pkg/hxl"
)

func TestParseColumn(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		header    string
		wantNil   bool
		wantErr   bool
		wantTag   string
		wantAttrs []string
	}{
		{name: "empty cell", raw: "", wantNil: true},
		{name: "whitespace cell", raw: "   ", wantNil: true},
		{name: "bare tag", raw: "#org", header: "Organisation", wantTag: "#org"},
		{name: "attributes", raw: "#affected+f+children", wantTag: "#affected", wantAttrs: []string{"f", "children"}},
		{name: "whitespace tolerated", raw: " #sector + cluster ", wantTag: "#sector", wantAttrs: []string{"cluster"}},
		{name: "upper case folded", raw: "#Sector+CLUSTER", wantTag: "#sector", wantAttrs: []string{"cluster"}},
		{name: "not a hashtag", raw: "Organisation", wantErr: true},
		{name: "digit start", raw: "#2020", wantErr: true},
		{name: "bad attribute", raw: "#org+", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := hxl.ParseColumn(tt.raw, tt.header, 3)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseColumn(%q) expected error, got %v", tt.raw, c)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColumn(%q) unexpected error: %v", tt.raw, err)
			}
			if tt.wantNil {
				if c != nil {
					t.Fatalf("ParseColumn(%q) expected nil column, got %v", tt.raw, c)
				}
				return
			}
			if c.Tag != tt.wantTag {
				t.Errorf("Tag = %q, want %q", c.Tag, tt.wantTag)
			}
			if len(c.Attributes()) != len(tt.wantAttrs) {
				t.Fatalf("Attributes = %v, want %v", c.Attributes(), tt.wantAttrs)
			}
			for i, attr := range tt.wantAttrs {
				if c.Attributes()[i] != attr {
					t.Errorf("attribute %d = %q, want %q", i, c.Attributes()[i], attr)
				}
			}
			if c.Header != tt.header {
				t.Errorf("Header = %q, want %q", c.Header, tt.header)
			}
			if c.ColumnNumber != 3 {
				t.Errorf("ColumnNumber = %d, want 3", c.ColumnNumber)
			}
		})
	}
}

func TestColumnDisplayTagPreservesOrder(t *testing.T) {
	c := hxl.NewColumn("#affected", []string{"f", "children"}, "")
	if got := c.DisplayTag(); got != "#affected+f+children" {
		t.Errorf("DisplayTag() = %q, want #affected+f+children", got)
	}
	if got := hxl.NewColumn("", nil, "Notes").DisplayTag(); got != "" {
		t.Errorf("untagged DisplayTag() = %q, want empty", got)
	}
}

func TestColumnEqualIgnoresOrderAndHeader(t *testing.T) {
	a := hxl.NewColumn("#affected", []string{"f", "children"}, "Affected")
	b := hxl.NewColumn("#affected", []string{"children", "f"}, "Different header")
	c := hxl.NewColumn("#affected", []string{"f"}, "")

	if !a.Equal(b) {
		t.Error("columns with the same attribute set should be equal")
	}
	if a.Equal(c) {
		t.Error("columns with different attribute sets should not be equal")
	}
	if a.Key() != b.Key() {
		t.Errorf("Key mismatch for equal columns: %q vs %q", a.Key(), b.Key())
	}
}

func TestColumnDeduplicatesAttributes(t *testing.T) {
	c := hxl.NewColumn("#org", []string{"impl", "IMPL", "local"}, "")
	if len(c.Attributes()) != 2 {
		t.Fatalf("Attributes = %v, want deduplicated pair", c.Attributes())
	}
	if !c.HasAttribute("impl") || !c.HasAttribute("LOCAL") {
		t.Error("HasAttribute should be case insensitive")
	}
}

func TestColumnCloneAndWithAttribute(t *testing.T) {
	c := hxl.MustParseColumn("#sector+cluster")
	clone := c.Clone()
	if !c.Equal(clone) {
		t.Error("Clone should be equal to the original")
	}

	extended := c.WithAttribute("old")
	if !extended.HasAttribute("old") {
		t.Error("WithAttribute did not add the attribute")
	}
	if c.HasAttribute("old") {
		t.Error("WithAttribute mutated the original")
	}
}
