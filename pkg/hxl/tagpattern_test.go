package hxl_test

import (
	"strings"
	"testing"

	"github.com/hxlpipe/runtime/pkg/hxl"
)

func TestParseTagPattern(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
		errMsg  string
	}{
		{"bare tag", "#sector", false, ""},
		{"hash optional", "sector", false, ""},
		{"include attribute", "#sector+cluster", false, ""},
		{"exclude attribute", "#sector-cluster", false, ""},
		{"mixed attributes", "#sector+cluster-old", false, ""},
		{"absolute", "#sector+cluster!", false, ""},
		{"wildcard", "*", false, ""},
		{"whitespace tolerated", " #sector + cluster ", false, ""},
		{"empty", "", true, "bad tag spec"},
		{"digit start", "#123", true, "bad tag spec"},
		{"absolute with exclude", "#sector-old!", true, "absolute pattern may not exclude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := hxl.ParseTagPattern(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTagPattern(%q) expected error, got %v", tt.spec, p)
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTagPattern(%q) unexpected error: %v", tt.spec, err)
			}
		})
	}
}

func TestParseTagPatternsCommaSplit(t *testing.T) {
	patterns, err := hxl.ParseTagPatterns("#org, #sector , ,#adm1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != 3 {
		t.Fatalf("expected 3 patterns, got %d", len(patterns))
	}
	if patterns[1].Tag != "#sector" {
		t.Errorf("expected #sector, got %s", patterns[1].Tag)
	}
}

func TestTagPatternMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		tag     string
		attrs   []string
		want    bool
	}{
		{"exact tag", "#sector", "#sector", nil, true},
		{"wrong tag", "#sector", "#org", nil, false},
		{"case insensitive", "#SECTOR", "#sector", nil, true},
		{"extra attributes allowed", "#sector", "#sector", []string{"cluster"}, true},
		{"include present", "#sector+cluster", "#sector", []string{"cluster", "old"}, true},
		{"include missing", "#sector+cluster", "#sector", []string{"old"}, false},
		{"attribute order irrelevant", "#sector+b+a", "#sector", []string{"a", "b"}, true},
		{"exclude present", "#sector-old", "#sector", []string{"old"}, false},
		{"exclude absent", "#sector-old", "#sector", []string{"cluster"}, true},
		{"absolute exact", "#sector+cluster!", "#sector", []string{"cluster"}, true},
		{"absolute extra attribute", "#sector+cluster!", "#sector", []string{"cluster", "old"}, false},
		{"absolute bare", "#sector!", "#sector", nil, true},
		{"wildcard any tag", "*", "#anything", []string{"x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := hxl.MustParseTagPattern(tt.pattern)
			c := hxl.NewColumn(tt.tag, tt.attrs, "")
			if got := p.Match(c); got != tt.want {
				t.Errorf("%s.Match(%s %v) = %v, want %v", tt.pattern, tt.tag, tt.attrs, got, tt.want)
			}
		})
	}
}

func TestTagPatternUntaggedNeverMatches(t *testing.T) {
	untagged := hxl.NewColumn("", nil, "Notes")
	for _, spec := range []string{"#sector", "*"} {
		if hxl.MustParseTagPattern(spec).Match(untagged) {
			t.Errorf("%s matched an untagged column", spec)
		}
	}
}

func TestTagPatternString(t *testing.T) {
	p := hxl.MustParseTagPattern("sector+cluster-old")
	got := p.String()
	if !strings.HasPrefix(got, "#sector") || !strings.Contains(got, "+cluster") || !strings.Contains(got, "-old") {
		t.Errorf("String() = %q", got)
	}
}
