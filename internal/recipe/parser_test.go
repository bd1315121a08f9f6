package recipe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseJSONStringValid(t *testing.T) {
	result := ParseJSONString(`{"name": "test", "filters": [{"filter": "cache"}]}`)

	if !result.IsValid() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Format != "json" {
		t.Errorf("Format = %q, want json", result.Format)
	}
	if result.Data["name"] != "test" {
		t.Errorf("Data[name] = %v", result.Data["name"])
	}
}

func TestParseJSONStringErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantType string
	}{
		{"empty content", "", ErrorTypeSyntax},
		{"whitespace only", "   \n\t  ", ErrorTypeSyntax},
		{"invalid syntax", `{"name": }`, ErrorTypeSyntax},
		{"unterminated", `{"name": "test"`, ErrorTypeSyntax},
		{"array not object", `[1, 2, 3]`, ErrorTypeFormat},
		{"scalar not object", `"just a string"`, ErrorTypeFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseJSONString(tt.content)
			if result.IsValid() {
				t.Fatal("expected parse errors")
			}
			if result.Errors[0].Type != tt.wantType {
				t.Errorf("error type = %q, want %q", result.Errors[0].Type, tt.wantType)
			}
		})
	}
}

func TestParseJSONStringNull(t *testing.T) {
	result := ParseJSONString("null")
	if !result.IsValid() {
		t.Fatalf("null should parse: %v", result.Errors)
	}
	if result.Data != nil {
		t.Errorf("Data = %v, want nil", result.Data)
	}
}

func TestParseJSONSyntaxErrorLocation(t *testing.T) {
	result := ParseJSONString("{\n  \"name\": \"test\",\n  \"filters\": oops\n}")
	if result.IsValid() {
		t.Fatal("expected a syntax error")
	}
	e := result.Errors[0]
	if e.Line != 3 {
		t.Errorf("Line = %d, want 3", e.Line)
	}
	if e.Offset == 0 {
		t.Error("Offset should be set")
	}
}

func TestParseJSONFileMissing(t *testing.T) {
	result := ParseJSONFile(filepath.Join(t.TempDir(), "absent.json"))
	if result.IsValid() {
		t.Fatal("expected an IO error")
	}
	if result.Errors[0].Type != ErrorTypeIO {
		t.Errorf("error type = %q, want io", result.Errors[0].Type)
	}
	if result.Errors[0].Path == "" {
		t.Error("Path should carry the file path")
	}
}

func TestParseYAMLStringValid(t *testing.T) {
	result := ParseYAMLString("name: test\nfilters:\n  - filter: cache\n")
	if !result.IsValid() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Data["name"] != "test" {
		t.Errorf("Data[name] = %v", result.Data["name"])
	}
}

func TestParseYAMLStringErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantType string
	}{
		{"empty", "", ErrorTypeSyntax},
		{"bad indentation", "name: test\n  filters:\n - broken", ErrorTypeSyntax},
		{"sequence not mapping", "- a\n- b\n", ErrorTypeFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseYAMLString(tt.content)
			if result.IsValid() {
				t.Fatal("expected parse errors")
			}
			if result.Errors[0].Type != tt.wantType {
				t.Errorf("error type = %q, want %q", result.Errors[0].Type, tt.wantType)
			}
		})
	}
}

func TestParseYAMLSyntaxErrorLine(t *testing.T) {
	result := ParseYAMLString("name: test\nfilters: [\n")
	if result.IsValid() {
		t.Fatal("expected a syntax error")
	}
	if result.Errors[0].Line == 0 {
		t.Error("Line should be extracted from the yaml error")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"recipe.json", "json"},
		{"recipe.JSON", "json"},
		{"recipe.yaml", "yaml"},
		{"recipe.yml", "yaml"},
		{"recipe.txt", ""},
		{"recipe", ""},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestIsJSONIsYAML(t *testing.T) {
	if !IsJSON(`{"a": 1}`) || IsJSON("name: test") || IsJSON("") {
		t.Error("IsJSON misclassified content")
	}
	if !IsYAML("name: test") || IsYAML("") || IsYAML("{invalid yaml: [") {
		t.Error("IsYAML misclassified content")
	}
}

func TestParseAutoDetectsFromExtension(t *testing.T) {
	jsonPath := writeTempFile(t, "recipe.json", `{"filters": [{"filter": "cache"}]}`)
	result := Parse(jsonPath)
	if !result.IsValid() {
		t.Fatalf("json recipe: %v", result.AllErrors())
	}
	if result.Format != "json" {
		t.Errorf("Format = %q", result.Format)
	}

	yamlPath := writeTempFile(t, "recipe.yaml", "filters:\n  - filter: cache\n")
	result = Parse(yamlPath)
	if !result.IsValid() {
		t.Fatalf("yaml recipe: %v", result.AllErrors())
	}
	if result.Format != "yaml" {
		t.Errorf("Format = %q", result.Format)
	}
}

func TestParseAutoDetectsFromContent(t *testing.T) {
	// No recognised extension: content sniffing, JSON first.
	path := writeTempFile(t, "recipe.conf", `{"filters": [{"filter": "cache"}]}`)
	result := Parse(path)
	if !result.IsValid() {
		t.Fatalf("unexpected errors: %v", result.AllErrors())
	}
	if result.Format != "json" {
		t.Errorf("Format = %q, want json", result.Format)
	}

	path = writeTempFile(t, "recipe.txt", "filters:\n  - filter: cache\n")
	result = Parse(path)
	if !result.IsValid() {
		t.Fatalf("unexpected errors: %v", result.AllErrors())
	}
	if result.Format != "yaml" {
		t.Errorf("Format = %q, want yaml", result.Format)
	}
}

func TestParseRunsValidation(t *testing.T) {
	// Parses fine but fails the schema: filters is required.
	path := writeTempFile(t, "recipe.json", `{"name": "no filters"}`)
	result := Parse(path)
	if len(result.ParseErrors) != 0 {
		t.Fatalf("unexpected parse errors: %v", result.ParseErrors)
	}
	if len(result.ValidationErrors) == 0 {
		t.Fatal("expected validation errors")
	}
	if result.IsValid() {
		t.Error("IsValid should be false with validation errors")
	}
}

func TestParseStringUnsupportedFormat(t *testing.T) {
	result := ParseString(`{"filters": []}`, "toml")
	if result.IsValid() {
		t.Fatal("expected a format error")
	}
	if result.ParseErrors[0].Type != ErrorTypeFormat {
		t.Errorf("error type = %q", result.ParseErrors[0].Type)
	}
}

func TestParseErrorString(t *testing.T) {
	e := ParseError{Path: "recipe.json", Line: 3, Column: 7, Message: "boom"}
	got := e.Error()
	for _, part := range []string{"recipe.json", "line 3", "column 7", "boom"} {
		if !strings.Contains(got, part) {
			t.Errorf("Error() = %q, missing %q", got, part)
		}
	}
}

func TestResultRecipeDecode(t *testing.T) {
	result := ParseString(`{
		"name": "ops",
		"filters": [
			{"filter": "with_rows", "queries": "sector=wash"},
			{"filter": "count", "patterns": ["#org", "#sector"]}
		]
	}`, "json")
	if !result.IsValid() {
		t.Fatalf("unexpected errors: %v", result.AllErrors())
	}

	r := result.Recipe()
	if r.Name != "ops" {
		t.Errorf("Name = %q", r.Name)
	}
	if len(r.Filters) != 2 {
		t.Fatalf("got %d filters, want 2", len(r.Filters))
	}
	if r.Filters[0].Type() != "with_rows" || r.Filters[1].Type() != "count" {
		t.Errorf("filter types = %q, %q", r.Filters[0].Type(), r.Filters[1].Type())
	}
}

func TestFilterSpecAccessors(t *testing.T) {
	spec := FilterSpec{
		"filter":  "with_rows",
		"queries": []interface{}{"a=1", "b=2", 3},
		"mask":    "sector=wash",
		"reverse": true,
		"count":   7,
	}

	if spec.Type() != "with_rows" {
		t.Errorf("Type = %q", spec.Type())
	}
	if got := spec.StringList("queries"); len(got) != 3 || got[2] != "3" {
		t.Errorf("StringList(queries) = %v", got)
	}
	if got := spec.StringList("mask"); len(got) != 1 || got[0] != "sector=wash" {
		t.Errorf("StringList(mask) = %v", got)
	}
	if spec.StringList("absent") != nil {
		t.Error("StringList(absent) should be nil")
	}
	if !spec.Bool("reverse") || spec.Bool("absent") {
		t.Error("Bool accessor wrong")
	}
	if spec.String("filter") != "with_rows" || spec.String("count") != "" {
		t.Error("String accessor wrong")
	}
}
