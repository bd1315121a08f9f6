// Package recipe parses, validates, and builds filter recipes
// (JSON/YAML documents describing a chain of dataset filters).
package recipe

import (
	"fmt"
	"strings"
)

// Recipe is a decoded recipe document: an optional name and an ordered
// list of filter specs.
type Recipe struct {
	// Name identifies the recipe in logs.
	Name string
	// Filters are applied in order, first spec closest to the source.
	Filters []FilterSpec
}

// FilterSpec is one entry of the recipe's filter list. The "filter" key
// is the type discriminator; the remaining keys are filter-specific
// parameters.
type FilterSpec map[string]interface{}

// Type returns the filter type discriminator, or "" when missing.
func (s FilterSpec) Type() string {
	t, _ := s["filter"].(string)
	return t
}

// String returns the named parameter as a string, or "" when absent or
// not a string.
func (s FilterSpec) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Bool returns the named parameter as a bool, defaulting to false.
func (s FilterSpec) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// StringList returns the named parameter as a list of strings. A bare
// string becomes a one-element list; list entries that are not strings
// are rendered with fmt.
func (s FilterSpec) StringList(key string) []string {
	switch v := s[key].(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			} else {
				out = append(out, fmt.Sprintf("%v", item))
			}
		}
		return out
	default:
		return nil
	}
}

// ParseResult contains the result of parsing a recipe file.
type ParseResult struct {
	// Data contains the parsed recipe document as a map
	Data map[string]interface{}
	// Errors contains any parsing errors encountered
	Errors []ParseError
	// FilePath is the path to the parsed file (empty if parsed from string)
	FilePath string
	// Format indicates the detected format (json, yaml)
	Format string
}

// IsValid returns true if no parsing errors occurred.
func (r *ParseResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ParseError represents a parsing error with location information.
type ParseError struct {
	// Path is the file path where the error occurred
	Path string
	// Line is the line number (1-based, 0 if unknown)
	Line int
	// Column is the column number (1-based, 0 if unknown)
	Column int
	// Offset is the byte offset in the file (0 if unknown)
	Offset int64
	// Message is the error message
	Message string
	// Type categorizes the error (syntax, io, format)
	Type string
}

// Error implements the error interface.
func (e ParseError) Error() string {
	var sb strings.Builder
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d", e.Line))
		if e.Column > 0 {
			sb.WriteString(fmt.Sprintf(", column %d", e.Column))
		}
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// ValidationResult contains the result of validating a recipe document.
type ValidationResult struct {
	// Valid indicates whether the recipe is valid
	Valid bool
	// Errors contains validation errors
	Errors []ValidationError
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	// Path is the JSON path where the error occurred (e.g., "/filters/0/filter")
	Path string
	// Type is the error type (required, type, format, enum, etc.)
	Type string
	// Message is the error message
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Result contains the combined result of parsing and validation.
type Result struct {
	// Data contains the parsed and validated recipe document
	Data map[string]interface{}
	// ParseErrors contains parsing errors
	ParseErrors []ParseError
	// ValidationErrors contains validation errors
	ValidationErrors []ValidationError
	// FilePath is the path to the recipe file
	FilePath string
	// Format is the detected format (json, yaml)
	Format string
}

// IsValid returns true if no errors occurred.
func (r *Result) IsValid() bool {
	return len(r.ParseErrors) == 0 && len(r.ValidationErrors) == 0
}

// AllErrors returns all errors (parsing and validation) as a single slice.
func (r *Result) AllErrors() []error {
	errors := make([]error, 0, len(r.ParseErrors)+len(r.ValidationErrors))
	for _, e := range r.ParseErrors {
		errors = append(errors, e)
	}
	for _, e := range r.ValidationErrors {
		errors = append(errors, e)
	}
	return errors
}

// Recipe decodes the parsed document into a Recipe. Call only after
// IsValid.
func (r *Result) Recipe() *Recipe {
	return decodeRecipe(r.Data)
}

func decodeRecipe(data map[string]interface{}) *Recipe {
	recipe := &Recipe{}
	if name, ok := data["name"].(string); ok {
		recipe.Name = name
	}
	rawFilters, _ := data["filters"].([]interface{})
	for _, raw := range rawFilters {
		if m, ok := raw.(map[string]interface{}); ok {
			recipe.Filters = append(recipe.Filters, FilterSpec(m))
		}
	}
	return recipe
}

// Error type constants for categorizing parse errors.
const (
	ErrorTypeIO     = "io"
	ErrorTypeSyntax = "syntax"
	ErrorTypeFormat = "format"
)
