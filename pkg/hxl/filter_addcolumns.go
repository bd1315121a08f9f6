package hxl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// AddColumnsFilter is a streaming filter that adds constant-value
// columns to every row, parsed from specs of the form
// "Header#tag+attrs=value". A value wrapped in "{{...}}" is an
// expression evaluated against each row instead of a constant.
type AddColumnsFilter struct {
	*StreamingFilter
	additions []*addedColumn
	before    bool
}

type addedColumn struct {
	column  *Column
	value   string
	program *vm.Program
}

var addColumnRE = regexp.MustCompile(`^\s*(?:([^#=]*))?(#` + TokenPattern + `(?:\s*\+\s*` + TokenPattern + `)*)\s*=(.*)$`)

// NewAddColumnsFilter builds a constant-column filter; before places
// the new columns ahead of the existing ones.
func NewAddColumnsFilter(source Source, specs []string, before bool) (*AddColumnsFilter, error) {
	f := &AddColumnsFilter{before: before}
	for _, spec := range specs {
		added, err := parseAddColumnSpec(spec)
		if err != nil {
			return nil, err
		}
		f.additions = append(f.additions, added)
	}
	f.StreamingFilter = newStreamingFilter(source, f)
	return f, nil
}

func parseAddColumnSpec(spec string) (*addedColumn, error) {
	m := addColumnRE.FindStringSubmatch(spec)
	if m == nil {
		return nil, &FilterSpecError{Filter: "add_columns", Spec: spec, Reason: "expected Header#tag=value"}
	}
	column, err := ParseColumn(m[2], trimHeader(m[1]), -1)
	if err != nil {
		return nil, &FilterSpecError{Filter: "add_columns", Spec: spec, Reason: err.Error()}
	}
	added := &addedColumn{column: column, value: m[3]}
	if inner, ok := formulaBody(m[3]); ok {
		program, err := expr.Compile(inner, expr.AllowUndefinedVariables())
		if err != nil {
			return nil, &FilterSpecError{Filter: "add_columns", Spec: spec, Reason: fmt.Sprintf("bad formula: %v", err)}
		}
		added.program = program
	}
	return added, nil
}

func trimHeader(h string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(h, " "))
}

func (f *AddColumnsFilter) filterColumns(columns []*Column) ([]*Column, error) {
	added := make([]*Column, len(f.additions))
	for i, a := range f.additions {
		added[i] = a.column
	}
	if f.before {
		return append(added, columns...), nil
	}
	return append(append([]*Column{}, columns...), added...), nil
}

func (f *AddColumnsFilter) filterRow(row *Row) ([]string, bool, error) {
	added := make([]string, len(f.additions))
	for i, a := range f.additions {
		if a.program != nil {
			result, err := expr.Run(a.program, formulaEnv(row))
			if err != nil {
				return nil, false, fmt.Errorf("add_columns formula %q: %w", a.value, err)
			}
			added[i] = formulaResult(result)
		} else {
			added[i] = a.value
		}
	}
	if f.before {
		return append(added, row.Values...), true, nil
	}
	return append(append([]string{}, row.Values...), added...), true, nil
}
