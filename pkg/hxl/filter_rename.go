package hxl

import "strings"

// RenameFilter is a streaming filter that rewrites matching columns,
// parsed from specs of the form "#pattern:Header#newtag+attrs". The
// first spec whose pattern matches a column wins; row values pass
// through untouched.
type RenameFilter struct {
	*StreamingFilter
	renames []*renameSpec
}

type renameSpec struct {
	pattern     *TagPattern
	replacement *Column
}

// NewRenameFilter builds a column rename over the source.
func NewRenameFilter(source Source, specs []string) (*RenameFilter, error) {
	f := &RenameFilter{}
	for _, spec := range specs {
		r, err := parseRenameSpec(spec)
		if err != nil {
			return nil, err
		}
		f.renames = append(f.renames, r)
	}
	f.StreamingFilter = newStreamingFilter(source, f)
	return f, nil
}

func parseRenameSpec(spec string) (*renameSpec, error) {
	pos := strings.Index(spec, ":")
	if pos < 0 {
		return nil, &FilterSpecError{Filter: "rename_columns", Spec: spec, Reason: "expected #pattern:Header#newtag"}
	}
	pattern, err := ParseTagPattern(spec[:pos])
	if err != nil {
		return nil, &FilterSpecError{Filter: "rename_columns", Spec: spec, Reason: err.Error()}
	}
	replacement, err := parseColumnSpec(spec[pos+1:])
	if err != nil {
		return nil, &FilterSpecError{Filter: "rename_columns", Spec: spec, Reason: err.Error()}
	}
	return &renameSpec{pattern: pattern, replacement: replacement}, nil
}

func (f *RenameFilter) filterColumns(columns []*Column) ([]*Column, error) {
	out := make([]*Column, len(columns))
	for i, column := range columns {
		out[i] = column
		for _, r := range f.renames {
			if !r.pattern.Match(column) {
				continue
			}
			renamed := r.replacement.Clone()
			if renamed.Header == "" {
				renamed.Header = column.Header
			}
			renamed.ColumnNumber = column.ColumnNumber
			out[i] = renamed
			break
		}
	}
	return out, nil
}

func (f *RenameFilter) filterRow(row *Row) ([]string, bool, error) {
	return row.Values, true, nil
}
