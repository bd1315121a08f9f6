package hxl

import "strings"

// Row binds an ordered list of cell values to the dataset's column
// list. The column slice is shared by reference across every row of a
// pass and must never be mutated; Values is owned per row. A filter
// that modifies a row must work on a copy (see Clone), since upstream
// rows may be cached and replayed.
//
// Short rows are tolerated: a missing trailing cell reads as absent.
type Row struct {
	Columns []*Column
	Values  []string
	// RowNumber is the logical 0-based position after filtering.
	RowNumber int
	// SourceRowNumber is the position in the raw input, for messages.
	SourceRowNumber int
}

// keySeparator joins key parts into a flat map key. Unit separator
// cannot occur in normalised cell values.
const keySeparator = "\x1f"

// Value returns the cell at the given column index, or "" when the row
// is shorter than the column list.
func (r *Row) Value(index int) string {
	if index < 0 || index >= len(r.Values) {
		return ""
	}
	return r.Values[index]
}

// Get returns the first non-empty value in a column matching the
// pattern, honouring column order, or "" when there is none.
func (r *Row) Get(pattern *TagPattern) string {
	return r.GetDefault(pattern, "")
}

// GetDefault is Get with an explicit fallback value.
func (r *Row) GetDefault(pattern *TagPattern, def string) string {
	for i, column := range r.Columns {
		if i >= len(r.Values) {
			break
		}
		if pattern.Match(column) && !IsEmpty(r.Values[i]) {
			return r.Values[i]
		}
	}
	return def
}

// GetIndex returns the index-th matching value regardless of
// emptiness, counting matches across columns in order. The boolean is
// false when fewer than index+1 columns match.
func (r *Row) GetIndex(pattern *TagPattern, index int) (string, bool) {
	for i, column := range r.Columns {
		if pattern.Match(column) {
			if index == 0 {
				return r.Value(i), true
			}
			index--
		}
	}
	return "", false
}

// GetAll returns every value in a matching column, empty or not.
func (r *Row) GetAll(pattern *TagPattern) []string {
	return r.GetAllDefault(pattern, "")
}

// GetAllDefault substitutes def for any empty matched value.
func (r *Row) GetAllDefault(pattern *TagPattern, def string) []string {
	var values []string
	for i, column := range r.Columns {
		if i >= len(r.Values) {
			break
		}
		if pattern.Match(column) {
			v := r.Values[i]
			if IsEmpty(v) {
				v = def
			}
			values = append(values, v)
		}
	}
	return values
}

// Key builds the canonical row identity: the normalised values of every
// column matching the patterns (every value in the row if no patterns
// are given), joined into a single string usable as a map or set key.
// Deduplication, merge keys, and uniqueness checks all use this one
// operation.
func (r *Row) Key(patterns []*TagPattern) string {
	var parts []string
	if len(patterns) == 0 {
		for i := range r.Columns {
			parts = append(parts, NormaliseString(r.Value(i)))
		}
	} else {
		for _, p := range patterns {
			parts = append(parts, NormaliseString(r.Get(p)))
		}
	}
	return strings.Join(parts, keySeparator)
}

// Dictionary maps each column's display tag to the first value seen
// for it. Untagged columns are skipped.
func (r *Row) Dictionary() map[string]string {
	dict := make(map[string]string, len(r.Columns))
	for i, column := range r.Columns {
		tag := column.DisplayTag()
		if tag == "" {
			continue
		}
		if _, seen := dict[tag]; !seen {
			dict[tag] = r.Value(i)
		}
	}
	return dict
}

// Clone copies the value slice and metadata; the column list stays
// shared by reference.
func (r *Row) Clone() *Row {
	values := make([]string, len(r.Values))
	copy(values, r.Values)
	return &Row{
		Columns:         r.Columns,
		Values:          values,
		RowNumber:       r.RowNumber,
		SourceRowNumber: r.SourceRowNumber,
	}
}
