package hxl

import "strings"

// CleanOptions selects which columns get which normalisation. Each
// field is a list of tag pattern specs; a single "*" selects every
// tagged column. Queries, when present, restrict cleaning to matching
// rows.
type CleanOptions struct {
	Whitespace []string
	Upper      []string
	Lower      []string
	Date       []string
	Number     []string
	Queries    []string
}

// CleanDataFilter is a streaming filter that normalises cell values in
// place: whitespace collapsing, case folding, and date or number
// canonicalisation. Cleaning is best effort; a value that does not
// parse as a date or number passes through unchanged.
type CleanDataFilter struct {
	*StreamingFilter
	whitespace []*TagPattern
	upper      []*TagPattern
	lower      []*TagPattern
	date       []*TagPattern
	number     []*TagPattern
	queries    []*RowQuery

	actions []cleanAction
}

type cleanAction struct {
	index      int
	whitespace bool
	upper      bool
	lower      bool
	date       bool
	number     bool
}

// NewCleanDataFilter builds a value normalisation over the source.
func NewCleanDataFilter(source Source, opts CleanOptions) (*CleanDataFilter, error) {
	f := &CleanDataFilter{}
	for _, sel := range []struct {
		specs []string
		out   *[]*TagPattern
	}{
		{opts.Whitespace, &f.whitespace},
		{opts.Upper, &f.upper},
		{opts.Lower, &f.lower},
		{opts.Date, &f.date},
		{opts.Number, &f.number},
	} {
		patterns, err := ParseTagPatterns(sel.specs...)
		if err != nil {
			return nil, err
		}
		*sel.out = patterns
	}
	queries, err := ParseRowQueries(opts.Queries...)
	if err != nil {
		return nil, err
	}
	f.queries = queries
	f.StreamingFilter = newStreamingFilter(source, f)
	return f, nil
}

func (f *CleanDataFilter) filterColumns(columns []*Column) ([]*Column, error) {
	f.actions = f.actions[:0]
	for i, column := range columns {
		a := cleanAction{
			index:      i,
			whitespace: MatchAny(column, f.whitespace),
			upper:      MatchAny(column, f.upper),
			lower:      MatchAny(column, f.lower),
			date:       MatchAny(column, f.date),
			number:     MatchAny(column, f.number),
		}
		if a.whitespace || a.upper || a.lower || a.date || a.number {
			f.actions = append(f.actions, a)
		}
	}
	return columns, nil
}

func (f *CleanDataFilter) filterRow(row *Row) ([]string, bool, error) {
	if len(f.queries) > 0 {
		touched, err := anyQueryMatches(f.queries, row)
		if err != nil {
			return nil, false, err
		}
		if !touched {
			return row.Values, true, nil
		}
	}
	values := make([]string, len(row.Values))
	copy(values, row.Values)
	for _, a := range f.actions {
		if a.index >= len(values) {
			continue
		}
		v := values[a.index]
		if a.whitespace {
			v = strings.TrimSpace(whitespaceRE.ReplaceAllString(v, " "))
		}
		if a.upper {
			v = strings.ToUpper(v)
		}
		if a.lower {
			v = strings.ToLower(v)
		}
		if a.date {
			if iso, ok := NormaliseDate(v); ok {
				v = iso
			}
		}
		if a.number {
			if n, ok := ParseNumber(v); ok {
				v = FormatNumber(n)
			}
		}
		values[a.index] = v
	}
	return values, true, nil
}
