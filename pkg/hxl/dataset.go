package hxl

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Source is the pull-based iteration contract every dataset and filter
// implements: a resolved column list plus an iterator over rows.
// Iteration is single-threaded and cooperative; a consumer that stops
// pulling simply never triggers further upstream work. Streaming
// sources are consumed after one pass; only cached sources guarantee
// safe replay.
type Source interface {
	Columns() ([]*Column, error)
	Iterate() (RowIterator, error)
}

// RowIterator yields rows on demand. Next returns ok=false when the
// source is exhausted.
type RowIterator interface {
	Next() (row *Row, ok bool, err error)
}

// Dataset wraps a Source with the chainable filter methods and derived
// projections. Each chaining call wraps the current source in a new
// filter, forming a linked chain that a terminal consumer pulls once.
type Dataset struct {
	source Source
}

// NewDataset wraps a source for chaining.
func NewDataset(source Source) *Dataset {
	return &Dataset{source: source}
}

// Columns returns the dataset's resolved column list.
func (d *Dataset) Columns() ([]*Column, error) {
	return d.source.Columns()
}

// Iterate starts a pull pass over the dataset's rows.
func (d *Dataset) Iterate() (RowIterator, error) {
	return d.source.Iterate()
}

// Source exposes the underlying source, for filters that consume
// another dataset (merge, append).
func (d *Dataset) Source() Source {
	return d.source
}

// Values materialises every row's values. Triggers full iteration.
func (d *Dataset) Values() ([][]string, error) {
	it, err := d.Iterate()
	if err != nil {
		return nil, err
	}
	var values [][]string
	for {
		row, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return values, nil
		}
		values = append(values, row.Values)
	}
}

// Headers projects the original header text of every column.
func (d *Dataset) Headers() ([]string, error) {
	columns, err := d.Columns()
	if err != nil {
		return nil, err
	}
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Header
	}
	return headers, nil
}

// HasHeaders reports whether any column carries header text.
func (d *Dataset) HasHeaders() (bool, error) {
	headers, err := d.Headers()
	if err != nil {
		return false, err
	}
	for _, h := range headers {
		if h != "" {
			return true, nil
		}
	}
	return false, nil
}

// Tags projects the bare hashtag of every column.
func (d *Dataset) Tags() ([]string, error) {
	columns, err := d.Columns()
	if err != nil {
		return nil, err
	}
	tags := make([]string, len(columns))
	for i, c := range columns {
		tags[i] = c.Tag
	}
	return tags, nil
}

// DisplayTags projects the full hashtag+attributes form of every
// column, attribute order preserved.
func (d *Dataset) DisplayTags() ([]string, error) {
	columns, err := d.Columns()
	if err != nil {
		return nil, err
	}
	tags := make([]string, len(columns))
	for i, c := range columns {
		tags[i] = c.DisplayTag()
	}
	return tags, nil
}

// ColumnsHash returns a hex digest of the column structure, usable to
// detect schema drift between pulls of a remote dataset.
func (d *Dataset) ColumnsHash() (string, error) {
	tags, err := d.DisplayTags()
	if err != nil {
		return "", err
	}
	sum := md5.Sum([]byte(strings.Join(tags, "\x1f")))
	return hex.EncodeToString(sum[:]), nil
}

// ValueSet collects the distinct values in columns matching the
// pattern spec, across the whole dataset; every value in the dataset
// when no pattern is given. Values are normalised when normalise is set.
func (d *Dataset) ValueSet(patternSpec string, normalise bool) (map[string]bool, error) {
	var pattern *TagPattern
	if strings.TrimSpace(patternSpec) != "" {
		p, err := ParseTagPattern(patternSpec)
		if err != nil {
			return nil, err
		}
		pattern = p
	}
	it, err := d.Iterate()
	if err != nil {
		return nil, err
	}
	set := map[string]bool{}
	for {
		row, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return set, nil
		}
		var values []string
		if pattern == nil {
			values = row.Values
		} else {
			values = row.GetAll(pattern)
		}
		for _, v := range values {
			if normalise {
				v = NormaliseString(v)
			}
			set[v] = true
		}
	}
}

// Min returns the smallest value in columns matching the pattern spec,
// using numeric- and date-aware comparison, as it appears in the data.
func (d *Dataset) Min(patternSpec string) (string, error) {
	return d.extreme(patternSpec, -1)
}

// Max returns the largest value in columns matching the pattern spec.
func (d *Dataset) Max(patternSpec string) (string, error) {
	return d.extreme(patternSpec, 1)
}

func (d *Dataset) extreme(patternSpec string, direction int) (string, error) {
	pattern, err := ParseTagPattern(patternSpec)
	if err != nil {
		return "", err
	}
	it, err := d.Iterate()
	if err != nil {
		return "", err
	}
	best := ""
	found := false
	for {
		row, ok, err := it.Next()
		if err != nil {
			return "", err
		}
		if !ok {
			break
		}
		for _, v := range row.GetAll(pattern) {
			if IsEmpty(v) {
				continue
			}
			if !found || compareValues(v, best)*direction > 0 {
				best, found = v, true
			}
		}
	}
	return best, nil
}

// Cache materialises the dataset in memory, making it replayable.
func (d *Dataset) Cache() (*Dataset, error) {
	f, err := NewCacheFilter(d.source)
	if err != nil {
		return nil, err
	}
	return NewDataset(f), nil
}

// WithRows keeps only rows matching at least one of the query specs.
func (d *Dataset) WithRows(queries ...string) (*Dataset, error) {
	return d.rowFilter(queries, nil, false)
}

// WithRowsMasked is WithRows with a mask: rows failing the mask bypass
// the query test and pass through untouched.
func (d *Dataset) WithRowsMasked(mask []string, queries []string) (*Dataset, error) {
	return d.rowFilter(queries, mask, false)
}

// WithoutRows drops rows matching any of the query specs.
func (d *Dataset) WithoutRows(queries ...string) (*Dataset, error) {
	return d.rowFilter(queries, nil, true)
}

func (d *Dataset) rowFilter(querySpecs, maskSpecs []string, reverse bool) (*Dataset, error) {
	queries, err := ParseRowQueries(querySpecs...)
	if err != nil {
		return nil, err
	}
	mask, err := ParseRowQueries(maskSpecs...)
	if err != nil {
		return nil, err
	}
	f := NewRowFilter(d.source, queries, mask, reverse)
	return NewDataset(f), nil
}

// WithColumns keeps only columns matching the pattern specs.
func (d *Dataset) WithColumns(patterns ...string) (*Dataset, error) {
	include, err := ParseTagPatterns(patterns...)
	if err != nil {
		return nil, err
	}
	return NewDataset(NewColumnFilter(d.source, include, nil)), nil
}

// WithoutColumns drops columns matching the pattern specs.
func (d *Dataset) WithoutColumns(patterns ...string) (*Dataset, error) {
	exclude, err := ParseTagPatterns(patterns...)
	if err != nil {
		return nil, err
	}
	return NewDataset(NewColumnFilter(d.source, nil, exclude)), nil
}

// Sort orders rows by the given tag patterns, left to right, or by
// every column when none are given. Numbers sort before everything
// else; dates and strings sort lexically after them.
func (d *Dataset) Sort(patterns []string, reverse bool) (*Dataset, error) {
	tags, err := ParseTagPatterns(patterns...)
	if err != nil {
		return nil, err
	}
	return NewDataset(NewSortFilter(d.source, tags, reverse)), nil
}

// Count groups rows by the key patterns and appends aggregated
// columns. With no aggregator specs, a single "count() as
// Count#meta+count" aggregator is used.
func (d *Dataset) Count(patternSpec string, aggregatorSpecs ...string) (*Dataset, error) {
	patterns, err := ParseTagPatterns(patternSpec)
	if err != nil {
		return nil, err
	}
	aggregators, err := ParseAggregators(aggregatorSpecs...)
	if err != nil {
		return nil, err
	}
	return NewDataset(NewCountFilter(d.source, patterns, aggregators)), nil
}

// Dedup drops rows whose key (over the given patterns, or the whole
// row) repeats an earlier row's key. Optional query specs restrict
// which rows are considered; others pass through unconditionally.
func (d *Dataset) Dedup(patternSpec string, queries ...string) (*Dataset, error) {
	patterns, err := ParseTagPatterns(patternSpec)
	if err != nil {
		return nil, err
	}
	qs, err := ParseRowQueries(queries...)
	if err != nil {
		return nil, err
	}
	return NewDataset(NewDeduplicationFilter(d.source, patterns, qs)), nil
}

// MergeData splices columns from a second dataset into this one,
// joined on the shared key patterns.
func (d *Dataset) MergeData(merge *Dataset, keySpec, tagSpec string, replace, overwrite bool) (*Dataset, error) {
	keys, err := ParseTagPatterns(keySpec)
	if err != nil {
		return nil, err
	}
	tags, err := ParseTagPatterns(tagSpec)
	if err != nil {
		return nil, err
	}
	return NewDataset(NewMergeDataFilter(d.source, merge.Source(), keys, tags, replace, overwrite)), nil
}

// Append concatenates another dataset's rows after this one's,
// aligning columns by tag. With addColumns, unmatched appended columns
// are added to the output; otherwise their values are dropped.
// Query specs filter appended rows only.
func (d *Dataset) Append(other *Dataset, addColumns bool, queries ...string) (*Dataset, error) {
	qs, err := ParseRowQueries(queries...)
	if err != nil {
		return nil, err
	}
	return NewDataset(NewAppendFilter(d.source, []Source{other.Source()}, addColumns, qs)), nil
}

// AppendAll concatenates several datasets in order.
func (d *Dataset) AppendAll(others []*Dataset, addColumns bool, queries ...string) (*Dataset, error) {
	qs, err := ParseRowQueries(queries...)
	if err != nil {
		return nil, err
	}
	sources := make([]Source, len(others))
	for i, o := range others {
		sources[i] = o.Source()
	}
	return NewDataset(NewAppendFilter(d.source, sources, addColumns, qs)), nil
}

// AddColumns appends constant-value columns parsed from specs of the
// form "Header#tag=value"; before places them ahead of the existing
// columns instead.
func (d *Dataset) AddColumns(specs []string, before bool) (*Dataset, error) {
	f, err := NewAddColumnsFilter(d.source, specs, before)
	if err != nil {
		return nil, err
	}
	return NewDataset(f), nil
}

// RenameColumns rewrites matching columns per specs of the form
// "#pattern:Header#newtag".
func (d *Dataset) RenameColumns(specs ...string) (*Dataset, error) {
	f, err := NewRenameFilter(d.source, specs)
	if err != nil {
		return nil, err
	}
	return NewDataset(f), nil
}

// ReplaceData substitutes values in columns matching the pattern spec
// (all columns when empty). With useRegex, original is a regular
// expression and replacement may use $1-style group references.
func (d *Dataset) ReplaceData(original, replacement, patternSpec string, useRegex bool, queries ...string) (*Dataset, error) {
	patterns, err := ParseTagPatterns(patternSpec)
	if err != nil {
		return nil, err
	}
	qs, err := ParseRowQueries(queries...)
	if err != nil {
		return nil, err
	}
	f, err := NewReplaceDataFilter(d.source, original, replacement, patterns, useRegex, qs)
	if err != nil {
		return nil, err
	}
	return NewDataset(f), nil
}

// CleanData normalises values in the selected columns.
func (d *Dataset) CleanData(opts CleanOptions) (*Dataset, error) {
	f, err := NewCleanDataFilter(d.source, opts)
	if err != nil {
		return nil, err
	}
	return NewDataset(f), nil
}
