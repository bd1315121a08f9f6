package hxl

import (
	"math"
	"sort"
	"strings"
)

// SortFilter is a caching filter that orders rows by the given tag
// patterns, left to right, or by every column when none are given.
//
// Each sort column contributes a (rank, string) pair to the row's sort
// key. The rank is the parsed float value when the cell is numeric;
// dates in a #date column and plain strings both rank as +Inf, with
// the normalised string (ISO date for dates) as tiebreak. Numbers
// therefore sort before everything else and the ordering is total
// without ever raising on a non-numeric cell.
type SortFilter struct {
	*CachingFilter
	patterns []*TagPattern
	reverse  bool
	indexes  []int
}

// NewSortFilter builds a sort over the source.
func NewSortFilter(source Source, patterns []*TagPattern, reverse bool) *SortFilter {
	f := &SortFilter{patterns: patterns, reverse: reverse}
	f.CachingFilter = newCachingFilter(source, f)
	return f
}

func (f *SortFilter) filterColumns(columns []*Column) ([]*Column, error) {
	f.indexes = f.indexes[:0]
	if len(f.patterns) == 0 {
		for i := range columns {
			f.indexes = append(f.indexes, i)
		}
		return columns, nil
	}
	for _, p := range f.patterns {
		for i, column := range columns {
			if p.Match(column) {
				f.indexes = append(f.indexes, i)
				break
			}
		}
	}
	return columns, nil
}

type sortKeyPart struct {
	rank float64
	str  string
}

func (f *SortFilter) filterRows(rows []*Row) ([][]string, error) {
	columns, err := f.CachingFilter.Columns()
	if err != nil {
		return nil, err
	}
	keys := make([][]sortKeyPart, len(rows))
	for i, row := range rows {
		key := make([]sortKeyPart, 0, len(f.indexes))
		for _, idx := range f.indexes {
			var isDateColumn bool
			if idx < len(columns) {
				isDateColumn = columns[idx].Tag == "#date"
			}
			key = append(key, makeSortKeyPart(row.Value(idx), isDateColumn))
		}
		keys[i] = key
	}
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		less := compareSortKeys(keys[order[a]], keys[order[b]]) < 0
		if f.reverse {
			return !less && compareSortKeys(keys[order[a]], keys[order[b]]) != 0
		}
		return less
	})
	out := make([][]string, len(rows))
	for i, idx := range order {
		out[i] = rows[idx].Values
	}
	return out, nil
}

func makeSortKeyPart(value string, isDateColumn bool) sortKeyPart {
	if n, ok := ParseNumber(value); ok {
		return sortKeyPart{rank: n, str: NormaliseString(value)}
	}
	if isDateColumn {
		if d, ok := NormaliseDate(value); ok {
			return sortKeyPart{rank: math.Inf(1), str: d}
		}
	}
	return sortKeyPart{rank: math.Inf(1), str: NormaliseString(value)}
}

func compareSortKeys(a, b []sortKeyPart) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].rank < b[i].rank {
			return -1
		}
		if a[i].rank > b[i].rank {
			return 1
		}
		if c := strings.Compare(a[i].str, b[i].str); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}
