package hxl

// CacheFilter materialises its upstream in memory, making the chain
// below it replayable. The cache is captured on first iteration and
// never refreshed.
type CacheFilter struct {
	*CachingFilter
}

// NewCacheFilter builds a cache over the source.
func NewCacheFilter(source Source) (*CacheFilter, error) {
	f := &CacheFilter{}
	f.CachingFilter = newCachingFilter(source, f)
	return f, nil
}

func (f *CacheFilter) filterColumns(columns []*Column) ([]*Column, error) {
	out := make([]*Column, len(columns))
	copy(out, columns)
	return out, nil
}

func (f *CacheFilter) filterRows(rows []*Row) ([][]string, error) {
	out := make([][]string, len(rows))
	for i, row := range rows {
		values := make([]string, len(row.Values))
		copy(values, row.Values)
		out[i] = values
	}
	return out, nil
}
