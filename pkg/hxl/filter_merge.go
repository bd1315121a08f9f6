package hxl

// MergeDataFilter splices columns from a second dataset into the
// primary one, joined on a shared key. Streaming over the primary, but
// the entire merge source is read once into a key map before the first
// row is emitted; for duplicate keys the last merge row scanned wins.
//
// With replace set, a merged tag that already exists in the primary
// overwrites that column in place instead of appending a new one; the
// overwrite flag then controls whether non-empty primary cells may be
// clobbered. Appended columns start empty and are always filled.
type MergeDataFilter struct {
	*StreamingFilter
	merge     Source
	keys      []*TagPattern
	tags      []*TagPattern
	replace   bool
	overwrite bool

	targets  []mergeTarget
	outWidth int

	mergeMap map[string][]string
}

// mergeTarget maps one merge-source column into the output.
type mergeTarget struct {
	mergeIndex     int
	outIndex       int
	overwriteAllow bool
}

// NewMergeDataFilter builds a merge of the merge source into the
// primary source.
func NewMergeDataFilter(primary, merge Source, keys, tags []*TagPattern, replace, overwrite bool) *MergeDataFilter {
	f := &MergeDataFilter{merge: merge, keys: keys, tags: tags, replace: replace, overwrite: overwrite}
	f.StreamingFilter = newStreamingFilter(primary, f)
	return f
}

// filterColumns scans the merge source's columns against each
// requested tag pattern and records, per matching column, whether its
// values substitute an existing primary column in place or land in a
// newly appended one.
func (f *MergeDataFilter) filterColumns(columns []*Column) ([]*Column, error) {
	mergeColumns, err := f.merge.Columns()
	if err != nil {
		return nil, err
	}
	out := make([]*Column, len(columns))
	copy(out, columns)
	f.targets = f.targets[:0]
	for _, p := range f.tags {
		for mi, mergeColumn := range mergeColumns {
			if !p.Match(mergeColumn) {
				continue
			}
			target := -1
			if f.replace {
				for oi, column := range columns {
					if p.Match(column) {
						target = oi
						break
					}
				}
			}
			if target >= 0 {
				f.targets = append(f.targets, mergeTarget{mergeIndex: mi, outIndex: target, overwriteAllow: f.overwrite})
			} else {
				out = append(out, mergeColumn.Clone())
				f.targets = append(f.targets, mergeTarget{mergeIndex: mi, outIndex: len(out) - 1, overwriteAllow: true})
			}
		}
	}
	f.outWidth = len(out)
	return out, nil
}

func (f *MergeDataFilter) filterRow(row *Row) ([]string, bool, error) {
	if f.mergeMap == nil {
		if err := f.loadMergeMap(); err != nil {
			return nil, false, err
		}
	}
	values := make([]string, f.outWidth)
	copy(values, row.Values)
	mergeValues, found := f.mergeMap[row.Key(f.keys)]
	if found {
		for _, t := range f.targets {
			v := ""
			if t.mergeIndex < len(mergeValues) {
				v = mergeValues[t.mergeIndex]
			}
			if t.overwriteAllow || IsEmpty(values[t.outIndex]) {
				values[t.outIndex] = v
			}
		}
	}
	return values, true, nil
}

// loadMergeMap reads the whole merge source once, keyed by the shared
// key tuple. Later rows overwrite earlier ones.
func (f *MergeDataFilter) loadMergeMap() error {
	it, err := f.merge.Iterate()
	if err != nil {
		return err
	}
	f.mergeMap = map[string][]string{}
	for {
		row, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		f.mergeMap[row.Key(f.keys)] = row.Values
	}
}
