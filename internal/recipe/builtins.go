// This file registers all built-in filter types during initialization.
package recipe

import (
	"fmt"
	"strings"

	"github.com/hxlpipe/runtime/internal/script"
	"github.com/hxlpipe/runtime/pkg/hxl"
)

func init() {
	registerBuiltinFilters()
}

// registerBuiltinFilters registers all built-in filter types.
func registerBuiltinFilters() {
	// with_rows - keep rows matching at least one query
	Register("with_rows", func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error) {
		queries := spec.StringList("queries")
		mask := spec.StringList("mask")
		var out *hxl.Dataset
		var err error
		if len(mask) > 0 {
			out, err = source.WithRowsMasked(mask, queries)
		} else {
			out, err = source.WithRows(queries...)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid with_rows config at index %d: %w", ctx.Index, err)
		}
		return out, nil
	})

	// without_rows - drop rows matching any query
	Register("without_rows", func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error) {
		out, err := source.WithoutRows(spec.StringList("queries")...)
		if err != nil {
			return nil, fmt.Errorf("invalid without_rows config at index %d: %w", ctx.Index, err)
		}
		return out, nil
	})

	// with_columns - keep only columns matching the patterns
	Register("with_columns", func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error) {
		out, err := source.WithColumns(spec.StringList("includes")...)
		if err != nil {
			return nil, fmt.Errorf("invalid with_columns config at index %d: %w", ctx.Index, err)
		}
		return out, nil
	})

	// without_columns - drop columns matching the patterns
	Register("without_columns", func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error) {
		out, err := source.WithoutColumns(spec.StringList("excludes")...)
		if err != nil {
			return nil, fmt.Errorf("invalid without_columns config at index %d: %w", ctx.Index, err)
		}
		return out, nil
	})

	// count - group by key patterns and aggregate
	Register("count", func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error) {
		patterns := strings.Join(spec.StringList("patterns"), ",")
		out, err := source.Count(patterns, spec.StringList("aggregators")...)
		if err != nil {
			return nil, fmt.Errorf("invalid count config at index %d: %w", ctx.Index, err)
		}
		return out, nil
	})

	// sort - order rows by key patterns
	Register("sort", func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error) {
		keys := spec.StringList("keys")
		if len(keys) == 0 {
			keys = spec.StringList("tags")
		}
		out, err := source.Sort(keys, spec.Bool("reverse"))
		if err != nil {
			return nil, fmt.Errorf("invalid sort config at index %d: %w", ctx.Index, err)
		}
		return out, nil
	})

	// dedup - drop rows repeating an earlier key
	Register("dedup", func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error) {
		patterns := strings.Join(spec.StringList("patterns"), ",")
		out, err := source.Dedup(patterns, spec.StringList("queries")...)
		if err != nil {
			return nil, fmt.Errorf("invalid dedup config at index %d: %w", ctx.Index, err)
		}
		return out, nil
	})

	// merge_data - splice columns from a second dataset, joined on keys
	Register("merge_data", func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error) {
		ref := spec.String("source")
		if ref == "" {
			return nil, fmt.Errorf("invalid merge_data config at index %d: required field 'source' is missing", ctx.Index)
		}
		if ctx.Loader == nil {
			return nil, fmt.Errorf("invalid merge_data config at index %d: no dataset loader available", ctx.Index)
		}
		merge, err := ctx.Loader(ref)
		if err != nil {
			return nil, fmt.Errorf("merge_data at index %d: loading %q: %w", ctx.Index, ref, err)
		}
		keys := strings.Join(spec.StringList("keys"), ",")
		tags := strings.Join(spec.StringList("tags"), ",")
		out, err := source.MergeData(merge, keys, tags, spec.Bool("replace"), spec.Bool("overwrite"))
		if err != nil {
			return nil, fmt.Errorf("invalid merge_data config at index %d: %w", ctx.Index, err)
		}
		return out, nil
	})

	// append - concatenate other datasets after this one
	Register("append", func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error) {
		refs := spec.StringList("sources")
		if len(refs) == 0 {
			refs = spec.StringList("source")
		}
		if len(refs) == 0 {
			return nil, fmt.Errorf("invalid append config at index %d: required field 'sources' is missing", ctx.Index)
		}
		if ctx.Loader == nil {
			return nil, fmt.Errorf("invalid append config at index %d: no dataset loader available", ctx.Index)
		}
		others := make([]*hxl.Dataset, 0, len(refs))
		for _, ref := range refs {
			d, err := ctx.Loader(ref)
			if err != nil {
				return nil, fmt.Errorf("append at index %d: loading %q: %w", ctx.Index, ref, err)
			}
			others = append(others, d)
		}
		addColumns := true
		if v, ok := spec["add_columns"].(bool); ok {
			addColumns = v
		}
		out, err := source.AppendAll(others, addColumns, spec.StringList("queries")...)
		if err != nil {
			return nil, fmt.Errorf("invalid append config at index %d: %w", ctx.Index, err)
		}
		return out, nil
	})

	// add_columns - append constant or formula columns
	Register("add_columns", func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error) {
		out, err := source.AddColumns(spec.StringList("specs"), spec.Bool("before"))
		if err != nil {
			return nil, fmt.Errorf("invalid add_columns config at index %d: %w", ctx.Index, err)
		}
		return out, nil
	})

	// rename_columns - rewrite matching columns
	Register("rename_columns", func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error) {
		out, err := source.RenameColumns(spec.StringList("specs")...)
		if err != nil {
			return nil, fmt.Errorf("invalid rename_columns config at index %d: %w", ctx.Index, err)
		}
		return out, nil
	})

	// replace_data - literal or regex value substitution
	Register("replace_data", func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error) {
		if _, ok := spec["original"]; !ok {
			return nil, fmt.Errorf("invalid replace_data config at index %d: required field 'original' is missing", ctx.Index)
		}
		out, err := source.ReplaceData(
			spec.String("original"),
			spec.String("replacement"),
			spec.String("pattern"),
			spec.Bool("regex"),
			spec.StringList("queries")...,
		)
		if err != nil {
			return nil, fmt.Errorf("invalid replace_data config at index %d: %w", ctx.Index, err)
		}
		return out, nil
	})

	// clean_data - whitespace/case/date/number normalisation
	Register("clean_data", func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error) {
		out, err := source.CleanData(hxl.CleanOptions{
			Whitespace: spec.StringList("whitespace"),
			Upper:      spec.StringList("upper"),
			Lower:      spec.StringList("lower"),
			Date:       spec.StringList("date"),
			Number:     spec.StringList("number"),
			Queries:    spec.StringList("queries"),
		})
		if err != nil {
			return nil, fmt.Errorf("invalid clean_data config at index %d: %w", ctx.Index, err)
		}
		return out, nil
	})

	// cache - materialise the chain so far for replay
	Register("cache", func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error) {
		out, err := source.Cache()
		if err != nil {
			return nil, fmt.Errorf("cache at index %d: %w", ctx.Index, err)
		}
		return out, nil
	})

	// jsfilter - JavaScript transform(row) per data row, using Goja
	Register("jsfilter", func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error) {
		f, err := script.NewFilter(source.Source(), script.Config{
			Script:     spec.String("script"),
			ScriptFile: spec.String("scriptFile"),
		})
		if err != nil {
			return nil, fmt.Errorf("invalid jsfilter config at index %d: %w", ctx.Index, err)
		}
		return hxl.NewDataset(f), nil
	})
}
