package recipe

import (
	"github.com/hxlpipe/runtime/internal/logger"
	"github.com/hxlpipe/runtime/pkg/hxl"
)

// Build chains the recipe's filters onto the source dataset, in order.
// The loader resolves auxiliary dataset references (merge_data,
// append); it may be nil for recipes that use none.
//
// Building is cheap: no rows are pulled until the returned dataset is
// iterated.
func Build(r *Recipe, source *hxl.Dataset, loader Loader) (*hxl.Dataset, error) {
	current := source
	for i, spec := range r.Filters {
		filterType := spec.Type()
		constructor := GetConstructor(filterType)
		if constructor == nil {
			return nil, &UnknownFilterError{Type: filterType, Index: i}
		}

		logger.LogFilterStart(logger.RunContext{
			RecipeName:  r.Name,
			FilterType:  filterType,
			FilterIndex: i,
		})

		ctx := &BuildContext{Index: i, Loader: loader}
		next, err := constructor(ctx, spec, current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}
