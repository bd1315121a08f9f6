package recipe

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hxlpipe/runtime/pkg/hxl"
)

// Constructor builds one filter from its recipe spec and chains it
// onto the source dataset. Constructors validate their parameters and
// return a descriptive error on a bad spec.
type Constructor func(ctx *BuildContext, spec FilterSpec, source *hxl.Dataset) (*hxl.Dataset, error)

// BuildContext carries the per-build environment constructors may need.
type BuildContext struct {
	// Index is the filter's position in the recipe, 0-based.
	Index int
	// Loader resolves auxiliary dataset references (merge_data, append).
	Loader Loader
}

// Loader resolves a dataset reference from a recipe (a local file
// path) into a loaded Dataset.
type Loader func(ref string) (*hxl.Dataset, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Constructor)
)

// Register registers a filter constructor by type string. Registering
// an already registered type overwrites the previous constructor.
//
// Safe for concurrent use; typically called from init() functions.
func Register(filterType string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[filterType] = constructor
}

// GetConstructor returns the registered constructor for a filter type.
// Returns nil if no constructor is registered for the given type.
func GetConstructor(filterType string) Constructor {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[filterType]
}

// ListTypes returns all registered filter type names, sorted.
func ListTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// ClearRegistry removes all registered constructors.
// This is intended for testing purposes only.
func ClearRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Constructor)
}

// UnknownFilterError reports a recipe entry whose discriminator matches
// no registered constructor.
type UnknownFilterError struct {
	Type  string
	Index int
}

func (e *UnknownFilterError) Error() string {
	return fmt.Sprintf("unknown filter type %q at index %d", e.Type, e.Index)
}
