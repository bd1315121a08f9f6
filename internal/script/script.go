// Package script executes JavaScript row transformations using the Goja
// engine. A script declares a transform(row) function; the filter calls
// it once per data row with an object keyed by display tag and splices
// the returned values back into the row. Returning null drops the row.
package script

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"

	"github.com/hxlpipe/runtime/internal/logger"
	"github.com/hxlpipe/runtime/pkg/hxl"
)

// Error codes for the script filter
const (
	ErrCodeScriptEmpty          = "SCRIPT_EMPTY"
	ErrCodeScriptTooLong        = "SCRIPT_TOO_LONG"
	ErrCodeCompilationFailed    = "COMPILATION_FAILED"
	ErrCodeMissingTransform     = "MISSING_TRANSFORM"
	ErrCodeNotFunction          = "NOT_FUNCTION"
	ErrCodeExecutionFailed      = "EXECUTION_FAILED"
	ErrCodeInvalidScriptFile    = "INVALID_SCRIPT_FILE"
	ErrCodeScriptFileReadFailed = "SCRIPT_FILE_READ_FAILED"
)

// MaxScriptLength is the maximum allowed script length in bytes (100KB)
const MaxScriptLength = 100 * 1024

// Common errors for the script filter
var (
	// ErrScriptEmpty is returned when the script is empty or whitespace-only
	ErrScriptEmpty = fmt.Errorf("script cannot be empty")
	// ErrScriptTooLong is returned when the script exceeds MaxScriptLength
	ErrScriptTooLong = fmt.Errorf("script exceeds maximum length")
	// ErrMissingTransformFunc is returned when the script doesn't define a transform function
	ErrMissingTransformFunc = fmt.Errorf("transform function not found in script")
	// ErrTransformNotFunction is returned when transform is defined but is not a function
	ErrTransformNotFunction = fmt.Errorf("transform is not a function")
)

// Config holds the source of the transform script. Either Script or
// ScriptFile must be provided (but not both).
type Config struct {
	// Script is the inline JavaScript source code containing a transform(row) function
	Script string `json:"script,omitempty"`
	// ScriptFile is the path to a JavaScript file containing the transform(row) function
	ScriptFile string `json:"scriptFile,omitempty"`
}

// Error carries structured context for script failures.
type Error struct {
	Code       string
	Message    string
	RowNumber  int
	StackTrace string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code, message string, rowNumber int, stackTrace string) *Error {
	return &Error{Code: code, Message: message, RowNumber: rowNumber, StackTrace: stackTrace}
}

// Filter applies a JavaScript transform(row) function to every data
// row of the upstream source. It implements hxl.Source.
//
// Goja runtimes are not goroutine-safe; each Filter owns one runtime
// and must not be iterated concurrently.
type Filter struct {
	source       hxl.Source
	scriptSource string
	runtime      *goja.Runtime
	transformFn  goja.Callable
}

// NewFilter compiles the configured script, verifies the transform
// function, and wraps the source.
func NewFilter(source hxl.Source, config Config) (*Filter, error) {
	scriptSource, err := resolveScriptSource(config)
	if err != nil {
		return nil, err
	}
	if err := validateScript(scriptSource); err != nil {
		return nil, err
	}

	vm := goja.New()
	if _, err := vm.RunString(scriptSource); err != nil {
		return nil, newError(ErrCodeCompilationFailed, fmt.Sprintf("script compilation failed: %v", err), -1, "")
	}
	transformFn, err := getTransformFunction(vm)
	if err != nil {
		return nil, err
	}

	logger.Debug("script filter initialized",
		slog.Int("script_length", len(scriptSource)),
		slog.Bool("from_file", config.ScriptFile != ""),
	)

	return &Filter{
		source:       source,
		scriptSource: scriptSource,
		runtime:      vm,
		transformFn:  transformFn,
	}, nil
}

// Columns passes the upstream column set through unchanged.
func (f *Filter) Columns() ([]*hxl.Column, error) {
	return f.source.Columns()
}

// Iterate walks the upstream rows through the transform function.
func (f *Filter) Iterate() (hxl.RowIterator, error) {
	columns, err := f.source.Columns()
	if err != nil {
		return nil, err
	}
	upstream, err := f.source.Iterate()
	if err != nil {
		return nil, err
	}
	return &iterator{filter: f, columns: columns, upstream: upstream}, nil
}

type iterator struct {
	filter   *Filter
	columns  []*hxl.Column
	upstream hxl.RowIterator
	rowCount int
}

func (it *iterator) Next() (*hxl.Row, bool, error) {
	for {
		row, ok, err := it.upstream.Next()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}

		values, keep, err := it.filter.transformRow(row)
		if err != nil {
			return nil, false, err
		}
		if !keep {
			continue
		}

		out := &hxl.Row{
			Columns:         it.columns,
			Values:          values,
			RowNumber:       it.rowCount,
			SourceRowNumber: row.SourceRowNumber,
		}
		it.rowCount++
		return out, true, nil
	}
}

// transformRow runs the transform function for one row. The JavaScript
// side sees an object keyed by display tag; keys present in the
// returned object replace the corresponding values, missing keys keep
// the original value, and a null return drops the row.
func (f *Filter) transformRow(row *hxl.Row) ([]string, bool, error) {
	record := make(map[string]interface{}, len(row.Columns))
	for i, column := range row.Columns {
		tag := column.DisplayTag()
		if tag == "" {
			continue
		}
		if _, exists := record[tag]; exists {
			continue
		}
		record[tag] = row.Value(i)
	}

	result, err := f.transformFn(goja.Undefined(), f.runtime.ToValue(record))
	if err != nil {
		return nil, false, f.handleJSError(err, row.RowNumber)
	}

	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return nil, false, nil
	}

	exported, err := f.exportToGoMap(result, row.RowNumber)
	if err != nil {
		return nil, false, err
	}

	values := make([]string, len(row.Values))
	copy(values, row.Values)
	for i, column := range row.Columns {
		tag := column.DisplayTag()
		if tag == "" {
			continue
		}
		v, present := exported[tag]
		if !present {
			continue
		}
		if i < len(values) {
			values[i] = stringify(v)
		}
	}
	return values, true, nil
}

func stringify(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return hxl.FormatNumber(x)
	case int64:
		return hxl.FormatNumber(float64(x))
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// resolveScriptSource returns the script source code, either from inline config or from file.
// Validates the script file path to prevent path traversal.
func resolveScriptSource(config Config) (string, error) {
	if config.Script != "" && config.ScriptFile != "" {
		return "", newError(ErrCodeInvalidScriptFile, "cannot specify both 'script' and 'scriptFile' - use only one", -1, "")
	}

	if config.Script != "" {
		return config.Script, nil
	}

	if config.ScriptFile != "" {
		if err := validateScriptFilePath(config.ScriptFile); err != nil {
			return "", err
		}

		fileInfo, err := os.Stat(config.ScriptFile)
		if err != nil {
			return "", newError(ErrCodeScriptFileReadFailed, fmt.Sprintf("failed to stat script file %q: %v", config.ScriptFile, err), -1, "")
		}
		if fileInfo.Size() > MaxScriptLength {
			return "", newError(ErrCodeScriptTooLong, fmt.Sprintf("script file %q exceeds maximum length of %d bytes", config.ScriptFile, MaxScriptLength), -1, "")
		}

		file, err := os.Open(config.ScriptFile)
		if err != nil {
			return "", newError(ErrCodeScriptFileReadFailed, fmt.Sprintf("failed to open script file %q: %v", config.ScriptFile, err), -1, "")
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				logger.Warn("failed to close script file",
					slog.String("file", config.ScriptFile),
					slog.String("error", closeErr.Error()),
				)
			}
		}()

		// Cap the read so a file that grows between Stat and Read still
		// cannot exceed the limit.
		limitedReader := io.LimitReader(file, MaxScriptLength+1)
		content, err := io.ReadAll(limitedReader)
		if err != nil {
			return "", newError(ErrCodeScriptFileReadFailed, fmt.Sprintf("failed to read script file %q: %v", config.ScriptFile, err), -1, "")
		}
		if len(content) > MaxScriptLength {
			return "", newError(ErrCodeScriptTooLong, fmt.Sprintf("script file %q exceeds maximum length of %d bytes", config.ScriptFile, MaxScriptLength), -1, "")
		}

		return string(content), nil
	}

	return "", newError(ErrCodeScriptEmpty, "either 'script' or 'scriptFile' must be provided", -1, "")
}

// validateScriptFilePath rejects path traversal and malformed paths.
func validateScriptFilePath(filePath string) error {
	if filePath == "" {
		return newError(ErrCodeInvalidScriptFile, "scriptFile path cannot be empty", -1, "")
	}
	if strings.Contains(filePath, "\x00") {
		return newError(ErrCodeInvalidScriptFile, "scriptFile path contains invalid characters", -1, "")
	}

	normalized := filepath.ToSlash(filepath.Clean(filePath))
	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return newError(ErrCodeInvalidScriptFile, fmt.Sprintf("scriptFile path contains path traversal: %q", filePath), -1, "")
		}
	}

	if filepath.IsAbs(normalized) {
		logger.Warn("scriptFile uses absolute path", slog.String("path", normalized))
	}

	return nil
}

// validateScript validates the script is non-empty and within length limits.
func validateScript(script string) error {
	if strings.TrimSpace(script) == "" {
		return newError(ErrCodeScriptEmpty, ErrScriptEmpty.Error(), -1, "")
	}
	if len(script) > MaxScriptLength {
		return newError(ErrCodeScriptTooLong, fmt.Sprintf("script exceeds maximum length: %d bytes exceeds maximum %d bytes", len(script), MaxScriptLength), -1, "")
	}
	return nil
}

// getTransformFunction retrieves and validates the transform function from the runtime.
func getTransformFunction(vm *goja.Runtime) (goja.Callable, error) {
	transformVal := vm.Get("transform")
	if transformVal == nil || goja.IsUndefined(transformVal) {
		return nil, newError(ErrCodeMissingTransform, ErrMissingTransformFunc.Error(), -1, "")
	}
	transformFn, ok := goja.AssertFunction(transformVal)
	if !ok {
		return nil, newError(ErrCodeNotFunction, ErrTransformNotFunction.Error(), -1, "")
	}
	return transformFn, nil
}

// handleJSError converts a JavaScript error to a Go error with context.
func (f *Filter) handleJSError(err error, rowNumber int) error {
	if jsErr, ok := err.(*goja.Exception); ok {
		stackTrace := ""
		if jsErr.Value() != nil {
			if obj, ok := jsErr.Value().(*goja.Object); ok {
				if stack := obj.Get("stack"); stack != nil && !goja.IsUndefined(stack) {
					stackTrace = stack.String()
				}
			}
		}
		return newError(ErrCodeExecutionFailed, fmt.Sprintf("script execution failed at row %d: %v", rowNumber, jsErr.Value()), rowNumber, stackTrace)
	}
	return newError(ErrCodeExecutionFailed, fmt.Sprintf("script execution failed at row %d: %v", rowNumber, err), rowNumber, "")
}

// exportToGoMap converts a JavaScript value back to a Go map. The
// transform function must return an object, not a primitive or array.
func (f *Filter) exportToGoMap(value goja.Value, rowNumber int) (map[string]interface{}, error) {
	exported := value.Export()

	if arr, ok := exported.([]interface{}); ok {
		return nil, newError(ErrCodeExecutionFailed, fmt.Sprintf("script at row %d returned an array (length %d) - transform must return an object", rowNumber, len(arr)), rowNumber, "")
	}

	if result, ok := exported.(map[string]interface{}); ok {
		return result, nil
	}

	if obj, ok := exported.(*goja.Object); ok {
		if obj.ClassName() == "Array" {
			return nil, newError(ErrCodeExecutionFailed, fmt.Sprintf("script at row %d returned an array - transform must return an object", rowNumber), rowNumber, "")
		}
		var result map[string]interface{}
		if err := f.runtime.ExportTo(value, &result); err != nil {
			return nil, newError(ErrCodeExecutionFailed, fmt.Sprintf("failed to convert script result at row %d: %v", rowNumber, err), rowNumber, "")
		}
		return result, nil
	}

	return nil, newError(ErrCodeExecutionFailed, fmt.Sprintf("script at row %d returned invalid type %T - transform must return an object", rowNumber, exported), rowNumber, "")
}
