// Package cli provides CLI output formatting and display functions.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/hxlpipe/runtime/pkg/hxl"
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
	DryRun  bool
}

// PrintRunResult displays the outcome of a recipe run.
func PrintRunResult(rowsWritten int, duration time.Duration, err error, opts OutputOptions) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Recipe run failed")
		fmt.Fprintf(os.Stderr, "  Error: %s\n", err.Error())
		return
	}

	if opts.Quiet {
		return
	}

	if opts.DryRun {
		fmt.Fprintln(os.Stderr, "✓ Recipe ran successfully (dry-run, no output written)")
	} else {
		fmt.Fprintln(os.Stderr, "✓ Recipe ran successfully")
	}
	fmt.Fprintf(os.Stderr, "  Rows written: %d\n", rowsWritten)
	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "  Duration: %v\n", duration)
	}
}

// PrintTagTable displays the detected columns of a dataset: position,
// display tag, and header text.
func PrintTagTable(columns []*hxl.Column) {
	fmt.Printf("%-4s %-30s %s\n", "COL", "HASHTAG", "HEADER")
	for i, column := range columns {
		tag := column.DisplayTag()
		if tag == "" {
			tag = "(untagged)"
		}
		fmt.Printf("%-4d %-30s %s\n", i, tag, column.Header)
	}
}

// PrintRecipeSummary prints the recipe name and filter count if available.
func PrintRecipeSummary(data map[string]interface{}) {
	if data == nil {
		return
	}

	if name, ok := data["name"].(string); ok && name != "" {
		fmt.Printf("  Recipe: %s\n", name)
	}
	if filters, ok := data["filters"].([]interface{}); ok {
		fmt.Printf("  Filters: %d\n", len(filters))
	}
}
