// Package main provides the CLI entry point for the hxlpipe runtime.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hxlpipe/runtime/internal/cli"
	"github.com/hxlpipe/runtime/internal/logger"
	"github.com/hxlpipe/runtime/internal/recipe"
	"github.com/hxlpipe/runtime/internal/tabio"
	"github.com/hxlpipe/runtime/pkg/hxl"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitValidationError = 1
	ExitParseError      = 2
	ExitRuntimeError    = 3
)

var (
	// Global flags
	verbose     bool
	quiet       bool
	logFormat   string
	logFilePath string

	// Run command flags
	inputPath  string
	outputPath string
	dryRun     bool

	// Build information (set via ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitRuntimeError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hxlpipe",
	Short: "hxlpipe - HXL filter-pipeline runtime",
	Long: `hxlpipe runs filter recipes over HXL-tagged tabular data.

It parses and validates filter recipes (JSON/YAML format), then applies
them to HXL-tagged CSV read from stdin or a file.

Examples:
  # Validate a recipe file
  hxlpipe validate recipe.yaml

  # Run a recipe against stdin
  hxlpipe run recipe.yaml < data.csv

  # Run against a file and write to another
  hxlpipe run recipe.yaml --input data.csv --output filtered.csv`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		} else if quiet {
			level = slog.LevelError
		}

		format := logger.FormatJSON
		switch logFormat {
		case "", "json":
		case "human":
			format = logger.FormatHuman
		default:
			fmt.Fprintf(os.Stderr, "✗ Unknown log format %q (expected json or human)\n", logFormat)
			os.Exit(ExitRuntimeError)
		}

		if logFilePath != "" {
			if err := logger.SetLogFile(logFilePath, level, format); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %v\n", err)
				os.Exit(ExitRuntimeError)
			}
		} else {
			logger.SetLevelAndFormat(level, format)
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <recipe-file>",
	Short: "Validate a filter recipe file",
	Long: `Validate a filter recipe file against the schema.

Supports both JSON and YAML formats. The format is auto-detected
based on file extension (.json, .yaml, .yml) or content.

Exit codes:
  0 - Recipe is valid
  1 - Validation errors (schema violations)
  2 - Parse errors (invalid JSON/YAML syntax)

Examples:
  hxlpipe validate recipe.json
  hxlpipe validate recipe.yaml
  hxlpipe validate --verbose recipe.json`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

var runCmd = &cobra.Command{
	Use:   "run <recipe-file>",
	Short: "Run a filter recipe over HXL-tagged CSV",
	Long: `Run the filter chain defined in the recipe file.

The recipe file is first validated against the schema. If validation
fails, the recipe will not be run. Input is HXL-tagged CSV from stdin
or --input; output is HXL-tagged CSV to stdout or --output.

Flags:
  --input     Read input CSV from a file instead of stdin
  --output    Write output CSV to a file instead of stdout
  --dry-run   Validate the recipe and resolve the filter chain without writing rows

Exit codes:
  0 - Recipe ran successfully
  1 - Validation errors
  2 - Parse errors
  3 - Runtime errors

Examples:
  hxlpipe run recipe.json < data.csv
  hxlpipe run --verbose recipe.yaml --input data.csv
  hxlpipe run --dry-run recipe.json --input data.csv`,
	Args: cobra.ExactArgs(1),
	Run:  runRecipe,
}

var tagsCmd = &cobra.Command{
	Use:   "tags [csv-file]",
	Short: "List the detected columns of an HXL-tagged CSV",
	Long: `Detect the hashtag row of an HXL-tagged CSV and list its columns:
position, hashtag with attributes, and header text. Reads stdin when no
file is given.

Examples:
  hxlpipe tags data.csv
  hxlpipe tags < data.csv`,
	Args: cobra.MaximumNArgs(1),
	Run:  runTags,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version, commit hash, and build date information.",
	Run:   runVersion,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log output format: json or human")
	rootCmd.PersistentFlags().StringVar(&logFilePath, "log-file", "", "Also write JSON logs to a file")

	// Run command flags
	runCmd.Flags().StringVar(&inputPath, "input", "", "Read input CSV from a file instead of stdin")
	runCmd.Flags().StringVar(&outputPath, "output", "", "Write output CSV to a file instead of stdout")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve the filter chain without writing rows")

	// Add commands
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(versionCmd)
}

func runValidate(_ *cobra.Command, args []string) {
	recipePath := args[0]

	if !quiet {
		fmt.Fprintf(os.Stderr, "Validating recipe: %s\n", recipePath)
	}

	result := recipe.Parse(recipePath)

	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(result.ParseErrors, verbose)
		os.Exit(ExitParseError)
	}

	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(result.ValidationErrors, verbose, quiet)
		os.Exit(ExitValidationError)
	}

	if !quiet {
		fmt.Fprintf(os.Stderr, "✓ Recipe is valid (format: %s)\n", result.Format)
		if verbose {
			cli.PrintRecipeSummary(result.Data)
		}
	}

	os.Exit(ExitSuccess)
}

func runRecipe(_ *cobra.Command, args []string) {
	recipePath := args[0]

	if !quiet {
		fmt.Fprintf(os.Stderr, "Loading recipe: %s\n", recipePath)
	}

	result := recipe.Parse(recipePath)

	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(result.ParseErrors, verbose)
		os.Exit(ExitParseError)
	}

	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(result.ValidationErrors, verbose, quiet)
		os.Exit(ExitValidationError)
	}

	r := result.Recipe()
	runName := r.Name
	if runName == "" {
		runName = filepath.Base(recipePath)
	}

	source, err := loadInput()
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to read input: %v\n", err)
		os.Exit(ExitRuntimeError)
	}

	// Auxiliary dataset references resolve relative to the recipe file.
	loader := func(ref string) (*hxl.Dataset, error) {
		if !filepath.IsAbs(ref) {
			ref = filepath.Join(filepath.Dir(recipePath), ref)
		}
		return tabio.LoadFile(ref)
	}

	chained, err := recipe.Build(r, source, loader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to build filter chain: %v\n", err)
		os.Exit(ExitRuntimeError)
	}

	runCtx := logger.RunContext{
		RecipeName:  runName,
		RecipePath:  recipePath,
		FilterIndex: -1,
		DryRun:      dryRun,
	}
	logger.LogRunStart(runCtx)
	start := time.Now()

	if dryRun {
		columns, err := chained.Columns()
		if err != nil {
			cli.PrintRunResult(0, time.Since(start), err, outputOpts())
			os.Exit(ExitRuntimeError)
		}
		if !quiet {
			cli.PrintTagTable(columns)
		}
		logger.LogRunEnd(runCtx, "success", 0, time.Since(start))
		cli.PrintRunResult(0, time.Since(start), nil, outputOpts())
		os.Exit(ExitSuccess)
	}

	rowsWritten, err := writeOutput(chained)
	duration := time.Since(start)
	if err != nil {
		logger.LogRunEnd(runCtx, "failed", rowsWritten, duration)
		cli.PrintRunResult(rowsWritten, duration, err, outputOpts())
		os.Exit(ExitRuntimeError)
	}

	logger.LogRunEnd(runCtx, "success", rowsWritten, duration)
	if verbose {
		metrics := logger.RunMetrics{
			TotalDuration: duration,
			RowsWritten:   rowsWritten,
		}
		if secs := duration.Seconds(); secs > 0 {
			metrics.RowsPerSecond = float64(rowsWritten) / secs
		}
		logger.LogMetrics(runCtx, metrics)
	}
	cli.PrintRunResult(rowsWritten, duration, nil, outputOpts())
	os.Exit(ExitSuccess)
}

func runTags(_ *cobra.Command, args []string) {
	var (
		source *hxl.Dataset
		err    error
	)
	if len(args) == 1 {
		source, err = tabio.LoadFile(args[0])
	} else {
		source, err = tabio.Load(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to read input: %v\n", err)
		os.Exit(ExitRuntimeError)
	}

	columns, err := source.Columns()
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(ExitRuntimeError)
	}
	cli.PrintTagTable(columns)
	os.Exit(ExitSuccess)
}

func runVersion(_ *cobra.Command, _ []string) {
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Commit: %s\n", commit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// loadInput reads the whole input into a replayable dataset. Caching
// and aggregate filters may pull the source more than once, so the
// streaming reader is not safe here.
func loadInput() (*hxl.Dataset, error) {
	if inputPath != "" {
		return tabio.LoadFile(inputPath)
	}
	return tabio.Load(os.Stdin)
}

func writeOutput(d *hxl.Dataset) (int, error) {
	if outputPath != "" {
		return tabio.WriteFile(outputPath, d)
	}
	return tabio.Write(os.Stdout, d)
}

func outputOpts() cli.OutputOptions {
	return cli.OutputOptions{Verbose: verbose, Quiet: quiet, DryRun: dryRun}
}
