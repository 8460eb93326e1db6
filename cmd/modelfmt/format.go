package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"modelfmt/internal/diff"
	"modelfmt/internal/driver"
	"modelfmt/internal/fmtcache"
	"modelfmt/internal/observ"
	"modelfmt/internal/project"
	"modelfmt/internal/source"
	"modelfmt/internal/trace"
)

var (
	errFormatFailed    = errors.New("fmt: failed to format some files")
	errChangesRequired = errors.New("fmt: formatting changes required")
)

func init() {
	rootCmd.Flags().Bool("check", false, "report files that need formatting without rewriting them")
	rootCmd.Flags().Bool("stdout", false, "print formatted content to stdout instead of rewriting files")
	rootCmd.Flags().Bool("diff", false, "print a unified diff of the changes instead of rewriting files")
	rootCmd.Flags().String("format", "text", "report format (text|json|table)")
	rootCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	rootCmd.Flags().Bool("clear-cache", false, "drop the formatted-file cache before running")
	registerFormatFlags(rootCmd)
}

// fmtFlags holds the report-related flags of one run.
type fmtFlags struct {
	check   bool
	stdout  bool
	diff    bool
	format  string
	quiet   bool
	timings bool
	ui      uiMode

	// clearCache drops cached entries before the run.
	clearCache bool
}

func readFmtFlags(cmd *cobra.Command) (fmtFlags, error) {
	var f fmtFlags
	var err error
	if f.check, err = cmd.Flags().GetBool("check"); err != nil {
		return f, err
	}
	if f.stdout, err = cmd.Flags().GetBool("stdout"); err != nil {
		return f, err
	}
	if f.diff, err = cmd.Flags().GetBool("diff"); err != nil {
		return f, err
	}
	if f.format, err = cmd.Flags().GetString("format"); err != nil {
		return f, err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return f, err
	}
	if f.ui, err = readUIMode(uiValue); err != nil {
		return f, err
	}
	if f.clearCache, err = cmd.Flags().GetBool("clear-cache"); err != nil {
		return f, err
	}
	if f.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return f, err
	}
	if f.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return f, err
	}
	return f, f.validate()
}

func (f fmtFlags) validate() error {
	switch f.format {
	case "text", "json", "table":
	default:
		return fmt.Errorf("fmt: unsupported output format %q", f.format)
	}
	modes := 0
	for _, on := range []bool{f.check, f.stdout, f.diff} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return fmt.Errorf("fmt: --check, --stdout and --diff are mutually exclusive")
	}
	if (f.stdout || f.diff) && f.format != "text" {
		return fmt.Errorf("fmt: --stdout and --diff are only supported with text output")
	}
	return nil
}

func runFormat(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	flags, err := readFmtFlags(cmd)
	if err != nil {
		return reportErr(cmd, err)
	}
	settings, err := loadSettings(cmd, args)
	if err != nil {
		return reportErr(cmd, err)
	}
	opts, err := buildDriverOptions(cmd, settings, flags)
	if err != nil {
		return reportErr(cmd, err)
	}

	ctx := cmd.Context()
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "modelfmt", 0)
	ctx = trace.WithSpan(ctx, span)
	defer span.End("")

	start := time.Now()
	files, err := driver.Collect(ctx, args, opts)
	if err != nil {
		return reportErr(cmd, err)
	}

	var results []driver.FormatResult
	if shouldUseTUI(flags, len(files)) {
		results, err = runFormatWithUI(ctx, "formatting", files, opts)
	} else {
		results, err = driver.FormatFiles(ctx, files, opts)
	}
	if err != nil {
		return reportErr(cmd, err)
	}
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	base := settings.Root

	var hasErrors, hasChanges bool
	switch {
	case flags.stdout:
		hasErrors = renderFmtStdout(out, errOut, results)
	case flags.diff:
		hasErrors, hasChanges, err = renderFmtDiff(out, errOut, results, base)
		if err != nil {
			return reportErr(cmd, err)
		}
	case flags.format == "json":
		hasErrors, hasChanges, err = renderFmtJSON(out, results, flags.check, base)
		if err != nil {
			return reportErr(cmd, err)
		}
	case flags.format == "table":
		hasErrors, hasChanges = renderFmtTable(out, results, flags.check, base)
	default:
		hasErrors, hasChanges = renderFmtText(out, errOut, results, flags.check, flags.quiet, base)
	}

	if !flags.quiet {
		summaryOut := out
		if flags.stdout || flags.format == "json" {
			summaryOut = errOut
		}
		printSummary(summaryOut, processedCount(results), elapsed)
	}
	if flags.timings {
		printTimings(errOut, opts.Timer)
	}

	if hasErrors {
		return errFormatFailed
	}
	if flags.check && hasChanges {
		return errChangesRequired
	}
	return nil
}

func buildDriverOptions(cmd *cobra.Command, settings project.Settings, flags fmtFlags) (driver.FormatOptions, error) {
	matcher, err := project.CompileExcludes(settings.Exclude)
	if err != nil {
		return driver.FormatOptions{}, fmt.Errorf("config: exclude: %w", err)
	}
	opts := driver.FormatOptions{
		Check:    flags.check,
		Stdout:   flags.stdout,
		Diff:     flags.diff,
		Options:  settings.Options,
		FileName: settings.FileName,
		Exclude:  matcher,
		BaseDir:  settings.Root,
		Jobs:     settings.Jobs,
	}
	if flags.timings {
		opts.Timer = observ.NewTimer()
	}
	if settings.Cache {
		cache, cacheErr := fmtcache.OpenDefault("modelfmt")
		if cacheErr != nil {
			// работаем без кэша
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", cacheErr)
		} else {
			opts.Cache = cache
		}
	}
	if flags.clearCache && opts.Cache != nil {
		if err := opts.Cache.DropAll(); err != nil {
			return driver.FormatOptions{}, err
		}
	}
	return opts, nil
}

func reportErr(cmd *cobra.Command, err error) error {
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", errorColor.Sprint(err.Error()))
	}
	return err
}

func processedCount(results []driver.FormatResult) int {
	n := 0
	for _, res := range results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

func printSummary(out io.Writer, processed int, elapsed time.Duration) {
	fmt.Fprintf(out, "Processed %d file(s) in %d ms\n", processed, elapsed.Milliseconds())
}

func renderFmtStdout(out, errOut io.Writer, results []driver.FormatResult) (hasErrors bool) {
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			fmt.Fprintf(errOut, "fmt: %v\n", res.Err)
			continue
		}
		_, _ = out.Write(res.Formatted)
	}
	return hasErrors
}

func renderFmtDiff(out, errOut io.Writer, results []driver.FormatResult, base string) (hasErrors, hasChanges bool, err error) {
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			fmt.Fprintf(errOut, "fmt: %v\n", res.Err)
			continue
		}
		if !res.Changed {
			continue
		}
		hasChanges = true
		if _, err := diff.Unified(out, source.DisplayPath(res.Path, base), res.Original, res.Formatted); err != nil {
			return hasErrors, hasChanges, err
		}
	}
	return hasErrors, hasChanges, nil
}

func renderFmtText(out, errOut io.Writer, results []driver.FormatResult, check, quiet bool, base string) (hasErrors, hasChanges bool) {
	for _, res := range results {
		path := source.DisplayPath(res.Path, base)
		if res.Err != nil {
			hasErrors = true
			fmt.Fprintf(errOut, "fmt: %s\n", errorColor.Sprint(res.Err.Error()))
			continue
		}
		if !res.Changed {
			continue
		}
		hasChanges = true
		if quiet {
			continue
		}
		if check {
			fmt.Fprintln(out, path)
			continue
		}
		fmt.Fprintf(out, "%s %s\n", changedColor.Sprint("reformatted"), path)
	}
	return hasErrors, hasChanges
}

type jsonResult struct {
	Path      string  `json:"path"`
	Changed   bool    `json:"changed"`
	Cached    bool    `json:"cached"`
	Error     string  `json:"error,omitempty"`
	ElapsedMS float64 `json:"elapsed_ms"`
	CheckRun  bool    `json:"check"`
}

func renderFmtJSON(out io.Writer, results []driver.FormatResult, check bool, base string) (hasErrors, hasChanges bool, err error) {
	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{
			Path:      source.DisplayPath(res.Path, base),
			Changed:   res.Changed,
			Cached:    res.Cached,
			ElapsedMS: observ.DurationToMillis(res.Elapsed),
			CheckRun:  check,
		}
		if res.Err != nil {
			hasErrors = true
			jr.Error = res.Err.Error()
		}
		hasChanges = hasChanges || res.Changed
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return hasErrors, hasChanges, encoder.Encode(payload)
}

func renderFmtTable(out io.Writer, results []driver.FormatResult, check bool, base string) (hasErrors, hasChanges bool) {
	table := tablewriter.NewWriter(out)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"path", "status", "ms"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	for _, res := range results {
		status := resultStatus(res, check)
		if res.Err != nil {
			hasErrors = true
		}
		hasChanges = hasChanges || res.Changed
		table.Append([]string{
			source.DisplayPath(res.Path, base),
			status,
			strconv.FormatFloat(observ.DurationToMillis(res.Elapsed), 'f', 2, 64),
		})
	}
	table.Render()
	return hasErrors, hasChanges
}

func resultStatus(res driver.FormatResult, check bool) string {
	switch {
	case res.Err != nil:
		return "error: " + res.Err.Error()
	case res.Changed && check:
		return "needs formatting"
	case res.Changed:
		return "reformatted"
	case res.Cached:
		return "cached"
	default:
		return "unchanged"
	}
}
