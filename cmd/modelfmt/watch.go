package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"modelfmt/internal/driver"
	"modelfmt/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <path> [path...]",
	Short: "Reformat model files whenever they change",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "wait this long for writes to settle")
	registerFormatFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	settings, err := loadSettings(cmd, args)
	if err != nil {
		return reportErr(cmd, err)
	}
	opts, err := buildDriverOptions(cmd, settings, fmtFlags{})
	if err != nil {
		return reportErr(cmd, err)
	}

	ctx := cmd.Context()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	// первый проход по всему дереву
	results, err := driver.FormatPaths(ctx, args, opts)
	if err != nil {
		return reportErr(cmd, err)
	}
	renderFmtText(out, errOut, results, false, quiet, settings.Root)
	if !quiet {
		fmt.Fprintf(out, "watching %d file(s), press Ctrl+C to stop\n", processedCount(results))
	}

	w := watch.New(args, watch.Config{
		Name:     settings.FileName,
		Exclude:  opts.Exclude,
		BaseDir:  settings.Root,
		Debounce: debounce,
		OnChange: func(ctx context.Context, files []string) {
			reformatChanged(ctx, out, errOut, files, opts, quiet, settings.Root)
		},
	})
	if err := w.Run(ctx); err != nil {
		return reportErr(cmd, err)
	}
	return nil
}

func reformatChanged(ctx context.Context, out, errOut io.Writer, files []string, opts driver.FormatOptions, quiet bool, base string) {
	results := make([]driver.FormatResult, 0, len(files))
	for _, path := range files {
		if ctx.Err() != nil {
			return
		}
		results = append(results, driver.FormatFile(ctx, path, opts))
	}
	renderFmtText(out, errOut, results, false, quiet, base)
}
