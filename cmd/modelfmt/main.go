package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"modelfmt/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "modelfmt [flags] <path> [path...]",
	Short: "Align the columns of model files",
	Long: `modelfmt rewrites files named "model" so that the columns of every
record line up. Directories are searched recursively.`,
	Args:              cobra.MinimumNArgs(1),
	PersistentPreRunE: setupRun,
	RunE:              runFormat,
}

// cleanupRun is set by setupRun and released after the command finishes.
var cleanupRun = func() {}

func init() {
	// Добавляем команды
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("trace", "", "write a trace to PATH (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to PATH")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to PATH")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to PATH")
}

// main runs the root command and exits with status 1 when it fails.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cleanupRun()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func setupRun(cmd *cobra.Command, _ []string) error {
	if err := applyColorMode(cmd); err != nil {
		return err
	}
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	stopTracing, err := setupTracing(cmd)
	if err != nil {
		stopProfiling()
		return err
	}
	cleanupRun = func() {
		stopTracing()
		stopProfiling()
	}
	return nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
