package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"modelfmt/internal/format"
	"modelfmt/internal/project"
)

// registerFormatFlags adds the flags shared by the root command and watch.
func registerFormatFlags(cmd *cobra.Command) {
	cmd.Flags().String("width", "graphemes", "column width measure (graphemes|runes|cells)")
	cmd.Flags().Int("max-fields", 0, "fail on records with more fields (0 = unlimited)")
	cmd.Flags().String("name", project.DefaultFileName, "reserved model file name")
	cmd.Flags().StringArray("exclude", nil, "glob of paths to skip while walking directories (repeatable)")
	cmd.Flags().Int("jobs", 0, "max parallel files (0=auto)")
	cmd.Flags().Bool("no-cache", false, "disable the formatted-file cache")
	cmd.Flags().String("config", "", "path to "+project.ConfigFileName+" (default: search upwards)")
}

// loadSettings reads modelfmt.toml (explicit or discovered from the first
// path) and applies the flags that were set on the command line.
func loadSettings(cmd *cobra.Command, args []string) (project.Settings, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return project.Settings{}, err
	}

	var settings project.Settings
	if configPath != "" {
		settings, err = project.LoadConfig(configPath)
	} else {
		start := "."
		if len(args) > 0 {
			start = args[0]
		}
		settings, err = project.Discover(start)
	}
	if err != nil {
		return project.Settings{}, fmt.Errorf("config: %w", err)
	}
	if settings.Root == "" {
		if settings.Root, err = os.Getwd(); err != nil {
			return project.Settings{}, err
		}
	}

	if err := applyFlagOverrides(cmd, &settings); err != nil {
		return project.Settings{}, err
	}
	return settings, nil
}

func applyFlagOverrides(cmd *cobra.Command, s *project.Settings) error {
	flags := cmd.Flags()
	if flags.Changed("width") {
		value, err := flags.GetString("width")
		if err != nil {
			return err
		}
		m, err := format.ParseMeasure(value)
		if err != nil {
			return fmt.Errorf("--width: %w", err)
		}
		s.Options.Measure = m
	}
	if flags.Changed("max-fields") {
		limit, err := flags.GetInt("max-fields")
		if err != nil {
			return err
		}
		if limit < 0 {
			return fmt.Errorf("--max-fields must not be negative")
		}
		s.Options.MaxFields = limit
	}
	if flags.Changed("name") {
		name, err := flags.GetString("name")
		if err != nil {
			return err
		}
		if name == "" || filepath.Base(name) != name {
			return fmt.Errorf("--name must be a plain file name, got %q", name)
		}
		s.FileName = name
	}
	if flags.Changed("exclude") {
		patterns, err := flags.GetStringArray("exclude")
		if err != nil {
			return err
		}
		s.Exclude = append(s.Exclude, patterns...)
	}
	if flags.Changed("jobs") {
		jobs, err := flags.GetInt("jobs")
		if err != nil {
			return err
		}
		s.Jobs = jobs
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return err
	}
	if noCache {
		s.Cache = false
	}
	return nil
}
