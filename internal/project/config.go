package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"

	"modelfmt/internal/format"
)

// DefaultFileName is the reserved base name of model files.
const DefaultFileName = "model"

// Config is the decoded modelfmt.toml.
type Config struct {
	Format FormatConfig `toml:"format"`
	Files  FilesConfig  `toml:"files"`
	Run    RunConfig    `toml:"run"`
}

// FormatConfig holds [format].
type FormatConfig struct {
	Name      string `toml:"name"`
	Width     string `toml:"width"`
	MaxFields int    `toml:"max_fields"`
}

// FilesConfig holds [files].
type FilesConfig struct {
	Exclude []string `toml:"exclude"`
}

// RunConfig holds [run].
type RunConfig struct {
	Jobs  int   `toml:"jobs"`
	Cache *bool `toml:"cache"`
}

// Settings is a validated configuration ready for the driver.
type Settings struct {
	// Path of the file the settings came from; empty for defaults.
	Path     string
	Root     string
	FileName string
	Options  format.Options
	Exclude  []string
	Jobs     int
	Cache    bool
}

// Defaults returns the settings used when no configuration file exists.
func Defaults() Settings {
	return Settings{
		FileName: DefaultFileName,
		Options:  format.Options{Measure: format.WidthGraphemes},
		Cache:    true,
	}
}

// LoadConfig reads and validates the configuration at path.
func LoadConfig(path string) (Settings, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Settings{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	settings := Defaults()
	settings.Path = path
	settings.Root = filepath.Dir(path)

	if meta.IsDefined("format", "name") {
		name := strings.TrimSpace(cfg.Format.Name)
		if name == "" || strings.ContainsAny(name, `/\`) {
			return Settings{}, fmt.Errorf("%s: [format].name must be a plain file name, got %q", path, cfg.Format.Name)
		}
		settings.FileName = name
	}
	if meta.IsDefined("format", "width") {
		m, err := format.ParseMeasure(cfg.Format.Width)
		if err != nil {
			return Settings{}, fmt.Errorf("%s: [format].width: %w", path, err)
		}
		settings.Options.Measure = m
	}
	if cfg.Format.MaxFields < 0 {
		return Settings{}, fmt.Errorf("%s: [format].max_fields must not be negative", path)
	}
	settings.Options.MaxFields = cfg.Format.MaxFields

	if _, err := CompileExcludes(cfg.Files.Exclude); err != nil {
		return Settings{}, fmt.Errorf("%s: [files].exclude: %w", path, err)
	}
	settings.Exclude = cfg.Files.Exclude

	if cfg.Run.Jobs < 0 {
		return Settings{}, fmt.Errorf("%s: [run].jobs must not be negative", path)
	}
	settings.Jobs = cfg.Run.Jobs
	if cfg.Run.Cache != nil {
		settings.Cache = *cfg.Run.Cache
	}
	return settings, nil
}

// Discover finds modelfmt.toml above startDir and loads it. Without a
// configuration file it returns Defaults.
func Discover(startDir string) (Settings, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Settings{}, err
	}
	if !ok {
		return Defaults(), nil
	}
	return LoadConfig(path)
}

// Matcher reports whether a slash-separated path is excluded.
type Matcher struct {
	globs []glob.Glob
}

// CompileExcludes compiles glob patterns with '/' as the separator, so "*"
// stays within one directory and "**" crosses directories. A leading "**/"
// also matches zero directories: "**/testdata/**" excludes "testdata/model".
func CompileExcludes(patterns []string) (*Matcher, error) {
	m := &Matcher{globs: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		p = filepath.ToSlash(p)
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
		if rest, ok := strings.CutPrefix(p, "**/"); ok && rest != "" {
			g, err := glob.Compile(rest, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
			}
			m.globs = append(m.globs, g)
		}
	}
	return m, nil
}

// Match reports whether path matches any pattern.
func (m *Matcher) Match(path string) bool {
	if m == nil {
		return false
	}
	path = filepath.ToSlash(path)
	for _, g := range m.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}
