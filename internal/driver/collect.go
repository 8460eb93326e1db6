package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"modelfmt/internal/project"
	"modelfmt/internal/source"
)

// InvalidFileTypeError is returned when a file argument does not carry the
// reserved name.
type InvalidFileTypeError struct {
	Path string
	Name string
}

func (e *InvalidFileTypeError) Error() string {
	return fmt.Sprintf("%s: invalid file type: only files named %q are allowed", e.Path, e.Name)
}

// collectModelFiles resolves the arguments into a sorted, de-duplicated list
// of files named name. Excludes apply only to files found by walking;
// explicit file arguments are always formatted.
func collectModelFiles(ctx context.Context, paths []string, name string, exclude *project.Matcher, baseDir string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if filepath.Base(p) != name {
				return nil, &InvalidFileTypeError{Path: p, Name: name}
			}
			addFile(p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() || d.Name() != name {
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if excluded(exclude, path, baseDir) {
				return nil
			}
			addFile(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func excluded(m *project.Matcher, path, baseDir string) bool {
	if m == nil {
		return false
	}
	rel := path
	if baseDir != "" {
		if r, err := source.RelativePath(path, baseDir); err == nil {
			rel = r
		}
	}
	return m.Match(filepath.ToSlash(rel))
}
