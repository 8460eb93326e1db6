package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modelfmt/internal/fmtcache"
	"modelfmt/internal/format"
	"modelfmt/internal/pipeline"
	"modelfmt/internal/project"
	"modelfmt/internal/testkit"
)

const (
	unformatted = "# models\nModel A  [x]  a\nModel B  b\n"
	formatted   = "# models\nModel A  [x]  a\nModel B       b\n"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func TestFormatPathsRewritesFiles(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a", "model")
	b := filepath.Join(root, "b", "model")
	other := filepath.Join(root, "b", "notes")
	writeFile(t, a, unformatted)
	writeFile(t, b, formatted)
	writeFile(t, other, unformatted)

	results, err := FormatPaths(context.Background(), []string{root}, FormatOptions{})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Path != a || results[1].Path != b {
		t.Fatalf("results not sorted: %q, %q", results[0].Path, results[1].Path)
	}
	if !results[0].Changed || results[1].Changed {
		t.Fatalf("unexpected changed flags: %+v", results)
	}
	if got := readFile(t, a); got != formatted {
		t.Fatalf("want %q\ngot  %q", formatted, got)
	}
	if got := readFile(t, other); got != unformatted {
		t.Fatal("files with other names must not be touched")
	}
}

func TestFormatPathsPreservesMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model")
	writeFile(t, path, unformatted)
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if _, err := FormatPaths(context.Background(), []string{path}, FormatOptions{}); err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v", info.Mode().Perm())
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestFormatPathsCheckDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model")
	writeFile(t, path, unformatted)

	for _, opts := range []FormatOptions{{Check: true}, {Diff: true}, {Stdout: true}} {
		results, err := FormatPaths(context.Background(), []string{path}, opts)
		if err != nil {
			t.Fatalf("FormatPaths: %v", err)
		}
		if len(results) != 1 || !results[0].Changed {
			t.Fatalf("expected a changed result, got %+v", results)
		}
		if got := readFile(t, path); got != unformatted {
			t.Fatalf("file modified with %+v", opts)
		}
	}
}

func TestFormatPathsStdoutAndDiffCarryContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model")
	writeFile(t, path, unformatted)

	res, err := FormatPaths(context.Background(), []string{path}, FormatOptions{Stdout: true})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if string(res[0].Formatted) != formatted {
		t.Fatalf("want %q\ngot  %q", formatted, res[0].Formatted)
	}

	res, err = FormatPaths(context.Background(), []string{path}, FormatOptions{Diff: true})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if string(res[0].Original) != unformatted || string(res[0].Formatted) != formatted {
		t.Fatalf("unexpected diff payload %+v", res[0])
	}
}

func TestFormatPathsErrorLeavesFileUntouched(t *testing.T) {
	root := t.TempDir()
	bad := filepath.Join(root, "bad", "model")
	good := filepath.Join(root, "good", "model")
	badContent := "a  b  c  d\n"
	writeFile(t, bad, badContent)
	writeFile(t, good, unformatted)

	opts := FormatOptions{Options: format.Options{MaxFields: 3}}
	results, err := FormatPaths(context.Background(), []string{root}, opts)
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if !errors.Is(results[0].Err, format.ErrUnexpectedFieldCount) {
		t.Fatalf("expected field count error, got %v", results[0].Err)
	}
	if !strings.HasPrefix(results[0].Err.Error(), bad+": ") {
		t.Fatalf("error should name the file: %v", results[0].Err)
	}
	if got := readFile(t, bad); got != badContent {
		t.Fatalf("failed file was modified: %q", got)
	}
	if results[1].Err != nil || readFile(t, good) != formatted {
		t.Fatal("other files must still be formatted")
	}
}

func TestFormatPathsRejectsWrongFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.txt")
	writeFile(t, path, unformatted)

	_, err := FormatPaths(context.Background(), []string{path}, FormatOptions{})
	var typeErr *InvalidFileTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected InvalidFileTypeError, got %v", err)
	}
	if !strings.Contains(err.Error(), `invalid file type: only files named "model" are allowed`) {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestFormatPathsMissingPath(t *testing.T) {
	_, err := FormatPaths(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, FormatOptions{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestFormatPathsEmptyTree(t *testing.T) {
	results, err := FormatPaths(context.Background(), []string{t.TempDir()}, FormatOptions{})
	if err != nil || len(results) != 0 {
		t.Fatalf("expected no results, got %v, %v", results, err)
	}
}

func TestFormatPathsCustomNameAndExcludes(t *testing.T) {
	root := t.TempDir()
	keep := filepath.Join(root, "src", "model.txt")
	skip := filepath.Join(root, "src", "testdata", "model.txt")
	writeFile(t, keep, unformatted)
	writeFile(t, skip, unformatted)

	m, err := project.CompileExcludes([]string{"**/testdata/**"})
	if err != nil {
		t.Fatalf("CompileExcludes: %v", err)
	}
	results, err := FormatPaths(context.Background(), []string{root}, FormatOptions{
		FileName: "model.txt",
		Exclude:  m,
		BaseDir:  root,
	})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if len(results) != 1 || results[0].Path != keep {
		t.Fatalf("unexpected results %+v", results)
	}
	if readFile(t, skip) != unformatted {
		t.Fatal("excluded file was modified")
	}
}

func TestFormatPathsExcludesTopLevelTestdata(t *testing.T) {
	root := t.TempDir()
	keep := filepath.Join(root, "model")
	skip := filepath.Join(root, "testdata", "model")
	writeFile(t, keep, unformatted)
	writeFile(t, skip, unformatted)

	m, err := project.CompileExcludes([]string{"**/testdata/**"})
	if err != nil {
		t.Fatalf("CompileExcludes: %v", err)
	}
	results, err := FormatPaths(context.Background(), []string{root}, FormatOptions{
		Exclude: m,
		BaseDir: root,
	})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if len(results) != 1 || results[0].Path != keep {
		t.Fatalf("unexpected results %+v", results)
	}
	if readFile(t, skip) != unformatted {
		t.Fatal("excluded file was modified")
	}
}

func TestFormatPathsDeduplicates(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "model")
	writeFile(t, path, formatted)

	results, err := FormatPaths(context.Background(), []string{root, path, path}, FormatOptions{Check: true})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestFormatPathsCacheHitSkipsWork(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "model")
	writeFile(t, path, unformatted)

	cache, err := fmtcache.Open(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	opts := FormatOptions{Cache: cache}
	if _, err := FormatPaths(context.Background(), []string{root}, opts); err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}

	rec := &pipeline.Recorder{}
	opts.Progress = rec
	results, err := FormatPaths(context.Background(), []string{root}, opts)
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if !results[0].Cached || results[0].Changed {
		t.Fatalf("expected cache hit, got %+v", results[0])
	}
	last, ok := rec.Last(path)
	if !ok || last.Status != pipeline.StatusCached {
		t.Fatalf("expected cached event, got %+v", last)
	}

	// different options must miss
	opts.Options = format.Options{Measure: format.WidthRunes}
	results, err = FormatPaths(context.Background(), []string{root}, opts)
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if results[0].Cached {
		t.Fatal("options change must invalidate the cache")
	}
}

func TestFormatPathsProgressEvents(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "model")
	writeFile(t, path, unformatted)

	rec := &pipeline.Recorder{}
	if _, err := FormatPaths(context.Background(), []string{root}, FormatOptions{Progress: rec, Jobs: 1}); err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	events := rec.Events()
	if len(events) == 0 || events[0].Status != pipeline.StatusQueued {
		t.Fatalf("expected queued first, got %+v", events)
	}
	last, _ := rec.Last(path)
	if last.Stage != pipeline.StageWrite || last.Status != pipeline.StatusChanged {
		t.Fatalf("unexpected last event %+v", last)
	}
}

func TestFormatPathsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FormatPaths(ctx, []string{t.TempDir()}, FormatOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFormatPathsTestdataKeepsInvariants(t *testing.T) {
	srcRoot := filepath.Join("..", "..", "testdata", "models")
	paths, err := filepath.Glob(filepath.Join(srcRoot, "*", "model"))
	if err != nil || len(paths) == 0 {
		t.Fatalf("no testdata models: %v", err)
	}

	root := t.TempDir()
	originals := make(map[string][]byte, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		dst := filepath.Join(root, filepath.Base(filepath.Dir(p)), "model")
		writeFile(t, dst, string(data))
		originals[dst] = data
	}

	results, err := FormatPaths(context.Background(), []string{root}, FormatOptions{Jobs: 2})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("%s: %v", res.Path, res.Err)
		}
		out, err := os.ReadFile(res.Path)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if err := testkit.CheckFormatInvariants(originals[res.Path], out, format.Options{}); err != nil {
			t.Fatalf("%s: %v", res.Path, err)
		}
	}
}
