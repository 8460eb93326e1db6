// Package driver runs the model formatter over files and directory trees.
package driver

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"modelfmt/internal/fmtcache"
	"modelfmt/internal/format"
	"modelfmt/internal/observ"
	"modelfmt/internal/pipeline"
	"modelfmt/internal/project"
	"modelfmt/internal/source"
	"modelfmt/internal/trace"
)

// FormatOptions configures a formatting run.
type FormatOptions struct {
	// Check reports files that need formatting without writing them.
	Check bool
	// Stdout returns formatted content in the results without touching files.
	Stdout bool
	// Diff keeps Original and Formatted in the results without touching files.
	Diff    bool
	Options format.Options
	// FileName is the reserved base name; empty means project.DefaultFileName.
	FileName string
	// Exclude filters files found while walking directories. Patterns are
	// matched against paths relative to BaseDir.
	Exclude *project.Matcher
	BaseDir string
	// Jobs limits parallelism; <= 0 means GOMAXPROCS.
	Jobs     int
	Cache    *fmtcache.Cache
	Progress pipeline.ProgressSink
	Timer    *observ.Timer
}

// dryRun reports whether files on disk must stay untouched.
func (o FormatOptions) dryRun() bool {
	return o.Check || o.Stdout || o.Diff
}

func (o FormatOptions) fileName() string {
	if o.FileName == "" {
		return project.DefaultFileName
	}
	return o.FileName
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path    string
	Changed bool
	// Cached is set when the cache proved the file already formatted.
	Cached    bool
	Err       error
	Original  []byte
	Formatted []byte
	Elapsed   time.Duration
}

// FormatPaths formats the given files and directories. Directories are walked
// recursively for files carrying the reserved name. Results are sorted by path.
// Per-file failures are reported in FormatResult.Err; the returned error is for
// failures that stop the whole run (bad arguments, walk errors, cancellation).
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	files, err := Collect(ctx, paths, opts)
	if err != nil {
		return nil, err
	}
	return FormatFiles(ctx, files, opts)
}

// Collect resolves paths into the sorted list of model files FormatFiles
// would process.
func Collect(ctx context.Context, paths []string, opts FormatOptions) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeStage, "collect", trace.SpanFromContext(ctx))
	endCollect := opts.Timer.Track("collect")
	files, err := collectModelFiles(ctx, paths, opts.fileName(), opts.Exclude, opts.BaseDir)
	endCollect(strconv.Itoa(len(files)) + " files")
	if err != nil {
		trace.Error(tracer, trace.ScopeStage, "collect", err, span.ID())
		span.End("error")
		return nil, err
	}
	span.WithExtra("files", strconv.Itoa(len(files))).End("")
	return files, nil
}

// FormatFiles formats already collected files in parallel.
func FormatFiles(ctx context.Context, files []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeStage, "format", trace.SpanFromContext(ctx))
	pipeline.EmitQueued(opts.Progress, files)

	endFormat := opts.Timer.Track("format")
	results, err := formatFiles(trace.WithSpan(ctx, span), files, opts)
	endFormat(strconv.Itoa(len(results)) + " files")
	if err != nil {
		span.End("error")
		return results, err
	}
	span.WithExtra("files", strconv.Itoa(len(results))).End("")
	return results, nil
}

// FormatFile formats a single file regardless of its name. Watch mode uses
// it for files whose name was already checked.
func FormatFile(ctx context.Context, path string, opts FormatOptions) FormatResult {
	start := time.Now()
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "file:"+path, trace.SpanFromContext(ctx))

	res := formatOne(path, opts)
	res.Elapsed = time.Since(start)

	switch {
	case res.Err != nil:
		trace.Error(tracer, trace.ScopeFile, "file:"+path, res.Err, span.ID())
		span.End("error")
	case res.Cached:
		span.End("cached")
	case res.Changed:
		span.End("changed")
	default:
		span.End("")
	}
	return res
}

func formatOne(path string, opts FormatOptions) FormatResult {
	res := FormatResult{Path: path}
	emit := func(stage pipeline.Stage, status pipeline.Status, err error) {
		pipeline.Emit(opts.Progress, pipeline.Event{File: path, Stage: stage, Status: status, Err: err})
	}

	emit(pipeline.StageRead, pipeline.StatusWorking, nil)
	file, err := source.Load(path)
	if err != nil {
		res.Err = err
		emit(pipeline.StageRead, pipeline.StatusError, err)
		return res
	}

	key := fmtcache.NewKey(file.Hash, opts.Options.Fingerprint())
	if _, ok, lookupErr := opts.Cache.Lookup(key); lookupErr == nil && ok {
		res.Cached = true
		if opts.Stdout {
			res.Formatted = file.Raw
		}
		emit(pipeline.StageFormat, pipeline.StatusCached, nil)
		return res
	}

	emit(pipeline.StageFormat, pipeline.StatusWorking, nil)
	formatted, err := format.Format(file.Content, opts.Options)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", path, err)
		emit(pipeline.StageFormat, pipeline.StatusError, res.Err)
		return res
	}

	res.Changed = !bytes.Equal(file.Raw, formatted)
	if opts.Stdout {
		res.Formatted = formatted
	}
	if opts.Diff && res.Changed {
		res.Original = file.Raw
		res.Formatted = formatted
	}

	if !res.Changed {
		// Best-effort: a cache that cannot be written only costs speed.
		_ = opts.Cache.MarkFormatted(key, path, len(file.Raw))
		emit(pipeline.StageFormat, pipeline.StatusDone, nil)
		return res
	}
	if opts.dryRun() {
		emit(pipeline.StageFormat, pipeline.StatusChanged, nil)
		return res
	}

	emit(pipeline.StageWrite, pipeline.StatusWorking, nil)
	if err := writeFileAtomic(path, formatted, file.Mode); err != nil {
		res.Err = err
		res.Changed = false
		emit(pipeline.StageWrite, pipeline.StatusError, err)
		return res
	}
	newKey := fmtcache.NewKey(hashBytes(formatted), opts.Options.Fingerprint())
	_ = opts.Cache.MarkFormatted(newKey, path, len(formatted))
	emit(pipeline.StageWrite, pipeline.StatusChanged, nil)
	return res
}
