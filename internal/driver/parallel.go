package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// formatFiles formats files in parallel. Results keep the order of files.
func formatFiles(ctx context.Context, files []string, opts FormatOptions) ([]FormatResult, error) {
	if len(files) == 0 {
		return nil, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]FormatResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path // per-iteration copies (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			// Проверка отмены
			if err := gctx.Err(); err != nil {
				results[i] = FormatResult{Path: path, Err: err}
				return err
			}
			results[i] = FormatFile(gctx, path, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
