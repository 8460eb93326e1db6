// Package watch reformats model files as they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"modelfmt/internal/project"
	"modelfmt/internal/source"
	"modelfmt/internal/trace"
)

// DefaultDebounce is how long the watcher waits for a burst of events to settle.
const DefaultDebounce = 100 * time.Millisecond

// OnChange receives the sorted set of files changed during one debounce window.
type OnChange func(ctx context.Context, files []string)

// Config configures a Watcher.
type Config struct {
	// Name is the reserved file name; empty means project.DefaultFileName.
	Name     string
	Exclude  *project.Matcher
	BaseDir  string
	Debounce time.Duration
	OnChange OnChange
	// Ready, when set, is closed once every directory is being watched.
	Ready chan<- struct{}
}

// Watcher watches directory trees for writes to model files.
type Watcher struct {
	roots []string
	cfg   Config
}

// New creates a watcher over roots (files or directories).
func New(roots []string, cfg Config) *Watcher {
	if cfg.Name == "" {
		cfg.Name = project.DefaultFileName
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Watcher{roots: roots, cfg: cfg}
}

// Run blocks until ctx is canceled or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	if w.cfg.OnChange == nil {
		return errors.New("watch: OnChange is required")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	for _, root := range w.roots {
		if err := w.addTree(watcher, root); err != nil {
			return err
		}
	}
	if w.cfg.Ready != nil {
		close(w.cfg.Ready)
	}

	tracer := trace.FromContext(ctx)
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Has(fsnotify.Create) {
				if info, statErr := os.Stat(evt.Name); statErr == nil && info.IsDir() {
					if err := w.addTree(watcher, evt.Name); err != nil {
						trace.Error(tracer, trace.ScopeDriver, "watch", err, 0)
					}
					continue
				}
			}
			if !w.relevant(evt) {
				continue
			}
			trace.Point(tracer, trace.ScopeFile, "event:"+evt.Name, evt.Op.String(), 0)
			if len(pending) == 0 {
				timer.Reset(w.cfg.Debounce)
			}
			pending[filepath.Clean(evt.Name)] = struct{}{}
		case <-timer.C:
			files := drain(pending)
			w.cfg.OnChange(ctx, files)
		}
	}
}

// relevant reports whether evt is a create or write of a watched model file.
func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Write) {
		return false
	}
	if filepath.Base(evt.Name) != w.cfg.Name {
		return false
	}
	if w.cfg.Exclude != nil {
		rel := evt.Name
		if w.cfg.BaseDir != "" {
			if r, err := source.RelativePath(evt.Name, w.cfg.BaseDir); err == nil {
				rel = r
			}
		}
		if w.cfg.Exclude.Match(rel) {
			return false
		}
	}
	return true
}

func (w *Watcher) addTree(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		if err := watcher.Add(filepath.Dir(root)); err != nil {
			return fmt.Errorf("watch: %s: %w", root, err)
		}
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch: %s: %w", path, err)
		}
		return nil
	})
}

func drain(pending map[string]struct{}) []string {
	files := make([]string, 0, len(pending))
	for f := range pending {
		files = append(files, f)
		delete(pending, f)
	}
	sort.Strings(files)
	return files
}
