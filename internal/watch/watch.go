// Package watch reformats template files as they change on disk.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/brahmaduttau/djLint/internal/runner"
)

// debounce absorbs the editor save dance (truncate, write, chmod) so one
// save triggers one reformat.
const debounce = 200 * time.Millisecond

// Watcher reformats watched files whenever they are written.
type Watcher struct {
	runner   *runner.Runner
	log      *zap.SugaredLogger
	onResult func(runner.Result)

	files map[string]bool
	dirs  map[string]bool

	fsw *fsnotify.Watcher
}

// New builds a watcher over the given files. onResult is called after each
// reformat; it may be nil.
func New(r *runner.Runner, log *zap.SugaredLogger, onResult func(runner.Result)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Watcher{
		runner:   r,
		log:      log,
		onResult: onResult,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		fsw:      fsw,
	}, nil
}

// Add registers a file. The parent directory is watched rather than the
// file itself so editors that replace files on save are still seen.
func (w *Watcher) Add(path string) error {
	full, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.files[full] = true

	dir := filepath.Dir(full)
	if w.dirs[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = true
	return nil
}

// Run blocks processing events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	pending := make(map[string]time.Time)
	tick := time.NewTicker(debounce)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			full, err := filepath.Abs(event.Name)
			if err != nil || !w.files[full] {
				continue
			}
			pending[full] = time.Now()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watch error", "error", err)

		case now := <-tick.C:
			for path, at := range pending {
				if now.Sub(at) < debounce {
					continue
				}
				delete(pending, path)
				w.reformat(path)
			}
		}
	}
}

func (w *Watcher) reformat(path string) {
	w.log.Infow("file changed", "path", path)
	res := w.runner.FormatOne(path, runner.FormatOptions{})
	if res.Err != nil {
		w.log.Errorw("reformat failed", "path", path, "error", res.Err)
	}
	if w.onResult != nil {
		w.onResult(res)
	}
}
