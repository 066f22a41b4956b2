// Package watch re-runs analysis when a snapshot file changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces editor write bursts into a single rerun.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a single file and invokes the callback when its
// content actually changes. Rewrites with identical content are
// suppressed by comparing content hashes.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(path string)
	logger   *slog.Logger

	lastSum uint64
	hasSum  bool
}

// New builds a watcher for path. A zero debounce means DefaultDebounce.
func New(path string, debounce time.Duration, onChange func(path string), logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}
}

// Run starts the event loop and blocks until the context is cancelled.
// The file's directory is watched rather than the file itself so
// save-and-rename editors keep triggering.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	// Seed the hash so startup does not count as a change.
	if sum, err := contentSum(w.path); err == nil {
		w.lastSum = sum
		w.hasSum = true
	}

	w.logger.Info("watching for changes", "path", w.path, "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	stopTimer(timer)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
				!event.Op.Has(fsnotify.Rename) {
				continue
			}
			stopTimer(timer)
			timer.Reset(w.debounce)

		case <-timer.C:
			w.fire()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// fire runs the callback unless the file content is unchanged since the
// last invocation.
func (w *Watcher) fire() {
	sum, err := contentSum(w.path)
	if err != nil {
		w.logger.Warn("failed to read watched file", "path", w.path, "error", err)
		return
	}
	if w.hasSum && sum == w.lastSum {
		w.logger.Debug("content unchanged, skipping rerun", "path", w.path)
		return
	}
	w.lastSum = sum
	w.hasSum = true

	w.logger.Info("snapshot changed", "path", w.path)
	if w.onChange != nil {
		w.onChange(w.path)
	}
}

// stopTimer stops a timer and drains its channel if it already fired.
func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func contentSum(path string) (uint64, error) {
	// #nosec G304 -- the watched path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}
