package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is the quiet period after a change before re-resolving.
const WatchDebounce = 100 * time.Millisecond

// WatchFunc receives every resolution made by Watch.
type WatchFunc func(path string, res *FileResult, err error)

// Watch resolves paths once, then again whenever one of them is written or
// re-created, until ctx is cancelled. fn is called from the watching
// goroutine only.
func (e *Engine) Watch(ctx context.Context, paths []string, opts Options, fn WatchFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Directories are watched since editors often replace files on save.
	files := make(map[string]string, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		files[abs] = p
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}

	for _, p := range paths {
		res, err := e.ResolveFile(ctx, p, opts)
		fn(p, res, err)
	}

	pending := make(map[string]bool)
	debounce := time.NewTimer(WatchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p, ok := files[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			pending[p] = true
			debounce.Reset(WatchDebounce)

		case <-debounce.C:
			for _, p := range paths {
				if !pending[p] {
					continue
				}
				delete(pending, p)
				e.logger.Debug("definition changed, re-resolving", "file", p)
				res, err := e.ResolveFile(ctx, p, opts)
				fn(p, res, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("watcher error", "error", err)
		}
	}
}
