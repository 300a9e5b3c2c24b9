package watch

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of filesystem events into one rebuild.
const DefaultDebounce = 500 * time.Millisecond

// Run watches the given directories (recursively) and invokes onChange after
// each debounced burst of write/create/remove/rename events. Hidden
// directories and .featwalk run artifacts are ignored. Run blocks until the
// context is cancelled or the watcher fails.
func Run(ctx context.Context, paths []string, debounce time.Duration, log *slog.Logger, onChange func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, p := range paths {
		if err := addRecursive(w, p); err != nil {
			return err
		}
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignored(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories need to join the watch set.
			if ev.Op&fsnotify.Create != 0 {
				_ = addRecursive(w, ev.Name)
			}
			log.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			if pending {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
			}
			timer.Reset(debounce)
			pending = true
		case <-timer.C:
			pending = false
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)
		}
	}
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // races with deletions are fine
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && ignored(path) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// ignored filters hidden directories and featwalk's own run artifacts. Only
// the final path element matters: hidden directories are never added to the
// watch set, so nothing deeper can produce events.
func ignored(path string) bool {
	base := filepath.Base(path)
	if base == ".featwalk" {
		return true
	}
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
