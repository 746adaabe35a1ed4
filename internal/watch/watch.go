package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/anikchand461/envpod/internal/logger"
)

// DefaultDebounce coalesces editor save bursts into one reconciliation.
const DefaultDebounce = 500 * time.Millisecond

// Watcher observes the configuration inputs of a project and invokes a
// callback after changes settle. It watches the project root directory rather
// than individual files so atomic saves (write temp, rename over) are still
// seen.
type Watcher struct {
	root     string
	debounce time.Duration
	log      *logger.Logger

	mu      sync.Mutex
	files   map[string]struct{}
	fsw     *fsnotify.Watcher
	watched map[string]struct{}
}

// New creates a Watcher for the given project root. files are paths relative
// to the root; changes to anything else are ignored.
func New(root string, files []string, log *logger.Logger) *Watcher {
	return &Watcher{
		root:     root,
		files:    fileSet(files),
		debounce: DefaultDebounce,
		log:      log.WithComponent("watcher"),
	}
}

func fileSet(files []string) map[string]struct{} {
	tracked := make(map[string]struct{}, len(files))
	for _, file := range files {
		if file == "" {
			continue
		}
		tracked[filepath.Clean(file)] = struct{}{}
	}
	return tracked
}

// Track replaces the tracked file set. When Run is active, parent directories
// of newly tracked files start being watched immediately, so a config edit
// that introduces a dependency file takes effect without a restart.
func (w *Watcher) Track(files []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = fileSet(files)
	if w.fsw != nil {
		w.watchParentsLocked()
	}
}

// watchParentsLocked registers the parent directories of tracked files that
// live outside the root top level (e.g. conf/requirements.txt). Caller holds
// w.mu.
func (w *Watcher) watchParentsLocked() {
	for file := range w.files {
		dir := filepath.Join(w.root, filepath.Dir(file))
		if _, ok := w.watched[dir]; ok {
			continue
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			w.log.Warn("cannot watch " + dir + ": " + err.Error())
			continue
		}
		w.watched[dir] = struct{}{}
	}
}

// Run blocks until ctx is cancelled, invoking onChange after each settled
// burst of changes to a tracked file. onChange errors are logged, not fatal:
// the watch keeps going so the next save can fix the problem.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.root); err != nil {
		return err
	}

	w.mu.Lock()
	w.fsw = fsw
	w.watched = map[string]struct{}{w.root: {}}
	w.watchParentsLocked()
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.fsw = nil
		w.mu.Unlock()
	}()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.tracks(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.log.Debug("change detected: " + event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			if err := onChange(ctx); err != nil {
				w.log.Error(err, "reconciliation failed")
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error: " + err.Error())
		}
	}
}

// tracks reports whether an event path refers to one of the tracked files.
func (w *Watcher) tracks(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[filepath.Clean(rel)]
	return ok
}
