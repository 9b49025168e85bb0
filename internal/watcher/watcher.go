package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"crate-sync/internal/logging"
	"crate-sync/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// DefaultQuietPeriod is how long the crate directory must stay quiet before
// a trigger is delivered.
const DefaultQuietPeriod = 500 * time.Millisecond

// CrateExt is the extension of Serato crate files.
const CrateExt = ".crate"

// ErrEventsClosed is reported when fsnotify closes its event stream while
// the watcher is still running.
var ErrEventsClosed = errors.New("event stream closed unexpectedly")

// WatchError reports that the crate directory can no longer be observed.
type WatchError struct {
	Op  string
	Err error
}

func (e *WatchError) Error() string {
	return fmt.Sprintf("watcher %s: %v", e.Op, e.Err)
}

func (e *WatchError) Unwrap() error {
	return e.Err
}

// Options configures a Watcher.
type Options struct {
	// QuietPeriod defaults to DefaultQuietPeriod when zero.
	QuietPeriod time.Duration
}

// Watcher observes a crate directory tree and emits one trigger per burst
// of relevant changes.
type Watcher struct {
	dir   string
	quiet time.Duration

	triggers chan struct{}
	errs     chan error
	done     chan struct{}

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	timer   *time.Timer
	gen     uint64
	started bool
	stopped bool
	watched map[string]bool
}

// New creates a watcher for dir. Nothing is observed until Start.
func New(dir string, opts Options) *Watcher {
	quiet := opts.QuietPeriod
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Watcher{
		dir:      dir,
		quiet:    quiet,
		triggers: make(chan struct{}, 1),
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
		watched:  make(map[string]bool),
	}
}

// Triggers delivers one value per quiet period that followed relevant
// changes. Triggers arriving while the previous one is unconsumed are
// merged into it. The channel is closed by Stop.
func (w *Watcher) Triggers() <-chan struct{} {
	return w.triggers
}

// Errors delivers a *WatchError when observation fails.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Start begins observing the directory tree.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return &WatchError{Op: "start", Err: errors.New("watcher stopped")}
	}
	if w.started {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		metrics.WatcherErrors.Inc()
		return &WatchError{Op: "create", Err: err}
	}

	if info, err := os.Stat(w.dir); err != nil {
		_ = fsw.Close()
		return &WatchError{Op: "add", Err: err}
	} else if !info.IsDir() {
		_ = fsw.Close()
		return &WatchError{Op: "add", Err: fmt.Errorf("%s is not a directory", w.dir)}
	}

	w.fsw = fsw
	if err := w.addTree(w.dir); err != nil {
		w.fsw = nil
		_ = fsw.Close()
		return &WatchError{Op: "add", Err: err}
	}
	w.started = true

	logging.Debug("watching %d directories under %s", len(w.watched), w.dir)
	go w.loop(fsw)
	return nil
}

// Stop ends observation, cancels any pending trigger and closes Triggers.
// It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	fsw := w.fsw
	started := w.started
	w.mu.Unlock()

	if fsw != nil {
		if err := fsw.Close(); err != nil {
			logging.Warn("failed to close file watcher: %v", err)
		}
	}
	if started {
		<-w.done
	}

	// The timer callback sends under mu and checks stopped first, so no
	// send can race with the close.
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	close(w.triggers)
	w.mu.Unlock()

	metrics.WatcherWatchedDirectories.Set(0)
}

// addTree adds root and every non-hidden directory below it. Callers hold mu.
func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logging.Warn("skipping unreadable directory %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if w.watched[path] {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			if path == root {
				return err
			}
			logging.Warn("failed to add path to watcher %s: %v", path, err)
			metrics.WatcherErrors.Inc()
			return nil
		}
		w.watched[path] = true
		return nil
	})
	metrics.WatcherWatchedDirectories.Set(float64(len(w.watched)))
	return err
}

func (w *Watcher) loop(fsw *fsnotify.Watcher) {
	defer close(w.done)

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				w.closed()
				return
			}
			w.handle(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				w.closed()
				return
			}
			metrics.WatcherErrors.Inc()
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				logging.Warn("watcher event queue overflowed, scheduling a full conversion")
				w.schedule()
				continue
			}
			logging.Error("watcher error: %v", err)
			w.report(&WatchError{Op: "watch", Err: err})
		}
	}
}

// closed handles the end of the fsnotify streams, which is only expected
// after Stop.
func (w *Watcher) closed() {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if !stopped {
		w.report(&WatchError{Op: "watch", Err: ErrEventsClosed})
	}
}

func (w *Watcher) report(err error) {
	select {
	case w.errs <- err:
	default:
		logging.Debug("dropping watcher error, one is already pending: %v", err)
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	relevant := w.relevant(event)
	metrics.WatcherEventsTotal.WithLabelValues(eventType(event.Op), strconv.FormatBool(relevant)).Inc()
	if !relevant {
		return
	}
	logging.Debug("crate change: %s", event)
	w.schedule()
}

// relevant reports whether event can change the conversion output. It also
// keeps the watch set in sync with the directory tree.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if event.Op == fsnotify.Chmod {
		return false
	}

	changed := event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
	if IsCrateFile(name) {
		return changed
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return false
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if w.watched[event.Name] {
			w.forget(event.Name)
			return true
		}
		return false
	}

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		if err != nil || !info.IsDir() {
			return false
		}
		if err := w.addTree(event.Name); err != nil {
			logging.Warn("failed to watch new directory %s: %v", event.Name, err)
			metrics.WatcherErrors.Inc()
		}
		return true
	}
	return false
}

// forget drops a removed directory and everything below it. Callers hold mu.
func (w *Watcher) forget(dir string) {
	prefix := dir + string(filepath.Separator)
	for path := range w.watched {
		if path == dir || strings.HasPrefix(path, prefix) {
			delete(w.watched, path)
			// inotify drops watches of deleted directories itself; renamed
			// ones must be removed explicitly.
			_ = w.fsw.Remove(path)
		}
	}
	metrics.WatcherWatchedDirectories.Set(float64(len(w.watched)))
}

// schedule arms the quiet-period timer, restarting it if already armed.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.gen++
	gen := w.gen
	w.timer = time.AfterFunc(w.quiet, func() { w.fire(gen) })
}

// fire delivers a trigger unless a later schedule superseded this timer.
func (w *Watcher) fire(gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || gen != w.gen {
		return
	}
	w.timer = nil

	select {
	case w.triggers <- struct{}{}:
		metrics.WatcherTriggersTotal.Inc()
	default:
		metrics.WatcherCoalescedTotal.Inc()
		logging.Debug("conversion already pending, coalescing trigger")
	}
}

// IsCrateFile reports whether name is a visible crate file.
func IsCrateFile(name string) bool {
	base := filepath.Base(name)
	return !strings.HasPrefix(base, ".") && strings.EqualFold(filepath.Ext(base), CrateExt)
}

func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Chmod != 0:
		return "chmod"
	default:
		return "unknown"
	}
}
