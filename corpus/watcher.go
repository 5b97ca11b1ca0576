package corpus

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// eventChannelBuffer is the size of the watch event channel.
const eventChannelBuffer = 64

// Operation is the type of file change a watch event reports.
type Operation string

// The watch operation types.
const (
	OpCreate Operation = "create"
	OpModify Operation = "modify"
	OpDelete Operation = "delete"
)

// WatchEvent is one debounced file change under the watched directory.
type WatchEvent struct {
	Path      string
	Operation Operation
}

// Watcher watches a directory tree for corpus file changes, debouncing
// bursts of filesystem events into single per-file notifications.
type Watcher struct {
	dir        string
	watcher    *fsnotify.Watcher
	logger     *slog.Logger
	extensions map[string]bool
	debounce   time.Duration

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	events  chan WatchEvent
	dropped atomic.Int64
}

// NewWatcher creates a watcher for corpus files under dir with one of
// the given extensions (leading dot optional). A zero debounce means
// 500ms; a nil logger means slog.Default.
func NewWatcher(dir string, extensions []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}

	return &Watcher{
		dir:        dir,
		watcher:    fsw,
		logger:     logger,
		extensions: exts,
		debounce:   debounce,
		pending:    make(map[string]fsnotify.Op),
		events:     make(chan WatchEvent, eventChannelBuffer),
	}, nil
}

// Events returns the channel of watch events. It is closed when the
// watcher stops.
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Start begins watching. The event loop runs until ctx is cancelled or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.dir); err != nil {
		return err
	}
	go w.run(ctx)
	w.logger.Info("corpus watcher started", "dir", w.dir, "debounce", w.debounce)
	return nil
}

// Stop stops the watcher. The events channel is closed by the event
// loop on exit.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Dropped returns the number of events dropped because the event
// channel was full.
func (w *Watcher) Dropped() int64 {
	return w.dropped.Load()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") && base != "." && path != root {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		case <-ticker.C:
			w.flush()
		}
	}
}

// matchesExtension matches by suffix so stacked extensions like
// ".mrs.json" work.
func (w *Watcher) matchesExtension(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	for ext := range w.extensions {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !w.matchesExtension(event.Name) {
		// New subdirectories need their own watch.
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := w.watcher.Add(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
			}
		}
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range toProcess {
		event := WatchEvent{Path: path}
		switch {
		case op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename):
			event.Operation = OpDelete
		case op.Has(fsnotify.Create):
			event.Operation = OpCreate
		default:
			if _, err := os.Stat(path); os.IsNotExist(err) {
				event.Operation = OpDelete
			} else {
				event.Operation = OpModify
			}
		}
		w.send(event)
	}
}

func (w *Watcher) send(event WatchEvent) {
	select {
	case w.events <- event:
	default:
		dropped := w.dropped.Add(1)
		w.logger.Warn("event channel full, dropping event",
			"path", event.Path, "total_dropped", dropped)
	}
}
