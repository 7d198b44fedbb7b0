package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the burst of events editors produce when saving.
const DefaultDebounce = 2 * time.Second

// Watcher monitors a single file and emits one event per burst of changes.
// The parent directory is watched so that files replaced through a rename
// keep being followed.
type Watcher struct {
	watcher       *fsnotify.Watcher
	watchPath     string
	debounce      time.Duration
	debounceTimer *time.Timer
	debounceMutex sync.Mutex
	lastType      FileEventType
	running       bool
	stopChan      chan struct{}
	eventChan     chan<- FileEvent
}

// NewWatcher creates a new file system watcher. A zero debounce uses DefaultDebounce.
func NewWatcher(eventChan chan<- FileEvent, debounce time.Duration) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		watcher:   watcher,
		debounce:  debounce,
		eventChan: eventChan,
		stopChan:  make(chan struct{}),
	}, nil
}

// Start begins watching the file at watchPath.
func (w *Watcher) Start(ctx context.Context, watchPath string) error {
	abs, err := filepath.Abs(watchPath)
	if err != nil {
		return err
	}
	w.watchPath = abs
	slog.Info("Starting file watcher", "path", abs)

	if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	w.running = true
	go w.watchLoop(ctx)

	slog.Info("File watcher started successfully")
	return nil
}

// Stop stops the file watcher
func (w *Watcher) Stop() {
	if !w.running {
		return
	}

	slog.Info("Stopping file watcher")
	w.running = false
	close(w.stopChan)

	w.debounceMutex.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMutex.Unlock()

	w.watcher.Close()
}

// watchLoop processes file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent processes a single file system event
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.watchPath {
		return
	}
	if event.Op == fsnotify.Chmod {
		return
	}

	slog.Debug("Detected change on watched file", "file", event.Name, "op", event.Op.String())

	// Start or reset the debounce timer
	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	w.lastType = eventType(event.Op)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, w.emitDebounceEvent)
}

func eventType(op fsnotify.Op) FileEventType {
	switch {
	case op.Has(fsnotify.Create):
		return FileCreated
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return FileRemoved
	default:
		return FileModified
	}
}

// emitDebounceEvent emits a file event after debounce period
func (w *Watcher) emitDebounceEvent() {
	w.debounceMutex.Lock()
	kind := w.lastType
	w.debounceMutex.Unlock()

	event := FileEvent{
		Path:      w.watchPath,
		EventType: kind,
		Timestamp: time.Now(),
	}

	select {
	case w.eventChan <- event:
		slog.Info("Emitted file event after debounce", "path", event.Path, "type", event.EventType)
	default:
		slog.Warn("Event channel full, dropping file event", "path", event.Path)
	}
}
