package options

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a FileStore whenever its file changes on disk. Bursts of
// writes within the debounce interval produce a single reload.
type Watcher struct {
	store    *FileStore
	watcher  *fsnotify.Watcher
	logger   *log.Logger
	debounce time.Duration
	onReload func(error)

	mu       sync.Mutex
	timer    *time.Timer
	running  bool
	closed   bool
	inflight sync.WaitGroup
	done     chan struct{}
}

type WatcherConfig struct {
	Debounce time.Duration
	Logger   *log.Logger
	// OnReload, when set, is called after every reload attempt.
	OnReload func(error)
}

func NewWatcher(store *FileStore, cfg WatcherConfig) (*Watcher, error) {
	if store == nil || store.Path() == "" {
		return nil, errors.New("watcher requires a file-backed store")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := fw.Add(filepath.Dir(store.Path())); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", store.Path(), err)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		store:    store,
		watcher:  fw,
		logger:   logger,
		debounce: debounce,
		onReload: cfg.OnReload,
		done:     make(chan struct{}),
	}, nil
}

// Run processes file events until ctx is cancelled or Close is called.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	closed := w.closed
	w.mu.Unlock()
	defer close(w.done)
	if closed {
		return nil
	}

	target := filepath.Clean(w.store.Path())
	for {
		select {
		case <-ctx.Done():
			return w.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.isClosed() {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				if w.isClosed() {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			w.logger.Printf("option watcher error: %v", err)
		}
	}
}

// Done is closed once Run returns.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Close releases the fsnotify handle, cancels a pending reload and waits for
// one already running. It is safe to call before, during or after Run, more
// than once, but not from OnReload.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	w.inflight.Wait()
	return err
}

func (w *Watcher) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	err := w.store.Reload()
	if err != nil {
		w.logger.Printf("option reload failed: %v", err)
	} else {
		w.logger.Printf("options reloaded from %s", w.store.Path())
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}
