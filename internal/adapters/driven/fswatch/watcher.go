// Package fswatch provides a recursive filesystem watcher that nudges
// the sync engine when tracked files change. It supplements the polling
// schedule; a missed event is picked up by the next scheduled scan.
package fswatch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// Watcher watches a directory tree for markdown changes and emits
// debounced trigger signals. It does not report which file changed;
// the sync engine's scan reclassifies the whole tree.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	limiter *rate.Limiter
	trigger chan struct{}
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewWatcher creates a watcher for the given root directory. Trigger
// signals are spaced at least minInterval apart.
func NewWatcher(root string, minInterval time.Duration) (*Watcher, error) {
	if minInterval <= 0 {
		minInterval = time.Second
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		root:    root,
		watcher: fsw,
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		trigger: make(chan struct{}, 1),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching the root tree. Every existing directory is
// registered; directories created later are added as they appear.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("registering watch tree: %w", err)
	}

	w.running = true
	w.wg.Add(1)
	go w.processEvents()

	return nil
}

// Stop stops watching and blocks until the event loop has exited.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("closing watcher: %w", err)
	}

	w.wg.Wait()

	close(w.trigger)
	close(w.errors)

	return nil
}

// Trigger returns the channel that signals a pending change. The
// channel is closed when the watcher is stopped.
func (w *Watcher) Trigger() <-chan struct{} {
	return w.trigger
}

// Errors returns the channel that emits watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// IsRunning reports whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// A created directory must be registered before anything inside
	// it can be observed.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				select {
				case w.errors <- fmt.Errorf("watching %s: %w", event.Name, err):
				default:
				}
			}
			return
		}
	}

	if !relevant(event) {
		return
	}

	// Event bursts collapse into one pending trigger.
	if !w.limiter.Allow() {
		return
	}

	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// relevant reports whether the event concerns a tracked markdown file
// in a way the sync engine cares about.
func relevant(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".md") {
		return false
	}
	// Rename is the delete half of a move; the new name arrives as a
	// separate create. Chmod is ignored.
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
