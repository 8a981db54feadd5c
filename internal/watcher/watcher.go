// Package watcher watches a bundle directory's version marker and
// triggers a reload when a new bundle version is published.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gurukul-labs/gurukul/internal/bundle"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher invokes onReload when the bundle at dir is replaced. Because a
// bundle is published by renaming a staged directory into place, the
// version marker appearing or changing is the publish signal.
type Watcher struct {
	dir      string
	onReload func()
	debounce time.Duration
	logger   *zap.Logger // optional

	mu       sync.Mutex
	timer    *time.Timer
	watcher  *fsnotify.Watcher
	stopOnce sync.Once
	done     chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a watcher for the bundle directory at dir.
func NewWatcher(dir string, onReload func(), opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		onReload: onReload,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching and returns; events are handled on a background
// goroutine until ctx is cancelled or Stop is called. The parent of the
// bundle directory is watched so the atomic publish rename is observed.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fsw
	parent := filepath.Dir(filepath.Clean(w.dir))
	if err := fsw.Add(parent); err != nil {
		_ = fsw.Close()
		return err
	}
	// Watch the bundle directory itself when it already exists, so an
	// in-place rewrite of the version marker is also observed.
	_ = fsw.Add(filepath.Clean(w.dir))
	if w.logger != nil {
		w.logger.Debug("bundle watcher starting", zap.String("dir", w.dir))
	}
	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	bundlePath := filepath.Clean(w.dir)
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Only the bundle directory itself or its version marker matter.
			name := filepath.Clean(event.Name)
			if name != bundlePath && name != filepath.Join(bundlePath, bundle.VersionFile) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if w.logger != nil {
				w.logger.Debug("bundle change observed", zap.String("event", event.String()))
			}
			if name == bundlePath {
				// A publish replaces the directory inode; re-arm the
				// watch so later marker writes are still observed.
				_ = w.watcher.Add(bundlePath)
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("bundle watcher error", zap.Error(err))
			}
		}
	}
}

// scheduleReload debounces bursts of events from a single publish into
// one reload call.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onReload)
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
	})
}
