package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher hot-reloads the configuration file and notifies subscribers of
// the new tunable limits. Only the Domain section is runtime-tunable;
// server and logging changes require a restart and are ignored on reload.
type Watcher struct {
	mu        sync.RWMutex
	path      string
	current   Config
	callbacks []func(Config)

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	stopOnce  sync.Once
	logger    *zap.Logger
}

// NewWatcher starts watching the given config file for changes
func NewWatcher(path string, initial Config, logger *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory rather than the file: editors replace files on
	// save, which drops inode-based watches.
	dir := filepath.Dir(path)
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		path:      path,
		current:   initial,
		fsWatcher: fsWatcher,
		stopCh:    make(chan struct{}),
		logger:    logger,
	}
	go w.watchLoop()

	logger.Info("Configuration hot reload enabled", zap.String("file", path))
	return w, nil
}

// Current returns the most recently loaded configuration
func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked after every successful reload
func (w *Watcher) OnChange(callback func(Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Stop shuts the watcher down
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.fsWatcher.Close()
	})
}

func (w *Watcher) watchLoop() {
	var debounce *time.Timer
	const debounceDelay = 500 * time.Millisecond

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, w.reload)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watcher error", zap.Error(err))

		case <-w.stopCh:
			return
		}
	}
}

// reload re-reads the file; an invalid file keeps the previous config
func (w *Watcher) reload() {
	next, err := LoadFile(w.path)
	if err != nil {
		w.logger.Error("Config reload rejected",
			zap.String("file", w.path),
			zap.Error(err),
		)
		return
	}

	w.mu.Lock()
	w.current = next
	callbacks := make([]func(Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logger.Info("Configuration reloaded",
		zap.String("file", w.path),
		zap.Float64("recovery_tolerance", next.Domain.RecoveryTolerance),
		zap.Int("max_history_size", next.Domain.MaxHistorySize),
		zap.Duration("workflow_ttl", next.Domain.WorkflowTTL),
	)

	for _, callback := range callbacks {
		callback(next)
	}
}
