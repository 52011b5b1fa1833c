package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads escalation thresholds when the config file changes.
// Only threshold fields are hot-swapped; structural settings (analyzer
// rosters, budgets, stores) require a restart.
type Watcher struct {
	path     string
	onChange func(EscalationConfig)

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher for the given config file.
func NewWatcher(path string, onChange func(EscalationConfig)) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
	}
}

// Start begins watching. It returns immediately; change notifications
// arrive on a background goroutine until Stop is called.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher != nil {
		return fmt.Errorf("watcher already started")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the directory: editors replace files on save, which drops
	// a direct file watch.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watching %s: %w", w.path, err)
	}

	w.watcher = fw
	w.done = make(chan struct{})
	go w.loop(fw, w.done)
	return nil
}

func (w *Watcher) loop(fw *fsnotify.Watcher, done chan struct{}) {
	target := filepath.Clean(w.path)
	for {
		select {
		case <-done:
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			cfg, err := NewLoader().WithConfigFile(w.path).Load()
			if err != nil {
				continue
			}
			if err := NewValidator().Validate(cfg); err != nil {
				continue
			}
			w.onChange(cfg.Escalation)
		case _, ok := <-fw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Stop stops watching.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	close(w.done)
	err := w.watcher.Close()
	w.watcher = nil
	return err
}
