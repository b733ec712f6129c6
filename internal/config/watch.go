package config

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the config directory for edited relay/key files,
// debouncing bursts of writes (an editor's temp-file-then-rename
// sequence fires several fsnotify events per save) into a single
// callback - the same debounce-around-fsnotify shape the teacher's
// JSONL file watcher uses for its own directory.
type Watcher struct {
	fsw    *fsnotify.Watcher
	cancel chan struct{}
}

// Watch starts monitoring f.Dir for changes and calls onChange,
// debounced by debounce, whenever the relay or key file is created,
// written, or renamed into place. It does not reload the files itself;
// what happens on a change is up to onChange.
func Watch(f *Files, debounce time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting config watcher: %w", err)
	}
	if err := fsw.Add(f.Dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching config directory: %w", err)
	}

	w := &Watcher{fsw: fsw, cancel: make(chan struct{})}
	go w.loop(f, debounce, onChange)
	return w, nil
}

func (w *Watcher) loop(f *Files, debounce time.Duration, onChange func()) {
	var timer *time.Timer
	fire := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, onChange)
	}
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Name == f.RelayPath || ev.Name == f.KeyPath {
				fire()
			}
		case <-w.fsw.Errors:
			// best effort; relay/key reload simply waits for the next event
		case <-w.cancel:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.cancel)
	return w.fsw.Close()
}
