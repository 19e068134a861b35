package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"textora/internal/logging"
)

// debounceWindow coalesces the write bursts editors produce into one reload.
const debounceWindow = 200 * time.Millisecond

// Watcher reloads the config file when it changes on disk, so theme and mute
// edits reach a running session without a restart.
type Watcher struct {
	path     string
	onChange func(*Config)
	fsw      *fsnotify.Watcher
	done     chan struct{}
}

// Watch starts watching path and invokes onChange with each successfully
// reloaded config. The callback runs on the watcher goroutine.
func Watch(path string, onChange func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace files, which drops a watch on the
	// file itself.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{path: path, onChange: onChange, fsw: fsw, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	var (
		pending bool
		timer   = time.NewTimer(debounceWindow)
	)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if pending {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
			}
			pending = true
			timer.Reset(debounceWindow)

		case <-timer.C:
			pending = false
			cfg, err := Load(w.path)
			if err != nil {
				logging.Config("reload failed: %v", err)
				continue
			}
			logging.Config("config reloaded from %s", w.path)
			w.onChange(cfg)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Config("watch error: %v", err)
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
