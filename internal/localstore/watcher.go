package localstore

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports keys rewritten by another bmxshop process, so a
// long-running UI can pick up a cart or session changed from a second
// terminal. Events carries the store key (e.g. KeyCart).
type Watcher struct {
	fw     *fsnotify.Watcher
	Events chan string
	done   chan struct{}
}

// Watch starts watching the store directory. Callers must Close the
// watcher when done.
func (s *Store) Watch() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(s.dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		fw:     fw,
		Events: make(chan string, 8),
		done:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.Events)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) {
				continue
			}
			key := filepath.Base(ev.Name)
			// Atomic writes land via rename; skip the temp names.
			if strings.Contains(key, ".tmp-") {
				continue
			}
			select {
			case w.Events <- key:
			case <-w.done:
				return
			}
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher and closes the Events channel.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
