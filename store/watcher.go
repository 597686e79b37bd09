package store

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/mentorhub/datastore/internal/logger"
)

// invalidationWatcher monitors the data directory and drops the cache entry
// of any collection whose backing file changes on disk. It automates the
// manual ClearCache escape hatch for deployments where another process
// shares the backing files.
type invalidationWatcher struct {
	fs      *FileStore
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts the invalidation watcher. Idempotent: a second call while a
// watcher is running is a no-op. The watcher also fires on this process's
// own saves; that only costs an extra disk read on the next access, since
// the file then holds exactly what the cache held.
func (s *Store) Watch() error {
	if s.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(s.fs.Dir()); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch data directory %s: %w", s.fs.Dir(), err)
	}

	iw := &invalidationWatcher{fs: s.fs, watcher: w, done: make(chan struct{})}
	s.watcher = iw
	go iw.run()
	return nil
}

func (w *invalidationWatcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if strings.HasSuffix(ev.Name, ".tmp") {
				continue
			}
			if col, ok := w.fs.collectionForPath(ev.Name); ok {
				w.fs.cache.invalidate(col)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Log().Warn("invalidation watcher error", "error", err)
		}
	}
}

// stop closes the underlying watcher and waits for the event loop to drain.
func (w *invalidationWatcher) stop() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
