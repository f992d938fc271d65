package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	watchDebounce = 500 * time.Millisecond

	// Writes from this process land inside this window; the watcher
	// skips them because notify already ran.
	localEchoWindow = 750 * time.Millisecond
)

var watchFiles = map[string]bool{
	"skein.db":     true,
	"skein.db-wal": true,
	"skein.db-shm": true,
}

type watcher struct {
	store  *Store
	fsw    *fsnotify.Watcher
	stopCh chan struct{}

	mu       sync.Mutex
	debounce *time.Timer
}

// Watch starts watching the project directory so writes from other
// processes reach this store's subscribers. Safe to call once per store.
func (s *Store) Watch() error {
	if s.watcher != nil {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(s.dbPath)); err != nil {
		_ = fsw.Close()
		return err
	}

	w := &watcher{
		store:  s,
		fsw:    fsw,
		stopCh: make(chan struct{}),
	}
	s.watcher = w
	go w.loop()
	return nil
}

func (w *watcher) loop() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.debugf("watcher error: %v", err)
		}
	}
}

func (w *watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if !watchFiles[filepath.Base(event.Name)] {
		return
	}
	w.scheduleNotify()
}

func (w *watcher) scheduleNotify() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(watchDebounce, func() {
		select {
		case <-w.stopCh:
			return
		default:
		}

		last := w.store.lastLocalWrite.Load()
		if last > 0 && time.Now().UnixMilli()-last < localEchoWindow.Milliseconds() {
			return
		}
		w.store.notify(Event{Kind: EventExternal})
	})
}

func (w *watcher) stop() {
	close(w.stopCh)
	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
		w.debounce = nil
	}
	w.mu.Unlock()
	_ = w.fsw.Close()
}

func (w *watcher) debugf(format string, args ...any) {
	if os.Getenv("SKEIN_DEBUG") == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "[skein] "+format+"\n", args...)
}
