package main

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pipe01/tagcheck/internal/workspace"
)

type Watcher struct {
	mu                          sync.Mutex
	watchingDirs, watchingFiles map[string]struct{}

	ws      *workspace.Workspace
	watcher *fsnotify.Watcher
}

func NewWatcher(ws *workspace.Workspace) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watchingDirs:  make(map[string]struct{}),
		watchingFiles: make(map[string]struct{}),
		ws:            ws,
		watcher:       watcher,
	}
	go w.eventLoop()

	return w, nil
}

func (w *Watcher) WatchFile(path string) error {
	fullPath, _ := filepath.Abs(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.watchingFiles[fullPath] = struct{}{}

	dir := filepath.Dir(fullPath)
	if _, ok := w.watchingDirs[dir]; ok {
		return nil
	}

	err := w.watcher.Add(dir)
	if err != nil {
		return err
	}

	w.watchingDirs[dir] = struct{}{}

	return nil
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			fname, _ := filepath.Abs(event.Name)

			if !w.isWatching(fname) {
				continue
			}

			w.fileModified(fname)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("watcher error: %s", err)
		}
	}
}

func (w *Watcher) isWatching(fullPath string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, ok := w.watchingFiles[fullPath]
	return ok
}

func (w *Watcher) fileModified(fullPath string) {
	log.Infof("file %q modified, checking...", filepath.Base(fullPath))

	checkFile(w.ws, fullPath)
}
