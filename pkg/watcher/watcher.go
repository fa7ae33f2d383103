// Package watcher reports changes of individual files, debounced.
package watcher

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches files for changes and calls back once a file has been
// quiet for the debounce interval.
//
// Image editors often save by writing a temporary file and renaming it over
// the original, which drops a watch on the file itself. FileWatcher therefore
// watches the parent directories and filters events by file name.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	logger    *slog.Logger
	debounce  time.Duration
	mu        sync.Mutex
	callbacks map[string]func(string)
	dirs      map[string]int // watched directory -> number of watched files in it
	timers    map[string]*time.Timer
	closed    bool
}

// NewFileWatcher creates a file watcher. A nil logger discards watcher
// errors.
func NewFileWatcher(debounce time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &FileWatcher{
		watcher:   watcher,
		logger:    logger,
		debounce:  debounce,
		callbacks: make(map[string]func(string)),
		dirs:      make(map[string]int),
		timers:    make(map[string]*time.Timer),
	}, nil
}

// Watch calls callback with the absolute path whenever one of files changes
func (fw *FileWatcher) Watch(files []string, callback func(string)) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}
		if _, exists := fw.callbacks[absPath]; exists {
			fw.callbacks[absPath] = callback
			continue
		}

		dir := filepath.Dir(absPath)
		if fw.dirs[dir] == 0 {
			if err := fw.watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
		}
		fw.dirs[dir]++
		fw.callbacks[absPath] = callback
	}

	return nil
}

// Unwatch stops watching file
func (fw *FileWatcher) Unwatch(file string) error {
	absPath, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", file, err)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.unwatch(absPath)
}

func (fw *FileWatcher) unwatch(absPath string) error {
	if _, exists := fw.callbacks[absPath]; !exists {
		return nil
	}
	delete(fw.callbacks, absPath)
	if timer, exists := fw.timers[absPath]; exists {
		timer.Stop()
		delete(fw.timers, absPath)
	}

	dir := filepath.Dir(absPath)
	fw.dirs[dir]--
	if fw.dirs[dir] > 0 {
		return nil
	}
	delete(fw.dirs, dir)
	if err := fw.watcher.Remove(dir); err != nil {
		return fmt.Errorf("failed to unwatch %s: %w", dir, err)
	}
	return nil
}

// Watched returns the watched files
func (fw *FileWatcher) Watched() []string {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	files := make([]string, 0, len(fw.callbacks))
	for file := range fw.callbacks {
		files = append(files, file)
	}
	return files
}

// Start begins watching for file changes
func (fw *FileWatcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}
				// A rename or removal is followed by a create when saving
				// atomically; the create is what counts
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					fw.handleFileChange(event.Name)
				}

			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				fw.logger.Warn("file watcher error", "error", err)
			}
		}
	}()
}

// handleFileChange restarts the debounce timer of a watched file
func (fw *FileWatcher) handleFileChange(filePath string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.closed {
		return
	}
	callback, exists := fw.callbacks[filePath]
	if !exists {
		return
	}

	if timer, exists := fw.timers[filePath]; exists {
		timer.Stop()
	}
	fw.timers[filePath] = time.AfterFunc(fw.debounce, func() {
		fw.mu.Lock()
		delete(fw.timers, filePath)
		closed := fw.closed
		fw.mu.Unlock()

		if !closed {
			callback(filePath)
		}
	})
}

// Close stops the watcher and pending callbacks
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	fw.closed = true
	for _, timer := range fw.timers {
		timer.Stop()
	}
	fw.timers = make(map[string]*time.Timer)
	fw.mu.Unlock()

	return fw.watcher.Close()
}

// RemoveAll stops watching every file
func (fw *FileWatcher) RemoveAll() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for file := range fw.callbacks {
		if err := fw.unwatch(file); err != nil {
			return err
		}
	}
	return nil
}
