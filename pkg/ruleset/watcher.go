package ruleset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches declaration directories and individual files (such as
// the map under check) and calls back after changes settle.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *FileWatcherConfig
	debounce *Debouncer

	// files holds the cleaned paths watched individually
	files map[string]struct{}

	mu       sync.RWMutex
	running  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// FileWatcherConfig contains configuration for the file watcher.
type FileWatcherConfig struct {
	// Paths are the files or directories to watch
	Paths []string

	// DebounceInterval is the quiet period after the last change before the
	// callback runs (default: 100ms)
	DebounceInterval time.Duration

	// Extensions filters events inside watched directories. Individually
	// watched files are not filtered.
	Extensions []string

	// SkipHidden ignores dot files and dot directories
	SkipHidden bool
}

// DefaultFileWatcherConfig returns the default watcher configuration.
func DefaultFileWatcherConfig() *FileWatcherConfig {
	return &FileWatcherConfig{
		DebounceInterval: 100 * time.Millisecond,
		Extensions:       []string{".yaml"},
		SkipHidden:       true,
	}
}

// NewFileWatcher creates a new file watcher.
func NewFileWatcher(config *FileWatcherConfig, logger *slog.Logger) (*FileWatcher, error) {
	if config == nil {
		config = DefaultFileWatcherConfig()
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 100 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  watcher,
		logger:   logger.With("component", "watcher"),
		config:   config,
		debounce: NewDebouncer(config.DebounceInterval),
		files:    make(map[string]struct{}),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called, calling onChange
// once per burst of relevant events.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func(path string) error) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	fw.running = true
	fw.mu.Unlock()

	defer func() {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		close(fw.doneCh)
	}()

	for _, path := range fw.config.Paths {
		if err := fw.addPath(path); err != nil {
			return fmt.Errorf("failed to watch path: %w", err)
		}
	}

	fw.logger.Info("File watcher started",
		"paths", fw.config.Paths,
		"debounce_ms", fw.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("File watcher stopped (context cancelled)")
			return nil

		case <-fw.stopCh:
			fw.logger.Info("File watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.logger.Debug("File event detected",
				"path", event.Name,
				"op", event.Op.String(),
			)

			// New subdirectories of a watched tree are watched too.
			if event.Op&fsnotify.Create == fsnotify.Create {
				if isDir, err := isDirectory(event.Name); err == nil && isDir {
					_ = fw.addDirectory(event.Name)
				}
			}

			name := event.Name
			fw.debounce.Trigger(func() {
				fw.logger.Info("Change detected, re-running", "path", name)
				if err := onChange(name); err != nil {
					fw.logger.Error("Re-run after change failed", "error", err)
				}
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			fw.logger.Error("File watcher error", "error", err)
		}
	}
}

// Stop stops the file watcher and waits for Watch to return. It is safe
// to call more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		fw.mu.RLock()
		running := fw.running
		fw.mu.RUnlock()

		close(fw.stopCh)
		if running {
			<-fw.doneCh
		}

		fw.debounce.Stop()

		if cerr := fw.watcher.Close(); cerr != nil {
			err = fmt.Errorf("failed to close watcher: %w", cerr)
		}
	})
	return err
}

// addPath watches a directory tree, or a single file through its parent
// directory so editors that replace the file are still observed.
func (fw *FileWatcher) addPath(path string) error {
	isDir, err := isDirectory(path)
	if err != nil {
		return err
	}
	if isDir {
		return fw.addDirectory(path)
	}

	clean := filepath.Clean(path)
	fw.mu.Lock()
	fw.files[clean] = struct{}{}
	fw.mu.Unlock()
	return fw.watcher.Add(filepath.Dir(clean))
}

// addDirectory adds a directory and all subdirectories to the watcher.
func (fw *FileWatcher) addDirectory(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if fw.config.SkipHidden && strings.HasPrefix(filepath.Base(path), ".") && path != dir {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if err := fw.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", path, err)
			}
			fw.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

// shouldProcessEvent determines if an event should trigger the callback.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	fw.mu.RLock()
	_, watchedFile := fw.files[filepath.Clean(event.Name)]
	fw.mu.RUnlock()
	if watchedFile {
		return true
	}

	if fw.config.SkipHidden && strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}

	// Directory creation matters even without an extension.
	if event.Op&fsnotify.Create == fsnotify.Create {
		if isDir, err := isDirectory(event.Name); err == nil && isDir {
			return true
		}
	}

	return fw.hasValidExtension(strings.ToLower(filepath.Ext(event.Name))) && fw.insideWatchedDir(event.Name)
}

// insideWatchedDir reports whether path belongs to a watched directory tree
// rather than merely sharing a parent with an individually watched file.
func (fw *FileWatcher) insideWatchedDir(path string) bool {
	for _, p := range fw.config.Paths {
		isDir, err := isDirectory(p)
		if err != nil || !isDir {
			continue
		}
		rel, err := filepath.Rel(filepath.Clean(p), filepath.Clean(path))
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// hasValidExtension checks if a file extension should be watched.
func (fw *FileWatcher) hasValidExtension(ext string) bool {
	for _, validExt := range fw.config.Extensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// Debouncer collects rapid events and runs the latest callback only after a
// quiet period.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules callback to run after the interval, replacing any
// callback still waiting.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		d.callback = nil
		stopped := d.stopped
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}

func isDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
