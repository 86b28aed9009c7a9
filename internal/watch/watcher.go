package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"kbmod/internal/config"
	"kbmod/internal/errors"
	"kbmod/internal/log"

	"github.com/fsnotify/fsnotify"
)

// ConfigChange is delivered whenever the watched config file is rewritten.
// Err is set when the new contents could not be loaded.
type ConfigChange struct {
	Path      string
	Config    *config.Config
	Err       error
	Timestamp time.Time
}

// ConfigWatcher reloads a config file when it changes on disk.
type ConfigWatcher struct {
	path string

	// Channel to receive reloaded configs
	changes chan ConfigChange

	// Channel to signal stop
	stopChan chan struct{}
	// Closed when the event loop has exited
	done chan struct{}

	fsWatcher *fsnotify.Watcher

	mutex   sync.Mutex
	running bool
	closed  bool
}

// New creates a watcher for the config file at path. The parent directory is
// watched so editors that replace the file on save are still seen.
func New(path string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve %s", path)
	}

	dir := filepath.Dir(abs)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.NewFileError("error accessing config directory", dir, errors.FileNotFound, err)
	}
	if !info.IsDir() {
		return nil, errors.NewFileError("not a directory", dir, errors.FileOperationFailed, nil)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, errors.NewFileError("failed to watch config directory", dir, errors.FileOperationFailed, err)
	}

	return &ConfigWatcher{
		path:      abs,
		changes:   make(chan ConfigChange, 4),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
		fsWatcher: fsWatcher,
	}, nil
}

// Changes returns the channel that delivers reloaded configs.
func (w *ConfigWatcher) Changes() <-chan ConfigChange {
	return w.changes
}

// Path returns the absolute path of the watched file.
func (w *ConfigWatcher) Path() string {
	return w.path
}

// Start begins processing file events in a goroutine.
func (w *ConfigWatcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.running {
		return errors.New("watcher already running")
	}
	if w.closed {
		return errors.New("watcher is stopped")
	}
	w.running = true

	go w.loop()

	log.LogWithFields(log.F("file", w.path)).Info("Watching config file")
	return nil
}

func (w *ConfigWatcher) loop() {
	defer close(w.done)
	defer close(w.changes)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}

			// An empty file is a writer caught between truncate and write
			if info, err := os.Stat(w.path); err == nil && info.Size() == 0 {
				log.LogWithFields(log.F("file", w.path)).Debug("Skipping reload of empty config file")
				continue
			}

			cfg, err := config.LoadConfigFile(w.path)
			if err != nil {
				log.LogWithError(err).Warn("Reloading config failed")
			}
			change := ConfigChange{Path: w.path, Config: cfg, Err: err, Timestamp: time.Now()}

			// Send non-blockingly so a slow consumer cannot wedge the loop
			select {
			case w.changes <- change:
			default:
				log.LogWithFields(log.F("file", w.path)).Warn("Config change channel is full, dropped event")
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}

// Stop halts the watcher and releases its fsnotify handle, whether or not it
// was started. The changes channel is closed once the event loop has exited.
// A stopped watcher cannot be restarted.
func (w *ConfigWatcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return
	}
	w.closed = true

	if w.running {
		close(w.stopChan)
	}
	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	if w.running {
		<-w.done
		w.running = false
	} else {
		close(w.changes)
	}
}

// IsRunning returns whether the watcher is active.
func (w *ConfigWatcher) IsRunning() bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.running
}
