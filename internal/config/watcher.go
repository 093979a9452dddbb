package config

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Watcher watches a config file for changes and reloads it
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	mu       sync.RWMutex
	config   *Config
	handlers []func(*Config)
	log      zerolog.Logger
}

// NewWatcher loads path and starts tracking it for changes
func NewWatcher(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	cfg, err := Load(path)
	if err != nil {
		w.Close()
		return nil, err
	}

	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	return &Watcher{
		path:    path,
		watcher: w,
		config:  cfg,
		log:     log.With().Str("component", "config").Logger(),
	}, nil
}

// Start watches until ctx is cancelled, then closes the underlying watcher.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		defer w.watcher.Close()
		w.watch(ctx)
	}()
}

// OnReload registers a handler to be called when config is reloaded
func (w *Watcher) OnReload(handler func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Get returns the current config
func (w *Watcher) Get() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

func (w *Watcher) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Reload on write or create (some editors do atomic saves via rename)
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("Config watcher error")
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Error().Err(err).Str("path", w.path).Msg("Failed to reload config")
		return
	}

	w.mu.Lock()
	w.config = cfg
	handlers := make([]func(*Config), len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	w.log.Info().Str("path", w.path).Int("macros", len(cfg.Macros)).Msg("Config reloaded")

	for _, handler := range handlers {
		handler(cfg)
	}
}
