package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	domainconfig "brainbrowser/domain/config"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// engineFile is the part of the config file the watcher cares about
type engineFile struct {
	Engine yaml.Node `yaml:"engine"`
}

// LoadEngineFile merges the engine section of path over base. A file with
// no engine section yields base.
func LoadEngineFile(path string, base domainconfig.EngineConfig) (domainconfig.EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read engine config: %w", err)
	}

	var file engineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return base, fmt.Errorf("parse engine config %s: %w", path, err)
	}
	if file.Engine.Kind == 0 {
		return base, nil
	}

	section, err := yaml.Marshal(&file.Engine)
	if err != nil {
		return base, fmt.Errorf("encode engine section: %w", err)
	}
	return base.MergeYAML(section)
}

// EngineWatcher re-reads the engine section of the config file whenever
// the file changes and hands the result to onChange
type EngineWatcher struct {
	path     string
	base     domainconfig.EngineConfig
	watcher  *fsnotify.Watcher
	onChange func(context.Context, domainconfig.EngineConfig) error
	logger   *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	current domainconfig.EngineConfig
	stopCh  chan struct{}
	done    chan struct{}
}

// NewEngineWatcher watches path. base is the preset the file is
// merged over on every reload.
func NewEngineWatcher(
	path string,
	base domainconfig.EngineConfig,
	onChange func(context.Context, domainconfig.EngineConfig) error,
	logger *zap.Logger,
) (*EngineWatcher, error) {
	current, err := LoadEngineFile(path, base)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial engine config: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory too so atomic saves (rename over) are seen
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warn("Failed to watch config directory", zap.Error(err))
	}

	return &EngineWatcher{
		path:     path,
		base:     base,
		watcher:  watcher,
		onChange: onChange,
		logger:   logger,
		debounce: 100 * time.Millisecond,
		current:  current,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Current returns the last successfully loaded configuration
func (w *EngineWatcher) Current() domainconfig.EngineConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Start begins watching for changes
func (w *EngineWatcher) Start(ctx context.Context) {
	go w.watchLoop(ctx)
	w.logger.Info("Engine config watcher started", zap.String("path", w.path))
}

// Stop stops watching and waits for the loop to exit
func (w *EngineWatcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	<-w.done
	w.logger.Info("Engine config watcher stopped")
}

func (w *EngineWatcher) watchLoop(ctx context.Context) {
	defer close(w.done)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() { w.reload(ctx) })

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *EngineWatcher) reload(ctx context.Context) {
	next, err := LoadEngineFile(w.path, w.base)
	if err != nil {
		w.logger.Error("Invalid engine config, keeping current", zap.String("path", w.path), zap.Error(err))
		return
	}

	w.mu.Lock()
	prev := w.current
	w.current = next
	w.mu.Unlock()

	if prev == next {
		return
	}

	effects := prev.Diff(next)
	w.logger.Info("Engine config file changed",
		zap.String("path", w.path),
		zap.Int("effects", len(effects)),
	)
	if err := w.onChange(ctx, next); err != nil {
		w.logger.Error("Failed to apply reloaded engine config", zap.Error(err))
	}
}
