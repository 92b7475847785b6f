package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"piggy-viewer/internal/logger"
	"piggy-viewer/internal/params"
)

// Watcher re-reads the [params] table of a config file whenever it is written.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching the directory holding path. Editors often
// replace files instead of writing them in place, so the file itself is not
// watched.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("new watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %q: %w", filepath.Dir(abs), err)
	}
	return &Watcher{path: abs, watcher: w}, nil
}

// Run forwards every parameter in the file to out after each write, until
// ctx is cancelled. The store drops values that did not change.
func (w *Watcher) Run(ctx context.Context, out chan<- params.Change) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			values, err := ReadParams(w.path)
			if err != nil {
				logger.Log.Warn("config reload failed", zap.String("path", w.path), zap.Error(err))
				continue
			}
			logger.Log.Debug("config reloaded", zap.String("path", w.path), zap.Int("params", len(values)))
			if !send(ctx, out, values) {
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("config watcher", zap.Error(err))
		}
	}
}

func send(ctx context.Context, out chan<- params.Change, values map[string]any) bool {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		select {
		case out <- params.Change{Name: name, Value: values[name]}:
		case <-ctx.Done():
			return false
		}
	}
	return true
}
