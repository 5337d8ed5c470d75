package internal

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchKnowledgeFile re-applies the knowledge file to store whenever it changes,
// batching bursts of events within debounce. It returns when ctx is done.
func WatchKnowledgeFile(ctx context.Context, path string, store *KnowledgeStore, debounce time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve knowledge file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files by rename.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isKnowledgeEvent(event, target) {
				continue
			}
			if !pending {
				timer.Reset(debounce)
				pending = true
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("knowledge watch error", zap.Error(err))
		case <-timer.C:
			pending = false
			kf, err := LoadKnowledgeFile(target)
			if err != nil {
				logger.Warn("knowledge reload failed", zap.String("file", target), zap.Error(err))
				continue
			}
			applied, err := kf.Apply(store)
			if err != nil {
				logger.Warn("knowledge reload incomplete", zap.Int("applied", applied), zap.Error(err))
				continue
			}
			logger.Info("knowledge reloaded", zap.String("file", target), zap.Int("applied", applied), zap.Int("total", store.Len()))
		}
	}
}

func isKnowledgeEvent(event fsnotify.Event, target string) bool {
	if filepath.Clean(event.Name) != target {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}
