package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher invalidates the parse cache when the producer appends to or rotates
// a log file. Cache keys already embed mtime and size, so the watcher is a
// latency optimization: it evicts stale entries eagerly instead of waiting for
// the key mismatch or TTL.
type Watcher struct {
	folder string
	prefix string
	cache  *ParseCache
	log    *logrus.Logger
}

// NewWatcher creates a watcher for the given log folder and prefix
func NewWatcher(folder, prefix string, cache *ParseCache, log *logrus.Logger) *Watcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Watcher{folder: folder, prefix: prefix, cache: cache, log: log}
}

// Run watches the folder until ctx is done. It blocks; run it in its own
// goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating folder watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.folder); err != nil {
		return fmt.Errorf("watching %s: %w", w.folder, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(event.Name), w.prefix) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.cache.InvalidatePath(event.Name)
				w.log.WithField("file", event.Name).Debug("invalidated parse cache entry")
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("audit log folder watcher error")
		}
	}
}
