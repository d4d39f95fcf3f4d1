package inbox

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/minutes-flow/internal/source"
)

// settleDelay gives the writer time to finish the file after the create
// event fires.
const settleDelay = 500 * time.Millisecond

// Start consumes filesystem events until ctx is cancelled.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Inbox watcher started. Monitoring: %s (pattern=%s)", w.dir, w.pattern)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Inbox watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("inbox events channel closed")
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			name := filepath.Base(event.Name)
			if match, err := filepath.Match(w.pattern, name); err != nil || !match {
				w.logger.Debug(ctx, "Ignoring inbox file: %s", name)
				continue
			}

			w.logger.Info(ctx, "New inbox archive: %s", event.Name)
			time.Sleep(settleDelay)

			rec := source.Recording{
				ID:           pseudoRecordingID(name),
				Trigger:      source.TriggerInboxFile,
				LocalArchive: event.Name,
			}
			w.handler(ctx, rec, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("inbox errors channel closed")
			}
			w.logger.Error(ctx, "Inbox watcher error: %v", err)
		}
	}
}

// Stop closes the underlying filesystem watcher.
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func pseudoRecordingID(name string) string {
	base := name
	for {
		ext := filepath.Ext(base)
		if ext == "" {
			break
		}
		base = strings.TrimSuffix(base, ext)
	}
	return "inbox-" + base
}
