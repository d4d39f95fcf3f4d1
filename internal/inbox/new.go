package inbox

import (
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

type implWatcher struct {
	dir     string
	pattern string
	handler Handler
	logger  logger.Logger
	watcher *fsnotify.Watcher
}

// New creates an inbox watcher over dir. Files matching pattern trigger
// the handler once they have settled on disk.
func New(dir, pattern string, handler Handler, log logger.Logger) (Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create inbox watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch inbox dir %s: %w", dir, err)
	}

	return &implWatcher{
		dir:     dir,
		pattern: pattern,
		handler: handler,
		logger:  log,
		watcher: fsw,
	}, nil
}
