package drive

import (
	"sync/atomic"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

type implWatcher struct {
	folder    Folder
	cfg       config.DriveConfig
	processed *ProcessedSet
	handler   Handler
	logger    logger.Logger

	interval time.Duration
	ticking  atomic.Bool
}

// New creates a drive watcher. The pipeline-start callback is injected
// here so the watcher never imports the pipeline.
func New(folder Folder, cfg config.DriveConfig, processed *ProcessedSet, handler Handler, log logger.Logger) Watcher {
	return &implWatcher{
		folder:    folder,
		cfg:       cfg,
		processed: processed,
		handler:   handler,
		logger:    log,
		interval:  time.Duration(cfg.PollIntervalSec) * time.Second,
	}
}
