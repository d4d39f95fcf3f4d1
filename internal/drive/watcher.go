package drive

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/source"
)

// Start polls the folder until ctx is cancelled. One tick at a time; the
// stop signal is honored between ticks and between per-file callbacks.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Drive watcher started (interval=%s, pattern=%s)", w.interval, w.cfg.FilePattern)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// First snapshot immediately rather than one interval in.
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Drive watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *implWatcher) tick(ctx context.Context) {
	if !w.ticking.CompareAndSwap(false, true) {
		w.logger.Debug(ctx, "Drive tick still in progress, skipping")
		return
	}
	defer w.ticking.Store(false)

	files, err := w.folder.List(ctx)
	if err != nil {
		w.logger.Error(ctx, "Drive listing failed: %v", err)
		return
	}

	for _, f := range files {
		if ctx.Err() != nil {
			return
		}
		match, err := filepath.Match(w.cfg.FilePattern, f.Name)
		if err != nil || !match {
			continue
		}
		if w.processed.Contains(f.ID) {
			continue
		}
		w.handleFile(ctx, f)
	}
}

// handleFile runs the pipeline callback for one new archive and records
// the terminal outcome before the next tick can see the file again.
func (w *implWatcher) handleFile(ctx context.Context, f FileInfo) {
	w.logger.Info(ctx, "New drive file: %s (%s)", f.Name, f.ID)

	rec := source.Recording{
		ID:          pseudoRecordingID(f.Name),
		Trigger:     source.TriggerDriveFile,
		DriveFileID: f.ID,
	}

	err := w.handler(ctx, rec)
	if err != nil {
		w.logger.Error(ctx, "Drive file %s failed: %v", f.Name, err)
		if markErr := w.processed.MarkFailed(f.ID, f.Name, err.Error()); markErr != nil {
			w.logger.Error(ctx, "Processed-set write failed for %s: %v", f.ID, markErr)
		}
		return
	}

	if markErr := w.processed.MarkSuccess(f.ID, f.Name); markErr != nil {
		w.logger.Error(ctx, "Processed-set write failed for %s: %v", f.ID, markErr)
	}
	w.logger.Info(ctx, "Drive file processed: %s", f.Name)
}

// pseudoRecordingID derives a stable recording id from the archive name.
func pseudoRecordingID(name string) string {
	base := name
	for {
		ext := filepath.Ext(base)
		if ext == "" {
			break
		}
		base = strings.TrimSuffix(base, ext)
	}
	return "drive-" + base
}
