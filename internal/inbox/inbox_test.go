package inbox

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/source"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...interface{})  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...interface{}) {}

func TestInboxTriggersOnMatchingArchive(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var got []source.Recording
	w, err := New(dir, "craig_*.zip", func(ctx context.Context, rec source.Recording, archivePath string) {
		mu.Lock()
		got = append(got, rec)
		mu.Unlock()
	}, nopLogger{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Give the watcher a beat to register before creating files.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "craig_standup.aac.zip"), []byte("zip"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("inbox watcher never fired for the archive")
		case <-time.After(20 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("handler ran %d times, want 1", len(got))
	}
	rec := got[0]
	if rec.Trigger != source.TriggerInboxFile {
		t.Errorf("trigger = %q, want inbox-file", rec.Trigger)
	}
	if rec.ID != "inbox-craig_standup" {
		t.Errorf("pseudo id = %q, want inbox-craig_standup", rec.ID)
	}
	if filepath.Base(rec.LocalArchive) != "craig_standup.aac.zip" {
		t.Errorf("LocalArchive = %q", rec.LocalArchive)
	}
}
