package pipeline

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/source"
)

// Result summarizes one completed pipeline invocation.
type Result struct {
	RecordingID      string
	SpeakerCount     int
	TotalAudioSec    float64
	StageDurations   map[string]time.Duration
	PostedMessageIDs []uint64
}

// SourceFactory builds the audio source for a recording based on how it
// was triggered (cook API, drive file, inbox archive).
type SourceFactory func(rec source.Recording) (source.Source, error)

// Orchestrator runs the minutes pipeline end to end for one recording.
type Orchestrator interface {
	// Run executes acquire -> transcribe -> merge -> generate -> post.
	// It never panics outward; the returned error reports the terminal
	// outcome for bookkeeping (drive processed set, logs) after the
	// failure has already been published best-effort.
	Run(ctx context.Context, rec source.Recording) (*Result, error)
	// Shutdown refuses new runs and waits up to grace for in-flight
	// pipelines to finish.
	Shutdown(grace time.Duration)
}
