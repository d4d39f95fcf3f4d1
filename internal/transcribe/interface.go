package transcribe

import (
	"context"

	"github.com/nguyentantai21042004/minutes-flow/internal/source"
)

// Segment is one recognized utterance within a speaker's track.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// SpeakerTranscript is the ordered segment list for one speaker.
type SpeakerTranscript struct {
	Speaker  source.SpeakerInfo
	Segments []Segment
}

// Engine is the speech-recognition backend: one audio file in, segments
// out. Implementations are heavy compute units and are never called
// concurrently by the Transcriber.
type Engine interface {
	// Load prepares the engine (model files, binary). Called once at
	// process startup; subsequent calls are no-ops.
	Load(ctx context.Context) error
	// Recognize transcribes a single audio file into ordered segments.
	Recognize(ctx context.Context, audioPath string) ([]Segment, error)
}

// ProgressFunc reports per-speaker transcription progress: current index
// (1-based), total track count and the speaker's display name.
type ProgressFunc func(current, total int, name string)

// Transcriber serializes all recognition work on the process-wide
// accelerator mutex.
type Transcriber interface {
	Load(ctx context.Context) error
	// Transcribe recognizes one track under the accelerator mutex.
	Transcribe(ctx context.Context, track source.AudioTrack) (SpeakerTranscript, error)
	// TranscribeAll walks tracks strictly sequentially in ascending track
	// order, invoking progress before each speaker.
	TranscribeAll(ctx context.Context, tracks []source.AudioTrack, progress ProgressFunc) ([]SpeakerTranscript, error)
}
