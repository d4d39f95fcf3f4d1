package transcribe

import (
	"context"
	"sort"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/errs"
	"github.com/nguyentantai21042004/minutes-flow/internal/source"
)

func (t *implTranscriber) Load(ctx context.Context) error {
	t0 := time.Now()
	if err := t.engine.Load(ctx); err != nil {
		return errs.Transcription("recognition engine load failed", err)
	}
	t.logger.Info(ctx, "Recognition engine ready in %.1fs", time.Since(t0).Seconds())
	return nil
}

func (t *implTranscriber) Transcribe(ctx context.Context, track source.AudioTrack) (SpeakerTranscript, error) {
	t.accel.Lock()
	defer t.accel.Unlock()

	t.logger.Info(ctx, "Transcribing %s (track=%d)", track.Speaker.DisplayName, track.Speaker.Track)
	t0 := time.Now()

	segments, err := t.engine.Recognize(ctx, track.FilePath)
	if err != nil {
		return SpeakerTranscript{}, err
	}

	t.logger.Info(ctx, "Transcribed %s: %d segments in %.1fs",
		track.Speaker.DisplayName, len(segments), time.Since(t0).Seconds())

	return SpeakerTranscript{Speaker: track.Speaker, Segments: segments}, nil
}

func (t *implTranscriber) TranscribeAll(ctx context.Context, tracks []source.AudioTrack, progress ProgressFunc) ([]SpeakerTranscript, error) {
	ordered := make([]source.AudioTrack, len(tracks))
	copy(ordered, tracks)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Speaker.Track < ordered[j].Speaker.Track
	})

	out := make([]SpeakerTranscript, 0, len(ordered))
	for i, track := range ordered {
		if progress != nil {
			progress(i+1, len(ordered), track.Speaker.DisplayName)
		}
		st, err := t.Transcribe(ctx, track)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}

	total := 0
	for _, st := range out {
		total += len(st.Segments)
	}
	t.logger.Info(ctx, "Transcription complete: %d segments from %d speakers", total, len(out))
	return out, nil
}
