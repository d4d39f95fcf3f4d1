package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/minutes-flow/internal/errs"
	"github.com/nguyentantai21042004/minutes-flow/internal/merge"
	"github.com/nguyentantai21042004/minutes-flow/internal/publish"
	"github.com/nguyentantai21042004/minutes-flow/internal/source"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcribe"
)

// Stage names as recorded in Result.StageDurations.
const (
	stageAcquire    = "acquire"
	stageTranscribe = "transcribe"
	stageMerge      = "merge"
	stageGenerate   = "generate"
	stagePost       = "post"
)

// noSpeechTranscript stands in for an empty merge result so the generator
// still produces a minutes file instead of the run erroring out.
const noSpeechTranscript = "(no speech detected)"

func (o *implOrchestrator) Run(ctx context.Context, rec source.Recording) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error(ctx, "Pipeline panic for recording %s: %v", rec.ID, r)
			result = nil
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	if !o.claim(rec.ID) {
		return nil, nil
	}
	o.wg.Add(1)
	defer func() {
		o.release(rec.ID)
		o.wg.Done()
	}()

	runID := uuid.NewString()[:8]
	o.logger.Info(ctx, "Pipeline starting for recording %s (trigger=%s, run=%s)", rec.ID, rec.Trigger, runID)
	start := time.Now()

	tmpDir, err := os.MkdirTemp("", "minutes-"+sanitize(rec.ID)+"-")
	if err != nil {
		e := errs.Acquisition("create temp root", err)
		o.fail(ctx, nil, rec, e)
		return nil, e
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			o.logger.Warn(ctx, "Temp root cleanup failed for %s: %v", tmpDir, rmErr)
		}
	}()

	durations := make(map[string]time.Duration)
	status := o.publisher.NewStatus()
	status.Update(ctx, publish.StatusDownloading)

	// Acquire.
	t0 := time.Now()
	src, err := o.sources(rec)
	if err != nil {
		e := errs.Acquisition("no audio source for recording "+rec.ID, err)
		o.fail(ctx, status, rec, e)
		return nil, e
	}
	tracks, err := src.Fetch(ctx, tmpDir)
	if err != nil {
		o.fail(ctx, status, rec, err)
		return nil, err
	}
	durations[stageAcquire] = time.Since(t0)
	o.logger.Info(ctx, "[acquire] %d tracks in %.1fs (run=%s)", len(tracks), durations[stageAcquire].Seconds(), runID)

	// Transcribe, sequentially per speaker, serialized on the accelerator.
	t0 = time.Now()
	transcripts, err := o.transcriber.TranscribeAll(ctx, tracks, func(current, total int, name string) {
		status.Update(ctx, publish.StatusTranscribing(current, total, name))
	})
	if err != nil {
		o.fail(ctx, status, rec, err)
		return nil, err
	}
	durations[stageTranscribe] = time.Since(t0)

	// Merge.
	t0 = time.Now()
	transcript, err := merge.Merge(transcripts, o.mergerCfg)
	if err != nil {
		o.fail(ctx, status, rec, err)
		return nil, err
	}
	if transcript == "" {
		o.logger.Info(ctx, "No speech detected for recording %s", rec.ID)
		transcript = noSpeechTranscript
	}
	durations[stageMerge] = time.Since(t0)

	// Generate.
	status.Update(ctx, publish.StatusGenerating)
	t0 = time.Now()
	speakers := merge.Speakers(transcripts)
	date := time.Now().Format("2006-01-02 15:04")
	minutesMD, err := o.generator.Generate(ctx, transcript, date, strings.Join(speakers, ", "))
	if err != nil {
		o.fail(ctx, status, rec, err)
		return nil, err
	}
	durations[stageGenerate] = time.Since(t0)

	// Post.
	status.Update(ctx, publish.StatusPosting)
	t0 = time.Now()
	messageIDs, err := o.publisher.PostMinutes(ctx, publish.Post{
		RecordingID: rec.ID,
		Date:        date,
		Speakers:    speakers,
		DurationSec: totalAudioSeconds(transcripts),
		Minutes:     minutesMD,
		Transcript:  transcript,
		WorkDir:     tmpDir,
	})
	if err != nil {
		o.fail(ctx, status, rec, err)
		return nil, err
	}
	durations[stagePost] = time.Since(t0)

	elapsed := time.Since(start)
	status.Update(ctx, publish.StatusComplete(elapsed.Milliseconds()))
	o.logger.Info(ctx, "Pipeline complete for recording %s in %.1fs (run=%s)", rec.ID, elapsed.Seconds(), runID)

	return &Result{
		RecordingID:      rec.ID,
		SpeakerCount:     len(transcripts),
		TotalAudioSec:    totalAudioSeconds(transcripts),
		StageDurations:   durations,
		PostedMessageIDs: messageIDs,
	}, nil
}

// claim reserves the recording id, refusing duplicates and post-shutdown
// starts.
func (o *implOrchestrator) claim(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		o.logger.Info(context.Background(), "Shutdown in progress; refusing pipeline for recording %s", id)
		return false
	}
	if _, busy := o.active[id]; busy {
		o.logger.Info(context.Background(), "Duplicate trigger for recording %s; ignored", id)
		return false
	}
	o.active[id] = struct{}{}
	return true
}

func (o *implOrchestrator) release(id string) {
	o.mu.Lock()
	delete(o.active, id)
	o.mu.Unlock()
}

// fail is the single error boundary: log, publish the error embed
// best-effort, and flip the status line to Failed. Detection failures
// stay silent in the channel.
func (o *implOrchestrator) fail(ctx context.Context, status *publish.Status, rec source.Recording, err error) {
	stage := errs.StageOf(err)
	o.logger.Error(ctx, "Pipeline failed for recording %s at stage %s: %v", rec.ID, stage, err)

	if status != nil {
		status.Update(ctx, publish.StatusFailed(stage))
	}
	if errs.KindOf(err) != errs.KindDetection {
		o.publisher.PostError(ctx, stage, err.Error(), rec.ID)
	}
}

// Shutdown refuses new runs and waits up to grace for in-flight pipelines.
func (o *implOrchestrator) Shutdown(grace time.Duration) {
	o.mu.Lock()
	o.stopped = true
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
		o.logger.Warn(context.Background(), "Shutdown grace period expired with pipelines still running")
	}
}

func totalAudioSeconds(transcripts []transcribe.SpeakerTranscript) float64 {
	var max float64
	for _, st := range transcripts {
		for _, seg := range st.Segments {
			if seg.End > max {
				max = seg.End
			}
		}
	}
	return max
}

// sanitize keeps the recording id safe for use in a directory name.
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
