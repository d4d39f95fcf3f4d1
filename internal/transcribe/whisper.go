package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/errs"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/pkg/executor"
)

type whisperEngine struct {
	cfg      config.RecognizerConfig
	executor executor.Executor
	logger   logger.Logger
	loaded   bool
}

// NewWhisperEngine creates an Engine backed by the whisper.cpp CLI.
// Recognition output is requested as JSON and parsed into segments.
func NewWhisperEngine(cfg config.RecognizerConfig, exec executor.Executor, log logger.Logger) Engine {
	return &whisperEngine{
		cfg:      cfg,
		executor: exec,
		logger:   log,
	}
}

func (e *whisperEngine) Load(ctx context.Context) error {
	if e.loaded {
		return nil
	}
	if _, err := os.Stat(e.cfg.BinaryPath); err != nil {
		return fmt.Errorf("recognizer binary not found at %s: %w", e.cfg.BinaryPath, err)
	}
	if _, err := os.Stat(e.cfg.Model); err != nil {
		return fmt.Errorf("recognizer model not found at %s: %w", e.cfg.Model, err)
	}
	e.logger.Info(ctx, "Recognizer configured: model=%s device=%s compute=%s beam=%d",
		e.cfg.Model, e.cfg.Device, e.cfg.ComputeType, e.cfg.BeamSize)
	e.loaded = true
	return nil
}

// whisperOutput is the JSON document whisper.cpp writes with -oj.
type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func (e *whisperEngine) Recognize(ctx context.Context, audioPath string) ([]Segment, error) {
	if !e.loaded {
		return nil, errs.Transcription("engine not loaded", nil)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return nil, errs.Transcription("audio file not found: "+audioPath, err)
	}

	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	args := []string{
		"-m", e.cfg.Model,
		"-f", audioPath,
		"-oj",
		"-l", e.cfg.Language,
		"-t", strconv.Itoa(e.cfg.Threads),
		"-bs", strconv.Itoa(e.cfg.BeamSize),
		"-of", outputPrefix,
	}
	if e.cfg.VADFilter {
		args = append(args, "--vad")
	}
	if e.cfg.Device == "cpu" {
		args = append(args, "-ng")
	}

	// Run inside the audio's directory so whisper's auxiliary files land
	// in the pipeline temp root and are released with it.
	if _, err := e.executor.ExecuteInDir(ctx, filepath.Dir(audioPath), e.cfg.BinaryPath, args...); err != nil {
		return nil, classifyEngineError(audioPath, err)
	}

	jsonPath := outputPrefix + ".json"
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, errs.Transcription("recognition output missing for "+filepath.Base(audioPath), err)
	}

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errs.Transcription("recognition output unreadable for "+filepath.Base(audioPath), err)
	}

	segments := make([]Segment, 0, len(out.Transcription))
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Start: float64(seg.Offsets.From) / 1000.0,
			End:   float64(seg.Offsets.To) / 1000.0,
			Text:  text,
		})
	}
	return segments, nil
}

// classifyEngineError distinguishes accelerator out-of-memory conditions,
// which the pipeline surfaces immediately without retry.
func classifyEngineError(audioPath string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "out of memory") ||
		strings.Contains(msg, "cuda error") ||
		strings.Contains(msg, "oom") {
		return errs.AcceleratorOOM("accelerator out of memory transcribing "+filepath.Base(audioPath), err)
	}
	return errs.Transcription("recognition failed for "+filepath.Base(audioPath), err)
}
