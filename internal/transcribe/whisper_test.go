package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/errs"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...interface{})  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...interface{}) {}

// fakeExecutor pretends to be the whisper CLI: it writes the JSON output
// file the engine expects, or fails with scripted stderr.
type fakeExecutor struct {
	output string
	err    error
	args   []string
}

func (e *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return e.ExecuteInDir(ctx, "", name, args...)
}

func (e *fakeExecutor) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error) {
	e.args = args
	if e.err != nil {
		return "", e.err
	}
	var prefix string
	for i, a := range args {
		if a == "-of" && i+1 < len(args) {
			prefix = args[i+1]
		}
	}
	if prefix != "" {
		if err := os.WriteFile(prefix+".json", []byte(e.output), 0644); err != nil {
			return "", err
		}
	}
	return "", nil
}

const whisperJSON = `{
  "transcription": [
    {"offsets": {"from": 1000, "to": 2500}, "text": " hello there"},
    {"offsets": {"from": 3000, "to": 3100}, "text": "   "},
    {"offsets": {"from": 4000, "to": 6000}, "text": "general remark"}
  ]
}`

func recognizerCfg(t *testing.T) config.RecognizerConfig {
	t.Helper()
	dir := t.TempDir()
	binary := filepath.Join(dir, "whisper-cli")
	model := filepath.Join(dir, "model.bin")
	for _, p := range []string{binary, model} {
		if err := os.WriteFile(p, []byte("x"), 0755); err != nil {
			t.Fatal(err)
		}
	}
	return config.RecognizerConfig{
		Model:      model,
		BinaryPath: binary,
		Language:   "en",
		BeamSize:   5,
		Threads:    4,
	}
}

func audioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "1-alice.aac")
	if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWhisperEngineRecognize(t *testing.T) {
	exec := &fakeExecutor{output: whisperJSON}
	engine := NewWhisperEngine(recognizerCfg(t), exec, nopLogger{})
	if err := engine.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	segments, err := engine.Recognize(context.Background(), audioFile(t))
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2 (blank one dropped)", len(segments))
	}
	if segments[0].Start != 1.0 || segments[0].End != 2.5 {
		t.Errorf("segment 0 = %+v, want 1.0-2.5", segments[0])
	}
	if segments[0].Text != "hello there" {
		t.Errorf("segment 0 text = %q, want trimmed text", segments[0].Text)
	}
}

func TestWhisperEngineArgs(t *testing.T) {
	exec := &fakeExecutor{output: whisperJSON}
	cfg := recognizerCfg(t)
	cfg.VADFilter = true
	cfg.Device = "cpu"
	engine := NewWhisperEngine(cfg, exec, nopLogger{})
	if err := engine.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Recognize(context.Background(), audioFile(t)); err != nil {
		t.Fatal(err)
	}

	joined := strings.Join(exec.args, " ")
	for _, want := range []string{"-oj", "-l en", "-bs 5", "-t 4", "--vad", "-ng"} {
		if !strings.Contains(joined, want) {
			t.Errorf("whisper args missing %q: %s", want, joined)
		}
	}
}

func TestWhisperEngineMissingAudio(t *testing.T) {
	engine := NewWhisperEngine(recognizerCfg(t), &fakeExecutor{}, nopLogger{})
	if err := engine.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	_, err := engine.Recognize(context.Background(), "/nonexistent/audio.aac")
	if err == nil {
		t.Fatal("Recognize() accepted a missing file")
	}
	var pe *errs.Error
	if !errors.As(err, &pe) || pe.Kind != errs.KindTranscription {
		t.Errorf("error = %v, want transcription failure", err)
	}
}

func TestWhisperEngineOOMClassification(t *testing.T) {
	tests := []struct {
		name    string
		stderr  string
		wantOOM bool
	}{
		{"cuda oom", "command 'whisper' failed: exit 1\nstderr: CUDA error: out of memory", true},
		{"plain oom", "ggml allocation failed: OOM", true},
		{"other failure", "failed to read audio header", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{err: errors.New(tt.stderr)}
			engine := NewWhisperEngine(recognizerCfg(t), exec, nopLogger{})
			if err := engine.Load(context.Background()); err != nil {
				t.Fatal(err)
			}
			_, err := engine.Recognize(context.Background(), audioFile(t))
			if err == nil {
				t.Fatal("Recognize() should fail")
			}
			if got := errs.IsOOM(err); got != tt.wantOOM {
				t.Errorf("IsOOM = %v, want %v (err=%v)", got, tt.wantOOM, err)
			}
		})
	}
}

func TestWhisperEngineLoadMissingBinary(t *testing.T) {
	cfg := recognizerCfg(t)
	cfg.BinaryPath = "/nonexistent/whisper"
	engine := NewWhisperEngine(cfg, &fakeExecutor{}, nopLogger{})
	if err := engine.Load(context.Background()); err == nil {
		t.Error("Load() accepted a missing binary")
	}
}
