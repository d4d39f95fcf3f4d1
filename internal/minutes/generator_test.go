package minutes

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/errs"
	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...interface{})  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...interface{}) {}

// scriptedClient returns canned responses in order.
type scriptedClient struct {
	responses []func() (string, error)
	calls     int
	prompts   []string
}

func (c *scriptedClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	c.prompts = append(c.prompts, req.Prompt)
	if c.calls >= len(c.responses) {
		return "", errors.New("no scripted response left")
	}
	resp := c.responses[c.calls]
	c.calls++
	return resp()
}

func ok(content string) func() (string, error) {
	return func() (string, error) { return content, nil }
}

func fail(err error) func() (string, error) {
	return func() (string, error) { return "", err }
}

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "minutes.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestGenerator(t *testing.T, template string, client llm.Client) Generator {
	t.Helper()
	g := New(config.GeneratorConfig{
		Model:              "test-model",
		MaxTokens:          128,
		Temperature:        0.3,
		MaxRetries:         2,
		PromptTemplatePath: writeTemplate(t, template),
	}, client, nopLogger{})
	if err := g.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return g
}

func TestGenerate(t *testing.T) {
	client := &scriptedClient{responses: []func() (string, error){ok("## Summary\nfine")}}
	g := newTestGenerator(t, "Date: {date}\nWho: {speakers}\n---\n{transcript}\n---", client)

	out, err := g.Generate(context.Background(), "[00:01] A: hello", "2026-08-06", "A, B")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != "## Summary\nfine" {
		t.Errorf("Generate() = %q", out)
	}

	prompt := client.prompts[0]
	for _, want := range []string{"Date: 2026-08-06", "Who: A, B", "[00:01] A: hello"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestRenderIsLiteral(t *testing.T) {
	client := &scriptedClient{responses: []func() (string, error){ok("minutes")}}
	g := newTestGenerator(t, "D={date} T={transcript}", client)

	// Transcript content that looks like placeholders must survive as-is.
	hostile := "mention of {date} and {transcript} and %s inside speech"
	if _, err := g.Generate(context.Background(), hostile, "today", "A"); err != nil {
		t.Fatal(err)
	}

	prompt := client.prompts[0]
	if !strings.Contains(prompt, hostile) {
		t.Errorf("transcript content was re-interpreted:\n%s", prompt)
	}
	if strings.Count(prompt, "today") != 1 {
		t.Errorf("date placeholder expanded %d times, want 1:\n%s", strings.Count(prompt, "today"), prompt)
	}
}

func TestLoadRejectsBadTemplates(t *testing.T) {
	tests := []struct {
		name     string
		template string
	}{
		{"no placeholder", "just text"},
		{"duplicate placeholder", "{transcript} and {transcript}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(config.GeneratorConfig{
				PromptTemplatePath: writeTemplate(t, tt.template),
				MaxRetries:         1,
			}, &scriptedClient{}, nopLogger{})
			if err := g.Load(); err == nil {
				t.Error("Load() accepted a bad template")
			}
		})
	}
}

func TestGenerateRetriesRateLimit(t *testing.T) {
	client := &scriptedClient{responses: []func() (string, error){
		fail(&llm.StatusError{Code: http.StatusTooManyRequests, RetryAfter: 10 * time.Millisecond}),
		ok("## Summary\nrecovered"),
	}}
	g := newTestGenerator(t, "{transcript}", client)

	start := time.Now()
	out, err := g.Generate(context.Background(), "text", "d", "s")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != "## Summary\nrecovered" {
		t.Errorf("Generate() = %q", out)
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2", client.calls)
	}
	if time.Since(start) >= time.Second {
		t.Error("Retry-After hint was not honored (fell back to full backoff)")
	}
}

func TestGenerateRetriesServerError(t *testing.T) {
	client := &scriptedClient{responses: []func() (string, error){
		fail(&llm.StatusError{Code: http.StatusBadGateway}),
		ok("content"),
	}}
	g := newTestGenerator(t, "{transcript}", client)

	if _, err := g.Generate(context.Background(), "text", "d", "s"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2", client.calls)
	}
}

func TestGenerateDoesNotRetryClientError(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusRequestEntityTooLarge} {
		client := &scriptedClient{responses: []func() (string, error){
			fail(&llm.StatusError{Code: code}),
			ok("never reached"),
		}}
		g := newTestGenerator(t, "{transcript}", client)

		_, err := g.Generate(context.Background(), "text", "d", "s")
		if err == nil {
			t.Fatalf("Generate() should fail on HTTP %d", code)
		}
		var pe *errs.Error
		if !errors.As(err, &pe) || pe.Kind != errs.KindGeneration {
			t.Errorf("error = %v, want generation failure", err)
		}
		if client.calls != 1 {
			t.Errorf("HTTP %d: calls = %d, want 1 (no retry)", code, client.calls)
		}
	}
}

func TestGenerateEmptyContent(t *testing.T) {
	client := &scriptedClient{responses: []func() (string, error){ok("   ")}}
	g := newTestGenerator(t, "{transcript}", client)

	_, err := g.Generate(context.Background(), "text", "d", "s")
	if err == nil {
		t.Fatal("Generate() should fail on empty content")
	}
	if client.calls != 1 {
		t.Errorf("calls = %d, want 1 (empty content is not retried)", client.calls)
	}
}
