package minutes

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/nguyentantai21042004/minutes-flow/internal/errs"
	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
)

// transcriptPlaceholder must appear exactly once in the prompt template.
// Substitution is literal replacement, never format interpolation, so
// transcript content cannot be re-interpreted as template syntax.
const transcriptPlaceholder = "{transcript}"

func (g *implGenerator) Load() error {
	if g.template != "" {
		return nil
	}

	data, err := os.ReadFile(g.cfg.PromptTemplatePath)
	if err != nil {
		return errs.Generation("prompt template not found: "+g.cfg.PromptTemplatePath, err)
	}
	template := string(data)

	if n := strings.Count(template, transcriptPlaceholder); n != 1 {
		return errs.Generation("prompt template must contain exactly one "+transcriptPlaceholder+" placeholder", nil)
	}

	g.template = template
	g.logger.Info(context.Background(), "Generator ready (provider=%s, model=%s, template=%s)",
		g.cfg.Provider, g.cfg.Model, g.cfg.PromptTemplatePath)
	return nil
}

// renderPrompt fills template variables by literal replacement. The
// transcript goes in last so its content is never re-scanned for the
// other placeholders.
func (g *implGenerator) renderPrompt(transcript, date, speakers string) string {
	out := strings.ReplaceAll(g.template, "{date}", date)
	out = strings.ReplaceAll(out, "{speakers}", speakers)
	out = strings.ReplaceAll(out, transcriptPlaceholder, transcript)
	return out
}

func (g *implGenerator) Generate(ctx context.Context, transcript, date, speakers string) (string, error) {
	if g.template == "" {
		return "", errs.Generation("generator not loaded", nil)
	}

	prompt := g.renderPrompt(transcript, date, speakers)
	req := llm.Request{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Prompt:      prompt,
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.RandomizationFactor = 0

	maxAttempts := g.cfg.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		t0 := time.Now()
		g.logger.Info(ctx, "Calling LLM endpoint (attempt %d/%d, model=%s)", attempt, maxAttempts, g.cfg.Model)

		content, err := g.client.Complete(ctx, req)
		if err == nil {
			if strings.TrimSpace(content) == "" {
				return "", errs.Generation("LLM returned empty content", nil)
			}
			g.logger.Info(ctx, "LLM responded in %.1fs (%d chars)", time.Since(t0).Seconds(), len(content))
			return content, nil
		}

		lastErr = err
		retryAfter, retryable := classify(err)
		if !retryable {
			return "", errs.Generation("LLM request failed", err)
		}
		g.logger.Warn(ctx, "LLM attempt %d/%d failed: %v", attempt, maxAttempts, err)

		if attempt == maxAttempts {
			break
		}
		delay := bo.NextBackOff()
		if retryAfter > 0 {
			delay = retryAfter
		}
		select {
		case <-ctx.Done():
			return "", errs.Generation("LLM request cancelled", ctx.Err())
		case <-time.After(delay):
		}
	}

	return "", errs.Generation("LLM request failed after retries", lastErr)
}

// classify decides whether an LLM error is retryable and extracts any
// Retry-After hint. Retry on 429, 5xx and transport errors; never on
// other 4xx (bad request, auth, payload too large).
func classify(err error) (time.Duration, bool) {
	var se *llm.StatusError
	if !errors.As(err, &se) {
		// Transport-level failure.
		return 0, true
	}
	switch {
	case se.Code == http.StatusTooManyRequests:
		return se.RetryAfter, true
	case se.Code >= 500:
		return 0, true
	default:
		return 0, false
	}
}
