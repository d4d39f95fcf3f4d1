package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

type geminiClient struct {
	apiKey string
}

// NewGemini creates a Client backed by the Gemini API.
func NewGemini(apiKey string) Client {
	return &geminiClient{apiKey: apiKey}
}

func (c *geminiClient) Complete(ctx context.Context, req Request) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}

	temp := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(req.MaxTokens),
	}

	result, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}

// classifyGeminiError maps the SDK's stringly errors onto StatusError so
// the generator's retry policy treats both backends uniformly.
func classifyGeminiError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "429"), strings.Contains(msg, "RESOURCE_EXHAUSTED"), strings.Contains(msg, "quota"):
		return &StatusError{Code: http.StatusTooManyRequests, Message: msg}
	case strings.Contains(msg, "500"), strings.Contains(msg, "503"), strings.Contains(msg, "UNAVAILABLE"):
		return &StatusError{Code: http.StatusServiceUnavailable, Message: msg}
	default:
		return err
	}
}
