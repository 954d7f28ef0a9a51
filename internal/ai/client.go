// Package ai provides the Gemini-backed text generation used for proposal
// narratives and document extraction.
package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"angebot_backend/platform/config"
)

const defaultModel = "gemini-2.0-flash"

// Client wraps the Gemini API for single-shot generation calls.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a new Gemini client from configuration.
func NewClient(ctx context.Context, cfg config.AIConfig) (*Client, error) {
	if !cfg.IsAIEnabled() {
		return nil, fmt.Errorf("gemini is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.GetGeminiModel()
	if model == "" {
		model = defaultModel
	}
	return &Client{client: client, model: model}, nil
}

// generateText runs a single prompt and returns the plain text response.
func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// generateJSON runs a single prompt in JSON mode and returns the raw payload
// with any markdown code fences removed.
func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return stripJSONFences(resp.Text()), nil
}

// stripJSONFences removes a surrounding markdown code fence from a model
// response. Models occasionally wrap JSON in ```json blocks even when asked
// not to.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
