// Package llm drafts replies for a selected batch through an external model.
//
// Two providers are supported: Gemini (default) and OpenAI. Both satisfy
// Drafter, which the pipeline consumes so tests can substitute a fake.
package llm

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// DefaultModel is the default Gemini model for drafting.
const DefaultModel = "gemini-2.5-flash-preview-05-20"

// Drafter produces raw model output for a drafting prompt. The output is free
// text; callers parse it with ParseDrafts.
type Drafter interface {
	Draft(ctx context.Context, prompt string) (string, error)
}

// Client is the Gemini-backed drafter.
type Client struct {
	modelName string
	gClient   *genai.Client
}

// NewClient creates a Gemini drafting client. The API key comes from the
// argument or, when empty, from GEMINI_API_KEY / GOOGLE_GEMINI_API_KEY /
// GOOGLE_AI_API_KEY.
func NewClient(apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		if apiKey = os.Getenv("GEMINI_API_KEY"); apiKey == "" {
			if apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY"); apiKey == "" {
				apiKey = os.Getenv("GOOGLE_AI_API_KEY")
			}
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or ai.gemini_api_key in the config file")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	gClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{modelName: modelName, gClient: gClient}, nil
}

// Draft sends the prompt as a single user turn and returns the raw response
// text. The caller bounds the call with a deadline on ctx.
func (c *Client) Draft(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate drafts: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
