package llm

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is the default chat model for the OpenAI drafter.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient is the OpenAI-backed drafter, selected with provider "openai".
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAI drafting client. An empty apiKey falls
// back to OPENAI_API_KEY; a non-empty baseURL points the client at an
// OpenAI-compatible provider.
func NewOpenAIClient(apiKey, model, baseURL string) (*OpenAIClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required. Set OPENAI_API_KEY or ai.openai_api_key in the config file")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(clientConfig), model: model}, nil
}

// Draft sends the prompt as a single user turn and returns the raw response
// text.
func (c *OpenAIClient) Draft(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate drafts: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return resp.Choices[0].Message.Content, nil
}
