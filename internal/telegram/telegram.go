// Package telegram delivers digest chunks through the Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const apiBase = "https://api.telegram.org"

// Sender delivers an ordered chunk sequence. The pipeline consumes this so
// tests can substitute a fake transport.
type Sender interface {
	Send(ctx context.Context, chunks []string) error
}

// Client sends HTML-formatted messages to one chat.
type Client struct {
	botToken   string
	chatID     string
	sendDelay  time.Duration
	baseURL    string
	HTTPClient *http.Client
}

// NewClient builds a Telegram client. sendDelay is the pause between
// consecutive chunks of one digest; timeout bounds each sendMessage call and
// falls back to 30s when zero.
func NewClient(botToken, chatID string, sendDelay, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		botToken:  botToken,
		chatID:    chatID,
		sendDelay: sendDelay,
		baseURL:   apiBase,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Send delivers the chunks sequentially with the configured delay between
// them. The first non-success response aborts the remaining sequence.
func (c *Client) Send(ctx context.Context, chunks []string) error {
	if c.botToken == "" || c.chatID == "" {
		return fmt.Errorf("telegram bot token and chat id not configured")
	}

	for i, chunk := range chunks {
		if err := c.sendMessage(ctx, chunk); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if i < len(chunks)-1 {
			select {
			case <-time.After(c.sendDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

func (c *Client) sendMessage(ctx context.Context, text string) error {
	jsonData, err := json.Marshal(sendMessageRequest{
		ChatID:                c.chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal Telegram message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build Telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Telegram message: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			fmt.Printf("Warning: failed to close response body: %s\n", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
