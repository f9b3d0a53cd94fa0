// Package llm talks to a local chat model.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces an assistant reply for a conversation.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// DefaultTemperature keeps advice close to the code shown.
const DefaultTemperature = 0.2

// OllamaChat is a non-streaming client for Ollama's /api/chat.
type OllamaChat struct {
	endpoint    string
	model       string
	temperature float64
	client      *http.Client
}

// NewOllamaChat targets model on the Ollama at baseURL. Local models can be
// slow to load, so requests may take minutes.
func NewOllamaChat(baseURL, model string) *OllamaChat {
	return &OllamaChat{
		endpoint:    strings.TrimRight(baseURL, "/") + "/api/chat",
		model:       model,
		temperature: DefaultTemperature,
		client:      &http.Client{Timeout: 5 * time.Minute},
	}
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message Message `json:"message"`
	Error   string  `json:"error,omitempty"`
}

func (c *OllamaChat) Generate(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Options:  map[string]any{"temperature": c.temperature},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama chat %s: %w", c.model, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ollama chat %s: read reply: %w", c.model, err)
	}

	var out chatResponse
	decodeErr := json.Unmarshal(raw, &out)
	switch {
	case resp.StatusCode != http.StatusOK:
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && out.Error != "" {
			msg = out.Error
		}
		return "", fmt.Errorf("ollama chat %s: status %d: %s", c.model, resp.StatusCode, msg)
	case decodeErr != nil:
		return "", fmt.Errorf("ollama chat %s: decode reply: %w", c.model, decodeErr)
	case out.Error != "":
		return "", fmt.Errorf("ollama chat %s: %s", c.model, out.Error)
	}
	return out.Message.Content, nil
}
