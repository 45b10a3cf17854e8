package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// AnthropicPostProcessor rewrites text via the Messages API, adapted from
// pkg/providers/llm/AnthropicLLM's system/user split.
type AnthropicPostProcessor struct {
	apiKey string
	url    string
	model  string
	client *http.Client
}

func NewAnthropicPostProcessor(apiKey, model string) *AnthropicPostProcessor {
	if model == "" {
		model = "claude-3-5-sonnet-20240620"
	}
	return &AnthropicPostProcessor{
		apiKey: apiKey,
		url:    "https://api.anthropic.com/v1/messages",
		model:  model,
		client: &http.Client{Timeout: llmTimeout},
	}
}

func (l *AnthropicPostProcessor) Process(ctx context.Context, text, instructions string) (string, error) {
	payload := map[string]interface{}{
		"model":      l.model,
		"max_tokens": 1024,
		"system":     instructions,
		"messages": []map[string]string{
			{"role": "user", "content": text},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", l.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPostProcessFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrPostProcessFailed, resp.StatusCode)
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("%w: no content returned", ErrPostProcessFailed)
	}
	return result.Content[0].Text, nil
}

func (l *AnthropicPostProcessor) Name() string { return "anthropic-postprocess" }
