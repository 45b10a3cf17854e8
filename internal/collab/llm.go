package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// llmTimeout bounds a post-processing call; generous since rewriting can
// involve a slower reasoning model.
const llmTimeout = 30 * time.Second

// PostProcessor is the external LLM post-processor collaborator:
// Process(text, instructions) -> text. The API key and model are fixed
// when an implementation is constructed.
type PostProcessor interface {
	Process(ctx context.Context, text, instructions string) (string, error)
}

// OpenAIPostProcessor rewrites text via OpenAI chat completions, adapted
// from pkg/providers/llm/OpenAILLM's Complete, narrowed from a full
// conversation-message list to a single system+user instruction pair
// since ghostwriter rewriting has no multi-turn context.
type OpenAIPostProcessor struct {
	apiKey string
	url    string
	model  string
	client *http.Client
}

func NewOpenAIPostProcessor(apiKey, model string) *OpenAIPostProcessor {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIPostProcessor{
		apiKey: apiKey,
		url:    "https://api.openai.com/v1/chat/completions",
		model:  model,
		client: &http.Client{Timeout: llmTimeout},
	}
}

func (l *OpenAIPostProcessor) Process(ctx context.Context, text, instructions string) (string, error) {
	messages := []map[string]string{
		{"role": "system", "content": instructions},
		{"role": "user", "content": text},
	}
	payload := map[string]interface{}{
		"model":    l.model,
		"messages": messages,
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
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPostProcessFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrPostProcessFailed, resp.StatusCode)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrPostProcessFailed)
	}
	return result.Choices[0].Message.Content, nil
}

func (l *OpenAIPostProcessor) Name() string { return "openai-postprocess" }
