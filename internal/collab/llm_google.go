package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// GooglePostProcessor rewrites text via Gemini's generateContent endpoint,
// adapted from pkg/providers/llm/GoogleLLM's Complete, narrowed to a
// single system+user instruction pair and Gemini's role quirks (no native
// "system" role, "assistant" renamed to "model").
type GooglePostProcessor struct {
	apiKey string
	url    string
	model  string
	client *http.Client
}

func NewGooglePostProcessor(apiKey, model string) *GooglePostProcessor {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GooglePostProcessor{
		apiKey: apiKey,
		url:    "https://generativelanguage.googleapis.com/v1beta/models/" + model + ":generateContent",
		model:  model,
		client: &http.Client{Timeout: llmTimeout},
	}
}

func (l *GooglePostProcessor) Process(ctx context.Context, text, instructions string) (string, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role"`
		Parts []part `json:"parts"`
	}

	contents := []content{
		{Role: "user", Parts: []part{{Text: instructions}}},
		{Role: "user", Parts: []part{{Text: text}}},
	}

	body, err := json.Marshal(map[string]interface{}{"contents": contents})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url+"?key="+l.apiKey, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPostProcessFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrPostProcessFailed, resp.StatusCode)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", ErrPostProcessFailed)
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

func (l *GooglePostProcessor) Name() string { return "google-postprocess" }
