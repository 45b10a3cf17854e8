package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/open-dictation/dictd/pkg/audio"
)

// OpenAIASR calls OpenAI's /v1/audio/transcriptions endpoint. Adapted
// from pkg/providers/stt/OpenAISTT.
type OpenAIASR struct {
	apiKey string
	url    string
	model  string
	client *http.Client
}

// NewOpenAIASR constructs an OpenAIASR; model defaults to whisper-1.
func NewOpenAIASR(apiKey, model string) *OpenAIASR {
	if model == "" {
		model = "whisper-1"
	}
	return &OpenAIASR{
		apiKey: apiKey,
		url:    "https://api.openai.com/v1/audio/transcriptions",
		model:  model,
		client: http.DefaultClient,
	}
}

func (s *OpenAIASR) Transcribe(ctx context.Context, samples []float32) (string, error) {
	return s.transcribe(ctx, samples, "")
}

func (s *OpenAIASR) TranscribeWithPrompt(ctx context.Context, samples []float32, prompt string) (string, error) {
	return s.transcribe(ctx, samples, prompt)
}

func (s *OpenAIASR) transcribe(ctx context.Context, samples []float32, prompt string) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}
	wavData := audio.EncodeFloat32Mono16k(samples)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("model", s.model); err != nil {
		return "", err
	}
	if prompt != "" {
		if err := writer.WriteField("prompt", prompt); err != nil {
			return "", err
		}
	}
	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(wavData); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAsrTransportFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: openai status %d: %s", ErrAsrTransportFailed, resp.StatusCode, respBody)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Text, nil
}

func (s *OpenAIASR) Name() string { return "openai-asr" }
