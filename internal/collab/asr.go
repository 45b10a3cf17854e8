// Package collab hosts the external-collaborator adapters: ASR, paste,
// overlay, history, and LLM post-processing. None of these are in the
// core's scope to implement fully — the core only needs their
// interfaces — but concrete HTTP/OS adapters are provided here, adapted
// from pkg/providers/stt and pkg/providers/llm, reshaped from 44.1kHz
// PCM-byte inputs keyed by orchestrator.Language to this system's fixed
// 16kHz f32 samples with an optional prompt string.
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

// ASR matches internal/stream.ASREngine's shape; defined here too so
// adapters don't need to import the stream package just to satisfy it.
type ASR interface {
	Transcribe(ctx context.Context, samples []float32) (string, error)
	TranscribeWithPrompt(ctx context.Context, samples []float32, prompt string) (string, error)
}

// GroqASR calls Groq's Whisper-compatible transcription endpoint.
// Adapted from pkg/providers/stt/GroqSTT.
type GroqASR struct {
	apiKey string
	url    string
	model  string
	client *http.Client
}

// NewGroqASR constructs a GroqASR; model defaults to whisper-large-v3-turbo.
func NewGroqASR(apiKey, model string) *GroqASR {
	if model == "" {
		model = "whisper-large-v3-turbo"
	}
	return &GroqASR{
		apiKey: apiKey,
		url:    "https://api.groq.com/openai/v1/audio/transcriptions",
		model:  model,
		client: http.DefaultClient,
	}
}

func (s *GroqASR) Transcribe(ctx context.Context, samples []float32) (string, error) {
	return s.transcribe(ctx, samples, "")
}

func (s *GroqASR) TranscribeWithPrompt(ctx context.Context, samples []float32, prompt string) (string, error) {
	return s.transcribe(ctx, samples, prompt)
}

func (s *GroqASR) transcribe(ctx context.Context, samples []float32, prompt string) (string, error) {
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
	if _, err := io.Copy(part, bytes.NewReader(wavData)); err != nil {
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
		return "", fmt.Errorf("%w: groq status %d: %s", ErrAsrTransportFailed, resp.StatusCode, respBody)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Text, nil
}

func (s *GroqASR) Name() string { return "groq-asr" }
