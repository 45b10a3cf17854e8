package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/open-dictation/dictd/pkg/audio"
)

// DeepgramASR calls Deepgram's /v1/listen endpoint with raw WAV bytes.
// Adapted from pkg/providers/stt/DeepgramSTT.
type DeepgramASR struct {
	apiKey string
	url    string
	client *http.Client
}

func NewDeepgramASR(apiKey string) *DeepgramASR {
	return &DeepgramASR{apiKey: apiKey, url: "https://api.deepgram.com/v1/listen", client: http.DefaultClient}
}

func (s *DeepgramASR) Transcribe(ctx context.Context, samples []float32) (string, error) {
	return s.transcribe(ctx, samples)
}

func (s *DeepgramASR) TranscribeWithPrompt(ctx context.Context, samples []float32, _ string) (string, error) {
	// Deepgram's pre-recorded endpoint has no free-text prompt parameter;
	// the committed-text hint is a no-op here.
	return s.transcribe(ctx, samples)
}

func (s *DeepgramASR) transcribe(ctx context.Context, samples []float32) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}
	wavData := audio.EncodeFloat32Mono16k(samples)

	u, err := url.Parse(s.url)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("model", "nova-2")
	q.Set("smart_format", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(wavData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+s.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAsrTransportFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: deepgram status %d: %s", ErrAsrTransportFailed, resp.StatusCode, respBody)
	}

	var result struct {
		Results struct {
			Channels []struct {
				Alternatives []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Results.Channels) == 0 || len(result.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}
	return result.Results.Channels[0].Alternatives[0].Transcript, nil
}

func (s *DeepgramASR) Name() string { return "deepgram-asr" }
