package collab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroqASR_EmptySamplesShortCircuits(t *testing.T) {
	s := NewGroqASR("key", "")
	text, err := s.Transcribe(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "", text)
}

func TestGroqASR_ParsesTranscriptFromResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"text": "hello world"})
	}))
	defer server.Close()

	s := NewGroqASR("key", "")
	s.url = server.URL
	text, err := s.Transcribe(context.Background(), make([]float32, 100))
	require.NoError(t, err)
	require.Equal(t, "hello world", text)
}

func TestGroqASR_NonOKStatusWrapsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewGroqASR("key", "")
	s.url = server.URL
	_, err := s.Transcribe(context.Background(), make([]float32, 100))
	require.ErrorIs(t, err, ErrAsrTransportFailed)
}

func TestOpenAIASR_PassesPromptField(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(10 << 20)
		gotPrompt = r.FormValue("prompt")
		json.NewEncoder(w).Encode(map[string]string{"text": "ok"})
	}))
	defer server.Close()

	s := NewOpenAIASR("key", "")
	s.url = server.URL
	_, err := s.TranscribeWithPrompt(context.Background(), make([]float32, 100), "continue from here")
	require.NoError(t, err)
	require.Equal(t, "continue from here", gotPrompt)
}
