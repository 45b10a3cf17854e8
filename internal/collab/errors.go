package collab

import "errors"

var (
	// ErrAsrTransportFailed wraps a failed HTTP call to an ASR provider.
	ErrAsrTransportFailed = errors.New("collab: asr request failed")
	// ErrPostProcessFailed wraps a failed LLM post-processing call.
	// Non-fatal: callers fall back to the raw ASR text.
	ErrPostProcessFailed = errors.New("collab: llm post-process failed")
)
