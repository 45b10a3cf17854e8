package stream

import "errors"

// ErrAsrFailed wraps a failed ASR call. It is absorbed silently on a
// streaming tick (the next tick retries) and surfaced only when it
// occurs on the session controller's final fallback call.
var ErrAsrFailed = errors.New("stream: asr transcription failed")
