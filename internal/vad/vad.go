// Package vad implements voice-activity detection over fixed-size 30 ms,
// 16 kHz mono float frames (480 samples). A VAD is exposed as a
// capability, not a class hierarchy: an Engine decides, per frame,
// whether it heard voice; a Detector composes
// an Engine with onset/hangover smoothing and segment-boundary detection.
// This mirrors the original Rust design (original_source/.../vad/mod.rs,
// .../vad/smoothed.rs): Smoothed holds its inner engine by owning
// handle and never inherits from it.
package vad

// FrameSize is the number of float32 samples in one 30 ms frame at 16 kHz.
const FrameSize = 480

// Engine is the wrapped boolean VAD: "did this frame contain voice?"
// Implementations must be safe to reset and re-used across sessions but
// need not be safe for concurrent use — the capture worker is the sole
// caller.
type Engine interface {
	// IsVoice reports whether frame contains speech.
	IsVoice(frame []float32) bool
	// Reset clears any running state (hysteresis counters, etc).
	Reset()
	// Name identifies the engine for logging.
	Name() string
}

// Decision is what push_frame returns for a single frame: either a speech
// chunk (prefill + current + hangover) or nothing.
type Decision struct {
	// Speech is non-nil when this frame (or the aggregated burst it
	// completes, on onset) should be kept. The slice is only valid until
	// the next call to Detector.PushFrame — callers that need to retain
	// it must copy.
	Speech []float32
}

// IsSpeech reports whether this decision carries a speech chunk.
func (d Decision) IsSpeech() bool { return d.Speech != nil }

// SegmentEvent is returned by Detector.CheckSegmentBoundary.
type SegmentEvent int

const (
	// Silence: not currently in a speech run.
	Silence SegmentEvent = iota
	// SpeechContinue: currently in a speech run, no boundary yet.
	SpeechContinue
	// SegmentComplete: a long-enough pause followed enough accumulated
	// speech to close out a segment.
	SegmentComplete
)

// Detector is the capability the capture worker depends on: push one
// frame at a time, get a keep/drop decision, and separately poll for
// segment boundaries.
type Detector interface {
	PushFrame(frame []float32) Decision
	CheckSegmentBoundary() SegmentEvent
	Reset()
}
