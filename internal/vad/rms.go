package vad

import "math"

// RMSEngine is a lightweight, dependency-free boolean VAD: a frame is
// voice iff its RMS energy exceeds a threshold. It is the default inner
// Engine composed by Detector — no onset/hangover smoothing here, that is
// entirely Detector's job (see smoothed.go), matching the wrapped-engine
// split in original_source/.../vad/smoothed.rs.
//
// Adapted from RMSVAD (pkg/orchestrator/vad.go), which operated on 16-bit
// PCM byte chunks at an arbitrary rate; this version operates on the
// f32 30 ms/16 kHz frames the rest of the pipeline mandates and drops
// its own hysteresis (consecutiveFrames/minConfirmed/silenceStart) since
// that responsibility now lives one layer up, in Detector.
type RMSEngine struct {
	threshold float64
	lastRMS   float64
}

// NewRMSEngine creates an RMS-threshold VAD engine. A typical threshold
// for normalized f32 samples is in the 0.01-0.05 range.
func NewRMSEngine(threshold float64) *RMSEngine {
	return &RMSEngine{threshold: threshold}
}

func (e *RMSEngine) IsVoice(frame []float32) bool {
	e.lastRMS = rms(frame)
	return e.lastRMS > e.threshold
}

// LastRMS returns the RMS of the most recently processed frame. The
// mic-level visualization does not read it; it uses internal/spectrum.
func (e *RMSEngine) LastRMS() float64 { return e.lastRMS }

func (e *RMSEngine) Reset() { e.lastRMS = 0 }

func (e *RMSEngine) Name() string { return "rms" }

// SetThreshold updates the voice threshold.
func (e *RMSEngine) SetThreshold(t float64) { e.threshold = t }

// Threshold returns the current voice threshold.
func (e *RMSEngine) Threshold() float64 { return e.threshold }

func rms(frame []float32) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		f := float64(s)
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(frame)))
}
