package vad

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// fixedEngine reports IsVoice according to a scripted sequence of bools,
// one per call; once exhausted it reports false.
type fixedEngine struct {
	script []bool
	i      int
}

func (e *fixedEngine) IsVoice(_ []float32) bool {
	if e.i >= len(e.script) {
		return false
	}
	v := e.script[e.i]
	e.i++
	return v
}

func (e *fixedEngine) Reset()       { e.i = 0 }
func (e *fixedEngine) Name() string { return "fixed" }

func frame() []float32 {
	return make([]float32, FrameSize)
}

// VAD — onset rejection: a single voiced frame surrounded by silence never
// reaches onsetFrames=2, so no speech chunk is ever emitted.
func TestSmoothed_OnsetRejection(t *testing.T) {
	eng := &fixedEngine{script: []bool{false, true, false, false, false, false}}
	s := NewDefaultSmoothed(eng)

	for i := 0; i < len(eng.script); i++ {
		d := s.PushFrame(frame())
		require.False(t, d.IsSpeech(), "frame %d should not emit speech", i)
	}
	require.False(t, s.InSpeech())
}

// Two consecutive voiced frames cross onsetFrames=2 and emit a prefill+
// current speech chunk.
func TestSmoothed_OnsetAccepted(t *testing.T) {
	eng := &fixedEngine{script: []bool{true, true}}
	s := NewDefaultSmoothed(eng)

	d1 := s.PushFrame(frame())
	require.False(t, d1.IsSpeech())

	d2 := s.PushFrame(frame())
	require.True(t, d2.IsSpeech())
	require.True(t, s.InSpeech())
	// prefill ring holds both frames pushed so far
	require.Len(t, d2.Speech, 2*FrameSize)
}

// Once in speech, hangoverFrames of silence are still reported as speech
// before the detector drops back to silence.
func TestSmoothed_Hangover(t *testing.T) {
	eng := &fixedEngine{script: append([]bool{true, true}, make([]bool, DefaultHangoverFrames+1)...)}
	s := NewDefaultSmoothed(eng)

	s.PushFrame(frame())
	s.PushFrame(frame())
	require.True(t, s.InSpeech())

	for i := 0; i < DefaultHangoverFrames; i++ {
		d := s.PushFrame(frame())
		require.True(t, d.IsSpeech(), "hangover frame %d should still be speech", i)
		require.True(t, s.InSpeech())
	}

	// hangover exhausted: this frame drops out of speech
	d := s.PushFrame(frame())
	require.False(t, d.IsSpeech())
	require.False(t, s.InSpeech())
}

// The detector never emits a speech chunk of length 0.
func TestSmoothed_NeverEmitsEmptyChunk(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		script := rapid.SliceOfN(rapid.Boolean(), 1, 200).Draw(t, "script")
		eng := &fixedEngine{script: script}
		s := NewDefaultSmoothed(eng)

		for range script {
			d := s.PushFrame(frame())
			if d.IsSpeech() {
				require.NotEqual(t, 0, len(d.Speech))
			}
		}
	})
}

// Reset clears onset/hangover/silence counters and the prefill ring so a
// reused Detector behaves like a fresh one.
func TestSmoothed_Reset(t *testing.T) {
	eng := &fixedEngine{script: []bool{true, true, true}}
	s := NewDefaultSmoothed(eng)
	s.PushFrame(frame())
	s.PushFrame(frame())
	require.True(t, s.InSpeech())

	s.Reset()
	require.False(t, s.InSpeech())
	require.Equal(t, Silence, s.CheckSegmentBoundary())
}

// CheckSegmentBoundary only fires once both the silence threshold and the
// minimum accumulated speech are satisfied.
func TestSmoothed_SegmentBoundary(t *testing.T) {
	script := make([]bool, 0)
	// onset + enough continued speech to clear minSegmentFrames
	for i := 0; i < DefaultMinSegmentFrames+2; i++ {
		script = append(script, true)
	}
	// enough trailing silence to clear hangover and segmentBoundaryThreshold
	for i := 0; i < DefaultHangoverFrames+DefaultSegmentBoundaryThreshold+2; i++ {
		script = append(script, false)
	}
	eng := &fixedEngine{script: script}
	s := NewDefaultSmoothed(eng)

	sawSegmentComplete := false
	for range script {
		s.PushFrame(frame())
		if s.CheckSegmentBoundary() == SegmentComplete {
			sawSegmentComplete = true
			break
		}
	}
	require.True(t, sawSegmentComplete, "expected a SegmentComplete after sustained speech then silence")
}
