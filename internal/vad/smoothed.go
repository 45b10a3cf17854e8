package vad

// Smoothed composes an inner boolean Engine with onset/hangover smoothing
// and segment-boundary detection. It is a direct,
// field-for-field port of original_source/src-tauri/src/audio_toolkit/vad/smoothed.rs's
// SmoothedVad, translated from Rust's owned-frame-buffer design to a Go
// ring buffer of the same effective capacity.
type Smoothed struct {
	inner Engine

	prefillFrames  int
	hangoverFrames int
	onsetFrames    int

	// ring buffer of the last prefillFrames+1 frames, for prefill capture
	// on speech onset.
	ring      [][]float32
	ringStart int
	ringLen   int

	onsetCounter    int
	hangoverCounter int
	inSpeech        bool

	silenceFrames            int
	segmentBoundaryThreshold int
	speechFramesSinceSegment int
	minSegmentFrames         int
}

// Default onset/hangover/segment-boundary tuning.
const (
	DefaultPrefillFrames            = 15 // ~450ms
	DefaultHangoverFrames           = 15
	DefaultOnsetFrames              = 2
	DefaultSegmentBoundaryThreshold = 50 // ~1.5s silence
	DefaultMinSegmentFrames         = 67 // ~2s speech
)

// NewSmoothed wraps inner with the standard onset/hangover/segment-boundary
// state machine. Callers that want the standard tuning should use
// NewDefaultSmoothed instead.
func NewSmoothed(inner Engine, prefillFrames, hangoverFrames, onsetFrames int) *Smoothed {
	s := &Smoothed{
		inner:                    inner,
		prefillFrames:            prefillFrames,
		hangoverFrames:           hangoverFrames,
		onsetFrames:              onsetFrames,
		ring:                     make([][]float32, prefillFrames+1),
		segmentBoundaryThreshold: DefaultSegmentBoundaryThreshold,
		minSegmentFrames:         DefaultMinSegmentFrames,
	}
	return s
}

// NewDefaultSmoothed wraps inner with the standard default tuning.
func NewDefaultSmoothed(inner Engine) *Smoothed {
	return NewSmoothed(inner, DefaultPrefillFrames, DefaultHangoverFrames, DefaultOnsetFrames)
}

func (s *Smoothed) pushRing(frame []float32) {
	capacity := len(s.ring)
	idx := (s.ringStart + s.ringLen) % capacity
	// copy so the ring doesn't alias a caller-owned buffer that may be reused
	cp := make([]float32, len(frame))
	copy(cp, frame)
	s.ring[idx] = cp
	if s.ringLen < capacity {
		s.ringLen++
	} else {
		s.ringStart = (s.ringStart + 1) % capacity
	}
}

func (s *Smoothed) collectRing() []float32 {
	out := make([]float32, 0, s.ringLen*FrameSize)
	for i := 0; i < s.ringLen; i++ {
		out = append(out, s.ring[(s.ringStart+i)%len(s.ring)]...)
	}
	return out
}

// PushFrame implements Detector.
func (s *Smoothed) PushFrame(frame []float32) Decision {
	s.pushRing(frame)

	isVoice := s.inner.IsVoice(frame)

	switch {
	case !s.inSpeech && isVoice:
		// potential onset
		s.onsetCounter++
		if s.onsetCounter >= s.onsetFrames {
			s.inSpeech = true
			s.hangoverCounter = s.hangoverFrames
			s.onsetCounter = 0
			s.silenceFrames = 0
			return Decision{Speech: s.collectRing()}
		}
		s.silenceFrames++
		return Decision{}

	case s.inSpeech && isVoice:
		s.hangoverCounter = s.hangoverFrames
		s.silenceFrames = 0
		s.speechFramesSinceSegment++
		return Decision{Speech: frame}

	case s.inSpeech && !isVoice:
		if s.hangoverCounter > 0 {
			s.hangoverCounter--
			s.speechFramesSinceSegment++
			return Decision{Speech: frame}
		}
		s.inSpeech = false
		s.silenceFrames++
		return Decision{}

	default: // !inSpeech && !isVoice
		s.onsetCounter = 0
		s.silenceFrames++
		return Decision{}
	}
}

// CheckSegmentBoundary implements Detector.
func (s *Smoothed) CheckSegmentBoundary() SegmentEvent {
	if s.silenceFrames >= s.segmentBoundaryThreshold && s.speechFramesSinceSegment >= s.minSegmentFrames {
		s.speechFramesSinceSegment = 0
		s.silenceFrames = 0
		return SegmentComplete
	}
	if s.inSpeech {
		return SpeechContinue
	}
	return Silence
}

// Reset implements Detector: clears all counters and the prefill ring.
func (s *Smoothed) Reset() {
	s.ring = make([][]float32, s.prefillFrames+1)
	s.ringStart = 0
	s.ringLen = 0
	s.onsetCounter = 0
	s.hangoverCounter = 0
	s.inSpeech = false
	s.silenceFrames = 0
	s.speechFramesSinceSegment = 0
	s.inner.Reset()
}

// InSpeech reports whether the detector currently considers itself inside
// a speech run. It is not part of the Detector interface; tests use it.
func (s *Smoothed) InSpeech() bool { return s.inSpeech }
