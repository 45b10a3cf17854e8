package audiopipe

import "github.com/open-dictation/dictd/internal/vad"

// Resampler packetizes a stream of arbitrarily-sized f32 sample chunks
// into fixed vad.FrameSize (480-sample, 30ms) frames, carrying any partial
// remainder forward to the next chunk. It performs no rate conversion —
// the device is opened at SampleRate already — "resampler" names its role
// reshaping variable device callbacks into the pipeline's fixed frame
// contract, not a sample-rate change.
type Resampler struct {
	remainder []float32
}

// NewResampler returns an empty Resampler.
func NewResampler() *Resampler {
	return &Resampler{remainder: make([]float32, 0, vad.FrameSize)}
}

// Push appends chunk to the pending remainder and returns zero or more
// complete frames. Any samples left over (fewer than a full frame) are
// retained for the next Push or Finish call.
func (r *Resampler) Push(chunk []float32) [][]float32 {
	r.remainder = append(r.remainder, chunk...)

	var frames [][]float32
	for len(r.remainder) >= vad.FrameSize {
		frame := make([]float32, vad.FrameSize)
		copy(frame, r.remainder[:vad.FrameSize])
		frames = append(frames, frame)
		r.remainder = r.remainder[vad.FrameSize:]
	}
	// compact so the backing array doesn't grow unbounded across calls
	if len(r.remainder) > 0 {
		compacted := make([]float32, len(r.remainder))
		copy(compacted, r.remainder)
		r.remainder = compacted
	} else {
		r.remainder = r.remainder[:0]
	}
	return frames
}

// Finish flushes any partial remainder as a single zero-padded final
// frame, or returns nil if there is nothing pending. Called when capture
// stops mid-frame so the tail of an utterance isn't silently dropped.
func (r *Resampler) Finish() []float32 {
	if len(r.remainder) == 0 {
		return nil
	}
	frame := make([]float32, vad.FrameSize)
	copy(frame, r.remainder)
	r.remainder = r.remainder[:0]
	return frame
}

// Pending reports how many samples are buffered but not yet a full frame.
func (r *Resampler) Pending() int { return len(r.remainder) }
