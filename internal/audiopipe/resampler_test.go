package audiopipe

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/open-dictation/dictd/internal/vad"
)

func chunkOf(n int, v float32) []float32 {
	c := make([]float32, n)
	for i := range c {
		c[i] = v
	}
	return c
}

func TestResampler_ExactFrame(t *testing.T) {
	r := NewResampler()
	frames := r.Push(chunkOf(vad.FrameSize, 1))
	require.Len(t, frames, 1)
	require.Len(t, frames[0], vad.FrameSize)
	require.Equal(t, 0, r.Pending())
}

func TestResampler_SplitAcrossChunks(t *testing.T) {
	r := NewResampler()
	frames := r.Push(chunkOf(vad.FrameSize/2, 1))
	require.Empty(t, frames)
	require.Equal(t, vad.FrameSize/2, r.Pending())

	frames = r.Push(chunkOf(vad.FrameSize/2, 2))
	require.Len(t, frames, 1)
	require.Equal(t, 0, r.Pending())
}

func TestResampler_MultipleFramesInOneChunk(t *testing.T) {
	r := NewResampler()
	frames := r.Push(chunkOf(vad.FrameSize*3+10, 1))
	require.Len(t, frames, 3)
	require.Equal(t, 10, r.Pending())
}

func TestResampler_FinishFlushesPartial(t *testing.T) {
	r := NewResampler()
	r.Push(chunkOf(100, 1))
	require.Equal(t, 100, r.Pending())

	flushed := r.Finish()
	require.Len(t, flushed, vad.FrameSize)
	require.Equal(t, 0, r.Pending())
	for i := 0; i < 100; i++ {
		require.Equal(t, float32(1), flushed[i])
	}
	for i := 100; i < vad.FrameSize; i++ {
		require.Equal(t, float32(0), flushed[i])
	}
}

func TestResampler_FinishOnEmptyReturnsNil(t *testing.T) {
	r := NewResampler()
	require.Nil(t, r.Finish())
}

// Total sample count across all emitted frames plus remaining pending
// always equals total samples pushed so far.
func TestResampler_ConservesSampleCount(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := NewResampler()
		totalPushed := 0
		totalEmitted := 0
		chunks := rapid.SliceOfN(rapid.IntRange(0, 1000), 0, 20).Draw(t, "chunkSizes")
		for _, n := range chunks {
			frames := r.Push(chunkOf(n, 1))
			totalPushed += n
			for _, f := range frames {
				totalEmitted += len(f)
			}
			require.Equal(t, totalPushed, totalEmitted+r.Pending())
		}

		pendingBefore := r.Pending()
		flushed := r.Finish()
		if pendingBefore == 0 {
			require.Nil(t, flushed)
		} else {
			require.Len(t, flushed, vad.FrameSize)
		}
	})
}
