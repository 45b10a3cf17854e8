package vad

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRMSEngine_ThresholdCrossing(t *testing.T) {
	e := NewRMSEngine(0.1)

	silent := make([]float32, FrameSize)
	require.False(t, e.IsVoice(silent))
	require.Equal(t, 0.0, e.LastRMS())

	loud := make([]float32, FrameSize)
	for i := range loud {
		loud[i] = 0.5
	}
	require.True(t, e.IsVoice(loud))
	require.InDelta(t, 0.5, e.LastRMS(), 1e-9)
}

func TestRMSEngine_ResetClearsLastRMS(t *testing.T) {
	e := NewRMSEngine(0.01)
	loud := make([]float32, FrameSize)
	for i := range loud {
		loud[i] = 1
	}
	e.IsVoice(loud)
	require.NotEqual(t, 0.0, e.LastRMS())

	e.Reset()
	require.Equal(t, 0.0, e.LastRMS())
}

func TestRMSEngine_SetThreshold(t *testing.T) {
	e := NewRMSEngine(0.1)
	e.SetThreshold(0.9)
	require.Equal(t, 0.9, e.Threshold())

	mid := make([]float32, FrameSize)
	for i := range mid {
		mid[i] = 0.5
	}
	require.False(t, e.IsVoice(mid))
}
