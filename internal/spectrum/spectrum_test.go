package spectrum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func sineWave(freq, sampleRate float64, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / sampleRate))
	}
	return out
}

func TestAnalyzer_SilenceProducesZeroSpectrum(t *testing.T) {
	a := NewAnalyzer()
	a.Feed(make([]float32, WindowSize))
	buckets := a.Compute()
	for _, b := range buckets {
		require.Equal(t, float32(0), b)
	}
}

func TestAnalyzer_EmptyBufferProducesZeroSpectrum(t *testing.T) {
	a := NewAnalyzer()
	buckets := a.Compute()
	for _, b := range buckets {
		require.Equal(t, float32(0), b)
	}
}

func TestAnalyzer_KeepsOnlyMostRecentWindow(t *testing.T) {
	a := NewAnalyzer()
	a.Feed(make([]float32, WindowSize*3))
	require.LessOrEqual(t, len(a.buf), WindowSize)
}

func TestAnalyzer_ToneProducesNonzeroOutput(t *testing.T) {
	a := NewAnalyzer()
	a.Feed(sineWave(1000, 16000, WindowSize))
	buckets := a.Compute()

	var max float32
	for _, b := range buckets {
		if b > max {
			max = b
		}
	}
	require.InDelta(t, 1.0, max, 1e-6, "strongest bucket should be normalized to ~1.0")
}
