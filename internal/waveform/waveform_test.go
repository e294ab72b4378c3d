package waveform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naozine/syncalign/internal/pcm"
)

func TestComputeReturnsOnePeakPerWindow(t *testing.T) {
	rate := 1000
	samples := make([]float32, rate*2) // 2 seconds
	for i := range samples {
		samples[i] = 0.5
	}
	buf := &pcm.Buffer{Samples: samples, RateHz: rate}

	peaks, err := Compute(buf, 10) // 10 windows/sec
	require.NoError(t, err)
	assert.InDelta(t, 2.0, peaks.Duration, 0.01)
	assert.Len(t, peaks.Values, 20)
	for _, v := range peaks.Values {
		assert.InDelta(t, 0.5, v, 1e-6)
	}
}

func TestComputeRejectsEmptyBuffer(t *testing.T) {
	_, err := Compute(&pcm.Buffer{RateHz: 16000}, 10)
	assert.Error(t, err)
}

func TestComputeRejectsNonPositiveRate(t *testing.T) {
	buf := &pcm.Buffer{Samples: []float32{0.1, 0.2}, RateHz: 16000}
	_, err := Compute(buf, 0)
	assert.Error(t, err)
}
