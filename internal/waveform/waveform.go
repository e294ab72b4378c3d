// Package waveform computes peak amplitude envelopes for a decoded PCM
// buffer, for sync-map review UIs that want to plot fragment boundaries
// against the audio. Adapted from the teacher's
// internal/asr/waveform.go ComputeWaveformPeaks, generalized from "open
// a WAV file and parse its header by hand" to "operate on an
// already-decoded pcm.Buffer", since decoding is now internal/pcm's job.
package waveform

import (
	"fmt"

	"github.com/naozine/syncalign/internal/pcm"
)

// Peaks holds one amplitude sample per window, normalized to [0, 1].
type Peaks struct {
	Values   []float64
	Duration float64
}

// Compute downsamples buf into one peak per window, at roughly
// peaksPerSecond windows per second of audio.
func Compute(buf *pcm.Buffer, peaksPerSecond float64) (*Peaks, error) {
	if buf == nil || len(buf.Samples) == 0 {
		return nil, fmt.Errorf("waveform: empty buffer")
	}
	if peaksPerSecond <= 0 {
		return nil, fmt.Errorf("waveform: peaksPerSecond must be positive, got %v", peaksPerSecond)
	}

	duration := buf.Duration()
	numPeaks := int(duration * peaksPerSecond)
	if numPeaks <= 0 {
		numPeaks = 1
	}

	samplesPerPeak := len(buf.Samples) / numPeaks
	if samplesPerPeak <= 0 {
		samplesPerPeak = 1
	}

	values := make([]float64, 0, numPeaks)
	for start := 0; start < len(buf.Samples); start += samplesPerPeak {
		end := start + samplesPerPeak
		if end > len(buf.Samples) {
			end = len(buf.Samples)
		}
		var maxVal float64
		for _, s := range buf.Samples[start:end] {
			v := float64(s)
			if v < 0 {
				v = -v
			}
			if v > maxVal {
				maxVal = v
			}
		}
		values = append(values, maxVal)
	}

	return &Peaks{Values: values, Duration: duration}, nil
}
