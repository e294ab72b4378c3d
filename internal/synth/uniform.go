package synth

import (
	"context"
	"math"

	"github.com/naozine/syncalign/internal/pcm"
	"github.com/naozine/syncalign/internal/textfile"
)

// Uniform is a deterministic Synthesizer for tests: it assigns every
// fragment a duration proportional to its character count (floored at
// MinFragmentSec) and emits a quiet sine tone in place of real speech, so
// the DTW aligner and anchor projector can be exercised without any
// model files on disk.
type Uniform struct {
	SampleRateHz     int     // default 16000
	SecondsPerChar   float64 // default 0.06
	MinFragmentSec   float64 // default 0.2
	ToneHz           float64 // default 220
	ToneAmplitude    float32 // default 0.2
	SilenceBetweenMs int     // gap inserted between fragments, default 50
}

// DefaultUniform returns the spec-agnostic defaults used by tests.
func DefaultUniform() Uniform {
	return Uniform{
		SampleRateHz:     16000,
		SecondsPerChar:   0.06,
		MinFragmentSec:   0.2,
		ToneHz:           220,
		ToneAmplitude:    0.2,
		SilenceBetweenMs: 50,
	}
}

// Synthesize implements Synthesizer.
func (u Uniform) Synthesize(ctx context.Context, fragments textfile.List) (*pcm.Buffer, []Anchor, error) {
	if len(fragments) == 0 {
		return nil, nil, ErrInvalidText
	}
	rate := u.SampleRateHz
	if rate <= 0 {
		rate = 16000
	}
	gapSamples := int(float64(u.SilenceBetweenMs) / 1000 * float64(rate))

	var samples []float32
	anchors := make([]Anchor, 0, len(fragments))

	for i, f := range fragments {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		startSec := float64(len(samples)) / float64(rate)
		anchors = append(anchors, Anchor{FragmentIndex: i, StartSec: startSec})

		durSec := float64(f.CharCount()) * u.SecondsPerChar
		if durSec < u.MinFragmentSec {
			durSec = u.MinFragmentSec
		}
		n := int(durSec * float64(rate))
		for s := 0; s < n; s++ {
			t := float64(s) / float64(rate)
			samples = append(samples, u.ToneAmplitude*float32(math.Sin(2*math.Pi*u.ToneHz*t)))
		}
		if i < len(fragments)-1 {
			for s := 0; s < gapSamples; s++ {
				samples = append(samples, 0)
			}
		}
	}

	return &pcm.Buffer{Samples: samples, RateHz: rate}, anchors, nil
}
