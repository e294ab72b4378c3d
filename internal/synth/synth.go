// Package synth defines the Synthesizer collaborator from spec §9 (via
// SPEC_FULL §9): turning the text fragment list into a synthesized
// waveform plus one start-time anchor per fragment, the input the DTW
// aligner and anchor projector need on the "synthetic" side of the
// timeline. STEP 3 of aeneas's executetask.py ("synthesize text") is the
// direct model: SynthesizerWrapper.synthesize accumulates a running
// clock and records each fragment's start before appending its audio.
package synth

import (
	"context"
	"errors"

	"github.com/naozine/syncalign/internal/pcm"
	"github.com/naozine/syncalign/internal/textfile"
)

// ErrInvalidText is returned when Synthesize is given an empty fragment list.
var ErrInvalidText = errors.New("synth: no fragments to synthesize")

// Anchor records the synthesized-timeline start of one fragment.
type Anchor struct {
	FragmentIndex int
	StartSec      float64
}

// StartTimes extracts StartSec from a list of Anchors, in order — the
// shape internal/anchor.Project expects as fragmentSynthSec.
func StartTimes(anchors []Anchor) []float64 {
	out := make([]float64, len(anchors))
	for i, a := range anchors {
		out[i] = a.StartSec
	}
	return out
}

// Synthesizer turns a text fragment list into a single concatenated
// waveform and the synthesized-time anchor of each fragment's start.
type Synthesizer interface {
	Synthesize(ctx context.Context, fragments textfile.List) (*pcm.Buffer, []Anchor, error)
}
