package vad

import (
	"testing"

	"github.com/naozine/syncalign/internal/mfcc"
)

func matrixFromEnergy(energy []float64, hop float64) *mfcc.Matrix {
	f := 2
	t := len(energy)
	data := make([]float64, f*t)
	for i, e := range energy {
		data[i] = e // coefficient 0
	}
	return &mfcc.Matrix{Data: data, F: f, T: t, HopSec: hop}
}

func TestDetectSplitsSpeechAndNonspeech(t *testing.T) {
	energy := []float64{0, 0, 0, 10, 10, 10, 10, 0, 0, 0}
	m := matrixFromEnergy(energy, 0.04)

	res := Detect(m, Default())
	if len(res.Speech) != 1 {
		t.Fatalf("expected exactly one speech run, got %d", len(res.Speech))
	}
	if len(res.Nonspeech) != 2 {
		t.Fatalf("expected two non-speech runs, got %d", len(res.Nonspeech))
	}
}

func TestDetectAbsorbsShortRuns(t *testing.T) {
	energy := []float64{10, 10, 10, 0, 10, 10, 10, 10}
	m := matrixFromEnergy(energy, 0.04)

	res := Detect(m, Params{EnergyThresholdRatio: 0.5, MinSpeechFrames: 2, MinNonspeechFrames: 2})
	if len(res.Nonspeech) != 0 {
		t.Errorf("expected the single-frame dip to be absorbed, got %d non-speech runs", len(res.Nonspeech))
	}
}

func TestDetectEmptyMatrix(t *testing.T) {
	m := &mfcc.Matrix{F: 2, T: 0, HopSec: 0.04}
	res := Detect(m, Default())
	if len(res.Speech) != 0 || len(res.Nonspeech) != 0 {
		t.Error("expected empty result for empty matrix")
	}
}
