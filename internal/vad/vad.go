// Package vad implements MFCC-based voice activity detection per spec §4.2.
// The run-length classification and block-splitting logic is adapted from
// internal/asr/silence.go's RMS-based speech-block detector in the teacher:
// the same "classify frame, absorb short runs into the opposite class,
// emit maximal runs" shape, but driven by the 0th MFCC coefficient (an
// energy proxy) instead of raw-sample RMS.
package vad

import (
	"math"

	"github.com/naozine/syncalign/internal/interval"
	"github.com/naozine/syncalign/internal/mfcc"
)

// Params configures the detector.
type Params struct {
	// EnergyThresholdRatio (theta) multiplies the max frame energy to get
	// the classification threshold. Default 0.699.
	EnergyThresholdRatio float64
	MinSpeechFrames      int
	MinNonspeechFrames   int
}

// Default returns the spec-mandated defaults.
func Default() Params {
	return Params{
		EnergyThresholdRatio: 0.699,
		MinSpeechFrames:      2,
		MinNonspeechFrames:   2,
	}
}

// Result holds the speech/non-speech partition of [0, T*hop].
type Result struct {
	Speech    interval.Set
	Nonspeech interval.Set
}

// Detect classifies every frame of m as speech or non-speech and returns
// the maximal-run interval partition.
func Detect(m *mfcc.Matrix, p Params) Result {
	if m.T == 0 {
		return Result{}
	}

	energy := make([]float64, m.T)
	maxEnergy := math.Inf(-1)
	for t := 0; t < m.T; t++ {
		e := m.At(0, t)
		energy[t] = e
		if e > maxEnergy {
			maxEnergy = e
		}
	}
	threshold := p.EnergyThresholdRatio * maxEnergy

	isSpeech := make([]bool, m.T)
	for t, e := range energy {
		isSpeech[t] = e >= threshold
	}

	absorbShortRuns(isSpeech, p.MinSpeechFrames, p.MinNonspeechFrames)

	return buildIntervals(isSpeech, m.HopSec)
}

// absorbShortRuns merges runs shorter than the configured minimum into the
// neighboring run of the opposite class, repeating until stable.
func absorbShortRuns(isSpeech []bool, minSpeech, minNonspeech int) {
	if len(isSpeech) == 0 {
		return
	}
	for pass := 0; pass < len(isSpeech); pass++ {
		runs := runLengths(isSpeech)
		changed := false
		idx := 0
		for _, r := range runs {
			minLen := minNonspeech
			if isSpeech[idx] {
				minLen = minSpeech
			}
			if r < minLen {
				for i := idx; i < idx+r; i++ {
					isSpeech[i] = !isSpeech[i]
				}
				changed = true
			}
			idx += r
		}
		if !changed {
			break
		}
	}
}

func runLengths(isSpeech []bool) []int {
	var runs []int
	if len(isSpeech) == 0 {
		return runs
	}
	cur := isSpeech[0]
	count := 1
	for i := 1; i < len(isSpeech); i++ {
		if isSpeech[i] == cur {
			count++
		} else {
			runs = append(runs, count)
			cur = isSpeech[i]
			count = 1
		}
	}
	runs = append(runs, count)
	return runs
}

// buildIntervals emits maximal runs as intervals partitioning [0, T*hop],
// using frame-boundary times (t*hop) as the split points between runs —
// the discrete equivalent of "frame midpoints" since adjacent frames abut
// at exactly their shared hop boundary.
func buildIntervals(isSpeech []bool, hop float64) Result {
	var res Result
	if len(isSpeech) == 0 {
		return res
	}

	n := len(isSpeech)
	cur := isSpeech[0]
	start := 0
	flush := func(startFrame, endFrame int, speech bool) {
		iv := interval.Interval{
			Start: float64(startFrame) * hop,
			End:   float64(endFrame) * hop,
		}
		if speech {
			res.Speech = append(res.Speech, iv)
		} else {
			res.Nonspeech = append(res.Nonspeech, iv)
		}
	}

	for i := 1; i < n; i++ {
		if isSpeech[i] != cur {
			flush(start, i, cur)
			start = i
			cur = isSpeech[i]
		}
	}
	flush(start, n, cur)

	return res
}
