// Package anchor implements the Anchor Projector from spec §4.5: it takes
// the DTW output mapping and the synthesizer's per-fragment timestamps and
// projects each fragment onto a point in the real audio's timeline.
//
// The projection itself — nearest-synth-time argmin search with a
// smallest-index tie-break, plus a trailing dummy anchor standing in for
// "end of audio" — is lifted from aeneas's executetask._align_text, which
// computes numpy.abs(synt_times - time).argmin() per fragment and appends
// a dummy final anchor before turning the anchor list into fragment
// intervals. The teacher repo has no equivalent step (zbor never anchors
// a synthesized timeline onto a real one), so align.go's LCS-based
// anchor struct only lends its naming convention, not its algorithm.
package anchor

import (
	"errors"
	"fmt"
	"math"

	"github.com/naozine/syncalign/internal/dtw"
	"github.com/naozine/syncalign/internal/interval"
)

// ErrNoFragments is returned when FragmentSynthSec is empty.
var ErrNoFragments = errors.New("anchor: no fragment synth timestamps given")

// Point is one fragment's projected anchor: FragmentIndex into real audio
// time RealSec.
type Point struct {
	FragmentIndex int
	RealSec       float64
}

// Project walks mapping (sorted by SynthSec ascending, one row per
// synthetic frame, as produced by dtw.Align) and, for every fragment
// start time in fragmentSynthSec, finds the mapping row whose SynthSec is
// closest and reports its RealSec. A trailing dummy anchor is appended at
// index len(fragmentSynthSec), pointing at the real time of the last
// mapping row, per aeneas's "dummy last anchor" convention.
func Project(mapping []dtw.MappingRow, fragmentSynthSec []float64) ([]Point, error) {
	if len(fragmentSynthSec) == 0 {
		return nil, ErrNoFragments
	}
	if len(mapping) == 0 {
		return nil, fmt.Errorf("anchor: empty dtw mapping")
	}

	points := make([]Point, 0, len(fragmentSynthSec)+1)
	for i, synt := range fragmentSynthSec {
		points = append(points, Point{FragmentIndex: i, RealSec: nearestRealSec(mapping, synt)})
	}
	points = append(points, Point{
		FragmentIndex: len(fragmentSynthSec),
		RealSec:       mapping[len(mapping)-1].RealSec,
	})
	return points, nil
}

// nearestRealSec returns the RealSec of the mapping row whose SynthSec is
// closest to target, breaking ties toward the smaller index.
func nearestRealSec(mapping []dtw.MappingRow, target float64) float64 {
	bestIdx := 0
	bestDist := math.Abs(mapping[0].SynthSec - target)
	for i := 1; i < len(mapping); i++ {
		d := math.Abs(mapping[i].SynthSec - target)
		if d < bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	return mapping[bestIdx].RealSec
}

// Intervals turns consecutive anchor points into one interval per
// fragment: fragment i spans [points[i].RealSec, points[i+1].RealSec).
func Intervals(points []Point) interval.Set {
	if len(points) < 2 {
		return nil
	}
	out := make(interval.Set, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		out = append(out, interval.Interval{
			Start: points[i].RealSec,
			End:   points[i+1].RealSec,
		})
	}
	return out
}
