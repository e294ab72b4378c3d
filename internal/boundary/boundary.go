// Package boundary implements the Boundary Adjuster from spec §4.7: given
// an interval list (including the fixed HEAD/TAIL intervals) and the
// speech/non-speech partition of the full audio, it nudges each interior
// fragment boundary according to a chosen policy.
//
// The cluster/merge-gap search-window shape is adapted from the teacher's
// internal/asr/boundary.go (FindAudioClusters/MergeClusters/
// AdjustBoundaries), generalized from "search a waveform peak array for
// nearby audio clusters" to "search a vad.Result non-speech set for the
// interval containing a boundary point" — the non-speech set already IS
// the merged-cluster complement, so no separate merge pass is needed
// here.
package boundary

import (
	"errors"

	"github.com/naozine/syncalign/internal/interval"
)

// Kind enumerates the policies from spec §4.7.
type Kind int

const (
	None Kind = iota
	Auto
	AfterCurrent
	BeforeNext
	Offset
	Percent
	Rate
	RateAggressive
)

// ErrNoFragments is returned when fewer than 3 intervals (HEAD, at least
// one fragment, TAIL) are supplied.
var ErrNoFragments = errors.New("boundary: need at least HEAD, one fragment and TAIL")

// epsilon keeps an adjusted boundary strictly inside its neighbors.
const epsilon = 1e-3

// Policy selects a Kind and its parameter. Delta is seconds (OFFSET,
// AFTER_CURRENT, BEFORE_NEXT); Percent is 0-100 (PERCENT); Rate is
// characters/second (RATE, RATE_AGGRESSIVE).
type Policy struct {
	Kind    Kind
	Delta   float64
	Percent float64
	Rate    float64
}

const maxRateAggressiveIterations = 16

// Adjust returns a new interval list with interior boundaries nudged per
// policy. intervals[0] is HEAD, intervals[len-1] is TAIL; nonspeech is the
// non-speech set from VAD over the full audio; charCounts holds one
// character count per fragment (len(intervals)-2 entries), used only by
// RATE and RATE_AGGRESSIVE.
func Adjust(intervals interval.Set, nonspeech interval.Set, policy Policy, charCounts []int) (interval.Set, error) {
	if len(intervals) < 3 {
		return nil, ErrNoFragments
	}
	out := make(interval.Set, len(intervals))
	copy(out, intervals)

	switch policy.Kind {
	case None, Auto:
		return out, nil
	case Offset:
		adjustEachInteriorBoundary(out, func(k int, b float64) float64 {
			lo := out[k-1].End + epsilon
			hi := out[k+2].Start - epsilon
			return clamp(b+policy.Delta, lo, hi)
		})
	case AfterCurrent:
		adjustEachInteriorBoundary(out, func(k int, b float64) float64 {
			candidate := intervals[k].End + policy.Delta
			return clampIntoNonspeech(nonspeech, b, candidate)
		})
	case BeforeNext:
		adjustEachInteriorBoundary(out, func(k int, b float64) float64 {
			candidate := intervals[k+1].Start - policy.Delta
			return clampIntoNonspeech(nonspeech, b, candidate)
		})
	case Percent:
		adjustEachInteriorBoundary(out, func(k int, b float64) float64 {
			ns, ok := nonspeech.Contains(b)
			if !ok {
				return b
			}
			return ns.Start + (policy.Percent/100)*ns.Duration()
		})
	case Rate:
		applyRate(out, nonspeech, charCounts, policy.Rate, false)
	case RateAggressive:
		for it := 0; it < maxRateAggressiveIterations; it++ {
			if !applyRate(out, nonspeech, charCounts, policy.Rate, true) {
				break
			}
		}
	}
	return out, nil
}

// adjustEachInteriorBoundary calls f for every boundary shared by two
// consecutive fragment intervals (excluding the HEAD/TAIL boundaries),
// and writes the result back to both sides of the boundary.
func adjustEachInteriorBoundary(out interval.Set, f func(k int, b float64) float64) {
	n := len(out)
	for k := 1; k <= n-3; k++ {
		b := out[k].End
		nb := f(k, b)
		out[k].End = nb
		out[k+1].Start = nb
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampIntoNonspeech returns candidate clamped into the non-speech
// interval containing the original boundary b; if b lies in no non-speech
// interval it returns b unchanged, per spec §4.7's "clamped into the
// containing non-speech interval if one exists; otherwise unchanged".
func clampIntoNonspeech(nonspeech interval.Set, b, candidate float64) float64 {
	ns, ok := nonspeech.Contains(b)
	if !ok {
		return b
	}
	return clamp(candidate, ns.Start, ns.End)
}

// charsPerSecond returns the reading rate of fragment fragIdx (0-based
// into charCounts; its interval is out[fragIdx+1], since out[0] is HEAD).
func charsPerSecond(out interval.Set, charCounts []int, fragIdx int) float64 {
	dur := out[fragIdx+1].Duration()
	if dur <= 0 {
		return 0
	}
	return float64(charCounts[fragIdx]) / dur
}

// followingNonspeechSlack returns how much of the fragment starting at
// boundary b can be reclaimed without cutting into its speech: the run of
// non-speech that begins at (or contains) b, capped at the fragment's own
// end so a following fragment is never overrun entirely.
func followingNonspeechSlack(nonspeech interval.Set, b, fragEnd float64) float64 {
	ns, ok := nonspeech.Contains(b)
	if !ok {
		return 0
	}
	end := ns.End
	if end > fragEnd {
		end = fragEnd
	}
	slack := end - b
	if slack < 0 {
		return 0
	}
	return slack
}

// applyRate implements RATE (aggressive=false) and one pass of
// RATE_AGGRESSIVE (aggressive=true), returning whether any boundary
// changed. Per spec §4.7, RATE may only extend a fragment into the
// non-speech that already follows it; RATE_AGGRESSIVE may additionally
// borrow from a slower successor's own speech, down to that successor's
// rate-r duration.
func applyRate(out interval.Set, nonspeech interval.Set, charCounts []int, rate float64, aggressive bool) bool {
	numFragments := len(out) - 2
	if numFragments != len(charCounts) {
		return false
	}
	changed := false
	for i := 0; i < numFragments; i++ {
		fragIdx := i + 1 // index into out
		rateNow := charsPerSecond(out, charCounts, i)
		if rateNow <= rate {
			continue
		}
		if fragIdx+1 >= len(out)-1 {
			continue // last fragment has no following interior boundary to extend into
		}
		needSec := float64(charCounts[i])/rate - out[fragIdx].Duration()
		if needSec <= 0 {
			continue
		}

		boundary := out[fragIdx].End
		available := followingNonspeechSlack(nonspeech, boundary, out[fragIdx+1].End)
		if aggressive {
			nextRate := charsPerSecond(out, charCounts, i+1)
			if nextRate < rate {
				// the following fragment reads slower than target: we may
				// also borrow time from its own speech, down to its own
				// rate-r duration.
				nextMinDuration := float64(charCounts[i+1]) / rate
				rateSlack := out[fragIdx+1].Duration() - nextMinDuration
				if rateSlack > available {
					available = rateSlack
				}
			}
		}
		if available <= 0 {
			continue
		}
		borrow := needSec
		if borrow > available {
			borrow = available
		}
		if borrow <= 0 {
			continue
		}
		newBoundary := out[fragIdx].End + borrow
		out[fragIdx].End = newBoundary
		out[fragIdx+1].Start = newBoundary
		changed = true
	}
	return changed
}
