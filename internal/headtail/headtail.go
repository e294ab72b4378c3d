// Package headtail implements the Head/Tail Detector (SD) from spec §4.3:
// it runs vad over the full audio and looks for the first speech interval
// whose start falls inside the head window, and the last speech interval
// whose distance from its end to the end of the audio falls inside the
// tail window.
package headtail

import (
	"github.com/naozine/syncalign/internal/mfcc"
	"github.com/naozine/syncalign/internal/vad"
)

// Range bounds a head or tail search window in seconds.
type Range struct {
	Min float64
	Max float64
}

// DetectHead returns the start time of the first speech interval whose
// start lies in [r.Min, r.Max]; if none qualifies, it returns r.Min.
func DetectHead(full *mfcc.Matrix, r Range) float64 {
	speech := vad.Detect(full, vad.Default()).Speech
	for _, iv := range speech {
		if iv.Start >= r.Min && iv.Start <= r.Max {
			return iv.Start
		}
	}
	return r.Min
}

// DetectTail is the mirror of DetectHead: it returns the distance from the
// end of the audio to the start of the trailing silence, measured from the
// last speech interval whose end lies within [duration-r.Max,
// duration-r.Min] of the end.
func DetectTail(full *mfcc.Matrix, r Range) float64 {
	duration := float64(full.T) * full.HopSec
	speech := vad.Detect(full, vad.Default()).Speech
	for i := len(speech) - 1; i >= 0; i-- {
		iv := speech[i]
		distFromEnd := duration - iv.End
		if distFromEnd >= r.Min && distFromEnd <= r.Max {
			return distFromEnd
		}
	}
	return r.Min
}
