package boundary

import (
	"testing"

	"github.com/naozine/syncalign/internal/interval"
)

func headTailFragments(bounds ...float64) interval.Set {
	out := make(interval.Set, 0, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		out = append(out, interval.Interval{Start: bounds[i], End: bounds[i+1]})
	}
	return out
}

func TestAdjustNoneIsIdentity(t *testing.T) {
	intervals := headTailFragments(0, 1, 3, 5, 6)
	out, err := Adjust(intervals, nil, Policy{Kind: None}, nil)
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	for i := range intervals {
		if out[i] != intervals[i] {
			t.Errorf("interval %d changed under NONE: %+v -> %+v", i, intervals[i], out[i])
		}
	}
}

func TestAdjustOffsetClampsWithinNeighbors(t *testing.T) {
	// HEAD [0,1), frag0 [1,3), frag1 [3,5), TAIL [5,6)
	intervals := headTailFragments(0, 1, 3, 5, 6)
	out, err := Adjust(intervals, nil, Policy{Kind: Offset, Delta: 10}, nil)
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	// only one interior boundary exists (between frag0 and frag1 at t=3);
	// clamp bounds are end_{i-1}=1 and start_{i+2}=5.
	if out[1].End <= 1 || out[1].End >= 5 {
		t.Errorf("boundary not clamped: %v", out[1].End)
	}
	if out[1].End != out[2].Start {
		t.Errorf("boundary desync: frag end %v != next frag start %v", out[1].End, out[2].Start)
	}
}

func TestAdjustTooFewIntervals(t *testing.T) {
	if _, err := Adjust(headTailFragments(0, 1), nil, Policy{Kind: None}, nil); err != ErrNoFragments {
		t.Errorf("expected ErrNoFragments, got %v", err)
	}
}

func TestAdjustPercentUsesNonspeechWindow(t *testing.T) {
	intervals := headTailFragments(0, 1, 3, 5, 6)
	nonspeech := interval.Set{{Start: 2.8, End: 3.2}}
	out, err := Adjust(intervals, nonspeech, Policy{Kind: Percent, Percent: 50}, nil)
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	want := 2.8 + 0.5*0.4
	if diff := out[1].End - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("got %v, want %v", out[1].End, want)
	}
}

func TestAdjustPercentUnchangedOutsideNonspeech(t *testing.T) {
	intervals := headTailFragments(0, 1, 3, 5, 6)
	nonspeech := interval.Set{{Start: 10, End: 11}}
	out, err := Adjust(intervals, nonspeech, Policy{Kind: Percent, Percent: 50}, nil)
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if out[1].End != 3 {
		t.Errorf("expected unchanged boundary, got %v", out[1].End)
	}
}

func TestAdjustRateExtendsFasterFragment(t *testing.T) {
	// frag0 [1,2): 20 chars in 1s = 20 chars/s, exceeds rate 10.
	// frag1 [2,6) opens with a non-speech run [2,3): RATE may only
	// reclaim that silence, never frag1's actual speech.
	intervals := headTailFragments(0, 1, 2, 6, 7)
	nonspeech := interval.Set{{Start: 2, End: 3}}
	out, err := Adjust(intervals, nonspeech, Policy{Kind: Rate, Rate: 10}, []int{20, 4})
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if out[1].Duration() <= 1 {
		t.Errorf("expected frag0 to be extended, duration=%v", out[1].Duration())
	}
	if out[1].End != out[2].Start {
		t.Errorf("boundary desync")
	}
}

func TestAdjustRateDoesNotExceedNonspeech(t *testing.T) {
	// frag0 needs a full extra second, but only 0.3s of non-speech
	// follows the boundary: RATE must stop there, not dip into frag1's
	// speech.
	intervals := headTailFragments(0, 1, 2, 6, 7)
	nonspeech := interval.Set{{Start: 2, End: 2.3}}
	out, err := Adjust(intervals, nonspeech, Policy{Kind: Rate, Rate: 10}, []int{20, 4})
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if diff := out[1].End - 2.3; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected frag0 to extend to 2.3, got %v", out[1].End)
	}
}

func TestAdjustRateNoopWithoutNonspeech(t *testing.T) {
	// no non-speech data at all: RATE must leave boundaries untouched
	// rather than borrowing from frag1's own duration.
	intervals := headTailFragments(0, 1, 2, 6, 7)
	out, err := Adjust(intervals, nil, Policy{Kind: Rate, Rate: 10}, []int{20, 4})
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if out[1].Duration() != 1 {
		t.Errorf("expected frag0 unchanged without non-speech data, duration=%v", out[1].Duration())
	}
}

func TestAdjustRateAggressiveConverges(t *testing.T) {
	intervals := headTailFragments(0, 1, 2, 8, 9)
	out, err := Adjust(intervals, nil, Policy{Kind: RateAggressive, Rate: 10}, []int{20, 4})
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if out[1].Duration() <= 1 {
		t.Errorf("expected frag0 extended under RATE_AGGRESSIVE, got duration=%v", out[1].Duration())
	}
}
