package headtail

import (
	"math"
	"testing"

	"github.com/naozine/syncalign/internal/mfcc"
	"github.com/naozine/syncalign/internal/pcm"
)

func toneWithSilence(rate int, silenceSec, speechSec float64) *pcm.Buffer {
	total := int((silenceSec + speechSec) * float64(rate))
	samples := make([]float32, total)
	silenceSamples := int(silenceSec * float64(rate))
	for i := silenceSamples; i < total; i++ {
		t := float64(i) / float64(rate)
		samples[i] = 0.5 * float32(math.Sin(2*math.Pi*220*t))
	}
	return &pcm.Buffer{Samples: samples, RateHz: rate}
}

func TestDetectHeadFindsLeadingSilence(t *testing.T) {
	buf := toneWithSilence(16000, 1.0, 2.0)
	m, err := mfcc.Extract(buf, mfcc.Default())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	head := DetectHead(m, Range{Min: 0, Max: 5})
	if head < 0.5 || head > 1.5 {
		t.Errorf("expected head around 1.0s, got %v", head)
	}
}

func TestDetectHeadFallsBackToMin(t *testing.T) {
	buf := toneWithSilence(16000, 0, 1.0)
	m, err := mfcc.Extract(buf, mfcc.Default())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	head := DetectHead(m, Range{Min: 3, Max: 5})
	if head != 3 {
		t.Errorf("expected fallback to Min=3, got %v", head)
	}
}

func TestDetectTailFallsBackToMin(t *testing.T) {
	buf := toneWithSilence(16000, 0, 1.0)
	m, err := mfcc.Extract(buf, mfcc.Default())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	tail := DetectTail(m, Range{Min: 3, Max: 5})
	if tail != 3 {
		t.Errorf("expected fallback to Min=3, got %v", tail)
	}
}
