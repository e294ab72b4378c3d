// Package pcm owns decoded mono PCM buffers: load from / write to WAV,
// and trim to a sub-range. Everything downstream (mfcc, vad, dtw) consumes
// a Buffer read-only.
package pcm

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Buffer is a single-channel PCM buffer normalized to [-1, 1].
type Buffer struct {
	Samples []float32
	RateHz  int
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b.RateHz <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.RateHz)
}

// Validate checks the invariants PCM buffers must hold downstream.
func (b *Buffer) Validate() error {
	if b.RateHz <= 0 {
		return fmt.Errorf("pcm: invalid sample rate %d", b.RateHz)
	}
	return nil
}

// LoadWAV reads a mono 16-bit PCM WAV file into a Buffer.
func LoadWAV(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pcm: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.WasPCMAccessed() && !dec.IsValidFile() {
		return nil, fmt.Errorf("pcm: %s is not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("pcm: decode %s: %w", path, err)
	}

	samples := make([]float32, buf.NumFrames())
	maxAmp := float64(int(1) << (uint(dec.BitDepth) - 1))
	if buf.SourceBitDepth > 0 {
		maxAmp = float64(int(1) << (uint(buf.SourceBitDepth) - 1))
	}

	numChans := buf.Format.NumChannels
	if numChans < 1 {
		numChans = 1
	}
	for i := 0; i < buf.NumFrames(); i++ {
		// Reduce to mono by keeping the first channel only; the other
		// channels are dropped, not mixed in.
		idx := i * numChans
		if idx >= len(buf.Data) {
			break
		}
		samples[i] = float32(float64(buf.Data[idx]) / maxAmp)
	}

	return &Buffer{Samples: samples, RateHz: int(dec.SampleRate)}, nil
}

// WriteWAV writes the buffer to path as 16-bit mono PCM WAV.
func (b *Buffer) WriteWAV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pcm: create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, b.RateHz, 16, 1, 1)
	intBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: b.RateHz},
		Data:           make([]int, len(b.Samples)),
		SourceBitDepth: 16,
	}
	for i, s := range b.Samples {
		v := int(s * 32768.0)
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		intBuf.Data[i] = v
	}
	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("pcm: write %s: %w", path, err)
	}
	return enc.Close()
}

// Trim returns a new Buffer covering [start, start+length) seconds.
// A zero or negative length means "to the end". Out-of-range bounds are
// clamped rather than treated as an error.
func (b *Buffer) Trim(startSec, lengthSec float64) *Buffer {
	if startSec < 0 {
		startSec = 0
	}
	startIdx := int(startSec * float64(b.RateHz))
	if startIdx > len(b.Samples) {
		startIdx = len(b.Samples)
	}

	endIdx := len(b.Samples)
	if lengthSec > 0 {
		endIdx = startIdx + int(lengthSec*float64(b.RateHz))
		if endIdx > len(b.Samples) {
			endIdx = len(b.Samples)
		}
	}

	out := make([]float32, endIdx-startIdx)
	copy(out, b.Samples[startIdx:endIdx])
	return &Buffer{Samples: out, RateHz: b.RateHz}
}
