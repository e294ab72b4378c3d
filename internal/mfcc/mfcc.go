// Package mfcc computes Mel-Frequency Cepstral Coefficient matrices from a
// PCM buffer, per spec §4.1. The FFT is provided by github.com/mjibson/go-dsp,
// the same family of library the fbank/mel extractors in the retrieval pack
// (cvoalex-digital-clone's mel processor, haivivi-giztoy's fbank) reach for
// instead of a hand-rolled transform.
package mfcc

import (
	"errors"
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/naozine/syncalign/internal/pcm"
)

// ErrInvalidAudio is returned when the buffer is too short to extract even
// a single frame.
var ErrInvalidAudio = errors.New("mfcc: audio shorter than one analysis window")

// Params configures extraction. Zero value Params is invalid; use Default().
type Params struct {
	Coefficients int     // F, default 13
	WindowSec    float64 // default 0.100
	HopSec       float64 // default 0.040
	MelBands     int     // default 40
	PreEmphasis  float64 // default 0.97
	LowerHz      float64 // default 133.33
	UpperHz      float64 // default min(6855.5, nyquist); 0 means "use default"
}

// Default returns the spec-mandated defaults.
func Default() Params {
	return Params{
		Coefficients: 13,
		WindowSec:    0.100,
		HopSec:       0.040,
		MelBands:     40,
		PreEmphasis:  0.97,
		LowerHz:      133.33,
		UpperHz:      6855.5,
	}
}

// Matrix is a dense F x T matrix of MFCC coefficients, stored row-major:
// Data[f*T+t] is coefficient f of frame t.
type Matrix struct {
	Data   []float64
	F      int
	T      int
	HopSec float64
}

// At returns coefficient f of frame t.
func (m *Matrix) At(f, t int) float64 { return m.Data[f*m.T+t] }

// Col returns a copy of frame t's coefficient vector.
func (m *Matrix) Col(t int) []float64 {
	out := make([]float64, m.F)
	for f := 0; f < m.F; f++ {
		out[f] = m.Data[f*m.T+t]
	}
	return out
}

// Extract computes the F x T MFCC matrix of buf.
func Extract(buf *pcm.Buffer, p Params) (*Matrix, error) {
	rate := buf.RateHz
	windowSamples := int(p.WindowSec * float64(rate))
	hopSamples := int(p.HopSec * float64(rate))
	if windowSamples <= 0 || hopSamples <= 0 {
		return nil, fmt.Errorf("mfcc: non-positive window/hop for rate %d", rate)
	}
	if len(buf.Samples) < windowSamples {
		return nil, ErrInvalidAudio
	}

	durationSec := float64(len(buf.Samples)) / float64(rate)
	t := int(math.Floor((durationSec-p.WindowSec)/p.HopSec)) + 1
	if t < 1 {
		t = 1
	}

	fftSize := nextPow2(windowSamples)
	upperHz := p.UpperHz
	nyquist := float64(rate) / 2
	if upperHz <= 0 || upperHz > nyquist {
		upperHz = nyquist
	}
	if upperHz > 6855.5 {
		upperHz = 6855.5
	}
	if upperHz > nyquist {
		upperHz = nyquist
	}

	filterbank := melFilterbank(p.MelBands, fftSize, rate, p.LowerHz, upperHz)

	emph := preEmphasize(buf.Samples, p.PreEmphasis)
	window := hammingWindow(windowSamples)

	data := make([]float64, p.Coefficients*t)
	frame := make([]float64, fftSize)
	melEnergies := make([]float64, p.MelBands)

	for fr := 0; fr < t; fr++ {
		start := int(float64(fr) * p.HopSec * float64(rate))
		for i := range frame {
			frame[i] = 0
		}
		for i := 0; i < windowSamples && start+i < len(emph); i++ {
			frame[i] = emph[start+i] * window[i]
		}

		spectrum := fft.FFTReal(frame)
		half := fftSize/2 + 1
		power := make([]float64, half)
		for i := 0; i < half; i++ {
			re := real(spectrum[i])
			im := imag(spectrum[i])
			power[i] = (re*re + im*im) / float64(fftSize)
		}

		for b := 0; b < p.MelBands; b++ {
			var sum float64
			row := filterbank[b]
			for i, w := range row {
				sum += w * power[i]
			}
			if sum < 1e-10 {
				sum = 1e-10
			}
			melEnergies[b] = math.Log(sum)
		}

		coeffs := dctII(melEnergies, p.Coefficients)
		for f := 0; f < p.Coefficients; f++ {
			data[f*t+fr] = coeffs[f]
		}
	}

	return &Matrix{Data: data, F: p.Coefficients, T: t, HopSec: p.HopSec}, nil
}

func preEmphasize(x []float32, alpha float64) []float64 {
	y := make([]float64, len(x))
	if len(x) == 0 {
		return y
	}
	y[0] = float64(x[0])
	for n := 1; n < len(x); n++ {
		y[n] = float64(x[n]) - alpha*float64(x[n-1])
	}
	return y
}

func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// melFilterbank returns numBands triangular filters over the [0, fftSize/2]
// power-spectrum bins, spaced uniformly in mel scale between lowerHz and
// upperHz.
func melFilterbank(numBands, fftSize, rate int, lowerHz, upperHz float64) [][]float64 {
	half := fftSize/2 + 1
	hzToMel := func(hz float64) float64 { return 2595 * math.Log10(1+hz/700) }
	melToHz := func(mel float64) float64 { return 700 * (math.Pow(10, mel/2595) - 1) }

	lowMel := hzToMel(lowerHz)
	highMel := hzToMel(upperHz)

	points := make([]float64, numBands+2)
	for i := range points {
		points[i] = lowMel + (highMel-lowMel)*float64(i)/float64(numBands+1)
	}

	binFreqs := make([]int, numBands+2)
	for i, mel := range points {
		hz := melToHz(mel)
		binFreqs[i] = int(math.Floor(float64(fftSize+1) * hz / float64(rate)))
	}

	filters := make([][]float64, numBands)
	for b := 0; b < numBands; b++ {
		row := make([]float64, half)
		left, center, right := binFreqs[b], binFreqs[b+1], binFreqs[b+2]
		for i := left; i < center && i < half; i++ {
			if center != left {
				row[i] = float64(i-left) / float64(center-left)
			}
		}
		for i := center; i < right && i < half; i++ {
			if right != center {
				row[i] = float64(right-i) / float64(right-center)
			}
		}
		filters[b] = row
	}
	return filters
}

// dctII returns the first outN coefficients of the DCT-II of x.
func dctII(x []float64, outN int) []float64 {
	n := len(x)
	out := make([]float64, outN)
	for k := 0; k < outN; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += x[i] * math.Cos(math.Pi/float64(n)*(float64(i)+0.5)*float64(k))
		}
		out[k] = sum
	}
	return out
}
