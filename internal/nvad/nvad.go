// Package nvad is a standalone neural-network voice activity detector
// built on a Silero VAD model file. Nothing in the pipeline calls it:
// head/tail detection always uses internal/vad's MFCC-energy heuristic,
// and no configuration option selects this detector. It is adapted directly from the
// teacher's internal/asr/vad.go: the same sherpa.VoiceActivityDetector
// AcceptWaveform/Front/Pop/Flush drain loop, but collecting speech
// segments into an interval.Set instead of feeding an ASR recognizer.
package nvad

import (
	"fmt"
	"os"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"

	"github.com/naozine/syncalign/internal/interval"
	"github.com/naozine/syncalign/internal/pcm"
)

// Config configures the Silero VAD model.
type Config struct {
	ModelPath          string
	Threshold          float32 // default 0.5
	MinSpeechDuration  float32 // default 0.25
	MinSilenceDuration float32 // default 0.5
	SampleRateHz       int     // must match the buffer passed to Detect
	BufferSec          int     // internal ring buffer size, default 30
}

// Default returns the teacher's VADConfig defaults, with modelPath and
// sampleRateHz filled in by the caller.
func Default(modelPath string, sampleRateHz int) Config {
	return Config{
		ModelPath:          modelPath,
		Threshold:          0.5,
		MinSpeechDuration:  0.25,
		MinSilenceDuration: 0.5,
		SampleRateHz:       sampleRateHz,
		BufferSec:          30,
	}
}

// Detect runs the Silero VAD over buf and returns the speech intervals it
// found, in seconds. It returns an error if the model file is missing so
// callers can fall back to internal/vad's heuristic detector.
func Detect(buf *pcm.Buffer, cfg Config) (interval.Set, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("nvad: model not found: %s", cfg.ModelPath)
	}

	vadModelConfig := sherpa.VadModelConfig{
		SileroVad: sherpa.SileroVadModelConfig{
			Model:              cfg.ModelPath,
			Threshold:          cfg.Threshold,
			MinSilenceDuration: cfg.MinSilenceDuration,
			MinSpeechDuration:  cfg.MinSpeechDuration,
			WindowSize:         512,
		},
		SampleRate: cfg.SampleRateHz,
		NumThreads: 1,
		Debug:      0,
	}

	bufferSec := cfg.BufferSec
	if bufferSec <= 0 {
		bufferSec = 30
	}
	vad := sherpa.NewVoiceActivityDetector(&vadModelConfig, float32(bufferSec))
	if vad == nil {
		return nil, fmt.Errorf("nvad: failed to create VAD")
	}
	defer sherpa.DeleteVoiceActivityDetector(vad)

	var speech interval.Set
	windowSize := 512

	for start := 0; start < len(buf.Samples); start += windowSize {
		end := start + windowSize
		if end > len(buf.Samples) {
			end = len(buf.Samples)
		}
		vad.AcceptWaveform(buf.Samples[start:end])
		drainSegments(vad, cfg.SampleRateHz, &speech)
	}

	vad.Flush()
	drainSegments(vad, cfg.SampleRateHz, &speech)

	return speech, nil
}

func drainSegments(vad *sherpa.VoiceActivityDetector, sampleRate int, out *interval.Set) {
	for !vad.IsEmpty() {
		segment := vad.Front()
		vad.Pop()
		start := float64(segment.Start) / float64(sampleRate)
		end := start + float64(len(segment.Samples))/float64(sampleRate)
		*out = append(*out, interval.Interval{Start: start, End: end})
	}
}
