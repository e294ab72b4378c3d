package synth

import (
	"context"
	"fmt"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"

	"github.com/naozine/syncalign/internal/pcm"
	"github.com/naozine/syncalign/internal/textfile"
)

// SherpaTTSConfig mirrors the ModelDir/NumThreads shape of the teacher's
// WhisperConfig/SenseVoiceConfig, adapted to an offline TTS model
// directory (model.onnx, tokens.txt, optional lexicon/dict files).
type SherpaTTSConfig struct {
	ModelPath   string
	TokensPath  string
	LexiconPath string
	DataDirPath string // espeak-ng-data or similar, optional
	NumThreads  int
	SpeakerID   int
	SpeedFactor float32 // sherpa's "speed" knob; 1.0 = natural rate
}

// SherpaTTS adapts sherpa.OfflineTts to the Synthesizer interface, the
// same "wrap a C++ engine behind a small Go struct with Close" pattern
// the teacher uses for WhisperRecognizer/SenseVoiceRecognizer.
type SherpaTTS struct {
	tts    *sherpa.OfflineTts
	config SherpaTTSConfig
}

// NewSherpaTTS constructs the underlying engine from config.
func NewSherpaTTS(config SherpaTTSConfig) (*SherpaTTS, error) {
	if config.ModelPath == "" || config.TokensPath == "" {
		return nil, fmt.Errorf("synth: model and tokens paths are required")
	}
	numThreads := config.NumThreads
	if numThreads <= 0 {
		numThreads = 1
	}

	ttsConfig := sherpa.OfflineTtsConfig{
		Model: sherpa.OfflineTtsModelConfig{
			Vits: sherpa.OfflineTtsVitsModelConfig{
				Model:   config.ModelPath,
				Lexicon: config.LexiconPath,
				Tokens:  config.TokensPath,
				DataDir: config.DataDirPath,
			},
			NumThreads: numThreads,
			Debug:      0,
		},
		MaxNumSentences: 1,
	}

	tts := sherpa.NewOfflineTts(&ttsConfig)
	if tts == nil {
		return nil, fmt.Errorf("synth: failed to create offline TTS engine")
	}
	return &SherpaTTS{tts: tts, config: config}, nil
}

// Close releases the underlying engine.
func (s *SherpaTTS) Close() {
	if s.tts != nil {
		sherpa.DeleteOfflineTts(s.tts)
		s.tts = nil
	}
}

// Synthesize implements Synthesizer by generating each fragment's audio
// in turn and concatenating, recording the running clock as each
// fragment's anchor — the Go equivalent of aeneas's
// SynthesizerWrapper.synthesize accumulation loop.
func (s *SherpaTTS) Synthesize(ctx context.Context, fragments textfile.List) (*pcm.Buffer, []Anchor, error) {
	if len(fragments) == 0 {
		return nil, nil, ErrInvalidText
	}

	speed := s.config.SpeedFactor
	if speed <= 0 {
		speed = 1.0
	}

	var rate int
	var samples []float32
	anchors := make([]Anchor, 0, len(fragments))

	for i, f := range fragments {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		text := f.Text()
		if text == "" {
			anchors = append(anchors, Anchor{FragmentIndex: i, StartSec: float64(len(samples)) / float64(maxInt(rate, 1))})
			continue
		}

		audio := s.tts.Generate(text, s.config.SpeakerID, speed)
		if audio == nil {
			return nil, nil, fmt.Errorf("synth: fragment %q: generation failed", f.ID)
		}
		if rate == 0 {
			rate = audio.SampleRate
		}

		startSec := float64(len(samples)) / float64(maxInt(rate, 1))
		anchors = append(anchors, Anchor{FragmentIndex: i, StartSec: startSec})
		samples = append(samples, audio.Samples...)
	}

	if rate == 0 {
		return nil, nil, fmt.Errorf("synth: no fragment produced audio")
	}
	return &pcm.Buffer{Samples: samples, RateHz: rate}, anchors, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
