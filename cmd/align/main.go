package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/naozine/syncalign/internal/align"
	"github.com/naozine/syncalign/internal/config"
	"github.com/naozine/syncalign/internal/decoder"
	"github.com/naozine/syncalign/internal/logging"
	"github.com/naozine/syncalign/internal/synth"
	"github.com/naozine/syncalign/internal/syncmap"
	"github.com/naozine/syncalign/internal/textfile"
)

func main() {
	_ = godotenv.Load()

	var (
		audioPath  = flag.String("i", "", "Input audio file")
		textPath   = flag.String("text", "", "Text fragment file (JSON array of {ID,Language,Lines})")
		outputFile = flag.String("o", "", "Output file (default: stdout)")
		format     = flag.String("format", "json", "Output format: json, srt")
		configFile = flag.String("config", "", "Path to a syncalign config file")
		ttsModel   = flag.String("tts-model", "", "Path to a sherpa-onnx offline TTS model (default: deterministic tone synthesizer)")
		tokens     = flag.String("tts-tokens", "", "Path to the TTS model's tokens file")
		tempDir    = flag.String("temp-dir", "", "Directory to write intermediate WAV files for inspection")
		verbose    = flag.Bool("v", false, "Verbose logging")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -i audio.wav -text fragments.json [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *audioPath == "" || *textPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -i and -text are required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: config: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	logger := logging.New(cfg.Logging)

	fragments, err := loadFragments(*textPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading text fragments: %v\n", err)
		os.Exit(1)
	}

	var synthesizer synth.Synthesizer
	if *ttsModel != "" {
		tts, err := synth.NewSherpaTTS(synth.SherpaTTSConfig{
			ModelPath:  *ttsModel,
			TokensPath: *tokens,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: loading TTS model: %v\n", err)
			os.Exit(1)
		}
		defer tts.Close()
		synthesizer = tts
	} else {
		synthesizer = synth.DefaultUniform()
	}

	pipeline := &align.Pipeline{
		Decoder:     decoder.FFmpeg{},
		Synthesizer: synthesizer,
		Config:      cfg,
		Logger:      logger,
		TempDir:     *tempDir,
	}

	result, err := pipeline.Execute(context.Background(), *audioPath, fragments)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: alignment failed: %v\n", err)
		os.Exit(1)
	}

	var output string
	switch *format {
	case "srt":
		output = formatSRT(result.SyncMap)
	case "json":
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: encoding result: %v\n", err)
			os.Exit(1)
		}
		output = string(encoded)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q, must be json or srt\n", *format)
		os.Exit(1)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: writing output: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println(output)
	}
}

func loadFragments(path string) (textfile.List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fragments textfile.List
	if err := json.Unmarshal(data, &fragments); err != nil {
		return nil, fmt.Errorf("parse %s as a JSON fragment list: %w", path, err)
	}
	return fragments, nil
}

func formatSRT(fragments []syncmap.SyncFragment) string {
	var b strings.Builder
	n := 0
	for _, f := range fragments {
		if f.Kind != syncmap.KindFragment {
			continue
		}
		n++
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", n, srtTimestamp(f.StartSec), srtTimestamp(f.EndSec), f.Fragment.Text())
	}
	return strings.TrimRight(b.String(), "\n")
}

func srtTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	totalMs := int(sec*1000 + 0.5)
	ms := totalMs % 1000
	totalSec := totalMs / 1000
	s := totalSec % 60
	totalMin := totalSec / 60
	m := totalMin % 60
	h := totalMin / 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
