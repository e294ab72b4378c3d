// Package decoder implements the audio decoder external collaborator from
// the spec: it turns an arbitrary input audio/video file into a mono
// 16 kHz PCM buffer. This is the one piece of the pipeline that still
// shells out to ffmpeg, the same way internal/asr/silence.go and vad.go
// did in the teacher.
package decoder

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/naozine/syncalign/internal/pcm"
)

// Decoder turns an input file path into a decoded PCM buffer.
type Decoder interface {
	Decode(ctx context.Context, path string, sampleRateHz int) (*pcm.Buffer, error)
}

// FFmpeg decodes using the ffmpeg binary on PATH, matching the s16le
// pipe:1 invocation used throughout internal/asr in the teacher.
type FFmpeg struct{}

// Decode converts path to mono PCM at sampleRateHz using ffmpeg.
func (FFmpeg) Decode(ctx context.Context, path string, sampleRateHz int) (*pcm.Buffer, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("decoder: ffmpeg not found on PATH: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("decoder: input file not found: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", sampleRateHz),
		"-ac", "1",
		"-loglevel", "error",
		"pipe:1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("decoder: stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("decoder: start ffmpeg: %w", err)
	}

	samples, readErr := readS16LE(stdout)
	waitErr := cmd.Wait()
	if readErr != nil {
		return nil, fmt.Errorf("decoder: read pcm: %w", readErr)
	}
	if waitErr != nil {
		return nil, fmt.Errorf("decoder: ffmpeg exited: %w", waitErr)
	}

	return &pcm.Buffer{Samples: samples, RateHz: sampleRateHz}, nil
}

func readS16LE(r io.Reader) ([]float32, error) {
	reader := bufio.NewReaderSize(r, 1<<16)
	var out []float32
	buf := make([]byte, 2)
	for {
		_, err := io.ReadFull(reader, buf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
		sample := int16(binary.LittleEndian.Uint16(buf))
		out = append(out, float32(sample)/32768.0)
	}
	return out, nil
}
