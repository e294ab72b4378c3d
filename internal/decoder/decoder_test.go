package decoder

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"testing"
)

func TestReadS16LEDecodesLittleEndianSamples(t *testing.T) {
	var buf bytes.Buffer
	for _, v := range []int16{0, 16384, -16384, 32767, -32768} {
		binary.Write(&buf, binary.LittleEndian, v)
	}

	samples, err := readS16LE(&buf)
	if err != nil {
		t.Fatalf("readS16LE: %v", err)
	}
	if len(samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(samples))
	}
	if samples[0] != 0 {
		t.Errorf("expected sample[0]=0, got %v", samples[0])
	}
	if samples[2] >= 0 {
		t.Errorf("expected sample[2] to be negative, got %v", samples[2])
	}
}

func TestReadS16LEIgnoresTrailingOddByte(t *testing.T) {
	buf := bytes.NewBuffer([]byte{1, 2, 3})
	samples, err := readS16LE(buf)
	if err != nil {
		t.Fatalf("readS16LE: %v", err)
	}
	if len(samples) != 1 {
		t.Errorf("expected 1 full sample decoded, got %d", len(samples))
	}
}

func TestFFmpegDecodeErrorsOnMissingFile(t *testing.T) {
	if _, err := os.Stat("/usr/bin/ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}
	var d FFmpeg
	if _, err := d.Decode(context.Background(), "/no/such/file.wav", 16000); err == nil {
		t.Fatal("expected error for missing input file")
	}
}
