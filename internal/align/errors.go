package align

import "errors"

// Sentinel errors returned by Pipeline.Execute, wrapped with context via
// fmt.Errorf("...: %w", err) so callers can still match with errors.Is.
var (
	ErrInvalidAudio     = errors.New("align: invalid audio")
	ErrInvalidText      = errors.New("align: invalid text")
	ErrDecodeFailed     = errors.New("align: decode failed")
	ErrSynthesizeFailed = errors.New("align: synthesize failed")
	ErrDimensionMismatch = errors.New("align: mfcc dimension mismatch between real and synth audio")
	ErrDTWOutOfMemory   = errors.New("align: dtw band exceeded configured memory budget")
	ErrCancelled        = errors.New("align: cancelled")
	ErrIOFailed         = errors.New("align: i/o failed")
	ErrConfigInvalid    = errors.New("align: invalid configuration")
)
