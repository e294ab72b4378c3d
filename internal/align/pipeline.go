// Package align orchestrates the forced-alignment pipeline from spec §2:
// decode -> MFCC -> head/tail detect -> synthesize -> DTW align -> anchor
// project -> head/tail re-translate -> boundary adjust -> build sync map.
// Pipeline.Execute is the Go analogue of aeneas's
// executetask.ExecuteTask.execute(): the same step sequencing (STEP 0 to
// STEP 8 below), the same "abort on first error, always run cleanup"
// propagation rule.
package align

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/naozine/syncalign/internal/anchor"
	"github.com/naozine/syncalign/internal/boundary"
	"github.com/naozine/syncalign/internal/config"
	"github.com/naozine/syncalign/internal/decoder"
	"github.com/naozine/syncalign/internal/dtw"
	"github.com/naozine/syncalign/internal/headtail"
	"github.com/naozine/syncalign/internal/interval"
	"github.com/naozine/syncalign/internal/mfcc"
	"github.com/naozine/syncalign/internal/syncmap"
	"github.com/naozine/syncalign/internal/synth"
	"github.com/naozine/syncalign/internal/textfile"
	"github.com/naozine/syncalign/internal/vad"
)

// Result is the outcome of a successful Execute: the final sync map plus
// the head/tail lengths that were cut from the original audio.
type Result struct {
	SyncMap []syncmap.SyncFragment
	HeadSec float64
	TailSec float64
}

// Pipeline holds the collaborators and configuration one Execute run
// needs. TempDir, if non-empty, is where intermediate WAV files are
// written for inspection; they are always removed by the cleanup
// registry before Execute returns.
type Pipeline struct {
	Decoder     decoder.Decoder
	Synthesizer synth.Synthesizer
	Config      *config.Config
	Logger      *log.Logger
	TempDir     string
}

// Execute runs the full pipeline against audioPath and fragments.
func (p *Pipeline) Execute(ctx context.Context, audioPath string, fragments textfile.List) (*Result, error) {
	cleanup := newCleanupRegistry(p.Logger)
	defer cleanup.run()

	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: no text fragments given", ErrInvalidText)
	}
	runID := uuid.New().String()

	// STEP 0: decode to PCM.
	full, err := p.Decoder.Decode(ctx, audioPath, 16000)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if err := full.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	// STEP 1: MFCC of the full original audio, used for head/tail
	// detection and the boundary adjuster's non-speech set.
	mfccParams := mfcc.Default()
	fullMFCC, err := mfcc.Extract(full, mfccParams)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}

	// STEP 2: head/tail detection and trimming.
	headSec := headtail.DetectHead(fullMFCC, headtail.Range{
		Min: p.Config.Audio.DetectHeadMin, Max: p.Config.Audio.DetectHeadMax,
	})
	tailSec := headtail.DetectTail(fullMFCC, headtail.Range{
		Min: p.Config.Audio.DetectTailMin, Max: p.Config.Audio.DetectTailMax,
	})
	fullDuration := full.Duration()
	trimmed := full.Trim(headSec, fullDuration-headSec-tailSec)
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	if p.TempDir != "" {
		path := filepath.Join(p.TempDir, fmt.Sprintf("aeneas_%s_real_trimmed.wav", runID))
		if err := trimmed.WriteWAV(path); err == nil {
			cleanup.add(func() error { return os.Remove(path) })
		}
	}

	trimmedMFCC, err := mfcc.Extract(trimmed, mfccParams)
	if err != nil {
		return nil, fmt.Errorf("%w: trimmed audio: %v", ErrInvalidAudio, err)
	}

	// STEP 3: synthesize text.
	synthBuf, anchors, err := p.Synthesizer.Synthesize(ctx, fragments)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesizeFailed, err)
	}
	if p.TempDir != "" {
		path := filepath.Join(p.TempDir, fmt.Sprintf("aeneas_%s_synt.wav", runID))
		if err := synthBuf.WriteWAV(path); err == nil {
			cleanup.add(func() error { return os.Remove(path) })
		}
	}
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	// STEP 4: align waves via DTW.
	synthMFCC, err := mfcc.Extract(synthBuf, mfccParams)
	if err != nil {
		return nil, fmt.Errorf("%w: synthesized audio: %v", ErrInvalidAudio, err)
	}
	if trimmedMFCC.F != synthMFCC.F {
		return nil, fmt.Errorf("%w: real F=%d synth F=%d", ErrDimensionMismatch, trimmedMFCC.F, synthMFCC.F)
	}
	radius := dtw.RadiusFromMargin(p.Config.DTW.MarginSeconds, mfccParams.HopSec)
	mapping, err := dtw.Align(ctx, trimmedMFCC, synthMFCC, dtw.Params{BandRadiusFrames: radius})
	if err != nil {
		return nil, wrapDTWError(err)
	}

	// STEP 5: anchor projection.
	points, err := anchor.Project(mapping, synth.StartTimes(anchors))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidText, err)
	}
	intervals := anchor.Intervals(points)
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	// STEP 6: head/tail re-translation.
	shifted := make(interval.Set, len(intervals))
	for i, iv := range intervals {
		shifted[i] = interval.Interval{Start: iv.Start + headSec, End: iv.End + headSec}
	}
	withHeadTail := make(interval.Set, 0, len(shifted)+2)
	withHeadTail = append(withHeadTail, interval.Interval{Start: 0, End: headSec})
	withHeadTail = append(withHeadTail, shifted...)
	withHeadTail = append(withHeadTail, interval.Interval{Start: trimmed.Duration() + headSec, End: fullDuration})

	// STEP 7: boundary adjustment.
	nonspeech := vad.Detect(fullMFCC, vad.Default()).Nonspeech
	policy, err := boundaryPolicy(p.Config.Boundary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	adjusted, err := boundary.Adjust(withHeadTail, nonspeech, policy, fragments.CharCounts())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidText, err)
	}

	// STEP 8: build sync map.
	format, err := headTailFormat(p.Config.SyncMap.HeadTailFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	syncFragments, err := syncmap.Build(adjusted, fragments, format, fullDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidText, err)
	}

	return &Result{SyncMap: syncFragments, HeadSec: headSec, TailSec: tailSec}, nil
}

func checkCancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return nil
}

func wrapDTWError(err error) error {
	if errors.Is(err, dtw.ErrCancelled) {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return fmt.Errorf("align: dtw: %w", err)
}

func boundaryPolicy(cfg config.BoundaryConfig) (boundary.Policy, error) {
	var kind boundary.Kind
	switch cfg.Algorithm {
	case "NONE":
		kind = boundary.None
	case "AUTO":
		kind = boundary.Auto
	case "AFTER_CURRENT":
		kind = boundary.AfterCurrent
	case "BEFORE_NEXT":
		kind = boundary.BeforeNext
	case "OFFSET":
		kind = boundary.Offset
	case "PERCENT":
		kind = boundary.Percent
	case "RATE":
		kind = boundary.Rate
	case "RATE_AGGRESSIVE":
		kind = boundary.RateAggressive
	default:
		return boundary.Policy{}, fmt.Errorf("unknown boundary algorithm %q", cfg.Algorithm)
	}
	return boundary.Policy{Kind: kind, Delta: cfg.Delta, Percent: cfg.Percent, Rate: cfg.Rate}, nil
}

func headTailFormat(s string) (syncmap.HeadTailFormat, error) {
	switch s {
	case "ADD":
		return syncmap.Add, nil
	case "STRETCH":
		return syncmap.Stretch, nil
	case "HIDDEN":
		return syncmap.Hidden, nil
	default:
		return 0, fmt.Errorf("unknown head/tail format %q", s)
	}
}
