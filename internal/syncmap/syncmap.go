// Package syncmap implements the Sync-Map Builder from spec §4.8: it
// takes the boundary-adjusted interval list (which already includes the
// HEAD and TAIL intervals from the head/tail re-translation step) and a
// HeadTailFormat, and produces the final ordered SyncFragment list.
//
// Grounded on aeneas executetask._create_syncmap's ADD/STRETCH/HIDDEN
// handling and its invariant check
// len(adjusted_map) == len(text_file.fragments) + 2 — the teacher repo
// has no equivalent assembly step, so result.go only lends its general
// "ordered output list with a formatter" shape.
package syncmap

import (
	"errors"
	"fmt"

	"github.com/naozine/syncalign/internal/interval"
	"github.com/naozine/syncalign/internal/textfile"
)

// HeadTailFormat selects how HEAD/TAIL intervals are represented in the
// output, per spec §4.8.
type HeadTailFormat int

const (
	Add HeadTailFormat = iota
	Stretch
	Hidden
)

// Kind distinguishes a synthetic HEAD/TAIL entry from a real fragment.
type Kind int

const (
	KindFragment Kind = iota
	KindHead
	KindTail
)

// SyncFragment is one entry of the final sync map (spec §3 "Sync map").
type SyncFragment struct {
	Kind     Kind
	Fragment textfile.Fragment // zero value when Kind != KindFragment
	StartSec float64
	EndSec   float64
}

// ErrCountMismatch is returned when the adjusted interval list doesn't
// carry exactly one HEAD, one TAIL, and one interval per text fragment.
var ErrCountMismatch = errors.New("syncmap: adjusted interval count does not match text fragment count + 2")

// Build assembles the final sync map. adjusted holds HEAD at index 0,
// one interval per fragment in the middle, and TAIL at the last index —
// exactly as produced by §4.6's head/tail re-translation and refined by
// §4.7's boundary adjuster.
func Build(adjusted interval.Set, fragments textfile.List, format HeadTailFormat, audioDuration float64) ([]SyncFragment, error) {
	if len(adjusted) != len(fragments)+2 {
		return nil, fmt.Errorf("%w: got %d intervals for %d fragments", ErrCountMismatch, len(adjusted), len(fragments))
	}

	head := adjusted[0]
	tail := adjusted[len(adjusted)-1]
	body := adjusted[1 : len(adjusted)-1]

	switch format {
	case Add:
		out := make([]SyncFragment, 0, len(adjusted))
		out = append(out, SyncFragment{Kind: KindHead, StartSec: head.Start, EndSec: head.End})
		for i, iv := range body {
			out = append(out, SyncFragment{Kind: KindFragment, Fragment: fragments[i], StartSec: iv.Start, EndSec: iv.End})
		}
		out = append(out, SyncFragment{Kind: KindTail, StartSec: tail.Start, EndSec: tail.End})
		return out, nil

	case Stretch:
		out := make([]SyncFragment, 0, len(body))
		for i, iv := range body {
			start, end := iv.Start, iv.End
			if i == 0 {
				start = 0
			}
			if i == len(body)-1 {
				end = audioDuration
			}
			out = append(out, SyncFragment{Kind: KindFragment, Fragment: fragments[i], StartSec: start, EndSec: end})
		}
		return out, nil

	case Hidden:
		out := make([]SyncFragment, 0, len(body))
		for i, iv := range body {
			out = append(out, SyncFragment{Kind: KindFragment, Fragment: fragments[i], StartSec: iv.Start, EndSec: iv.End})
		}
		return out, nil

	default:
		return nil, fmt.Errorf("syncmap: unknown head/tail format %d", format)
	}
}
