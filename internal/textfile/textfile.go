// Package textfile defines the ordered text fragment list that flows
// unmodified through the alignment core, per spec §3 "Text fragment
// list". It is grounded on aeneas's TextFile/TextFragment model
// (original_source/aeneas/textfile.py): an ordered, immutable list of
// fragments each carrying an id, a language tag, and one or more lines.
package textfile

import "strings"

// Fragment is one unit of text to be aligned against the audio. Order is
// preserved end-to-end; fragments are immutable through the core.
type Fragment struct {
	ID       string
	Language string
	Lines    []string
}

// Text joins Lines with newlines, matching how aeneas derives a
// fragment's full text from its constituent lines.
func (f Fragment) Text() string { return strings.Join(f.Lines, "\n") }

// CharCount returns the total rune count across Lines, used by the
// boundary adjuster's RATE/RATE_AGGRESSIVE policies to compute a
// fragment's characters-per-second reading rate.
func (f Fragment) CharCount() int {
	n := 0
	for _, line := range f.Lines {
		n += len([]rune(line))
	}
	return n
}

// List is an ordered sequence of Fragments.
type List []Fragment

// CharCounts returns CharCount() for every fragment, in order.
func (l List) CharCounts() []int {
	out := make([]int, len(l))
	for i, f := range l {
		out[i] = f.CharCount()
	}
	return out
}
