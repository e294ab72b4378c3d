package syncmap

import (
	"errors"
	"testing"

	"github.com/naozine/syncalign/internal/interval"
	"github.com/naozine/syncalign/internal/textfile"
)

func sampleFragments() textfile.List {
	return textfile.List{
		{ID: "f1", Language: "en", Lines: []string{"hello"}},
		{ID: "f2", Language: "en", Lines: []string{"world"}},
	}
}

func TestBuildAdd(t *testing.T) {
	adjusted := interval.Set{
		{Start: 0, End: 0.3},
		{Start: 0.3, End: 5},
		{Start: 5, End: 9.8},
		{Start: 9.8, End: 10},
	}
	out, err := Build(adjusted, sampleFragments(), Add, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 sync fragments, got %d", len(out))
	}
	if out[0].Kind != KindHead || out[3].Kind != KindTail {
		t.Errorf("expected HEAD first and TAIL last, got %+v / %+v", out[0], out[3])
	}
	if out[0].StartSec != 0 || out[3].EndSec != 10 {
		t.Errorf("expected coverage [0,10], got [%v,%v]", out[0].StartSec, out[3].EndSec)
	}
}

func TestBuildStretch(t *testing.T) {
	adjusted := interval.Set{
		{Start: 0, End: 0.3},
		{Start: 0.3, End: 5},
		{Start: 5, End: 9.8},
		{Start: 9.8, End: 10},
	}
	out, err := Build(adjusted, sampleFragments(), Stretch, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 sync fragments, got %d", len(out))
	}
	if out[0].StartSec != 0 {
		t.Errorf("expected first fragment to start at 0, got %v", out[0].StartSec)
	}
	if out[len(out)-1].EndSec != 10 {
		t.Errorf("expected last fragment to end at 10, got %v", out[len(out)-1].EndSec)
	}
}

func TestBuildHidden(t *testing.T) {
	adjusted := interval.Set{
		{Start: 0, End: 0.3},
		{Start: 0.3, End: 5},
		{Start: 5, End: 9.8},
		{Start: 9.8, End: 10},
	}
	out, err := Build(adjusted, sampleFragments(), Hidden, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 sync fragments, got %d", len(out))
	}
	if out[0].StartSec != 0.3 || out[1].EndSec != 9.8 {
		t.Errorf("expected unchanged interior intervals, got %+v / %+v", out[0], out[1])
	}
}

func TestBuildCountMismatch(t *testing.T) {
	adjusted := interval.Set{{Start: 0, End: 1}, {Start: 1, End: 2}}
	if _, err := Build(adjusted, sampleFragments(), Add, 10); !errors.Is(err, ErrCountMismatch) {
		t.Errorf("expected ErrCountMismatch, got %v", err)
	}
}
