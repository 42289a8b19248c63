package show

import (
	"errors"
	"math"
	"slices"
	"testing"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
)

func TestSteps(t *testing.T) {
	if got := Steps(2, -3); got != (Coord{X: 32, Y: -48}) {
		t.Errorf("Steps(2, -3) = %v, want (32,-48)", got)
	}
	a, b := Coord{X: 3, Y: 4}, Coord{}
	if got := a.DistanceSquared(b); got != 25 {
		t.Errorf("DistanceSquared = %d, want 25", got)
	}
	if got := a.Add(a).Sub(a); got != a {
		t.Errorf("Add/Sub = %v, want %v", got, a)
	}
}

// TestOffsetSteps verifies step arithmetic stops at the edge of the int16
// coordinate space instead of wrapping.
func TestOffsetSteps(t *testing.T) {
	tests := []struct {
		name   string
		base   Coord
		dx, dy int
		want   Coord
		ok     bool
	}{
		{"origin", Coord{}, 3, -2, Steps(3, -2), true},
		{"max edge", Coord{}, 2047, -2048, Coord{X: 32752, Y: -32768}, true},
		{"past max", Coord{}, 2048, 0, Coord{}, false},
		{"past min", Coord{}, 0, -2049, Coord{}, false},
		{"offset from base", Coord{X: 32000}, 48, 0, Coord{}, false},
		{"huge", Coord{}, math.MaxInt, 0, Coord{}, false},
		{"huge negative", Coord{}, 0, math.MinInt, Coord{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OffsetSteps(tt.base, tt.dx, tt.dy)
			if tt.ok {
				if err != nil || got != tt.want {
					t.Errorf("OffsetSteps() = %v, %v; want %v", got, err, tt.want)
				}
				return
			}
			var ve *ferrors.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("OffsetSteps() error = %v, want ValidationError", err)
			}
		})
	}
	if got, err := StepCoord(-4, 6); err != nil || got != Steps(-4, 6) {
		t.Errorf("StepCoord(-4, 6) = %v, %v", got, err)
	}
}

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want Symbol
		ok   bool
	}{
		{"plain", SymbolPlain, true},
		{"Sol", SymbolSolid, true},
		{"solid backslash", SymbolSolidBackslash, true},
		{"SOLX", SymbolSolidX, true},
		{"Crossed", SymbolX, true},
		{"star", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseSymbol(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseSymbol(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if got := Symbol(9).String(); got != "Symbol(9)" {
		t.Errorf("Symbol(9).String() = %q", got)
	}
	if got := SymbolSolidSlash.LongName(); got != "Solid Slash" {
		t.Errorf("LongName() = %q, want Solid Slash", got)
	}
}

// TestPointReferenceTracking verifies inherited groups follow the primary
// position and overridden ones stay put.
func TestPointReferenceTracking(t *testing.T) {
	p := NewPoint(Steps(1, 1))
	p.SetPosition(Steps(5, 5), 2)
	p.SetPosition(Steps(3, 3), 0)

	if got := p.Position(1); got != Steps(3, 3) {
		t.Errorf("Position(1) = %v, want primary %v", got, Steps(3, 3))
	}
	if got := p.Position(2); got != Steps(5, 5) {
		t.Errorf("Position(2) = %v, want %v", got, Steps(5, 5))
	}
	p.ResetRef(2)
	if got := p.Position(2); got != Steps(3, 3) {
		t.Errorf("Position(2) after reset = %v, want %v", got, Steps(3, 3))
	}
}

func TestStandardContinuityName(t *testing.T) {
	if got := StandardContinuityName(3); got != "Sl" {
		t.Errorf("StandardContinuityName(3) = %q, want Sl", got)
	}
	if got := StandardContinuityName(12); got != "Cont12" {
		t.Errorf("StandardContinuityName(12) = %q, want Cont12", got)
	}
}

func TestDefaultShowMode(t *testing.T) {
	m := DefaultShowMode()
	if len(m.YardLines) != 21 {
		t.Fatalf("yard lines = %d, want 21", len(m.YardLines))
	}
	if m.YardLines[0] != "0" || m.YardLines[10] != "50" || m.YardLines[20] != "0" {
		t.Errorf("yard lines = %v", m.YardLines)
	}
	c := m.clone()
	c.YardLines[0] = "G"
	if m.YardLines[0] != "0" {
		t.Error("clone shares yard lines")
	}
	if m.Equal(c) {
		t.Error("Equal() = true after changing a yard line")
	}
}

func TestSelectionList(t *testing.T) {
	sl := NewSelectionList(3, 1, 3, 2)
	if got := sl.Indices(); !slices.Equal(got, []int{3, 1, 2}) {
		t.Errorf("Indices() = %v, want [3 1 2]", got)
	}
	if got := sl.Sorted(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("Sorted() = %v, want [1 2 3]", got)
	}
	if !sl.Equal(NewSelectionList(1, 2, 3)) {
		t.Error("Equal() should ignore order")
	}
	if got := sl.Remove(1).Indices(); !slices.Equal(got, []int{3, 2}) {
		t.Errorf("Remove(1) = %v, want [3 2]", got)
	}
	if got := sl.Toggle(2, 7).Indices(); !slices.Equal(got, []int{3, 1, 7}) {
		t.Errorf("Toggle(2, 7) = %v, want [3 1 7]", got)
	}
	if got := sl.Add(0, 1).Indices(); !slices.Equal(got, []int{3, 1, 2, 0}) {
		t.Errorf("Add(0, 1) = %v, want [3 1 2 0]", got)
	}
	if sl.Len() != 3 {
		t.Errorf("receiver modified: Len() = %d", sl.Len())
	}
	if !(SelectionList{}).Empty() {
		t.Error("zero SelectionList not empty")
	}
	if !sl.Toggle(2, 7).Contains(7) || sl.Toggle(2, 7).Contains(2) {
		t.Error("Toggle() membership wrong")
	}
	if sl.Equal(NewSelectionList(1, 2, 4)) || sl.Equal(NewSelectionList(1, 2)) {
		t.Error("Equal() matched a different selection")
	}
}

// TestSelectionListLarge verifies deduplication at MaxPoints scale keeps
// first occurrences in order.
func TestSelectionListLarge(t *testing.T) {
	indices := make([]int, 0, 2*MaxPoints)
	for i := range MaxPoints {
		indices = append(indices, MaxPoints-1-i)
	}
	indices = append(indices, indices...)
	sl := NewSelectionList(indices...)
	if sl.Len() != MaxPoints {
		t.Fatalf("Len() = %d, want %d", sl.Len(), MaxPoints)
	}
	if got := sl.Indices(); got[0] != MaxPoints-1 || got[MaxPoints-1] != 0 {
		t.Errorf("order not kept: first %d, last %d", got[0], got[MaxPoints-1])
	}
	if got := sl.Toggle(indices[:MaxPoints/2]...).Len(); got != MaxPoints/2 {
		t.Errorf("Toggle() Len() = %d, want %d", got, MaxPoints/2)
	}
}

func BenchmarkNewSelectionList(b *testing.B) {
	indices := make([]int, MaxPoints)
	for i := range indices {
		indices[i] = i
	}
	for b.Loop() {
		NewSelectionList(indices...)
	}
}
