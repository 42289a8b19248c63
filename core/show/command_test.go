package show

import (
	"bytes"
	"errors"
	"math"
	"slices"
	"testing"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
)

// commandCases lists one representative non-trivial argument set per
// factory. Each build runs against a fresh richShow.
var commandCases = []struct {
	name  string
	build func(s *Show) (Pair, error)
}{
	{"set current sheet", func(s *Show) (Pair, error) { return s.CreateSetCurrentSheetCommand(0) }},
	{"set selection", func(s *Show) (Pair, error) { return s.CreateSetSelectionCommand(NewSelectionList(3, 1)) }},
	{"set sheet and selection", func(s *Show) (Pair, error) {
		return s.CreateSetCurrentSheetAndSelectionCommand(0, NewSelectionList(1))
	}},
	{"set show mode", func(s *Show) (Pair, error) { return s.CreateSetShowModeCommand(DefaultShowMode()) }},
	{"set description", func(s *Show) (Pair, error) { return s.CreateSetDescriptionCommand("Closer") }},
	{"setup marchers grow", func(s *Show) (Pair, error) {
		m := append(s.GetMarchers(), Marcher{Label: "P1", Instrument: "Perc"}, Marcher{Label: "P2"})
		return s.CreateSetupMarchersCommand(m, 2, Steps(10, 10))
	}},
	{"setup marchers shrink", func(s *Show) (Pair, error) {
		return s.CreateSetupMarchersCommand(s.GetMarchers()[:2], 1, Coord{})
	}},
	{"set instruments", func(s *Show) (Pair, error) {
		return s.CreateSetInstrumentsCommand(map[int]string{0: "Flugel", 3: "Snare"})
	}},
	{"set sheet title", func(s *Show) (Pair, error) { return s.CreateSetSheetTitleCommand("Ballad") }},
	{"set sheet beats", func(s *Show) (Pair, error) { return s.CreateSetSheetBeatsCommand(0) }},
	{"add sheets before current", func(s *Show) (Pair, error) {
		return s.CreateAddSheetsCommand([]*Sheet{NewSheet(4, "a"), NewSheet(4, "b")}, 0)
	}},
	{"add sheet at end", func(s *Show) (Pair, error) {
		return s.CreateAddSheetsCommand([]*Sheet{s.GetSheet(1).Clone()}, 2)
	}},
	{"remove sheet", func(s *Show) (Pair, error) { return s.CreateRemoveSheetCommand(0) }},
	{"remove current sheet", func(s *Show) (Pair, error) { return s.CreateRemoveSheetCommand(1) }},
	{"apply relabel", func(s *Show) (Pair, error) { return s.CreateApplyRelabelCommand(0, []int{3, 2, 1, 0}) }},
	{"set printable continuity", func(s *Show) (Pair, error) {
		return s.CreateSetPrintableContinuityCommand(map[int]PrintContinuity{0: {Number: "1", Text: "~Go"}, 1: {}})
	}},
	{"move points", func(s *Show) (Pair, error) {
		return s.CreateMovePointsCommand(map[int]Coord{0: Steps(1, 1), 1: Steps(2, 2), 2: Steps(3, 3), 3: Steps(4, 4)}, 0)
	}},
	{"move reference points", func(s *Show) (Pair, error) {
		return s.CreateMovePointsCommand(map[int]Coord{0: Steps(9, 9), 1: Steps(6, 2)}, 1)
	}},
	{"move points on sheets", func(s *Show) (Pair, error) {
		return s.CreateMovePointsOnSheetsCommand(map[int]map[int]Coord{
			0: {0: Steps(-1, 0)},
			1: {3: Steps(0, -1)},
		}, 0)
	}},
	{"delete points", func(s *Show) (Pair, error) { return s.CreateDeletePointsCommand() }},
	{"rotate point positions", func(s *Show) (Pair, error) { return s.CreateRotatePointPositionsCommand(1, 0) }},
	{"reset reference", func(s *Show) (Pair, error) {
		if p, err := s.CreateSetSelectionCommand(NewSelectionList(1)); err == nil {
			p.Apply(s)
		}
		return s.CreateResetReferenceToPrimaryCommand(2)
	}},
	{"set symbol", func(s *Show) (Pair, error) { return s.CreateSetSymbolCommand(SymbolX) }},
	{"set symbol for", func(s *Show) (Pair, error) {
		return s.CreateSetSymbolForCommand(NewSelectionList(1, 3), SymbolSolidX)
	}},
	{"set continuity", func(s *Show) (Pair, error) { return s.CreateSetContinuityCommand(SymbolPlain, "HS 16") }},
	{"set label flip", func(s *Show) (Pair, error) { return s.CreateSetLabelFlipCommand(map[int]bool{1: true, 2: false}) }},
	{"set label side", func(s *Show) (Pair, error) { return s.CreateSetLabelSideCommand(true) }},
	{"toggle label flip", func(s *Show) (Pair, error) { return s.CreateToggleLabelFlipCommand() }},
	{"set label visibility", func(s *Show) (Pair, error) {
		return s.CreateSetLabelVisibilityCommand(map[int]bool{0: true, 3: false})
	}},
	{"set label visible", func(s *Show) (Pair, error) { return s.CreateSetLabelVisibleCommand(true) }},
	{"toggle label visibility", func(s *Show) (Pair, error) { return s.CreateToggleLabelVisibilityCommand() }},
	{"add background image", func(s *Show) (Pair, error) {
		return s.CreateAddBackgroundImageCommand(ImageData{Width: 1, Height: 1, Data: []byte{7}})
	}},
	{"remove background image", func(s *Show) (Pair, error) { return s.CreateRemoveBackgroundImageCommand(0) }},
	{"move background image", func(s *Show) (Pair, error) {
		return s.CreateMoveBackgroundImageCommand(0, Rect{Left: -5, Top: -5, Width: 50, Height: 20})
	}},
	{"add sheet curve", func(s *Show) (Pair, error) {
		return s.CreateAddSheetCurveCommand(Curve{Points: []Coord{Steps(1, 0), Steps(2, 0)}})
	}},
	{"replace sheet curve", func(s *Show) (Pair, error) {
		return s.CreateReplaceSheetCurveCommand(0, Curve{Points: []Coord{Steps(0, 1)}})
	}},
	{"remove sheet curve", func(s *Show) (Pair, error) { return s.CreateRemoveSheetCurveCommand(0) }},
}

// TestCommandInverseLaw verifies revert restores the serialized bytes and a
// second apply reproduces the first.
func TestCommandInverseLaw(t *testing.T) {
	for _, tc := range commandCases {
		t.Run(tc.name, func(t *testing.T) {
			s := richShow(t)
			p, err := tc.build(s)
			if err != nil {
				t.Fatalf("build error = %v", err)
			}
			if p.IsNoOp() {
				t.Fatal("build returned a no-op")
			}
			before := s.Serialize()
			p.Apply(s)
			after := s.Serialize()
			if bytes.Equal(before, after) {
				t.Fatal("apply did not change the serialized show")
			}
			p.Revert(s)
			if !bytes.Equal(s.Serialize(), before) {
				t.Fatal("revert did not restore the serialized show")
			}
			p.Apply(s)
			if !bytes.Equal(s.Serialize(), after) {
				t.Fatal("apply after revert differs from the first apply")
			}
		})
	}
}

// TestCommandsAreIndependent verifies reverting a content edit leaves a
// later selection change alone.
func TestCommandsAreIndependent(t *testing.T) {
	s := richShow(t)
	move, err := s.CreateMovePointsCommand(map[int]Coord{0: Steps(20, 0)}, 0)
	if err != nil {
		t.Fatal(err)
	}
	move.Apply(s)
	sel, err := s.CreateSetSelectionCommand(NewSelectionList(3))
	if err != nil {
		t.Fatal(err)
	}
	sel.Apply(s)

	move.Revert(s)
	if got := s.GetSelection().Indices(); !slices.Equal(got, []int{3}) {
		t.Errorf("selection after move revert = %v, want [3]", got)
	}
	if got := s.GetCurrentSheet().GetPosition(0, 0); got == Steps(20, 0) {
		t.Error("move not reverted")
	}
	if move.Scope.Has(ScopeSelection) || !sel.Scope.Has(ScopeSelection) {
		t.Errorf("scopes = %v / %v", move.Scope, sel.Scope)
	}
}

func TestRelabelRoundTrip(t *testing.T) {
	s := richShow(t)
	before := s.GetSheet(1).GetPoints()
	p, err := s.CreateApplyRelabelCommand(1, []int{1, 0, 3, 2})
	if err != nil {
		t.Fatal(err)
	}
	p.Apply(s)
	after := s.GetSheet(1).GetPoints()
	if after[0] != before[1] || after[2] != before[3] {
		t.Errorf("relabel did not permute points")
	}
	if s.GetSheet(0).GetPoint(0) != richShow(t).GetSheet(0).GetPoint(0) {
		t.Error("relabel touched an earlier sheet")
	}
	p.Revert(s)
	if got := s.GetSheet(1).GetPoints(); !slices.Equal(got, before) {
		t.Errorf("revert = %+v, want %+v", got, before)
	}
}

func TestGetRelabelMapping(t *testing.T) {
	src := NewSheet(3, "a")
	dst := NewSheet(3, "b")
	src.points[0].Pos, src.points[1].Pos, src.points[2].Pos = Steps(0, 0), Steps(4, 0), Steps(8, 0)
	dst.points[0].Pos, dst.points[1].Pos, dst.points[2].Pos = Steps(8, 0), Coord{1, 1}, Steps(4, 0)

	m, ok := GetRelabelMapping(src, dst, 2)
	if !ok || !slices.Equal(m, []int{1, 2, 0}) {
		t.Errorf("GetRelabelMapping() = %v, %v; want [1 2 0], true", m, ok)
	}
	if _, ok := GetRelabelMapping(src, dst, 0); ok {
		t.Error("GetRelabelMapping() with zero tolerance matched an offset point")
	}
}

func TestNoOpCommands(t *testing.T) {
	s := richShow(t)
	cur := s.GetSheet(1)
	tests := []struct {
		name  string
		build func() (Pair, error)
	}{
		{"same sheet", func() (Pair, error) { return s.CreateSetCurrentSheetCommand(1) }},
		{"same selection", func() (Pair, error) { return s.CreateSetSelectionCommand(NewSelectionList(2, 0)) }},
		{"same title", func() (Pair, error) { return s.CreateSetSheetTitleCommand(cur.GetName()) }},
		{"same beats", func() (Pair, error) { return s.CreateSetSheetBeatsCommand(cur.GetBeats()) }},
		{"unmoved points", func() (Pair, error) {
			return s.CreateMovePointsCommand(map[int]Coord{1: cur.GetPosition(1, 0)}, 0)
		}},
		{"identity relabel", func() (Pair, error) { return s.CreateApplyRelabelCommand(0, []int{0, 1, 2, 3}) }},
		{"same symbol", func() (Pair, error) { return s.CreateSetSymbolCommand(SymbolSolidSlash) }},
		{"no sheets added", func() (Pair, error) { return s.CreateAddSheetsCommand(nil, 0) }},
		{"empty instrument map", func() (Pair, error) { return s.CreateSetInstrumentsCommand(nil) }},
		{"rotate one", func() (Pair, error) {
			if p, err := s.CreateSetSelectionCommand(NewSelectionList(0)); err == nil {
				p.Apply(s)
				defer p.Revert(s)
			}
			return s.CreateRotatePointPositionsCommand(1, 0)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.build()
			if err != nil {
				t.Fatalf("build error = %v", err)
			}
			if !p.IsNoOp() {
				t.Errorf("IsNoOp() = false for %s", p.Name)
			}
		})
	}
	if s.WillMovePoints(map[int]Coord{1: cur.GetPosition(1, 0)}, 0) {
		t.Error("WillMovePoints() = true for an unmoved point")
	}
	if !s.WillMovePoints(map[int]Coord{1: Steps(50, 50)}, 0) {
		t.Error("WillMovePoints() = false for a real move")
	}
}

func TestCommandValidation(t *testing.T) {
	s := richShow(t)
	tests := []struct {
		name  string
		build func() (Pair, error)
	}{
		{"sheet out of range", func() (Pair, error) { return s.CreateSetCurrentSheetCommand(5) }},
		{"marcher out of range", func() (Pair, error) { return s.CreateSetSelectionCommand(NewSelectionList(9)) }},
		{"bad reference", func() (Pair, error) { return s.CreateMovePointsCommand(map[int]Coord{0: {}}, 4) }},
		{"reset primary", func() (Pair, error) { return s.CreateResetReferenceToPrimaryCommand(0) }},
		{"bad symbol", func() (Pair, error) { return s.CreateSetSymbolCommand(Symbol(8)) }},
		{"wrong point count", func() (Pair, error) { return s.CreateAddSheetsCommand([]*Sheet{NewSheet(2, "x")}, 0) }},
		{"insert past end", func() (Pair, error) { return s.CreateAddSheetsCommand([]*Sheet{NewSheet(4, "x")}, 3) }},
		{"relabel not permutation", func() (Pair, error) { return s.CreateApplyRelabelCommand(0, []int{0, 0, 1, 2}) }},
		{"NUL in title", func() (Pair, error) { return s.CreateSetSheetTitleCommand("a\x00b") }},
		{"zero columns", func() (Pair, error) { return s.CreateSetupMarchersCommand(nil, 0, Coord{}) }},
		{"image out of range", func() (Pair, error) { return s.CreateRemoveBackgroundImageCommand(3) }},
		{"curve out of range", func() (Pair, error) { return s.CreateRemoveSheetCurveCommand(-1) }},
		{"layout past field edge", func() (Pair, error) {
			m := append(s.GetMarchers(), Marcher{Label: "X1"}, Marcher{Label: "X2"})
			return s.CreateSetupMarchersCommand(m, 8, Steps(2046, 0))
		}},
		{"wide layout", func() (Pair, error) {
			m := append(s.GetMarchers(), Marcher{Label: "X1"}, Marcher{Label: "X2"})
			return s.CreateSetupMarchersCommand(m, 1, Steps(0, 2046))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			var ve *ferrors.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("error = %v, want ValidationError", err)
			}
		})
	}
}

// TestAddSheetsShiftsCurrent verifies inserting at or before the current
// sheet keeps the same sheet current.
func TestAddSheetsShiftsCurrent(t *testing.T) {
	s := richShow(t)
	name := s.GetCurrentSheet().GetName()
	p, err := s.CreateAddSheetsCommand([]*Sheet{NewSheet(4, "x"), NewSheet(4, "y")}, 1)
	if err != nil {
		t.Fatal(err)
	}
	p.Apply(s)
	if s.GetCurrentSheetNum() != 3 || s.GetCurrentSheet().GetName() != name {
		t.Errorf("current = %d (%q), want 3 (%q)", s.GetCurrentSheetNum(), s.GetCurrentSheet().GetName(), name)
	}
	p.Revert(s)
	if s.GetCurrentSheetNum() != 1 {
		t.Errorf("current after revert = %d, want 1", s.GetCurrentSheetNum())
	}
}

// TestSetSymbolMovesContinuity verifies marchers adopt the symbol's slot
// and the slot is created when missing.
func TestSetSymbolMovesContinuity(t *testing.T) {
	s := richShow(t)
	p, err := s.CreateSetSymbolForCommand(NewSelectionList(3), SymbolBackslash)
	if err != nil {
		t.Fatal(err)
	}
	p.Apply(s)
	sh := s.GetCurrentSheet()
	if pt := sh.GetPoint(3); pt.Symbol != SymbolBackslash || pt.ContIndex != uint8(SymbolBackslash) {
		t.Errorf("point 3 = %+v", pt)
	}
	if c, ok := sh.GetContinuityBySlot(uint8(SymbolBackslash)); !ok || c.Name != "Bksl" {
		t.Errorf("continuity = %+v, %v", c, ok)
	}
	p.Revert(s)
	if _, ok := s.GetCurrentSheet().GetContinuityBySlot(uint8(SymbolBackslash)); ok {
		t.Error("revert kept the synthesized continuity")
	}
}

func TestRotatePointPositions(t *testing.T) {
	s := richShow(t)
	sh := s.GetCurrentSheet()
	p0, p2 := sh.GetPosition(0, 0), sh.GetPosition(2, 0)
	p, err := s.CreateRotatePointPositionsCommand(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	p.Apply(s)
	// selection is [2 0]: marcher 2 takes marcher 0's spot and vice versa
	if sh.GetPosition(2, 0) != p0 || sh.GetPosition(0, 0) != p2 {
		t.Errorf("positions = %v, %v; want %v, %v", sh.GetPosition(2, 0), sh.GetPosition(0, 0), p0, p2)
	}
}

func TestScopeString(t *testing.T) {
	if got := (ScopeSelection | ScopeMode).String(); got != "selection|mode" {
		t.Errorf("String() = %q, want selection|mode", got)
	}
	if got := Scope(0).String(); got != "none" {
		t.Errorf("String() = %q, want none", got)
	}
}

// TestCountLimits verifies lists the file stores with a u16 count are capped
// at math.MaxUint16 entries, and that a list at the cap still round-trips.
func TestCountLimits(t *testing.T) {
	over := make([]Coord, math.MaxUint16+1)
	tests := []struct {
		name  string
		build func(s *Show) (Pair, error)
	}{
		{"curve points on add", func(s *Show) (Pair, error) {
			return s.CreateAddSheetCurveCommand(Curve{Points: over})
		}},
		{"curve points on replace", func(s *Show) (Pair, error) {
			return s.CreateReplaceSheetCurveCommand(0, Curve{Points: over})
		}},
		{"yard lines", func(s *Show) (Pair, error) {
			mode := DefaultShowMode()
			mode.YardLines = make([]string, math.MaxUint16+1)
			return s.CreateSetShowModeCommand(mode)
		}},
		{"curves per sheet", func(s *Show) (Pair, error) {
			s.sheets[s.currentSheet].curves = make([]Curve, math.MaxUint16)
			return s.CreateAddSheetCurveCommand(Curve{})
		}},
		{"images per sheet", func(s *Show) (Pair, error) {
			s.sheets[s.currentSheet].images = make([]ImageData, math.MaxUint16)
			return s.CreateAddBackgroundImageCommand(ImageData{})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build(richShow(t))
			var ve *ferrors.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("error = %v, want ValidationError", err)
			}
		})
	}

	s := richShow(t)
	mustApply(t, s)(s.CreateAddSheetCurveCommand(Curve{Points: make([]Coord, math.MaxUint16)}))
	back, err := Parse(s.Serialize())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !back.Equal(s) {
		t.Error("show with a full curve did not round-trip")
	}
}
