package show

import (
	"math"
	"strings"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
)

// Scope is the set of show fields a command touches.
type Scope uint16

const (
	ScopeCurrentSheet Scope = 1 << iota
	ScopeSelection
	ScopeReference
	ScopeMode
	ScopeMarchers
	ScopeSheetList
	ScopeSheetContent
	ScopeDescription
)

var scopeNames = []string{"current_sheet", "selection", "reference", "mode", "marchers", "sheet_list", "sheet_content", "description"}

// Has reports whether every bit of o is in sc.
func (sc Scope) Has(o Scope) bool {
	return sc&o == o
}

func (sc Scope) String() string {
	var parts []string
	for i, name := range scopeNames {
		if sc&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Pair is one undoable edit. Apply and Revert close over values captured
// when the pair was built, so they can run any number of times in
// apply/revert alternation. The zero Pair is a no-op.
type Pair struct {
	Name   string
	Scope  Scope
	apply  func(*Show)
	revert func(*Show)
}

// IsNoOp reports whether the pair would change nothing.
func (p Pair) IsNoOp() bool {
	return p.apply == nil
}

// Apply performs the edit.
func (p Pair) Apply(s *Show) {
	if p.apply != nil {
		p.apply(s)
	}
}

// Revert undoes the edit.
func (p Pair) Revert(s *Show) {
	if p.revert != nil {
		p.revert(s)
	}
}

// NoOp returns the pair factories hand back when a request changes nothing.
func NoOp(name string) Pair {
	return Pair{Name: name}
}

func newPair(name string, scope Scope, apply, revert func(*Show)) Pair {
	return Pair{Name: name, Scope: scope, apply: apply, revert: revert}
}

func (s *Show) checkSheet(field string, i int) error {
	if !s.validSheet(i) {
		return ferrors.NewOutOfRange(field, i, len(s.sheets))
	}
	return nil
}

func (s *Show) checkMarcher(i int) error {
	if i < 0 || i >= len(s.marchers) {
		return ferrors.NewOutOfRange("marcher", i, len(s.marchers))
	}
	return nil
}

// checkCount rejects n items for a list the file stores with a u16 count.
func checkCount(field string, n int) error {
	if n > math.MaxUint16 {
		return ferrors.NewOutOfRange(field, n-1, math.MaxUint16)
	}
	return nil
}

func checkRef(ref int) error {
	if ref < 0 || ref >= NumRefGroups {
		return ferrors.NewOutOfRange("reference group", ref, NumRefGroups)
	}
	return nil
}

func (s *Show) checkSelection(sl SelectionList) error {
	for _, i := range sl.order {
		if err := s.checkMarcher(i); err != nil {
			return err
		}
	}
	return nil
}

// requireCurrentSheet returns the current sheet or a validation error for
// a show without sheets.
func (s *Show) requireCurrentSheet() (*Sheet, error) {
	sh := s.GetCurrentSheet()
	if sh == nil {
		return nil, ferrors.NewValidation("sheet", "show has no sheets")
	}
	return sh, nil
}

// pointsSnapshot captures the points of one sheet for restore.
type pointsSnapshot struct {
	sheet  int
	points []Point
	conts  []Continuity
}

func (s *Show) snapshotPoints(sheet int) pointsSnapshot {
	sh := s.sheets[sheet]
	return pointsSnapshot{sheet: sheet, points: sh.GetPoints(), conts: sh.GetContinuities()}
}

func (ps pointsSnapshot) restore(s *Show) {
	sh := s.sheets[ps.sheet]
	sh.points = append(sh.points[:0:0], ps.points...)
	sh.continuities = append(sh.continuities[:0:0], ps.conts...)
}
