package show

import (
	"slices"
	"strings"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
)

func checkText(field, s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return ferrors.NewValidation(field, "contains NUL")
	}
	return nil
}

// CreateSetCurrentSheetCommand makes sheet n current.
func (s *Show) CreateSetCurrentSheetCommand(n int) (Pair, error) {
	const name = "set_current_sheet"
	if err := s.checkSheet("sheet", n); err != nil {
		return Pair{}, err
	}
	old := s.currentSheet
	if n == old {
		return NoOp(name), nil
	}
	return newPair(name, ScopeCurrentSheet,
		func(s *Show) { s.currentSheet = n },
		func(s *Show) { s.currentSheet = old },
	), nil
}

// CreateSetSelectionCommand replaces the selection.
func (s *Show) CreateSetSelectionCommand(sl SelectionList) (Pair, error) {
	const name = "set_selection"
	if err := s.checkSelection(sl); err != nil {
		return Pair{}, err
	}
	old := s.selection
	if slices.Equal(old.order, sl.order) {
		return NoOp(name), nil
	}
	sl = NewSelectionList(sl.order...)
	return newPair(name, ScopeSelection,
		func(s *Show) { s.selection = sl },
		func(s *Show) { s.selection = old },
	), nil
}

// CreateSetCurrentSheetAndSelectionCommand changes sheet and selection as
// one undo step.
func (s *Show) CreateSetCurrentSheetAndSelectionCommand(n int, sl SelectionList) (Pair, error) {
	const name = "set_current_sheet_and_selection"
	if err := s.checkSheet("sheet", n); err != nil {
		return Pair{}, err
	}
	if err := s.checkSelection(sl); err != nil {
		return Pair{}, err
	}
	oldSheet, oldSel := s.currentSheet, s.selection
	if n == oldSheet && slices.Equal(oldSel.order, sl.order) {
		return NoOp(name), nil
	}
	sl = NewSelectionList(sl.order...)
	return newPair(name, ScopeCurrentSheet|ScopeSelection,
		func(s *Show) {
			s.currentSheet = n
			s.selection = sl
		},
		func(s *Show) {
			s.currentSheet = oldSheet
			s.selection = oldSel
		},
	), nil
}

// CreateSetShowModeCommand replaces the field description.
func (s *Show) CreateSetShowModeCommand(mode ShowMode) (Pair, error) {
	const name = "set_show_mode"
	if err := checkCount("yard line", len(mode.YardLines)); err != nil {
		return Pair{}, err
	}
	for _, line := range mode.YardLines {
		if err := checkText("yard line", line); err != nil {
			return Pair{}, err
		}
	}
	if mode.Equal(s.mode) {
		return NoOp(name), nil
	}
	old, mode := s.mode.clone(), mode.clone()
	return newPair(name, ScopeMode,
		func(s *Show) { s.mode = mode.clone() },
		func(s *Show) { s.mode = old.clone() },
	), nil
}

// CreateSetDescriptionCommand replaces the show description.
func (s *Show) CreateSetDescriptionCommand(text string) (Pair, error) {
	const name = "set_description"
	if err := checkText("description", text); err != nil {
		return Pair{}, err
	}
	old := s.description
	if text == old {
		return NoOp(name), nil
	}
	return newPair(name, ScopeDescription,
		func(s *Show) { s.description = text },
		func(s *Show) { s.description = old },
	), nil
}

// CreateSetCurrentReferencePointCommand selects the reference group that
// later edits default to.
func (s *Show) CreateSetCurrentReferencePointCommand(ref int) (Pair, error) {
	const name = "set_current_reference_point"
	if err := checkRef(ref); err != nil {
		return Pair{}, err
	}
	old := s.currentRef
	if ref == old {
		return NoOp(name), nil
	}
	return newPair(name, ScopeReference,
		func(s *Show) { s.currentRef = ref },
		func(s *Show) { s.currentRef = old },
	), nil
}

// CreateSetupMarchersCommand sets the marcher roster. Existing marchers keep
// their points; new marchers are laid out in columns from origin, two steps
// apart. The selection loses marchers that no longer exist.
func (s *Show) CreateSetupMarchersCommand(marchers []Marcher, columns int, origin Coord) (Pair, error) {
	const name = "setup_marchers"
	if columns < 1 {
		return Pair{}, ferrors.NewValidation("columns", "must be at least 1")
	}
	if len(marchers) > MaxPoints {
		return Pair{}, ferrors.NewOutOfRange("marcher count", len(marchers), MaxPoints+1)
	}
	for _, m := range marchers {
		if err := checkText("label", m.Label); err != nil {
			return Pair{}, err
		}
		if err := checkText("instrument", m.Instrument); err != nil {
			return Pair{}, err
		}
	}

	oldCount, newCount := len(s.marchers), len(marchers)
	if slices.Equal(s.marchers, marchers) {
		return NoOp(name), nil
	}

	oldMarchers := slices.Clone(s.marchers)
	newMarchers := slices.Clone(marchers)
	oldSel := s.selection
	newSel := s.selection.below(newCount)

	var layout []Coord
	for k := range max(newCount-oldCount, 0) {
		pos, err := OffsetSteps(origin, 2*(k%columns), 2*(k/columns))
		if err != nil {
			return Pair{}, err
		}
		layout = append(layout, pos)
	}

	before := make([]pointsSnapshot, len(s.sheets))
	after := make([]pointsSnapshot, len(s.sheets))
	for i, sh := range s.sheets {
		before[i] = s.snapshotPoints(i)
		pts := slices.Clone(sh.points[:min(oldCount, newCount)])
		for _, pos := range layout {
			pts = append(pts, NewPoint(pos))
		}
		tmp := &Sheet{points: pts, continuities: sh.GetContinuities()}
		tmp.ensureUsedContinuities()
		after[i] = pointsSnapshot{sheet: i, points: tmp.points, conts: tmp.continuities}
	}

	return newPair(name, ScopeMarchers|ScopeSheetContent|ScopeSelection,
		func(s *Show) {
			s.marchers = slices.Clone(newMarchers)
			for _, ps := range after {
				ps.restore(s)
			}
			s.selection = newSel
		},
		func(s *Show) {
			s.marchers = slices.Clone(oldMarchers)
			for _, ps := range before {
				ps.restore(s)
			}
			s.selection = oldSel
		},
	), nil
}

// CreateSetInstrumentsCommand assigns instruments by marcher index.
func (s *Show) CreateSetInstrumentsCommand(instruments map[int]string) (Pair, error) {
	const name = "set_instruments"
	type change struct {
		marcher  int
		from, to string
	}
	var changes []change
	for i, inst := range instruments {
		if err := s.checkMarcher(i); err != nil {
			return Pair{}, err
		}
		if err := checkText("instrument", inst); err != nil {
			return Pair{}, err
		}
		if s.marchers[i].Instrument != inst {
			changes = append(changes, change{i, s.marchers[i].Instrument, inst})
		}
	}
	if len(changes) == 0 {
		return NoOp(name), nil
	}
	slices.SortFunc(changes, func(a, b change) int { return a.marcher - b.marcher })
	return newPair(name, ScopeMarchers,
		func(s *Show) {
			for _, c := range changes {
				s.marchers[c.marcher].Instrument = c.to
			}
		},
		func(s *Show) {
			for _, c := range changes {
				s.marchers[c.marcher].Instrument = c.from
			}
		},
	), nil
}

// CreateDeletePointsCommand removes the selected marchers from the show and
// clears the selection.
func (s *Show) CreateDeletePointsCommand() (Pair, error) {
	const name = "delete_points"
	if s.selection.Empty() {
		return NoOp(name), nil
	}
	oldSel := s.selection
	oldMarchers := slices.Clone(s.marchers)
	var keep []int
	for i := range s.marchers {
		if !oldSel.Contains(i) {
			keep = append(keep, i)
		}
	}
	newMarchers := make([]Marcher, len(keep))
	for j, i := range keep {
		newMarchers[j] = s.marchers[i]
	}

	before := make([]pointsSnapshot, len(s.sheets))
	after := make([]pointsSnapshot, len(s.sheets))
	for si, sh := range s.sheets {
		before[si] = s.snapshotPoints(si)
		pts := make([]Point, len(keep))
		for j, i := range keep {
			pts[j] = sh.points[i]
		}
		after[si] = pointsSnapshot{sheet: si, points: pts, conts: sh.GetContinuities()}
	}

	return newPair(name, ScopeMarchers|ScopeSheetContent|ScopeSelection,
		func(s *Show) {
			s.marchers = slices.Clone(newMarchers)
			for _, ps := range after {
				ps.restore(s)
			}
			s.selection = SelectionList{}
		},
		func(s *Show) {
			s.marchers = slices.Clone(oldMarchers)
			for _, ps := range before {
				ps.restore(s)
			}
			s.selection = oldSel
		},
	), nil
}
