package show

import (
	"cmp"
	"maps"
	"slices"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
)

// WillMovePoints reports whether moving the given marchers on the current
// sheet in reference group ref would change anything.
func (s *Show) WillMovePoints(positions map[int]Coord, ref int) bool {
	sh := s.GetCurrentSheet()
	if sh == nil || checkRef(ref) != nil {
		return false
	}
	for i, c := range positions {
		if i >= 0 && i < len(sh.points) && sh.points[i].Position(ref) != c {
			return true
		}
	}
	return false
}

// CreateMovePointsCommand moves marchers on the current sheet. Moving group
// 0 carries inherited reference groups along; moving another group pins it.
// Requests that change nothing yield a no-op pair; check WillMovePoints first.
func (s *Show) CreateMovePointsCommand(positions map[int]Coord, ref int) (Pair, error) {
	if _, err := s.requireCurrentSheet(); err != nil {
		return Pair{}, err
	}
	return s.CreateMovePointsOnSheetsCommand(map[int]map[int]Coord{s.currentSheet: positions}, ref)
}

// CreateMovePointsOnSheetsCommand moves marchers on several sheets at once,
// keyed by sheet index then marcher index.
func (s *Show) CreateMovePointsOnSheetsCommand(moves map[int]map[int]Coord, ref int) (Pair, error) {
	const name = "move_points"
	if err := checkRef(ref); err != nil {
		return Pair{}, err
	}
	type change struct {
		sheet, marcher int
		from           RefPosition // previous primary position in Coord when ref is 0
		to             Coord
	}
	var changes []change
	for si, positions := range moves {
		if err := s.checkSheet("sheet", si); err != nil {
			return Pair{}, err
		}
		sh := s.sheets[si]
		for i, c := range positions {
			if err := s.checkMarcher(i); err != nil {
				return Pair{}, err
			}
			p := sh.points[i]
			if p.Position(ref) == c {
				continue
			}
			from := RefPosition{Coord: p.Pos}
			if ref > 0 {
				from = p.Refs[ref-1]
			}
			changes = append(changes, change{si, i, from, c})
		}
	}
	if len(changes) == 0 {
		return NoOp(name), nil
	}
	slices.SortFunc(changes, func(a, b change) int {
		return cmp.Or(cmp.Compare(a.sheet, b.sheet), cmp.Compare(a.marcher, b.marcher))
	})

	return newPair(name, ScopeSheetContent,
		func(s *Show) {
			for _, c := range changes {
				s.sheets[c.sheet].points[c.marcher].SetPosition(c.to, ref)
			}
		},
		func(s *Show) {
			for _, c := range changes {
				p := &s.sheets[c.sheet].points[c.marcher]
				if ref == 0 {
					p.Pos = c.from.Coord
				} else {
					p.Refs[ref-1] = c.from
				}
			}
		},
	), nil
}

// CreateRotatePointPositionsCommand shifts the selected marchers' positions
// along the selection order by amount places.
func (s *Show) CreateRotatePointPositionsCommand(amount, ref int) (Pair, error) {
	sh, err := s.requireCurrentSheet()
	if err != nil {
		return Pair{}, err
	}
	if err := checkRef(ref); err != nil {
		return Pair{}, err
	}
	order := s.selection.order
	if len(order) < 2 {
		return NoOp("rotate_point_positions"), nil
	}
	positions := make(map[int]Coord, len(order))
	for k, i := range order {
		src := order[((k+amount)%len(order)+len(order))%len(order)]
		positions[i] = sh.points[src].Position(ref)
	}
	p, err := s.CreateMovePointsCommand(positions, ref)
	p.Name = "rotate_point_positions"
	return p, err
}

// CreateResetReferenceToPrimaryCommand makes group ref of the selected
// marchers on the current sheet follow the primary position again.
func (s *Show) CreateResetReferenceToPrimaryCommand(ref int) (Pair, error) {
	const name = "reset_reference_to_primary"
	sh, err := s.requireCurrentSheet()
	if err != nil {
		return Pair{}, err
	}
	if ref < 1 || ref >= NumRefGroups {
		return Pair{}, ferrors.NewOutOfRange("reference group", ref, NumRefGroups)
	}
	old := map[int]RefPosition{}
	for _, i := range s.selection.order {
		if r := sh.points[i].Refs[ref-1]; r.State == RefOverridden {
			old[i] = r
		}
	}
	if len(old) == 0 {
		return NoOp(name), nil
	}
	cur := s.currentSheet
	return newPair(name, ScopeSheetContent,
		func(s *Show) {
			for i := range old {
				s.sheets[cur].points[i].ResetRef(ref)
			}
		},
		func(s *Show) {
			for i, r := range old {
				s.sheets[cur].points[i].Refs[ref-1] = r
			}
		},
	), nil
}

// CreateSetSymbolCommand sets the symbol of the selected marchers.
func (s *Show) CreateSetSymbolCommand(sym Symbol) (Pair, error) {
	return s.CreateSetSymbolForCommand(s.selection, sym)
}

// CreateSetSymbolForCommand sets the symbol of the marchers in sl on the
// current sheet. Each changed marcher also moves to the continuity slot
// named after the symbol, which is created when missing. Marchers already
// showing sym are left alone.
func (s *Show) CreateSetSymbolForCommand(sl SelectionList, sym Symbol) (Pair, error) {
	const name = "set_symbol"
	sh, err := s.requireCurrentSheet()
	if err != nil {
		return Pair{}, err
	}
	if !sym.Valid() {
		return Pair{}, ferrors.NewOutOfRange("symbol", int(sym), NumSymbols)
	}
	if err := s.checkSelection(sl); err != nil {
		return Pair{}, err
	}
	type prior struct {
		sym  Symbol
		cont uint8
	}
	old := map[int]prior{}
	for _, i := range sl.order {
		if p := sh.points[i]; p.Symbol != sym {
			old[i] = prior{p.Symbol, p.ContIndex}
		}
	}
	if len(old) == 0 {
		return NoOp(name), nil
	}
	cur := s.currentSheet
	oldConts := sh.GetContinuities()
	slot := uint8(sym)
	return newPair(name, ScopeSheetContent,
		func(s *Show) {
			sh := s.sheets[cur]
			for i := range old {
				sh.points[i].Symbol = sym
				sh.points[i].ContIndex = slot
			}
			sh.ensureContinuity(slot)
		},
		func(s *Show) {
			sh := s.sheets[cur]
			for i, p := range old {
				sh.points[i].Symbol = p.sym
				sh.points[i].ContIndex = p.cont
			}
			sh.continuities = slices.Clone(oldConts)
		},
	), nil
}

// CreateSetContinuityCommand sets the text of the continuity slot for sym on
// the current sheet, creating the slot when missing.
func (s *Show) CreateSetContinuityCommand(sym Symbol, text string) (Pair, error) {
	const name = "set_continuity"
	sh, err := s.requireCurrentSheet()
	if err != nil {
		return Pair{}, err
	}
	if !sym.Valid() {
		return Pair{}, ferrors.NewOutOfRange("symbol", int(sym), NumSymbols)
	}
	if err := checkText("continuity", text); err != nil {
		return Pair{}, err
	}
	slot := uint8(sym)
	if c, ok := sh.GetContinuityBySlot(slot); ok && c.Text == text {
		return NoOp(name), nil
	}
	cur := s.currentSheet
	oldConts := sh.GetContinuities()
	newConts := sh.GetContinuities()
	if i := sh.continuityIndex(slot); i >= 0 {
		newConts[i].Text = text
	} else {
		newConts = append(newConts, Continuity{Slot: slot, Name: StandardContinuityName(slot), Text: text})
	}
	return newPair(name, ScopeSheetContent,
		func(s *Show) { s.sheets[cur].continuities = slices.Clone(newConts) },
		func(s *Show) { s.sheets[cur].continuities = slices.Clone(oldConts) },
	), nil
}

// pointFlagCommand builds a command setting one boolean point field on the
// current sheet for the marchers in values.
func (s *Show) pointFlagCommand(name string, values map[int]bool, field func(*Point) *bool) (Pair, error) {
	sh, err := s.requireCurrentSheet()
	if err != nil {
		return Pair{}, err
	}
	changed := map[int]bool{}
	for i, v := range values {
		if err := s.checkMarcher(i); err != nil {
			return Pair{}, err
		}
		p := sh.points[i]
		if *field(&p) != v {
			changed[i] = v
		}
	}
	if len(changed) == 0 {
		return NoOp(name), nil
	}
	cur := s.currentSheet
	set := func(invert bool) func(*Show) {
		return func(s *Show) {
			for _, i := range slices.Sorted(maps.Keys(changed)) {
				*field(&s.sheets[cur].points[i]) = changed[i] != invert
			}
		}
	}
	return newPair(name, ScopeSheetContent, set(false), set(true)), nil
}

func flipField(p *Point) *bool   { return &p.Flip }
func hiddenField(p *Point) *bool { return &p.LabelHidden }

// CreateSetLabelFlipCommand sets per-marcher label flip on the current sheet.
func (s *Show) CreateSetLabelFlipCommand(flips map[int]bool) (Pair, error) {
	return s.pointFlagCommand("set_label_flip", flips, flipField)
}

// CreateSetLabelSideCommand puts the selected marchers' labels on the right
// or on the left.
func (s *Show) CreateSetLabelSideCommand(right bool) (Pair, error) {
	flips := map[int]bool{}
	for _, i := range s.selection.order {
		flips[i] = !right
	}
	return s.pointFlagCommand("set_label_side", flips, flipField)
}

// CreateToggleLabelFlipCommand flips the selected marchers' labels.
func (s *Show) CreateToggleLabelFlipCommand() (Pair, error) {
	sh, err := s.requireCurrentSheet()
	if err != nil {
		return Pair{}, err
	}
	flips := map[int]bool{}
	for _, i := range s.selection.order {
		flips[i] = !sh.points[i].Flip
	}
	return s.pointFlagCommand("toggle_label_flip", flips, flipField)
}

// CreateSetLabelVisibilityCommand shows or hides labels per marcher on the
// current sheet. true means visible.
func (s *Show) CreateSetLabelVisibilityCommand(visible map[int]bool) (Pair, error) {
	hidden := make(map[int]bool, len(visible))
	for i, v := range visible {
		hidden[i] = !v
	}
	return s.pointFlagCommand("set_label_visibility", hidden, hiddenField)
}

// CreateSetLabelVisibleCommand shows or hides the selected marchers' labels.
func (s *Show) CreateSetLabelVisibleCommand(visible bool) (Pair, error) {
	hidden := map[int]bool{}
	for _, i := range s.selection.order {
		hidden[i] = !visible
	}
	return s.pointFlagCommand("set_label_visible", hidden, hiddenField)
}

// CreateToggleLabelVisibilityCommand toggles the selected marchers' labels.
func (s *Show) CreateToggleLabelVisibilityCommand() (Pair, error) {
	sh, err := s.requireCurrentSheet()
	if err != nil {
		return Pair{}, err
	}
	hidden := map[int]bool{}
	for _, i := range s.selection.order {
		hidden[i] = !sh.points[i].LabelHidden
	}
	return s.pointFlagCommand("toggle_label_visibility", hidden, hiddenField)
}
