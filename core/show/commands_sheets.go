package show

import (
	"slices"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
)

// CreateSetSheetTitleCommand renames the current sheet.
func (s *Show) CreateSetSheetTitleCommand(title string) (Pair, error) {
	const name = "set_sheet_title"
	sh, err := s.requireCurrentSheet()
	if err != nil {
		return Pair{}, err
	}
	if err := checkText("title", title); err != nil {
		return Pair{}, err
	}
	cur, old := s.currentSheet, sh.name
	if title == old {
		return NoOp(name), nil
	}
	return newPair(name, ScopeSheetContent,
		func(s *Show) { s.sheets[cur].name = title },
		func(s *Show) { s.sheets[cur].name = old },
	), nil
}

// CreateSetSheetBeatsCommand sets the current sheet's duration.
func (s *Show) CreateSetSheetBeatsCommand(beats uint32) (Pair, error) {
	const name = "set_sheet_beats"
	sh, err := s.requireCurrentSheet()
	if err != nil {
		return Pair{}, err
	}
	cur, old := s.currentSheet, sh.beats
	if beats == old {
		return NoOp(name), nil
	}
	return newPair(name, ScopeSheetContent,
		func(s *Show) { s.sheets[cur].beats = beats },
		func(s *Show) { s.sheets[cur].beats = old },
	), nil
}

// CreateAddSheetsCommand inserts copies of sheets before index at. When the
// insertion lands at or before the current sheet, the current index moves
// with the sheet it pointed at.
func (s *Show) CreateAddSheetsCommand(sheets []*Sheet, at int) (Pair, error) {
	const name = "add_sheets"
	if at < 0 || at > len(s.sheets) {
		return Pair{}, ferrors.NewOutOfRange("insert position", at, len(s.sheets)+1)
	}
	if len(sheets) == 0 {
		return NoOp(name), nil
	}
	added := make([]*Sheet, len(sheets))
	for i, sh := range sheets {
		if sh.GetNumPoints() != len(s.marchers) {
			return Pair{}, ferrors.NewValidation("sheet", "point count does not match marcher count")
		}
		if err := checkText("title", sh.name); err != nil {
			return Pair{}, err
		}
		added[i] = sh.Clone()
		added[i].ensureUsedContinuities()
	}

	oldCurrent := s.currentSheet
	newCurrent := oldCurrent
	if len(s.sheets) > 0 && at <= oldCurrent {
		newCurrent += len(added)
	}
	count := len(added)

	return newPair(name, ScopeSheetList|ScopeCurrentSheet,
		func(s *Show) {
			fresh := make([]*Sheet, count)
			for i, sh := range added {
				fresh[i] = sh.Clone()
			}
			s.sheets = slices.Insert(s.sheets, at, fresh...)
			s.currentSheet = newCurrent
		},
		func(s *Show) {
			s.sheets = slices.Delete(s.sheets, at, at+count)
			s.currentSheet = oldCurrent
		},
	), nil
}

// CreateRemoveSheetCommand removes sheet index. The current index keeps
// pointing at the same sheet when it survives and is clamped otherwise.
func (s *Show) CreateRemoveSheetCommand(index int) (Pair, error) {
	const name = "remove_sheet"
	if err := s.checkSheet("sheet", index); err != nil {
		return Pair{}, err
	}
	removed := s.sheets[index].Clone()
	oldCurrent := s.currentSheet
	newCurrent := oldCurrent
	if index < oldCurrent {
		newCurrent--
	}
	if remaining := len(s.sheets) - 1; newCurrent >= remaining {
		newCurrent = max(remaining-1, 0)
	}

	return newPair(name, ScopeSheetList|ScopeCurrentSheet,
		func(s *Show) {
			s.sheets = slices.Delete(s.sheets, index, index+1)
			s.currentSheet = newCurrent
		},
		func(s *Show) {
			s.sheets = slices.Insert(s.sheets, index, removed.Clone())
			s.currentSheet = oldCurrent
		},
	), nil
}

// CreateApplyRelabelCommand reorders points on fromSheet and every later
// sheet so that marcher i takes the points previously held by mapping[i].
func (s *Show) CreateApplyRelabelCommand(fromSheet int, mapping []int) (Pair, error) {
	const name = "apply_relabel"
	if err := s.checkSheet("sheet", fromSheet); err != nil {
		return Pair{}, err
	}
	n := len(s.marchers)
	if len(mapping) != n {
		return Pair{}, ferrors.NewValidation("mapping", "length does not match marcher count")
	}
	seen := make([]bool, n)
	identity := true
	for i, j := range mapping {
		if j < 0 || j >= n || seen[j] {
			return Pair{}, ferrors.NewValidation("mapping", "not a permutation of marcher indices")
		}
		seen[j] = true
		identity = identity && i == j
	}
	if identity {
		return NoOp(name), nil
	}

	var before, after []pointsSnapshot
	for si := fromSheet; si < len(s.sheets); si++ {
		snap := s.snapshotPoints(si)
		before = append(before, snap)
		pts := make([]Point, n)
		for i, j := range mapping {
			pts[i] = snap.points[j]
		}
		after = append(after, pointsSnapshot{sheet: si, points: pts, conts: snap.conts})
	}

	return newPair(name, ScopeSheetContent,
		func(s *Show) {
			for _, ps := range after {
				ps.restore(s)
			}
		},
		func(s *Show) {
			for _, ps := range before {
				ps.restore(s)
			}
		},
	), nil
}

// GetRelabelMapping matches target's points to source's by position. For
// each marcher i on source it finds the marcher j standing within tolerance
// coordinate units of the same spot on target, giving mapping[i] = j. It
// reports false when some marcher has no unique partner.
func GetRelabelMapping(source, target *Sheet, tolerance int) ([]int, bool) {
	n := source.GetNumPoints()
	if target.GetNumPoints() != n {
		return nil, false
	}
	tol := int64(tolerance) * int64(tolerance)
	used := make([]bool, n)
	mapping := make([]int, n)
	for i := range n {
		pos := source.points[i].Pos
		found := -1
		for j := range n {
			if !used[j] && target.points[j].Pos.DistanceSquared(pos) <= tol {
				found = j
				break
			}
		}
		if found < 0 {
			return nil, false
		}
		used[found] = true
		mapping[i] = found
	}
	return mapping, true
}

// CreateSetPrintableContinuityCommand sets printable continuity per sheet index.
func (s *Show) CreateSetPrintableContinuityCommand(perSheet map[int]PrintContinuity) (Pair, error) {
	const name = "set_printable_continuity"
	type change struct {
		sheet    int
		from, to PrintContinuity
	}
	var changes []change
	for i, pc := range perSheet {
		if err := s.checkSheet("sheet", i); err != nil {
			return Pair{}, err
		}
		if err := checkText("print number", pc.Number); err != nil {
			return Pair{}, err
		}
		if err := checkText("print text", pc.Text); err != nil {
			return Pair{}, err
		}
		if s.sheets[i].printCont != pc {
			changes = append(changes, change{i, s.sheets[i].printCont, pc})
		}
	}
	if len(changes) == 0 {
		return NoOp(name), nil
	}
	slices.SortFunc(changes, func(a, b change) int { return a.sheet - b.sheet })
	return newPair(name, ScopeSheetContent,
		func(s *Show) {
			for _, c := range changes {
				s.sheets[c.sheet].printCont = c.to
			}
		},
		func(s *Show) {
			for _, c := range changes {
				s.sheets[c.sheet].printCont = c.from
			}
		},
	), nil
}

// CreateAddBackgroundImageCommand appends an image to the current sheet.
func (s *Show) CreateAddBackgroundImageCommand(img ImageData) (Pair, error) {
	const name = "add_background_image"
	sh, err := s.requireCurrentSheet()
	if err != nil {
		return Pair{}, err
	}
	if err := checkCount("image", len(sh.images)+1); err != nil {
		return Pair{}, err
	}
	cur, at, img := s.currentSheet, len(sh.images), img.clone()
	return newPair(name, ScopeSheetContent,
		func(s *Show) {
			s.sheets[cur].images = slices.Insert(s.sheets[cur].images, at, img.clone())
		},
		func(s *Show) {
			s.sheets[cur].images = slices.Delete(s.sheets[cur].images, at, at+1)
		},
	), nil
}

// CreateRemoveBackgroundImageCommand removes image index from the current sheet.
func (s *Show) CreateRemoveBackgroundImageCommand(index int) (Pair, error) {
	const name = "remove_background_image"
	sh, err := s.requireCurrentSheet()
	if err != nil {
		return Pair{}, err
	}
	if index < 0 || index >= len(sh.images) {
		return Pair{}, ferrors.NewOutOfRange("image", index, len(sh.images))
	}
	cur, old := s.currentSheet, sh.images[index].clone()
	return newPair(name, ScopeSheetContent,
		func(s *Show) {
			s.sheets[cur].images = slices.Delete(s.sheets[cur].images, index, index+1)
		},
		func(s *Show) {
			s.sheets[cur].images = slices.Insert(s.sheets[cur].images, index, old.clone())
		},
	), nil
}

// CreateMoveBackgroundImageCommand places image index at rect.
func (s *Show) CreateMoveBackgroundImageCommand(index int, rect Rect) (Pair, error) {
	const name = "move_background_image"
	sh, err := s.requireCurrentSheet()
	if err != nil {
		return Pair{}, err
	}
	if index < 0 || index >= len(sh.images) {
		return Pair{}, ferrors.NewOutOfRange("image", index, len(sh.images))
	}
	img := sh.images[index]
	old := Rect{Left: img.Left, Top: img.Top, Width: img.ScaledWidth, Height: img.ScaledHeight}
	if old == rect {
		return NoOp(name), nil
	}
	cur := s.currentSheet
	place := func(r Rect) func(*Show) {
		return func(s *Show) {
			im := &s.sheets[cur].images[index]
			im.Left, im.Top, im.ScaledWidth, im.ScaledHeight = r.Left, r.Top, r.Width, r.Height
		}
	}
	return newPair(name, ScopeSheetContent, place(rect), place(old)), nil
}

// CreateAddSheetCurveCommand appends a curve to the current sheet.
func (s *Show) CreateAddSheetCurveCommand(c Curve) (Pair, error) {
	const name = "add_sheet_curve"
	sh, err := s.requireCurrentSheet()
	if err != nil {
		return Pair{}, err
	}
	if err := checkCount("curve", len(sh.curves)+1); err != nil {
		return Pair{}, err
	}
	if err := checkCount("curve point", len(c.Points)); err != nil {
		return Pair{}, err
	}
	cur, at, c := s.currentSheet, len(sh.curves), c.clone()
	return newPair(name, ScopeSheetContent,
		func(s *Show) {
			s.sheets[cur].curves = slices.Insert(s.sheets[cur].curves, at, c.clone())
		},
		func(s *Show) {
			s.sheets[cur].curves = slices.Delete(s.sheets[cur].curves, at, at+1)
		},
	), nil
}

// CreateReplaceSheetCurveCommand replaces curve index on the current sheet.
func (s *Show) CreateReplaceSheetCurveCommand(index int, c Curve) (Pair, error) {
	const name = "replace_sheet_curve"
	sh, err := s.requireCurrentSheet()
	if err != nil {
		return Pair{}, err
	}
	if index < 0 || index >= len(sh.curves) {
		return Pair{}, ferrors.NewOutOfRange("curve", index, len(sh.curves))
	}
	if err := checkCount("curve point", len(c.Points)); err != nil {
		return Pair{}, err
	}
	old := sh.curves[index].clone()
	if slices.Equal(old.Points, c.Points) {
		return NoOp(name), nil
	}
	cur, c := s.currentSheet, c.clone()
	return newPair(name, ScopeSheetContent,
		func(s *Show) { s.sheets[cur].curves[index] = c.clone() },
		func(s *Show) { s.sheets[cur].curves[index] = old.clone() },
	), nil
}

// CreateRemoveSheetCurveCommand removes curve index from the current sheet.
func (s *Show) CreateRemoveSheetCurveCommand(index int) (Pair, error) {
	const name = "remove_sheet_curve"
	sh, err := s.requireCurrentSheet()
	if err != nil {
		return Pair{}, err
	}
	if index < 0 || index >= len(sh.curves) {
		return Pair{}, ferrors.NewOutOfRange("curve", index, len(sh.curves))
	}
	cur, old := s.currentSheet, sh.curves[index].clone()
	return newPair(name, ScopeSheetContent,
		func(s *Show) {
			s.sheets[cur].curves = slices.Delete(s.sheets[cur].curves, index, index+1)
		},
		func(s *Show) {
			s.sheets[cur].curves = slices.Insert(s.sheets[cur].curves, index, old.clone())
		},
	), nil
}
