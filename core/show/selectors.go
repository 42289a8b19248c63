package show

import "strings"

// MakeSelectAll selects every marcher.
func (s *Show) MakeSelectAll() SelectionList {
	all := make([]int, len(s.marchers))
	for i := range all {
		all[i] = i
	}
	return NewSelectionList(all...)
}

// MakeUnselectAll returns the empty selection.
func (s *Show) MakeUnselectAll() SelectionList {
	return SelectionList{}
}

// MakeAddToSelection returns the current selection plus sl.
func (s *Show) MakeAddToSelection(sl SelectionList) SelectionList {
	return s.selection.Add(sl.order...)
}

// MakeRemoveFromSelection returns the current selection minus sl.
func (s *Show) MakeRemoveFromSelection(sl SelectionList) SelectionList {
	return s.selection.Remove(sl.order...)
}

// MakeToggleSelection flips membership of every marcher in sl.
func (s *Show) MakeToggleSelection(sl SelectionList) SelectionList {
	return s.selection.Toggle(sl.order...)
}

func (s *Show) selectWhere(keep func(i int) bool) SelectionList {
	var out SelectionList
	for i := range s.marchers {
		if keep(i) {
			out.push(i)
		}
	}
	return out
}

// MakeSelectBySymbol selects the marchers showing sym on the current sheet.
func (s *Show) MakeSelectBySymbol(sym Symbol) SelectionList {
	sh := s.GetCurrentSheet()
	if sh == nil {
		return SelectionList{}
	}
	return s.selectWhere(func(i int) bool { return sh.points[i].Symbol == sym })
}

// MakeSelectByInstrument selects marchers whose instrument matches,
// ignoring case.
func (s *Show) MakeSelectByInstrument(instrument string) SelectionList {
	return s.selectWhere(func(i int) bool { return strings.EqualFold(s.marchers[i].Instrument, instrument) })
}

// MakeSelectByLabel selects marchers whose label starts with prefix.
func (s *Show) MakeSelectByLabel(prefix string) SelectionList {
	return s.selectWhere(func(i int) bool { return strings.HasPrefix(s.marchers[i].Label, prefix) })
}

// MakeSelectWithinPolygon selects marchers on the current sheet whose
// position in reference group ref lies inside the closed polygon. Points
// on an edge count as inside.
func (s *Show) MakeSelectWithinPolygon(polygon []Coord, ref int) SelectionList {
	sh := s.GetCurrentSheet()
	if sh == nil || len(polygon) < 3 {
		return SelectionList{}
	}
	return s.selectWhere(func(i int) bool { return insidePolygon(polygon, sh.points[i].Position(ref)) })
}

// insidePolygon is an even-odd ray cast toward +X.
func insidePolygon(poly []Coord, p Coord) bool {
	px, py := int64(p.X), int64(p.Y)
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		ax, ay := int64(poly[i].X), int64(poly[i].Y)
		bx, by := int64(poly[j].X), int64(poly[j].Y)
		if onSegment(ax, ay, bx, by, px, py) {
			return true
		}
		if (ay > py) == (by > py) {
			continue
		}
		// x of the edge at py, compared without division
		lhs := (px - ax) * (by - ay)
		rhs := (bx - ax) * (py - ay)
		if by-ay < 0 {
			lhs, rhs = -lhs, -rhs
		}
		if lhs < rhs {
			inside = !inside
		}
	}
	return inside
}

func onSegment(ax, ay, bx, by, px, py int64) bool {
	if (bx-ax)*(py-ay)-(by-ay)*(px-ax) != 0 {
		return false
	}
	return min(ax, bx) <= px && px <= max(ax, bx) && min(ay, by) <= py && py <= max(ay, by)
}
