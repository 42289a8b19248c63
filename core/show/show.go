// Package show holds the drill document model, its INGL codec and the
// command pairs that mutate it.
//
// A Show is changed only through Pair values produced by the Create*Command
// factories. Each pair closes over the state it overwrites, so reverting one
// edit never disturbs an unrelated one. The package does no locking; callers
// serialize access on a single owner goroutine.
package show

import (
	"encoding/hex"
	"slices"

	"github.com/zeebo/blake3"
)

// Show is the root document.
type Show struct {
	description  string
	marchers     []Marcher
	sheets       []*Sheet
	currentSheet int
	selection    SelectionList
	mode         ShowMode
	currentRef   int // transient, never serialized
}

// New returns a show with one empty sheet named "1" and no marchers.
func New(mode ShowMode) *Show {
	return &Show{
		sheets: []*Sheet{NewSheet(0, "1")},
		mode:   mode.clone(),
	}
}

func newEmpty() *Show {
	return &Show{mode: DefaultShowMode()}
}

// GetNumPoints returns the marcher count.
func (s *Show) GetNumPoints() int { return len(s.marchers) }

// GetNumSheets returns the sheet count.
func (s *Show) GetNumSheets() int { return len(s.sheets) }

// GetSheet returns sheet i. The sheet must not be modified.
func (s *Show) GetSheet(i int) *Sheet { return s.sheets[i] }

// GetSheets returns the sheets in show order. The sheets must not be modified.
func (s *Show) GetSheets() []*Sheet { return slices.Clone(s.sheets) }

// GetCurrentSheetNum returns the current sheet index.
func (s *Show) GetCurrentSheetNum() int { return s.currentSheet }

// GetCurrentSheet returns the current sheet, or nil when the show has none.
func (s *Show) GetCurrentSheet() *Sheet {
	if s.currentSheet < len(s.sheets) {
		return s.sheets[s.currentSheet]
	}
	return nil
}

// GetMarchers returns every marcher's label and instrument.
func (s *Show) GetMarchers() []Marcher { return slices.Clone(s.marchers) }

// GetPointLabel returns marcher i's label.
func (s *Show) GetPointLabel(i int) string { return s.marchers[i].Label }

// GetPointLabels returns all labels in marcher order.
func (s *Show) GetPointLabels() []string {
	out := make([]string, len(s.marchers))
	for i, m := range s.marchers {
		out[i] = m.Label
	}
	return out
}

// GetPointInstrument returns marcher i's instrument.
func (s *Show) GetPointInstrument(i int) string { return s.marchers[i].Instrument }

// GetPointInstruments returns all instruments in marcher order.
func (s *Show) GetPointInstruments() []string {
	out := make([]string, len(s.marchers))
	for i, m := range s.marchers {
		out[i] = m.Instrument
	}
	return out
}

// GetDescription returns the show description.
func (s *Show) GetDescription() string { return s.description }

// GetSelection returns the current selection.
func (s *Show) GetSelection() SelectionList { return s.selection }

// GetShowMode returns the field description.
func (s *Show) GetShowMode() ShowMode { return s.mode.clone() }

// GetCurrentReferencePoint returns the reference group edits apply to.
func (s *Show) GetCurrentReferencePoint() int { return s.currentRef }

// GetAllMarcherPositions returns every marcher's position on sheet in
// reference group ref.
func (s *Show) GetAllMarcherPositions(sheet, ref int) []Coord {
	return s.sheets[sheet].GetAllPositions(ref)
}

// Equal compares two shows field by field, ignoring transient state.
func (s *Show) Equal(o *Show) bool {
	if s.description != o.description || s.currentSheet != o.currentSheet {
		return false
	}
	if !slices.Equal(s.marchers, o.marchers) || !s.selection.Equal(o.selection) || !s.mode.Equal(o.mode) {
		return false
	}
	return slices.EqualFunc(s.sheets, o.sheets, (*Sheet).Equal)
}

// Fingerprint returns the BLAKE3 digest of the serialized show as hex.
func (s *Show) Fingerprint() string {
	sum := blake3.Sum256(s.Serialize())
	return hex.EncodeToString(sum[:])
}

// validSheet reports whether i indexes an existing sheet.
func (s *Show) validSheet(i int) bool {
	return i >= 0 && i < len(s.sheets)
}
