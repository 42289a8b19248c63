package show

import (
	"cmp"
	"slices"
)

// Sheet is one formation of the show.
type Sheet struct {
	name         string
	beats        uint32
	points       []Point
	continuities []Continuity
	printCont    PrintContinuity
	images       []ImageData
	curves       []Curve
}

// NewSheet returns a one-beat sheet with numPoints marchers at the origin.
func NewSheet(numPoints int, name string) *Sheet {
	sh := &Sheet{
		name:   name,
		beats:  1,
		points: make([]Point, numPoints),
	}
	sh.ensureUsedContinuities()
	return sh
}

// GetName returns the sheet name.
func (sh *Sheet) GetName() string { return sh.name }

// GetBeats returns the sheet duration.
func (sh *Sheet) GetBeats() uint32 { return sh.beats }

// IsSkipped reports whether the sheet has no duration.
func (sh *Sheet) IsSkipped() bool { return sh.beats == 0 }

// GetNumPoints returns the marcher count.
func (sh *Sheet) GetNumPoints() int { return len(sh.points) }

// GetPoint returns a copy of marcher i's point.
func (sh *Sheet) GetPoint(i int) Point { return sh.points[i] }

// GetPoints returns a copy of every point.
func (sh *Sheet) GetPoints() []Point { return slices.Clone(sh.points) }

// GetPosition returns marcher i's position in reference group ref.
func (sh *Sheet) GetPosition(i, ref int) Coord {
	return sh.points[i].Position(ref)
}

// GetAllPositions returns every marcher's position in reference group ref.
func (sh *Sheet) GetAllPositions(ref int) []Coord {
	out := make([]Coord, len(sh.points))
	for i, p := range sh.points {
		out[i] = p.Position(ref)
	}
	return out
}

// GetContinuities returns the continuity list in stored order.
func (sh *Sheet) GetContinuities() []Continuity {
	return slices.Clone(sh.continuities)
}

// GetContinuityBySlot finds the continuity for slot.
func (sh *Sheet) GetContinuityBySlot(slot uint8) (Continuity, bool) {
	if i := sh.continuityIndex(slot); i >= 0 {
		return sh.continuities[i], true
	}
	return Continuity{}, false
}

// GetPrintContinuity returns the printable continuity.
func (sh *Sheet) GetPrintContinuity() PrintContinuity { return sh.printCont }

// GetBackgroundImages returns copies of the background images.
func (sh *Sheet) GetBackgroundImages() []ImageData {
	out := make([]ImageData, len(sh.images))
	for i, img := range sh.images {
		out[i] = img.clone()
	}
	return out
}

// GetCurves returns copies of the sheet curves.
func (sh *Sheet) GetCurves() []Curve {
	out := make([]Curve, len(sh.curves))
	for i, c := range sh.curves {
		out[i] = c.clone()
	}
	return out
}

// Clone returns a deep copy.
func (sh *Sheet) Clone() *Sheet {
	c := &Sheet{
		name:         sh.name,
		beats:        sh.beats,
		points:       slices.Clone(sh.points),
		continuities: slices.Clone(sh.continuities),
		printCont:    sh.printCont,
		images:       sh.GetBackgroundImages(),
		curves:       sh.GetCurves(),
	}
	if len(sh.images) == 0 {
		c.images = nil
	}
	if len(sh.curves) == 0 {
		c.curves = nil
	}
	return c
}

// CloneAs returns a deep copy named name.
func (sh *Sheet) CloneAs(name string) *Sheet {
	c := sh.Clone()
	c.name = name
	return c
}

// Equal compares sheets field by field. Reference positions compare by
// their effective coordinates.
func (sh *Sheet) Equal(o *Sheet) bool {
	if sh.name != o.name || sh.beats != o.beats || sh.printCont != o.printCont {
		return false
	}
	if len(sh.points) != len(o.points) {
		return false
	}
	for i := range sh.points {
		a, b := sh.points[i], o.points[i]
		if a.Symbol != b.Symbol || a.ContIndex != b.ContIndex || a.Flip != b.Flip || a.LabelHidden != b.LabelHidden {
			return false
		}
		for ref := range NumRefGroups {
			if a.Position(ref) != b.Position(ref) {
				return false
			}
		}
	}
	if !slices.Equal(sh.continuities, o.continuities) {
		return false
	}
	if !slices.EqualFunc(sh.images, o.images, ImageData.equal) {
		return false
	}
	return slices.EqualFunc(sh.curves, o.curves, func(a, b Curve) bool {
		return slices.Equal(a.Points, b.Points)
	})
}

func (sh *Sheet) continuityIndex(slot uint8) int {
	return slices.IndexFunc(sh.continuities, func(c Continuity) bool { return c.Slot == slot })
}

// ensureContinuity adds a standard continuity for slot if none exists.
func (sh *Sheet) ensureContinuity(slot uint8) {
	if sh.continuityIndex(slot) < 0 {
		sh.continuities = append(sh.continuities, Continuity{Slot: slot, Name: StandardContinuityName(slot)})
	}
}

// ensureUsedContinuities synthesizes every slot a point refers to but the
// list lacks, in ascending slot order.
func (sh *Sheet) ensureUsedContinuities() {
	var missing []uint8
	for _, p := range sh.points {
		if sh.continuityIndex(p.ContIndex) < 0 && !slices.Contains(missing, p.ContIndex) {
			missing = append(missing, p.ContIndex)
		}
	}
	slices.SortFunc(missing, cmp.Compare[uint8])
	for _, slot := range missing {
		sh.ensureContinuity(slot)
	}
}
