package show

import (
	"fmt"
	"math"
	"slices"
	"strings"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
)

// UnitsPerStep is the number of coordinate units in one marching step.
const UnitsPerStep = 16

// NumRefGroups counts the primary position plus the secondary reference groups.
const NumRefGroups = 4

// Coord is a field position in coordinate units.
type Coord struct {
	X int16
	Y int16
}

// Steps builds a Coord from whole steps. Values outside the field wrap;
// use StepCoord for unchecked input.
func Steps(x, y int) Coord {
	return Coord{X: int16(x * UnitsPerStep), Y: int16(y * UnitsPerStep)}
}

// StepCoord builds a Coord from whole steps, rejecting positions the int16
// coordinate space cannot hold.
func StepCoord(x, y int) (Coord, error) {
	return OffsetSteps(Coord{}, x, y)
}

// OffsetSteps returns c moved by dx, dy steps, or a ValidationError when
// the result leaves the coordinate space.
func OffsetSteps(c Coord, dx, dy int) (Coord, error) {
	x, okX := offsetUnits(c.X, dx)
	y, okY := offsetUnits(c.Y, dy)
	if !okX || !okY {
		return Coord{}, ferrors.NewValidation("position",
			fmt.Sprintf("%s + (%d,%d) steps is outside the field", c, dx, dy))
	}
	return Coord{X: x, Y: y}, nil
}

func offsetUnits(base int16, steps int) (int16, bool) {
	if steps < math.MinInt16/UnitsPerStep*2 || steps > math.MaxInt16/UnitsPerStep*2 {
		return 0, false
	}
	u := int(base) + steps*UnitsPerStep
	if u < math.MinInt16 || u > math.MaxInt16 {
		return 0, false
	}
	return int16(u), true
}

// Add returns c + o.
func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y}
}

// Sub returns c - o.
func (c Coord) Sub(o Coord) Coord {
	return Coord{X: c.X - o.X, Y: c.Y - o.Y}
}

// DistanceSquared returns the squared euclidean distance in coordinate units.
func (c Coord) DistanceSquared(o Coord) int64 {
	dx := int64(c.X) - int64(o.X)
	dy := int64(c.Y) - int64(o.Y)
	return dx*dx + dy*dy
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Symbol is a marcher's dot style.
type Symbol uint8

const (
	SymbolPlain Symbol = iota
	SymbolSolid
	SymbolBackslash
	SymbolSlash
	SymbolX
	SymbolSolidBackslash
	SymbolSolidSlash
	SymbolSolidX
)

// NumSymbols is the size of the symbol enumeration.
const NumSymbols = 8

var symbolNames = [NumSymbols]string{"Plain", "Sol", "Bksl", "Sl", "X", "Solbksl", "Solsl", "Solx"}

var symbolLongNames = [NumSymbols]string{
	"Plain", "Solid", "Backslash", "Slash", "Crossed",
	"Solid Backslash", "Solid Slash", "Solid Crossed",
}

// Valid reports whether s is one of the eight styles.
func (s Symbol) Valid() bool {
	return s < NumSymbols
}

// String returns the short name used for continuity slots.
func (s Symbol) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Symbol(%d)", uint8(s))
	}
	return symbolNames[s]
}

// LongName returns the display name.
func (s Symbol) LongName() string {
	if !s.Valid() {
		return s.String()
	}
	return symbolLongNames[s]
}

// ParseSymbol matches a short or long symbol name, ignoring case and spaces.
func ParseSymbol(name string) (Symbol, bool) {
	norm := func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, " ", ""))
	}
	want := norm(name)
	for i := range NumSymbols {
		if norm(symbolNames[i]) == want || norm(symbolLongNames[i]) == want {
			return Symbol(i), true
		}
	}
	return 0, false
}

// RefState says whether a secondary reference position follows the primary.
type RefState uint8

const (
	RefInherited RefState = iota
	RefOverridden
)

// RefPosition is one secondary reference position. An inherited position
// always reads as the marcher's primary position.
type RefPosition struct {
	State RefState
	Coord Coord
}

// Overridden returns a RefPosition pinned to c.
func Overridden(c Coord) RefPosition {
	return RefPosition{State: RefOverridden, Coord: c}
}

// Point is one marcher's state on one sheet.
type Point struct {
	Pos         Coord
	Refs        [NumRefGroups - 1]RefPosition
	Symbol      Symbol
	ContIndex   uint8 // continuity slot governing this marcher
	Flip        bool  // label drawn on the left
	LabelHidden bool
}

// NewPoint returns a plain point at pos with every reference inherited.
func NewPoint(pos Coord) Point {
	return Point{Pos: pos}
}

// Position returns the position for reference group ref.
func (p Point) Position(ref int) Coord {
	if ref <= 0 || ref >= NumRefGroups {
		return p.Pos
	}
	if r := p.Refs[ref-1]; r.State == RefOverridden {
		return r.Coord
	}
	return p.Pos
}

// SetPosition moves reference group ref. Group 0 moves the primary
// position; inherited groups follow it.
func (p *Point) SetPosition(c Coord, ref int) {
	if ref <= 0 {
		p.Pos = c
		return
	}
	p.Refs[ref-1] = Overridden(c)
}

// ResetRef makes reference group ref follow the primary position again.
func (p *Point) ResetRef(ref int) {
	if ref > 0 && ref < NumRefGroups {
		p.Refs[ref-1] = RefPosition{}
	}
}

// Continuity is a named movement program. Points refer to it by Slot.
type Continuity struct {
	Slot uint8
	Name string
	Text string
}

// StandardContinuityName returns the name synthesized for an unnamed slot.
func StandardContinuityName(slot uint8) string {
	if slot < NumSymbols {
		return symbolNames[slot]
	}
	return fmt.Sprintf("Cont%d", slot)
}

// PrintContinuity is the printable continuity attached to a sheet.
type PrintContinuity struct {
	Number string
	Text   string
}

// IsZero reports whether both fields are empty.
func (p PrintContinuity) IsZero() bool {
	return p.Number == "" && p.Text == ""
}

// Rect is a placement rectangle in field units.
type Rect struct {
	Left   int32
	Top    int32
	Width  int32
	Height int32
}

// ImageData is a background image drawn under a sheet.
type ImageData struct {
	Left         int32
	Top          int32
	ScaledWidth  int32
	ScaledHeight int32
	Width        int32 // source pixel width
	Height       int32 // source pixel height
	Data         []byte
}

func (img ImageData) clone() ImageData {
	img.Data = slices.Clone(img.Data)
	return img
}

func (img ImageData) equal(o ImageData) bool {
	return img.Left == o.Left && img.Top == o.Top &&
		img.ScaledWidth == o.ScaledWidth && img.ScaledHeight == o.ScaledHeight &&
		img.Width == o.Width && img.Height == o.Height &&
		string(img.Data) == string(o.Data)
}

// Curve is a polyline drawn on a sheet.
type Curve struct {
	Points []Coord
}

func (c Curve) clone() Curve {
	return Curve{Points: slices.Clone(c.Points)}
}

// Marcher is the show-wide identity of one performer.
type Marcher struct {
	Label      string
	Instrument string
}

// ShowMode describes the field the show is drawn on.
type ShowMode struct {
	HashW     uint16
	HashE     uint16
	Border1   Coord
	Border2   Coord
	Offset    Coord
	Size      Coord
	YardLines []string
}

// DefaultShowMode returns a standard 160 by 84 step field.
func DefaultShowMode() ShowMode {
	return ShowMode{
		HashW:     32,
		HashE:     52,
		Border1:   Steps(8, 8),
		Border2:   Steps(8, 8),
		Offset:    Steps(80, 42),
		Size:      Steps(160, 84),
		YardLines: defaultYardLines(),
	}
}

func defaultYardLines() []string {
	lines := make([]string, 0, 21)
	for yard := 0; yard <= 100; yard += 5 {
		if yard > 50 {
			lines = append(lines, fmt.Sprint(100-yard))
			continue
		}
		lines = append(lines, fmt.Sprint(yard))
	}
	return lines
}

// Equal compares every field.
func (m ShowMode) Equal(o ShowMode) bool {
	return m.HashW == o.HashW && m.HashE == o.HashE &&
		m.Border1 == o.Border1 && m.Border2 == o.Border2 &&
		m.Offset == o.Offset && m.Size == o.Size &&
		slices.Equal(m.YardLines, o.YardLines)
}

func (m ShowMode) clone() ShowMode {
	m.YardLines = slices.Clone(m.YardLines)
	return m
}
