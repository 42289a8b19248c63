package show

import (
	"github.com/FocuswithJustin/FieldChart/core/ingl"
	"github.com/FocuswithJustin/FieldChart/internal/logging"
)

// Serialize encodes the show at ingl.CurrentVersion. Output depends only
// on the show's state.
func (s *Show) Serialize() []byte {
	w := ingl.NewWriter()
	w.WriteHeader(ingl.CurrentVersion)
	m := w.BeginSized(ingl.TagShow)
	s.writeBody(w)
	w.FinishSized(m)
	w.WriteEnd(ingl.TagShow)
	return w.Bytes()
}

// Save serializes the show into sink.
func (s *Show) Save(sink ingl.ByteSink) error {
	data := s.Serialize()
	if err := sink.Store(data); err != nil {
		return err
	}
	logging.ShowSaved(sink.Name(), len(data))
	return nil
}

func (s *Show) writeBody(w *ingl.Writer) {
	n := len(s.marchers)
	w.WriteU32Block(ingl.TagSize, uint32(n))

	var labels []byte
	for _, m := range s.marchers {
		labels = ingl.AppendCString(labels, m.Label)
	}
	w.WriteBlock(ingl.TagLabels, labels)

	if s.hasInstruments() {
		var inst []byte
		for _, m := range s.marchers {
			inst = ingl.AppendCString(inst, m.Instrument)
		}
		w.WriteBlock(ingl.TagInstruments, inst)
	}

	if s.description != "" {
		w.WriteBlock(ingl.TagDesc, ingl.AppendCString(nil, s.description))
	}

	for _, sh := range s.sheets {
		sh.write(w)
	}

	if !s.selection.Empty() {
		m := w.BeginSized(ingl.TagSelection)
		for _, i := range s.selection.order {
			w.WriteU32(uint32(i))
		}
		w.FinishSized(m)
	}

	if !s.mode.Equal(DefaultShowMode()) {
		writeMode(w, s.mode)
	}

	w.WriteU32Block(ingl.TagCurrent, uint32(s.currentSheet))
}

func (s *Show) hasInstruments() bool {
	for _, m := range s.marchers {
		if m.Instrument != "" {
			return true
		}
	}
	return false
}

func writeMode(w *ingl.Writer, mode ShowMode) {
	m := w.BeginSized(ingl.TagMode)
	w.WriteU16(mode.HashW)
	w.WriteU16(mode.HashE)
	for _, c := range []Coord{mode.Border1, mode.Border2, mode.Offset, mode.Size} {
		writeCoord(w, c)
	}
	w.WriteU16(uint16(len(mode.YardLines)))
	for _, line := range mode.YardLines {
		w.WriteCString(line)
	}
	w.FinishSized(m)
}

func writeCoord(w *ingl.Writer, c Coord) {
	w.WriteI16(c.X)
	w.WriteI16(c.Y)
}

func (sh *Sheet) write(w *ingl.Writer) {
	n := len(sh.points)
	w.WriteContainerStart(ingl.TagSheet)
	w.WriteBlock(ingl.TagName, ingl.AppendCString(nil, sh.name))
	w.WriteU32Block(ingl.TagDuration, sh.beats)

	m := w.BeginSized(ingl.TagPositions)
	for _, p := range sh.points {
		writeCoord(w, p.Pos)
	}
	w.FinishSized(m)

	for ref := 1; ref < NumRefGroups; ref++ {
		if !sh.overrides(ref) {
			continue
		}
		m := w.BeginSized(ingl.TagRefPos)
		w.WriteU16(uint16(ref))
		for _, p := range sh.points {
			writeCoord(w, p.Position(ref))
		}
		w.FinishSized(m)
	}

	sh.writeBytes(w, ingl.TagSymbols, n, func(p Point) byte { return byte(p.Symbol) })
	sh.writeBytes(w, ingl.TagContIndex, n, func(p Point) byte { return p.ContIndex })
	sh.writeBytes(w, ingl.TagLabels, n, func(p Point) byte { return boolByte(p.Flip) })
	sh.writeBytes(w, ingl.TagVisibility, n, func(p Point) byte { return boolByte(p.LabelHidden) })

	for _, c := range sh.continuities {
		m := w.BeginSized(ingl.TagContinuity)
		w.WriteU8(c.Slot)
		w.WriteCString(c.Name)
		w.WriteCString(c.Text)
		w.FinishSized(m)
	}

	if !sh.printCont.IsZero() {
		m := w.BeginSized(ingl.TagPrintCont)
		w.WriteCString(sh.printCont.Number)
		w.WriteCString(sh.printCont.Text)
		w.FinishSized(m)
	}

	if len(sh.images) > 0 {
		m := w.BeginSized(ingl.TagBackground)
		w.WriteU16(uint16(len(sh.images)))
		for _, img := range sh.images {
			for _, v := range []int32{img.Left, img.Top, img.ScaledWidth, img.ScaledHeight, img.Width, img.Height} {
				w.WriteI32(v)
			}
			w.WriteU32(uint32(len(img.Data)))
			w.WriteBytes(img.Data)
		}
		w.FinishSized(m)
	}

	if len(sh.curves) > 0 {
		m := w.BeginSized(ingl.TagCurves)
		w.WriteU16(uint16(len(sh.curves)))
		for _, c := range sh.curves {
			w.WriteU16(uint16(len(c.Points)))
			for _, pt := range c.Points {
				writeCoord(w, pt)
			}
		}
		w.FinishSized(m)
	}

	w.WriteEnd(ingl.TagSheet)
}

// writeBytes emits a one-byte-per-marcher chunk unless every value is zero.
func (sh *Sheet) writeBytes(w *ingl.Writer, tag ingl.Tag, n int, field func(Point) byte) {
	buf := make([]byte, n)
	nonzero := false
	for i, p := range sh.points {
		buf[i] = field(p)
		nonzero = nonzero || buf[i] != 0
	}
	if nonzero {
		w.WriteBlock(tag, buf)
	}
}

// overrides reports whether any marcher's group ref differs from its
// primary position. Pins that coincide with the primary are not stored.
// The format has no override flag, so such a pin reloads as Inherited and
// follows later primary moves.
func (sh *Sheet) overrides(ref int) bool {
	for _, p := range sh.points {
		if p.Position(ref) != p.Pos {
			return true
		}
	}
	return false
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
