package show

import (
	"github.com/FocuswithJustin/FieldChart/core/ingl"
	"github.com/FocuswithJustin/FieldChart/internal/logging"
)

// legacyMinStride is the size of a bare x/y point record.
const legacyMinStride = 4

// decodeLegacy reads the pre-3.4 layout: an unsized SHOW container, a SIZE
// chunk carrying stride and count, one flat PNTS table per sheet and a
// linked continuity list. There is no CURR chunk; the first sheet is current.
func decodeLegacy(r *ingl.Reader) (*Show, error) {
	if err := r.ExpectTag(ingl.TagShow); err != nil {
		return nil, err
	}
	s := newEmpty()

	skipUnknown := func() error {
		for {
			tag, ok := r.PeekTag()
			if !ok || isLegacyKnown(tag) {
				return nil
			}
			off := r.Offset()
			skipped, size, err := r.SkipChunk()
			if err != nil {
				return err
			}
			logging.Debug("chunk_skipped", "tag", skipped.String(), "size", size, "offset", off)
		}
	}

	if err := skipUnknown(); err != nil {
		return nil, err
	}
	off := r.Offset()
	if err := r.ExpectTagAndSize(ingl.TagSize, 8); err != nil {
		return nil, err
	}
	stride, _ := r.ReadU32()
	count, _ := r.ReadU32()
	if stride < legacyMinStride {
		return nil, ingl.Errorf(ingl.KindInvalidValue, off, "point stride %d", stride)
	}
	if count > MaxPoints {
		return nil, ingl.Errorf(ingl.KindInvalidValue, off, "marcher count %d exceeds %d", count, MaxPoints)
	}
	n := int(count)
	s.marchers = make([]Marcher, n)

	if err := skipUnknown(); err != nil {
		return nil, err
	}
	if peekIs(r, ingl.TagLabels) {
		labels, err := readStrings(r, ingl.TagLabels, n)
		if err != nil {
			return nil, err
		}
		for i, l := range labels {
			s.marchers[i].Label = l
		}
	}

	if err := skipUnknown(); err != nil {
		return nil, err
	}
	if peekIs(r, ingl.TagDesc) {
		sub, err := r.BlockReader(ingl.TagDesc)
		if err != nil {
			return nil, err
		}
		if s.description, err = readOneString(sub, ingl.TagDesc); err != nil {
			return nil, err
		}
	}

	for {
		if err := skipUnknown(); err != nil {
			return nil, err
		}
		if !peekIs(r, ingl.TagGurk) {
			break
		}
		_, _ = r.ReadTag()
		sh, err := decodeLegacySheet(r, n, int(stride))
		if err != nil {
			return nil, err
		}
		s.sheets = append(s.sheets, sh)
	}

	if err := r.ExpectTag(ingl.TagEnd); err != nil {
		return nil, err
	}
	if err := r.ExpectTag(ingl.TagShow); err != nil {
		return nil, err
	}
	return s, nil
}

func isLegacyKnown(tag ingl.Tag) bool {
	switch tag {
	case ingl.TagSize, ingl.TagLabels, ingl.TagDesc, ingl.TagGurk, ingl.TagEnd:
		return true
	}
	return false
}

func decodeLegacySheet(r *ingl.Reader, n, stride int) (*Sheet, error) {
	if err := r.ExpectTag(ingl.TagSheet); err != nil {
		return nil, err
	}
	sh := &Sheet{points: make([]Point, n)}

	sub, err := r.BlockReader(ingl.TagName)
	if err != nil {
		return nil, err
	}
	if sh.name, err = readOneString(sub, ingl.TagName); err != nil {
		return nil, err
	}

	off := r.Offset()
	if sub, err = r.BlockReader(ingl.TagDuration); err != nil {
		return nil, err
	}
	switch sub.Remaining() {
	case 4:
		sh.beats, _ = sub.ReadU32()
	case 8:
		sh.beats, _ = sub.ReadU32()
		if skipped, _ := sub.ReadU32(); skipped != 0 {
			sh.beats = 0
		}
	default:
		return nil, ingl.SizeError(off, ingl.TagDuration, 4, uint32(sub.Remaining()))
	}

	if sub, err = perMarcherBlock(r, ingl.TagPoints, n, stride, 0); err != nil {
		return nil, err
	}
	for i := range sh.points {
		rec, _ := sub.Sub(stride)
		p := &sh.points[i]
		p.Pos, _ = readCoord(rec)
		if stride > 4 {
			at := rec.Offset()
			sym, _ := rec.ReadU8()
			if !Symbol(sym).Valid() {
				return nil, ingl.Errorf(ingl.KindInvalidValue, at, "symbol %d for marcher %d", sym, i)
			}
			p.Symbol = Symbol(sym)
		}
		if stride > 5 {
			p.ContIndex, _ = rec.ReadU8()
		}
		if stride > 6 {
			flip, _ := rec.ReadU8()
			p.Flip = flip != 0
		}
	}

	if peekIs(r, ingl.TagContinuity) {
		if sh.continuities, err = decodeContinuityList(r); err != nil {
			return nil, err
		}
	}

	if err := r.ExpectTag(ingl.TagEnd); err != nil {
		return nil, err
	}
	if err := r.ExpectTag(ingl.TagSheet); err != nil {
		return nil, err
	}
	sh.ensureUsedContinuities()
	return sh, nil
}

// legacyNodeMinSize is the next offset, the slot and two empty strings.
const legacyNodeMinSize = 2 + 1 + 2

// decodeContinuityList walks the linked node list of a legacy CONT block.
// Each node names the block offset of its successor; zero ends the list.
func decodeContinuityList(r *ingl.Reader) ([]Continuity, error) {
	blockStart := r.Offset() + 8
	block, err := r.ReadBlock(ingl.TagContinuity)
	if err != nil {
		return nil, err
	}

	var out []Continuity
	at := 0
	for {
		if len(block)-at < legacyNodeMinSize {
			return nil, ingl.Errorf(ingl.KindBadContinuityRecord, blockStart+at, "node needs %d bytes, %d remain", legacyNodeMinSize, len(block)-at)
		}
		node := ingl.NewReader(block[at:])
		next, _ := node.ReadU16()
		var c Continuity
		c.Slot, _ = node.ReadU8()
		if c.Name, err = node.ReadCString(); err != nil {
			return nil, ingl.Errorf(ingl.KindMalformedString, blockStart+at, "continuity name")
		}
		if c.Text, err = node.ReadCString(); err != nil {
			return nil, ingl.Errorf(ingl.KindMalformedString, blockStart+at, "continuity text")
		}
		for _, prev := range out {
			if prev.Slot == c.Slot {
				return nil, ingl.Errorf(ingl.KindInvalidValue, blockStart+at, "duplicate continuity slot %d", c.Slot)
			}
		}
		out = append(out, c)

		if next == 0 {
			return out, nil
		}
		end := at + (node.Offset())
		if int(next) < end || int(next) >= len(block) {
			return nil, ingl.Errorf(ingl.KindBadContinuityRecord, blockStart+at, "next node offset %d", next)
		}
		at = int(next)
	}
}
