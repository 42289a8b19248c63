package show

import (
	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
	"github.com/FocuswithJustin/FieldChart/core/ingl"
	"github.com/FocuswithJustin/FieldChart/internal/logging"
)

// MaxPoints bounds the marcher count accepted from a file.
const MaxPoints = 1 << 16

// Parse decodes a complete show file. Files older than 3.4 go through the
// legacy decoder; files newer than the current version are read with the
// current grammar, skipping chunks it does not know. On failure the error
// is an *errors.ParseError wrapping an *ingl.FormatError.
func Parse(data []byte) (*Show, error) {
	s, _, err := decode(data)
	if err != nil {
		return nil, ferrors.WrapParse("ingl", "", err)
	}
	return s, nil
}

// ParseVersion reads only the header.
func ParseVersion(data []byte) (ingl.Version, error) {
	v, err := ingl.ReadHeader(ingl.NewReader(data))
	if err != nil {
		return v, ferrors.WrapParse("ingl", "", err)
	}
	return v, nil
}

// Load reads src and decodes it.
func Load(src ingl.ByteSource) (*Show, error) {
	data, err := src.Load()
	if err != nil {
		return nil, err
	}
	s, v, err := decode(data)
	if err != nil {
		logging.ParseFailure(src.Name(), err)
		return nil, ferrors.WrapParse("ingl", src.Name(), err)
	}
	logging.ShowLoaded(src.Name(), v.String(), s.GetNumPoints(), s.GetNumSheets())
	return s, nil
}

func decode(data []byte) (*Show, ingl.Version, error) {
	r := ingl.NewReader(data)
	v, err := ingl.ReadHeader(r)
	if err != nil {
		return nil, v, err
	}
	var s *Show
	if v.IsLegacy() {
		s, err = decodeLegacy(r)
	} else {
		if ingl.CurrentVersion.Less(v) {
			logging.FormatWarning("newer_version", "version", v.String(), "current", ingl.CurrentVersion.String())
		}
		s, err = decodeCurrent(r)
	}
	if err != nil {
		return nil, v, err
	}
	if !r.AtEnd() {
		logging.Debug("trailing_bytes_ignored", "offset", r.Offset(), "bytes", r.Remaining())
	}
	return s, v, nil
}

// Top-level stages. Each known chunk may appear only while the stage allows
// it and advances the stage past itself.
const (
	stageStart = iota
	stageSized
	stageLabels
	stageInstruments
	stageDescription
	stageSheets
	stageDone
)

func decodeCurrent(r *ingl.Reader) (*Show, error) {
	content, err := r.BlockReader(ingl.TagShow)
	if err != nil {
		return nil, err
	}

	s := newEmpty()
	stage := stageStart
	n := 0
	seenSelection, seenMode := false, false

	unexpected := func(found ingl.Tag) error {
		want := "CURR"
		switch stage {
		case stageStart:
			want = ingl.TagSize.String()
		case stageDone:
			want = "end of SHOW"
		}
		return &ingl.FormatError{
			Kind:     ingl.KindUnexpectedTag,
			Offset:   content.Offset(),
			Expected: want,
			Found:    found.String(),
		}
	}

	for !content.AtEnd() {
		tag, ok := content.PeekTag()
		if !ok {
			_, err := content.ReadTag()
			return nil, err
		}
		switch tag {
		case ingl.TagSize:
			if stage != stageStart {
				return nil, unexpected(tag)
			}
			off := content.Offset()
			count, err := content.ReadFixedU32(ingl.TagSize)
			if err != nil {
				return nil, err
			}
			if count > MaxPoints {
				return nil, ingl.Errorf(ingl.KindInvalidValue, off, "marcher count %d exceeds %d", count, MaxPoints)
			}
			n = int(count)
			s.marchers = make([]Marcher, n)
			stage = stageSized

		case ingl.TagLabels:
			if stage != stageSized {
				return nil, unexpected(tag)
			}
			labels, err := readStrings(content, ingl.TagLabels, n)
			if err != nil {
				return nil, err
			}
			for i, l := range labels {
				s.marchers[i].Label = l
			}
			stage = stageLabels

		case ingl.TagInstruments:
			if stage < stageSized || stage >= stageInstruments {
				return nil, unexpected(tag)
			}
			inst, err := readStrings(content, ingl.TagInstruments, n)
			if err != nil {
				return nil, err
			}
			for i, in := range inst {
				s.marchers[i].Instrument = in
			}
			stage = stageInstruments

		case ingl.TagDesc:
			if stage < stageSized || stage >= stageDescription {
				return nil, unexpected(tag)
			}
			sub, err := content.BlockReader(ingl.TagDesc)
			if err != nil {
				return nil, err
			}
			if s.description, err = readOneString(sub, ingl.TagDesc); err != nil {
				return nil, err
			}
			stage = stageDescription

		case ingl.TagGurk:
			if stage < stageSized || stage >= stageDone {
				return nil, unexpected(tag)
			}
			_, _ = content.ReadTag()
			sh, err := decodeSheet(content, n)
			if err != nil {
				return nil, err
			}
			s.sheets = append(s.sheets, sh)
			stage = stageSheets

		case ingl.TagSelection:
			if stage < stageSized || stage >= stageDone || seenSelection {
				return nil, unexpected(tag)
			}
			if s.selection, err = decodeSelection(content, n); err != nil {
				return nil, err
			}
			seenSelection = true

		case ingl.TagMode:
			if stage < stageSized || stage >= stageDone || seenMode {
				return nil, unexpected(tag)
			}
			if s.mode, err = decodeMode(content); err != nil {
				return nil, err
			}
			seenMode = true

		case ingl.TagCurrent:
			if stage < stageSized || stage >= stageDone {
				return nil, unexpected(tag)
			}
			off := content.Offset()
			cur, err := content.ReadFixedU32(ingl.TagCurrent)
			if err != nil {
				return nil, err
			}
			if int64(cur) >= int64(max(len(s.sheets), 1)) {
				return nil, ingl.Errorf(ingl.KindInvalidValue, off, "current sheet %d with %d sheets", cur, len(s.sheets))
			}
			s.currentSheet = int(cur)
			stage = stageDone

		case ingl.TagEnd:
			return nil, unexpected(tag)

		default:
			off := content.Offset()
			skipped, size, err := content.SkipChunk()
			if err != nil {
				return nil, err
			}
			logging.Debug("chunk_skipped", "tag", skipped.String(), "size", size, "offset", off)
		}
	}

	if stage != stageDone {
		return nil, unexpected(ingl.TagEnd)
	}
	if err := r.ExpectTag(ingl.TagEnd); err != nil {
		return nil, err
	}
	if err := r.ExpectTag(ingl.TagShow); err != nil {
		return nil, err
	}
	return s, nil
}

func readStrings(r *ingl.Reader, tag ingl.Tag, n int) ([]string, error) {
	sub, err := r.BlockReader(tag)
	if err != nil {
		return nil, err
	}
	return sub.ReadExactCStrings(n)
}

// readOneString reads a block holding exactly one NUL-terminated string.
func readOneString(sub *ingl.Reader, tag ingl.Tag) (string, error) {
	str, err := sub.ReadCString()
	if err != nil {
		return "", err
	}
	return str, sub.ExpectEmpty(tag)
}

func decodeSelection(r *ingl.Reader, n int) (SelectionList, error) {
	off := r.Offset()
	sub, err := r.BlockReader(ingl.TagSelection)
	if err != nil {
		return SelectionList{}, err
	}
	if sub.Remaining()%4 != 0 {
		return SelectionList{}, ingl.SizeError(off, ingl.TagSelection, uint32(sub.Remaining()/4*4), uint32(sub.Remaining()))
	}
	var indices []int
	for !sub.AtEnd() {
		at := sub.Offset()
		i, _ := sub.ReadU32()
		if int64(i) >= int64(n) {
			return SelectionList{}, ingl.Errorf(ingl.KindInvalidValue, at, "selected marcher %d of %d", i, n)
		}
		indices = append(indices, int(i))
	}
	return NewSelectionList(indices...), nil
}

// modeFixedSize covers the hashes, four coordinates and the yard line count.
const modeFixedSize = 2 + 2 + 4*4 + 2

func decodeMode(r *ingl.Reader) (ShowMode, error) {
	off := r.Offset()
	sub, err := r.BlockReader(ingl.TagMode)
	if err != nil {
		return ShowMode{}, err
	}
	if sub.Remaining() < modeFixedSize {
		return ShowMode{}, ingl.SizeError(off, ingl.TagMode, modeFixedSize, uint32(sub.Remaining()))
	}
	var m ShowMode
	m.HashW, _ = sub.ReadU16()
	m.HashE, _ = sub.ReadU16()
	for _, c := range []*Coord{&m.Border1, &m.Border2, &m.Offset, &m.Size} {
		*c, _ = readCoord(sub)
	}
	count, _ := sub.ReadU16()
	m.YardLines = make([]string, 0, count)
	for range count {
		line, err := sub.ReadCString()
		if err != nil {
			return ShowMode{}, err
		}
		m.YardLines = append(m.YardLines, line)
	}
	return m, sub.ExpectEmpty(ingl.TagMode)
}

func readCoord(r *ingl.Reader) (Coord, error) {
	x, err := r.ReadI16()
	if err != nil {
		return Coord{}, err
	}
	y, err := r.ReadI16()
	return Coord{X: x, Y: y}, err
}

// decodeSheet reads a sheet body after its GURK tag. Optional chunks are
// taken in a fixed order; the first tag that matches none of the remaining
// ones must be the END SHET terminator.
func decodeSheet(r *ingl.Reader, n int) (*Sheet, error) {
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

	if sh.beats, err = r.ReadFixedU32(ingl.TagDuration); err != nil {
		return nil, err
	}

	if sub, err = perMarcherBlock(r, ingl.TagPositions, n, 4, 0); err != nil {
		return nil, err
	}
	for i := range sh.points {
		sh.points[i].Pos, _ = readCoord(sub)
	}

	for peekIs(r, ingl.TagRefPos) {
		if sub, err = perMarcherBlock(r, ingl.TagRefPos, n, 4, 2); err != nil {
			return nil, err
		}
		at := sub.Offset()
		which, _ := sub.ReadU16()
		if which < 1 || which >= NumRefGroups {
			return nil, ingl.Errorf(ingl.KindInvalidValue, at, "reference group %d", which)
		}
		for i := range sh.points {
			c, _ := readCoord(sub)
			if c != sh.points[i].Pos {
				sh.points[i].Refs[which-1] = Overridden(c)
			} else {
				sh.points[i].Refs[which-1] = RefPosition{}
			}
		}
	}

	byteFields := []struct {
		tag ingl.Tag
		set func(p *Point, b byte) error
	}{
		{ingl.TagSymbols, func(p *Point, b byte) error {
			if !Symbol(b).Valid() {
				return ingl.ErrInvalidValue
			}
			p.Symbol = Symbol(b)
			return nil
		}},
		{ingl.TagContIndex, func(p *Point, b byte) error { p.ContIndex = b; return nil }},
		{ingl.TagLabels, func(p *Point, b byte) error { p.Flip = b != 0; return nil }},
		{ingl.TagVisibility, func(p *Point, b byte) error { p.LabelHidden = b != 0; return nil }},
	}
	for _, f := range byteFields {
		if !peekIs(r, f.tag) {
			continue
		}
		if sub, err = perMarcherBlock(r, f.tag, n, 1, 0); err != nil {
			return nil, err
		}
		for i := range sh.points {
			at := sub.Offset()
			b, _ := sub.ReadU8()
			if err := f.set(&sh.points[i], b); err != nil {
				return nil, ingl.Errorf(ingl.KindInvalidValue, at, "%s value %d for marcher %d", f.tag, b, i)
			}
		}
	}

	for peekIs(r, ingl.TagContinuity) {
		c, err := decodeContinuity(r)
		if err != nil {
			return nil, err
		}
		if sh.continuityIndex(c.Slot) >= 0 {
			return nil, ingl.Errorf(ingl.KindInvalidValue, r.Offset(), "duplicate continuity slot %d", c.Slot)
		}
		sh.continuities = append(sh.continuities, c)
	}

	if peekIs(r, ingl.TagPrintCont) {
		if sub, err = r.BlockReader(ingl.TagPrintCont); err != nil {
			return nil, err
		}
		if sh.printCont.Number, err = sub.ReadCString(); err != nil {
			return nil, err
		}
		if sh.printCont.Text, err = readOneString(sub, ingl.TagPrintCont); err != nil {
			return nil, err
		}
	}

	if peekIs(r, ingl.TagBackground) {
		if sh.images, err = decodeImages(r); err != nil {
			return nil, err
		}
	}

	if peekIs(r, ingl.TagCurves) {
		if sh.curves, err = decodeCurves(r); err != nil {
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

func peekIs(r *ingl.Reader, tag ingl.Tag) bool {
	t, ok := r.PeekTag()
	return ok && t == tag
}

// perMarcherBlock reads a block that must hold n records of width bytes
// after a header of extra bytes.
func perMarcherBlock(r *ingl.Reader, tag ingl.Tag, n, width, extra int) (*ingl.Reader, error) {
	off := r.Offset()
	sub, err := r.BlockReader(tag)
	if err != nil {
		return nil, err
	}
	if want := n*width + extra; sub.Remaining() != want {
		return nil, ingl.SizeError(off, tag, uint32(want), uint32(sub.Remaining()))
	}
	return sub, nil
}

// continuityMinSize is a slot byte plus two empty strings.
const continuityMinSize = 3

func decodeContinuity(r *ingl.Reader) (Continuity, error) {
	off := r.Offset()
	sub, err := r.BlockReader(ingl.TagContinuity)
	if err != nil {
		return Continuity{}, err
	}
	if sub.Remaining() < continuityMinSize {
		return Continuity{}, ingl.Errorf(ingl.KindBadContinuityRecord, off, "%d bytes, need at least %d", sub.Remaining(), continuityMinSize)
	}
	var c Continuity
	c.Slot, _ = sub.ReadU8()
	if c.Name, err = sub.ReadCString(); err != nil {
		return Continuity{}, err
	}
	if c.Text, err = readOneString(sub, ingl.TagContinuity); err != nil {
		return Continuity{}, err
	}
	return c, nil
}

func decodeImages(r *ingl.Reader) ([]ImageData, error) {
	sub, err := r.BlockReader(ingl.TagBackground)
	if err != nil {
		return nil, err
	}
	count, err := sub.ReadU16()
	if err != nil {
		return nil, err
	}
	images := make([]ImageData, 0, min(int(count), sub.Remaining()/28))
	for range count {
		var img ImageData
		for _, v := range []*int32{&img.Left, &img.Top, &img.ScaledWidth, &img.ScaledHeight, &img.Width, &img.Height} {
			if *v, err = sub.ReadI32(); err != nil {
				return nil, err
			}
		}
		size, err := sub.ReadU32()
		if err != nil {
			return nil, err
		}
		data, err := sub.ReadBytes(int(size))
		if err != nil {
			return nil, err
		}
		img.Data = append([]byte(nil), data...)
		images = append(images, img)
	}
	return images, sub.ExpectEmpty(ingl.TagBackground)
}

func decodeCurves(r *ingl.Reader) ([]Curve, error) {
	sub, err := r.BlockReader(ingl.TagCurves)
	if err != nil {
		return nil, err
	}
	count, err := sub.ReadU16()
	if err != nil {
		return nil, err
	}
	curves := make([]Curve, 0, min(int(count), sub.Remaining()/2))
	for range count {
		np, err := sub.ReadU16()
		if err != nil {
			return nil, err
		}
		c := Curve{Points: make([]Coord, 0, min(int(np), sub.Remaining()/4))}
		for range np {
			pt, err := readCoord(sub)
			if err != nil {
				return nil, err
			}
			c.Points = append(c.Points, pt)
		}
		curves = append(curves, c)
	}
	return curves, sub.ExpectEmpty(ingl.TagCurves)
}
