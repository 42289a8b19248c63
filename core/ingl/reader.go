package ingl

import (
	"bytes"
	"encoding/binary"
	"strconv"
)

// Reader is a cursor over an immutable byte buffer. Every read is bounds
// checked; running off the end yields a KindTruncated FormatError and leaves
// the cursor where it was.
//
// Slices returned by ReadBytes and ReadBlock alias the underlying buffer.
type Reader struct {
	buf  []byte
	pos  int
	base int // absolute offset of buf[0], for error reporting
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset returns the absolute offset of the cursor.
func (r *Reader) Offset() int {
	return r.base + r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// AtEnd reports whether the buffer is exhausted.
func (r *Reader) AtEnd() bool {
	return r.pos >= len(r.buf)
}

func (r *Reader) need(n int) error {
	if n < 0 || r.Remaining() < n {
		return truncated(r.Offset(), n, r.Remaining())
	}
	return nil
}

// ReadBytes returns the next n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// ReadU16 reads a big-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadI16 reads a big-endian int16.
func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadU32 reads a big-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadI32 reads a big-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadTag reads four bytes verbatim.
func (r *Reader) ReadTag() (Tag, error) {
	var t Tag
	if err := r.need(4); err != nil {
		return t, err
	}
	copy(t[:], r.buf[r.pos:])
	r.pos += 4
	return t, nil
}

// PeekTag returns the next tag without advancing. It returns false when
// fewer than four bytes remain.
func (r *Reader) PeekTag() (Tag, bool) {
	var t Tag
	if r.Remaining() < 4 {
		return t, false
	}
	copy(t[:], r.buf[r.pos:])
	return t, true
}

// ExpectTag reads a tag and fails with KindUnexpectedTag unless it equals want.
func (r *Reader) ExpectTag(want Tag) error {
	off := r.Offset()
	got, err := r.ReadTag()
	if err != nil {
		return err
	}
	if got != want {
		r.pos -= 4
		return unexpectedTag(off, want, got)
	}
	return nil
}

// ReadChunkHeader reads a tag and its length, checking that the payload
// fits in the buffer.
func (r *Reader) ReadChunkHeader() (Tag, uint32, error) {
	start := r.pos
	tag, err := r.ReadTag()
	if err != nil {
		return tag, 0, err
	}
	size, err := r.ReadU32()
	if err != nil {
		r.pos = start
		return tag, 0, err
	}
	if uint64(size) > uint64(r.Remaining()) {
		err := Errorf(KindTruncated, r.Offset(), "chunk %s declares %d bytes, %d remain", tag, size, r.Remaining())
		r.pos = start
		return tag, 0, err
	}
	return tag, size, nil
}

// ExpectTagAndSize reads tag and length and requires the length to equal
// size, which is the encoded size of the fixed record that follows.
func (r *Reader) ExpectTagAndSize(tag Tag, size uint32) error {
	start := r.pos
	if err := r.ExpectTag(tag); err != nil {
		return err
	}
	off := r.Offset()
	got, err := r.ReadU32()
	if err != nil {
		r.pos = start
		return err
	}
	if got != size {
		r.pos = start
		return SizeError(off, tag, size, got)
	}
	return r.need(int(size))
}

// ReadFixedU32 reads a chunk that must hold exactly one u32.
func (r *Reader) ReadFixedU32(tag Tag) (uint32, error) {
	if err := r.ExpectTagAndSize(tag, 4); err != nil {
		return 0, err
	}
	return r.ReadU32()
}

// ReadBlock reads a chunk with the given tag and returns its payload.
func (r *Reader) ReadBlock(tag Tag) ([]byte, error) {
	sub, err := r.BlockReader(tag)
	if err != nil {
		return nil, err
	}
	return sub.buf, nil
}

// BlockReader reads a chunk with the given tag and returns a Reader over
// its payload. Offsets reported by the sub-reader stay absolute.
func (r *Reader) BlockReader(tag Tag) (*Reader, error) {
	start := r.pos
	if err := r.ExpectTag(tag); err != nil {
		return nil, err
	}
	r.pos = start
	_, size, err := r.ReadChunkHeader()
	if err != nil {
		return nil, err
	}
	return r.Sub(int(size))
}

// ReadChunk reads any tag/length chunk.
func (r *Reader) ReadChunk() (Tag, []byte, error) {
	tag, size, err := r.ReadChunkHeader()
	if err != nil {
		return tag, nil, err
	}
	payload, err := r.ReadBytes(int(size))
	return tag, payload, err
}

// SkipChunk discards a tag/length chunk and returns its tag and size.
func (r *Reader) SkipChunk() (Tag, uint32, error) {
	tag, size, err := r.ReadChunkHeader()
	if err != nil {
		return tag, 0, err
	}
	return tag, size, r.Skip(int(size))
}

// Sub consumes the next n bytes and returns a Reader over them.
func (r *Reader) Sub(n int) (*Reader, error) {
	off := r.Offset()
	b, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return &Reader{buf: b, base: off}, nil
}

// ReadCString reads bytes up to and including a NUL terminator.
func (r *Reader) ReadCString() (string, error) {
	i := bytes.IndexByte(r.buf[r.pos:], 0)
	if i < 0 {
		return "", Errorf(KindMalformedString, r.Offset(), "missing NUL terminator in %d bytes", r.Remaining())
	}
	s := string(r.buf[r.pos : r.pos+i])
	r.pos += i + 1
	return s, nil
}

// ReadCStrings consumes the rest of the buffer as NUL-terminated strings.
func (r *Reader) ReadCStrings() ([]string, error) {
	var out []string
	for !r.AtEnd() {
		s, err := r.ReadCString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ReadExactCStrings consumes the rest of the buffer as exactly want
// NUL-terminated strings.
func (r *Reader) ReadExactCStrings(want int) ([]string, error) {
	off := r.Offset()
	strs, err := r.ReadCStrings()
	if err != nil {
		return nil, err
	}
	if len(strs) != want {
		return nil, &FormatError{
			Kind:     KindLabelCountMismatch,
			Offset:   off,
			Expected: strconv.Itoa(want),
			Found:    strconv.Itoa(len(strs)),
		}
	}
	return strs, nil
}

// ExpectEmpty fails with KindSizeMismatch if unread bytes remain.
func (r *Reader) ExpectEmpty(tag Tag) error {
	if r.AtEnd() {
		return nil
	}
	return &FormatError{
		Kind:   KindSizeMismatch,
		Offset: r.Offset(),
		Detail: "chunk " + tag.String() + ": " + strconv.Itoa(r.Remaining()) + " trailing bytes",
	}
}
