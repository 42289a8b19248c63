package ingl

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Writer accumulates an INGL byte stream in memory. Writes never fail.
type Writer struct {
	buf []byte
}

// Mark records the position of a length field awaiting FinishSized.
type Mark struct {
	at int
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 1024)}
}

// Bytes returns the accumulated stream. The slice aliases the writer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// WriteHeader emits the file magic and the container tag carrying v.
func (w *Writer) WriteHeader(v Version) {
	w.WriteTag(TagMagic)
	w.WriteTag(v.VersionTag())
}

// WriteTag appends a raw tag.
func (w *Writer) WriteTag(t Tag) {
	w.buf = append(w.buf, t[:]...)
}

// WriteU8 appends one byte.
func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteU16 appends a big-endian uint16.
func (w *Writer) WriteU16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// WriteI16 appends a big-endian int16.
func (w *Writer) WriteI16(v int16) {
	w.WriteU16(uint16(v))
}

// WriteU32 appends a big-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

// WriteI32 appends a big-endian int32.
func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteCString appends s followed by a NUL. It panics if s contains a NUL.
func (w *Writer) WriteCString(s string) {
	w.buf = AppendCString(w.buf, s)
}

// WriteBlock emits tag, the payload length and the payload.
func (w *Writer) WriteBlock(tag Tag, payload []byte) {
	w.WriteTag(tag)
	w.WriteU32(uint32(len(payload)))
	w.WriteBytes(payload)
}

// WriteU32Block emits a fixed 4-byte chunk.
func (w *Writer) WriteU32Block(tag Tag, v uint32) {
	w.WriteTag(tag)
	w.WriteU32(4)
	w.WriteU32(v)
}

// BeginSized emits tag and a placeholder length. Everything written until
// the matching FinishSized becomes the chunk payload.
func (w *Writer) BeginSized(tag Tag) Mark {
	w.WriteTag(tag)
	m := Mark{at: len(w.buf)}
	w.WriteU32(0)
	return m
}

// FinishSized patches the length reserved by BeginSized.
func (w *Writer) FinishSized(m Mark) {
	size := len(w.buf) - m.at - 4
	binary.BigEndian.PutUint32(w.buf[m.at:], uint32(size))
}

// WriteContainerStart opens a named GURK container. Close it with WriteEnd.
func (w *Writer) WriteContainerStart(name Tag) {
	w.WriteTag(TagGurk)
	w.WriteTag(name)
}

// WriteEnd emits the end marker for tag.
func (w *Writer) WriteEnd(tag Tag) {
	w.WriteTag(TagEnd)
	w.WriteTag(tag)
}

// AppendCString appends s and a NUL terminator to buf. Strings handed to the
// encoder are owned by the caller, so an embedded NUL is a programming error.
func AppendCString(buf []byte, s string) []byte {
	if strings.IndexByte(s, 0) >= 0 {
		panic(fmt.Sprintf("ingl: string %q contains NUL", s))
	}
	buf = append(buf, s...)
	return append(buf, 0)
}
