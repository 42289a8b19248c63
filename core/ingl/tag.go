// Package ingl implements the chunk layer of the INGL show container: tags,
// big-endian primitives, a bounds-checked reader and an append-only writer.
//
// A chunk is a 4-byte tag followed by a big-endian u32 length and that many
// payload bytes. Two tags break the pattern: GURK opens a named container
// whose children run until END <name>, and END carries the closed tag in
// place of a length.
package ingl

import "strings"

// Tag is a 4-byte chunk identifier. Tags are compared verbatim and are
// not required to be printable.
type Tag [4]byte

// MakeTag builds a tag from the first four bytes of s, padding with spaces.
func MakeTag(s string) Tag {
	var t Tag
	for i := range t {
		if i < len(s) {
			t[i] = s[i]
		} else {
			t[i] = ' '
		}
	}
	return t
}

// String renders the tag for diagnostics, escaping non-printable bytes.
func (t Tag) String() string {
	var b strings.Builder
	for _, c := range t {
		if c >= 0x20 && c < 0x7f {
			b.WriteByte(c)
			continue
		}
		b.WriteString("\\x")
		b.WriteByte("0123456789abcdef"[c>>4])
		b.WriteByte("0123456789abcdef"[c&0x0f])
	}
	return b.String()
}

// Container and header tags.
var (
	TagMagic = MakeTag("INGL")
	TagGurk  = MakeTag("GURK")
	TagEnd   = MakeTag("END ")
	TagShow  = MakeTag("SHOW")
	TagSheet = MakeTag("SHET")
)

// Show-level tags.
var (
	TagSize        = MakeTag("SIZE")
	TagLabels      = MakeTag("LABL")
	TagInstruments = MakeTag("INST")
	TagDesc        = MakeTag("DESC")
	TagSelection   = MakeTag("SELE")
	TagMode        = MakeTag("MODE")
	TagCurrent     = MakeTag("CURR")
)

// Sheet-level tags. TagLabels doubles as the per-sheet label flip chunk.
var (
	TagName       = MakeTag("NAME")
	TagDuration   = MakeTag("DURA")
	TagPositions  = MakeTag("POS ")
	TagRefPos     = MakeTag("REFP")
	TagSymbols    = MakeTag("SYMB")
	TagContIndex  = MakeTag("TYPE")
	TagVisibility = MakeTag("VISB")
	TagContinuity = MakeTag("CONT")
	TagPrintCont  = MakeTag("PCNT")
	TagBackground = MakeTag("BACK")
	TagCurves     = MakeTag("CURV")
	TagPoints     = MakeTag("PNTS")
)

// Version is a format version as carried by the two header digits.
type Version struct {
	Major int
	Minor int
}

// Compare orders versions lexicographically by (Major, Minor).
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		if v.Major < o.Major {
			return -1
		}
		return 1
	case v.Minor < o.Minor:
		return -1
	case v.Minor > o.Minor:
		return 1
	}
	return 0
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

func (v Version) String() string {
	return string([]byte{byte('0' + v.Major), '.', byte('0' + v.Minor)})
}

// VersionTag renders the container tag for v ("GU36" for 3.6).
func (v Version) VersionTag() Tag {
	return Tag{'G', 'U', byte('0' + v.Major), byte('0' + v.Minor)}
}
