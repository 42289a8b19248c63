package ingl

// ReadHeader consumes the file magic and the container tag and returns the
// version the container declares. A bare GURK container predates version
// digits and reads as 0.0.
func ReadHeader(r *Reader) (Version, error) {
	off := r.Offset()
	magic, err := r.ReadTag()
	if err != nil {
		return Version{}, err
	}
	if magic != TagMagic {
		return Version{}, &FormatError{
			Kind:     KindBadMagic,
			Offset:   off,
			Expected: TagMagic.String(),
			Found:    magic.String(),
			Detail:   "file magic",
		}
	}

	off = r.Offset()
	container, err := r.ReadTag()
	if err != nil {
		return Version{}, err
	}
	if container == TagGurk {
		return Version{}, nil
	}
	if container[0] != 'G' || container[1] != 'U' || !isDigit(container[2]) || !isDigit(container[3]) {
		return Version{}, &FormatError{
			Kind:     KindBadMagic,
			Offset:   off,
			Expected: "GU##",
			Found:    container.String(),
			Detail:   "container tag",
		}
	}
	return Version{Major: int(container[2] - '0'), Minor: int(container[3] - '0')}, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Known format versions.
var (
	// FirstSizedVersion is the first version with a sized SHOW chunk and
	// per-field sheet chunks. Anything older uses the flat point tables.
	FirstSizedVersion = Version{Major: 3, Minor: 4}
	// CurrentVersion is the version the writer emits.
	CurrentVersion = Version{Major: 3, Minor: 6}
)

// IsLegacy reports whether v predates FirstSizedVersion.
func (v Version) IsLegacy() bool {
	return v.Less(FirstSizedVersion)
}
