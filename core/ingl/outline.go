package ingl

// OutlineEntry describes one chunk found by Outline.
type OutlineEntry struct {
	Depth     int
	Offset    int
	Tag       Tag
	Size      int  // payload size; -1 for containers and end markers
	Container bool // GURK container or sized SHOW
	End       bool // END marker; Tag holds the closed tag
}

// Outline walks a complete file and lists every chunk in stream order
// without interpreting payloads. It is a diagnostic aid: unknown chunks are
// listed like known ones.
func Outline(data []byte) (Version, []OutlineEntry, error) {
	r := NewReader(data)
	v, err := ReadHeader(r)
	if err != nil {
		return v, nil, err
	}
	var out []OutlineEntry
	err = outlineLevel(r, 0, nil, v.IsLegacy(), &out)
	return v, out, err
}

func outlineLevel(r *Reader, depth int, until *Tag, legacy bool, out *[]OutlineEntry) error {
	for !r.AtEnd() {
		off := r.Offset()
		tag, err := r.ReadTag()
		if err != nil {
			return err
		}
		switch tag {
		case TagEnd:
			closed, err := r.ReadTag()
			if err != nil {
				return err
			}
			*out = append(*out, OutlineEntry{Depth: max(depth-1, 0), Offset: off, Tag: closed, Size: -1, End: true})
			if until != nil && closed == *until {
				return nil
			}
		case TagGurk:
			name, err := r.ReadTag()
			if err != nil {
				return err
			}
			*out = append(*out, OutlineEntry{Depth: depth, Offset: off, Tag: name, Size: -1, Container: true})
			if err := outlineLevel(r, depth+1, &name, legacy, out); err != nil {
				return err
			}
		case TagShow:
			if legacy {
				*out = append(*out, OutlineEntry{Depth: depth, Offset: off, Tag: tag, Size: -1, Container: true})
				name := TagShow
				if err := outlineLevel(r, depth+1, &name, legacy, out); err != nil {
					return err
				}
				continue
			}
			size, err := r.ReadU32()
			if err != nil {
				return err
			}
			*out = append(*out, OutlineEntry{Depth: depth, Offset: off, Tag: tag, Size: int(size), Container: true})
			sub, err := r.Sub(int(size))
			if err != nil {
				return err
			}
			if err := outlineLevel(sub, depth+1, nil, legacy, out); err != nil {
				return err
			}
		default:
			size, err := r.ReadU32()
			if err != nil {
				return err
			}
			if err := r.Skip(int(size)); err != nil {
				return err
			}
			*out = append(*out, OutlineEntry{Depth: depth, Offset: off, Tag: tag, Size: int(size)})
		}
	}
	if until != nil {
		return &FormatError{Kind: KindTruncated, Offset: r.Offset(), Detail: "missing END " + until.String()}
	}
	return nil
}
