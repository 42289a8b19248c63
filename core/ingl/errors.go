package ingl

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per failure kind.
var (
	ErrTruncated           = errors.New("truncated input")
	ErrBadMagic            = errors.New("bad magic")
	ErrUnexpectedTag       = errors.New("unexpected tag")
	ErrSizeMismatch        = errors.New("size mismatch")
	ErrLabelCountMismatch  = errors.New("label count mismatch")
	ErrMalformedString     = errors.New("malformed string")
	ErrBadContinuityRecord = errors.New("bad continuity record")
	ErrInvalidValue        = errors.New("invalid value")
)

// Kind classifies a FormatError.
type Kind int

const (
	KindTruncated Kind = iota + 1
	KindBadMagic
	KindUnexpectedTag
	KindSizeMismatch
	KindLabelCountMismatch
	KindMalformedString
	KindBadContinuityRecord
	KindInvalidValue
)

func (k Kind) sentinel() error {
	switch k {
	case KindTruncated:
		return ErrTruncated
	case KindBadMagic:
		return ErrBadMagic
	case KindUnexpectedTag:
		return ErrUnexpectedTag
	case KindSizeMismatch:
		return ErrSizeMismatch
	case KindLabelCountMismatch:
		return ErrLabelCountMismatch
	case KindMalformedString:
		return ErrMalformedString
	case KindBadContinuityRecord:
		return ErrBadContinuityRecord
	default:
		return ErrInvalidValue
	}
}

func (k Kind) String() string {
	return k.sentinel().Error()
}

// FormatError describes a structural failure while reading a buffer.
type FormatError struct {
	Kind     Kind
	Offset   int    // byte offset where the failing read started
	Expected string // expected tag or size, when applicable
	Found    string // observed tag or size, when applicable
	Detail   string
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("%s at offset %d", e.Kind, e.Offset)
	if e.Expected != "" || e.Found != "" {
		msg += fmt.Sprintf(": expected %q, found %q", e.Expected, e.Found)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the sentinel for the error kind.
func (e *FormatError) Unwrap() error {
	return e.Kind.sentinel()
}

// KindOf returns the kind of the first FormatError in err's chain, or 0.
func KindOf(err error) Kind {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

func truncated(offset, want, have int) *FormatError {
	return &FormatError{
		Kind:   KindTruncated,
		Offset: offset,
		Detail: fmt.Sprintf("need %d bytes, %d remain", want, have),
	}
}

func unexpectedTag(offset int, expected, found Tag) *FormatError {
	return &FormatError{
		Kind:     KindUnexpectedTag,
		Offset:   offset,
		Expected: expected.String(),
		Found:    found.String(),
	}
}

// SizeError reports a declared length that disagrees with the required one.
func SizeError(offset int, tag Tag, want, got uint32) *FormatError {
	return &FormatError{
		Kind:     KindSizeMismatch,
		Offset:   offset,
		Expected: fmt.Sprint(want),
		Found:    fmt.Sprint(got),
		Detail:   "chunk " + tag.String(),
	}
}

// Errorf builds a FormatError of the given kind with a formatted detail.
func Errorf(kind Kind, offset int, format string, args ...any) *FormatError {
	return &FormatError{
		Kind:   kind,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
	}
}
