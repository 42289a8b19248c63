// Package errors defines the error types shared by the show model, its file
// codec, and the stores built around it.
//
// Every typed error unwraps to one of the sentinels below unless it carries a
// more specific cause, so callers can branch with errors.Is on the category
// and errors.As when they need the details.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: a sheet, snapshot, or catalog entry does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput: an argument or input file was rejected.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported: a format or feature this build does not handle.
	ErrUnsupported = errors.New("unsupported")
)

// NotFoundError names a missing resource.
type NotFoundError struct {
	Resource string // "sheet", "snapshot", "catalog entry", ...
	ID       string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return orSentinel(e.Err, ErrNotFound) }

// ValidationError rejects a single argument. Command factories return it
// when an index, count, or string falls outside what the show allows.
type ValidationError struct {
	Field   string
	Value   string // offending value, when it is worth reporting
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return orSentinel(e.Err, ErrInvalidInput) }

// IOError wraps a filesystem failure with the operation and path.
type IOError struct {
	Operation string // "read", "write", "rename", ...
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError reports input that could not be decoded. For show files Err is
// the *ingl.FormatError locating the problem.
type ParseError struct {
	Format  string // "ingl", "roster", "script", "pointer", ...
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
	}
	return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
}

func (e *ParseError) Unwrap() error { return orSentinel(e.Err, ErrInvalidInput) }

// UnsupportedError reports a recognised but unhandled format or feature.
type UnsupportedError struct {
	Feature string
	Reason  string
	Err     error
}

func (e *UnsupportedError) Error() string {
	if e.Reason == "" {
		return "unsupported " + e.Feature
	}
	return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
}

func (e *UnsupportedError) Unwrap() error { return orSentinel(e.Err, ErrUnsupported) }

func orSentinel(err, sentinel error) error {
	if err != nil {
		return err
	}
	return sentinel
}

// NewNotFound returns a NotFoundError for resource id.
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// NewValidation returns a ValidationError for field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewOutOfRange rejects value as an index into [0, limit).
func NewOutOfRange(field string, value, limit int) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   fmt.Sprint(value),
		Message: fmt.Sprintf("index %d out of range [0, %d)", value, limit),
	}
}

// NewIO returns an IOError.
func NewIO(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// NewParse returns a ParseError with no underlying cause.
func NewParse(format, path, message string) *ParseError {
	return &ParseError{Format: format, Path: path, Message: message}
}

// WrapParse returns a ParseError whose message and cause come from err.
func WrapParse(format, path string, err error) *ParseError {
	return &ParseError{Format: format, Path: path, Message: err.Error(), Err: err}
}

// NewUnsupported returns an UnsupportedError.
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{Feature: feature, Reason: reason}
}
