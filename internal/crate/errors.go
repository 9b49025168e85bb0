package crate

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by FormatError.Err.
var (
	ErrTruncated     = errors.New("truncated record")
	ErrInvalidTag    = errors.New("invalid tag")
	ErrFieldSize     = errors.New("unexpected field size")
	ErrInvalidText   = errors.New("invalid UTF-16 text")
	ErrTooDeep       = errors.New("containers nested too deeply")
	ErrDuplicatePath = errors.New("duplicate crate path")
	ErrInvalidName   = errors.New("invalid crate name")
)

// FormatError reports a crate file that cannot be used. It is isolated to
// that file: the conversion run skips the crate and carries on.
type FormatError struct {
	// File is the crate file path, empty when decoding raw bytes.
	File string
	// Offset is the byte offset of the offending record, or -1 when the
	// problem is not tied to a position.
	Offset int
	// Tag of the offending record, if one was read.
	Tag    string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := "crate"
	if e.File != "" {
		msg += " " + e.File
	}
	msg += ": " + e.Reason
	if e.Tag != "" {
		msg += fmt.Sprintf(" (tag %q)", e.Tag)
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at offset %d", e.Offset)
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatErrorf(err error, offset int, tag Tag, format string, args ...interface{}) *FormatError {
	fe := &FormatError{
		Offset: offset,
		Reason: fmt.Sprintf(format, args...),
		Err:    err,
	}
	if tag != (Tag{}) {
		fe.Tag = printableTag(tag)
	}
	return fe
}

// printableTag renders a tag for messages even when it holds garbage bytes.
func printableTag(t Tag) string {
	for _, b := range t {
		if b < 0x20 || b > 0x7e {
			return fmt.Sprintf("%x", t[:])
		}
	}
	return t.String()
}
