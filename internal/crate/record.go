package crate

import (
	"encoding/binary"
	"fmt"
)

// Tag is the four-byte ASCII identifier that opens every record.
type Tag [4]byte

// MakeTag converts a four character string into a Tag. It panics on any
// other length, so it is meant for package-level constants and tests.
func MakeTag(s string) Tag {
	if len(s) != 4 {
		panic(fmt.Sprintf("crate: tag %q must be exactly 4 bytes", s))
	}
	var t Tag
	copy(t[:], s)
	return t
}

func (t Tag) String() string {
	return string(t[:])
}

// Known tags.
var (
	TagVersion   = MakeTag("vrsn")
	TagTrack     = MakeTag("otrk")
	TagTrackPath = MakeTag("ptrk")
	TagFilePath  = MakeTag("pfil")
	TagTitle     = MakeTag("pnam")
	TagCue       = MakeTag("ocue")
	TagCueIndex  = MakeTag("cidx")
	TagCueType   = MakeTag("ctyp")
	TagCueStart  = MakeTag("cpos")
	TagCueEnd    = MakeTag("cend")
	TagCueColor  = MakeTag("ccol")
	TagCueName   = MakeTag("cnam")
	TagSort      = MakeTag("osrt")
	TagSortName  = MakeTag("tvcn")
	TagSortRev   = MakeTag("brev")
	TagColumn    = MakeTag("ovct")
	TagColumnW   = MakeTag("tvcw")
)

// Kind identifies how a record's payload was decoded.
type Kind uint8

const (
	// KindOpaque is used for tags the decoder does not know; Raw holds the payload.
	KindOpaque Kind = iota
	// KindContainer payloads are themselves record sequences, held in Children.
	KindContainer
	// KindText payloads are UTF-16BE strings, held in Text.
	KindText
	// KindFixed payloads are fixed-size big-endian values, held in Raw.
	KindFixed
)

func (k Kind) String() string {
	switch k {
	case KindOpaque:
		return "opaque"
	case KindContainer:
		return "container"
	case KindText:
		return "text"
	case KindFixed:
		return "fixed"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Record is one decoded (tag, payload) pair.
type Record struct {
	Tag      Tag
	Kind     Kind
	Children []Record
	Text     string
	Raw      []byte
}

// Uint returns a fixed record's payload as an unsigned big-endian integer.
// ok is false for records that are not 1, 2 or 4 byte fixed values.
func (r Record) Uint() (v uint32, ok bool) {
	if r.Kind != KindFixed {
		return 0, false
	}
	switch len(r.Raw) {
	case 1:
		return uint32(r.Raw[0]), true
	case 2:
		return uint32(binary.BigEndian.Uint16(r.Raw)), true
	case 4:
		return binary.BigEndian.Uint32(r.Raw), true
	default:
		return 0, false
	}
}

// Find returns the first direct child with the given tag.
func (r Record) Find(tag Tag) (Record, bool) {
	return Find(r.Children, tag)
}

// Find returns the first record in records with the given tag.
func Find(records []Record, tag Tag) (Record, bool) {
	for _, rec := range records {
		if rec.Tag == tag {
			return rec, true
		}
	}
	return Record{}, false
}

// FindAll returns every record in records with the given tag, in order.
func FindAll(records []Record, tag Tag) []Record {
	var out []Record
	for _, rec := range records {
		if rec.Tag == tag {
			out = append(out, rec)
		}
	}
	return out
}

// Walk visits records depth-first in file order.
func Walk(records []Record, fn func(depth int, r Record)) {
	walk(records, 0, fn)
}

func walk(records []Record, depth int, fn func(depth int, r Record)) {
	for _, rec := range records {
		fn(depth, rec)
		if rec.Kind == KindContainer {
			walk(rec.Children, depth+1, fn)
		}
	}
}

// Version returns the text of the crate's vrsn header, if present.
func Version(records []Record) string {
	if rec, ok := Find(records, TagVersion); ok {
		return rec.Text
	}
	return ""
}
