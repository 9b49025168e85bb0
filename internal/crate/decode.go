package crate

import (
	"encoding/binary"
	"errors"
	"strings"

	"crate-sync/internal/filesystem"

	"golang.org/x/text/encoding/unicode"
)

const (
	headerSize = 8
	// maxDepth bounds container nesting. Real crates nest two levels deep.
	maxDepth = 16
)

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// Decode parses the raw bytes of one crate file into its record sequence.
// Unknown tags are kept as opaque records. Any truncated or inconsistent
// record fails the whole file with a *FormatError.
func Decode(data []byte) ([]Record, error) {
	return decodeSequence(data, 0, 0)
}

// DecodeFile reads and decodes the crate file at path. Read failures are
// reported as a *FormatError as well so the caller can skip the crate.
func DecodeFile(path string) ([]Record, error) {
	data, err := filesystem.ReadFileWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, &FormatError{File: path, Offset: -1, Reason: "read failed: " + err.Error(), Err: err}
	}

	records, err := Decode(data)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.File = path
		}
		return nil, err
	}
	return records, nil
}

func decodeSequence(data []byte, base, depth int) ([]Record, error) {
	if depth > maxDepth {
		return nil, formatErrorf(ErrTooDeep, base, Tag{}, "containers nested deeper than %d levels", maxDepth)
	}

	var records []Record
	off := 0
	for off < len(data) {
		if len(data)-off < headerSize {
			return nil, formatErrorf(ErrTruncated, base+off, Tag{},
				"record header needs %d bytes, %d remain", headerSize, len(data)-off)
		}

		var tag Tag
		copy(tag[:], data[off:off+4])
		if !validTag(tag) {
			return nil, formatErrorf(ErrInvalidTag, base+off, tag, "tag is not printable ASCII")
		}

		length := binary.BigEndian.Uint32(data[off+4 : off+headerSize])
		start := off + headerSize
		if uint64(length) > uint64(len(data)-start) {
			return nil, formatErrorf(ErrTruncated, base+off, tag,
				"declared length %d exceeds the %d bytes remaining", length, len(data)-start)
		}
		end := start + int(length)

		rec, err := decodeRecord(tag, data[start:end], base+start, depth)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		off = end
	}
	return records, nil
}

func decodeRecord(tag Tag, payload []byte, offset, depth int) (Record, error) {
	field := lookup(tag)
	rec := Record{Tag: tag, Kind: field.kind}

	switch field.kind {
	case KindContainer:
		children, err := decodeSequence(payload, offset, depth+1)
		if err != nil {
			return Record{}, err
		}
		rec.Children = children

	case KindText:
		s, err := decodeText(payload)
		if err != nil {
			return Record{}, formatErrorf(ErrInvalidText, offset, tag, "%v", err)
		}
		rec.Text = s

	case KindFixed:
		if !field.acceptsSize(len(payload)) {
			return Record{}, formatErrorf(ErrFieldSize, offset, tag,
				"fixed field has %d bytes, want one of %v", len(payload), field.sizes)
		}
		rec.Raw = clone(payload)

	default:
		rec.Raw = clone(payload)
	}
	return rec, nil
}

func decodeText(payload []byte) (string, error) {
	if len(payload)%2 != 0 {
		return "", errors.New("odd payload length")
	}
	out, err := utf16BE.NewDecoder().Bytes(payload)
	if err != nil {
		return "", err
	}
	// A byte order mark only restates the big-endian order.
	text := strings.TrimPrefix(string(out), "\ufeff")
	return strings.TrimRight(text, "\x00"), nil
}

func validTag(t Tag) bool {
	for _, b := range t {
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return true
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
