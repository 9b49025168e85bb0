package crate

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode serializes records back into the crate wire format. It is the
// inverse of Decode for every record Decode can produce.
func Encode(records []Record) ([]byte, error) {
	var out []byte
	for _, rec := range records {
		var err error
		out, err = appendRecord(out, rec)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MustEncode is Encode for fixtures built from constructors in this file.
func MustEncode(records ...Record) []byte {
	data, err := Encode(records)
	if err != nil {
		panic(err)
	}
	return data
}

func appendRecord(dst []byte, rec Record) ([]byte, error) {
	var payload []byte
	switch rec.Kind {
	case KindContainer:
		var err error
		payload, err = Encode(rec.Children)
		if err != nil {
			return nil, err
		}
	case KindText:
		var err error
		payload, err = utf16BE.NewEncoder().Bytes([]byte(rec.Text))
		if err != nil {
			return nil, fmt.Errorf("encode %s text: %w", rec.Tag, err)
		}
	case KindFixed:
		if field := lookup(rec.Tag); field.kind == KindFixed && !field.acceptsSize(len(rec.Raw)) {
			return nil, fmt.Errorf("encode %s: %d bytes, want one of %v", rec.Tag, len(rec.Raw), field.sizes)
		}
		payload = rec.Raw
	default:
		payload = rec.Raw
	}

	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("encode %s: payload too large", rec.Tag)
	}

	dst = append(dst, rec.Tag[:]...)
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...), nil
}

// Container builds a container record.
func Container(tag Tag, children ...Record) Record {
	return Record{Tag: tag, Kind: KindContainer, Children: children}
}

// TextRecord builds a UTF-16BE text record.
func TextRecord(tag Tag, s string) Record {
	return Record{Tag: tag, Kind: KindText, Text: s}
}

// Uint32Record builds a 4-byte big-endian fixed record.
func Uint32Record(tag Tag, v uint32) Record {
	return Record{Tag: tag, Kind: KindFixed, Raw: binary.BigEndian.AppendUint32(nil, v)}
}

// Uint16Record builds a 2-byte big-endian fixed record.
func Uint16Record(tag Tag, v uint16) Record {
	return Record{Tag: tag, Kind: KindFixed, Raw: binary.BigEndian.AppendUint16(nil, v)}
}

// Uint8Record builds a 1-byte fixed record.
func Uint8Record(tag Tag, v uint8) Record {
	return Record{Tag: tag, Kind: KindFixed, Raw: []byte{v}}
}

// OpaqueRecord builds a record whose payload is carried verbatim.
func OpaqueRecord(tag Tag, payload []byte) Record {
	return Record{Tag: tag, Kind: KindOpaque, Raw: payload}
}
