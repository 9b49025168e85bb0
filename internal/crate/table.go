package crate

// fieldKind describes how to decode the payload of one tag.
type fieldKind struct {
	kind Kind
	// sizes lists the accepted payload lengths of a fixed field.
	sizes []int
}

func (s fieldKind) acceptsSize(n int) bool {
	for _, size := range s.sizes {
		if size == n {
			return true
		}
	}
	return false
}

var (
	container = fieldKind{kind: KindContainer}
	text      = fieldKind{kind: KindText}
	opaque    = fieldKind{kind: KindOpaque}
)

func fixed(sizes ...int) fieldKind {
	return fieldKind{kind: KindFixed, sizes: sizes}
}

// decodeTable is the closed set of tags the decoder understands. Tags that
// are absent decode as opaque records.
var decodeTable = map[Tag]fieldKind{
	TagVersion:   text,
	TagTrack:     container,
	TagTrackPath: text,
	TagFilePath:  text,
	TagTitle:     text,
	TagCue:       container,
	TagCueIndex:  fixed(1, 2),
	TagCueType:   fixed(1),
	TagCueStart:  fixed(4),
	TagCueEnd:    fixed(4),
	TagCueColor:  fixed(4),
	TagCueName:   text,
	TagSort:      container,
	TagSortName:  text,
	TagSortRev:   fixed(1),
	TagColumn:    container,
	TagColumnW:   text,
}

func lookup(tag Tag) fieldKind {
	if field, ok := decodeTable[tag]; ok {
		return field
	}
	return opaque
}
