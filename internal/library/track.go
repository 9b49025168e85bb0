package library

import "fmt"

// CueKind distinguishes the cue point types Serato stores.
type CueKind int

const (
	// CueHot is a hot cue: a single position bound to a pad.
	CueHot CueKind = iota
	// CueLoop is a loop that is not bound to a slot.
	CueLoop
	// CueSavedLoop is a loop stored in one of the saved-loop slots.
	CueSavedLoop
)

func (k CueKind) String() string {
	switch k {
	case CueHot:
		return "hot-cue"
	case CueLoop:
		return "loop"
	case CueSavedLoop:
		return "saved-loop"
	default:
		return fmt.Sprintf("cue-kind(%d)", int(k))
	}
}

// IsLoop reports whether the cue spans a range rather than a point.
func (k CueKind) IsLoop() bool {
	return k == CueLoop || k == CueSavedLoop
}

// Color is an RGB cue color.
type Color struct {
	R, G, B uint8
}

// CuePoint is a marker inside a track. Positions are milliseconds from the
// start of the track; conversion to seconds happens at serialization.
type CuePoint struct {
	Index    int
	Kind     CueKind
	Position uint32
	// End is the loop end in milliseconds; zero for hot cues.
	End   uint32
	Color *Color
	Name  string
}

// Track is one audio file referenced by one or more crates. Its identity is
// Path, the normalized absolute location.
type Track struct {
	Path  string
	Title string
	Cues  []CuePoint
	// Resolved is true when Path existed on disk at resolution time.
	Resolved bool
}
