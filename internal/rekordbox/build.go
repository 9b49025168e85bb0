package rekordbox

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"crate-sync/internal/library"
)

// Build produces the export document for a crate tree and the playlist
// mapping derived from it. TrackIDs follow registry order.
func Build(tree *library.Tree, mapping library.Mapping, product Product) *Document {
	doc := &Document{
		Version: DocumentVersion,
		Product: product,
	}

	ids := make(map[*library.Track]int, tree.Registry.Len())
	for i, t := range tree.Registry.Tracks() {
		id := i + 1
		ids[t] = id
		doc.Collection.Tracks = append(doc.Collection.Tracks, Track{
			TrackID:  id,
			Name:     trackName(t),
			Location: LocationURL(t.Path),
			Marks:    positionMarks(t.Cues),
		})
	}
	doc.Collection.Entries = len(doc.Collection.Tracks)

	root := Node{Type: NodeFolder, Name: "ROOT"}
	for _, e := range mapping.Entries {
		root.Nodes = append(root.Nodes, buildNode(e, ids))
	}
	root.Count = intPtr(len(root.Nodes))
	doc.Playlists.Root = root

	return doc
}

func buildNode(e library.Entry, ids map[*library.Track]int) Node {
	if e.Kind == library.EntryPlaylist {
		n := Node{
			Type:    NodePlaylist,
			Name:    e.Name,
			KeyType: intPtr(0),
			Entries: intPtr(len(e.Tracks)),
		}
		for _, t := range e.Tracks {
			n.Tracks = append(n.Tracks, TrackKey{Key: ids[t]})
		}
		return n
	}

	n := Node{Type: NodeFolder, Name: e.Name}
	for _, child := range e.Children {
		n.Nodes = append(n.Nodes, buildNode(child, ids))
	}
	n.Count = intPtr(len(n.Nodes))
	return n
}

func trackName(t *library.Track) string {
	if t.Title != "" {
		return t.Title
	}
	base := filepath.Base(t.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// positionMarks converts cues, hot cues first, then loops, each ordered by
// slot and position.
func positionMarks(cues []library.CuePoint) []PositionMark {
	if len(cues) == 0 {
		return nil
	}
	sorted := append([]library.CuePoint(nil), cues...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Kind.IsLoop() != b.Kind.IsLoop() {
			return !a.Kind.IsLoop()
		}
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return a.Position < b.Position
	})

	marks := make([]PositionMark, 0, len(sorted))
	for _, c := range sorted {
		m := PositionMark{
			Name:  c.Name,
			Start: FormatSeconds(c.Position),
		}
		switch c.Kind {
		case library.CueLoop:
			m.Type = MarkLoop
			m.Num = -1
		case library.CueSavedLoop:
			m.Type = MarkLoop
			m.Num = c.Index
		default:
			m.Type = MarkCue
			m.Num = c.Index
			if m.Name == "" {
				m.Name = fmt.Sprintf("Hot Cue %d", c.Index+1)
			}
		}
		if c.Kind.IsLoop() && c.End > c.Position {
			m.End = FormatSeconds(c.End)
		}
		if c.Color != nil {
			m.Red, m.Green, m.Blue = uint8Ptr(c.Color.R), uint8Ptr(c.Color.G), uint8Ptr(c.Color.B)
		}
		marks = append(marks, m)
	}
	return marks
}

func intPtr(v int) *int {
	return &v
}

func uint8Ptr(v uint8) *uint8 {
	return &v
}
