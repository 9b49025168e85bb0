package library

import "strings"

// EntryKind is the kind of an emitted playlist-tree entry.
type EntryKind int

const (
	EntryFolder EntryKind = iota
	EntryPlaylist
)

func (k EntryKind) String() string {
	if k == EntryFolder {
		return "folder"
	}
	return "playlist"
}

// Entry is one node of the output playlist tree.
type Entry struct {
	Kind     EntryKind
	Name     string
	Tracks   []*Track
	Children []Entry
}

// MapOptions tunes the mapping.
type MapOptions struct {
	// EmitEmptyPlaylists emits an empty playlist for a crate-backed leaf
	// with no tracks instead of dropping it.
	EmitEmptyPlaylists bool
}

// PlaylistCount names one emitted playlist and its size.
type PlaylistCount struct {
	Path   string `json:"path"`
	Tracks int    `json:"tracks"`
}

// Mapping is the playlist tree derived from a crate tree.
type Mapping struct {
	Entries   []Entry
	Playlists int
	Folders   int
	// EmptyCrates lists crate-backed leaves that were dropped because they
	// held no tracks.
	EmptyCrates []string
	// Breakdown lists every emitted playlist in document order.
	Breakdown []PlaylistCount
}

// Map converts the top level of tree into playlist entries. A node with
// both tracks and children becomes a folder whose first entry is a
// playlist of the node's own tracks, followed by its mapped children.
func Map(tree *Tree, opts MapOptions) Mapping {
	var m Mapping
	for _, child := range tree.Root.Children {
		if e, ok := mapNode(child, nil, opts, &m); ok {
			m.Entries = append(m.Entries, e)
		}
	}
	return m
}

func mapNode(n *Node, parents []string, opts MapOptions, m *Mapping) (Entry, bool) {
	path := append(append([]string(nil), parents...), n.Name)

	if len(n.Children) == 0 {
		if len(n.Tracks) == 0 && !opts.EmitEmptyPlaylists {
			if n.fromCrate {
				m.EmptyCrates = append(m.EmptyCrates, displayPath(path))
			}
			return Entry{}, false
		}
		return playlist(n.Name, n.Tracks, path, m), true
	}

	folder := Entry{Kind: EntryFolder, Name: n.Name}
	m.Folders++
	if len(n.Tracks) > 0 {
		folder.Children = append(folder.Children, playlist(n.Name, n.Tracks, path, m))
	}
	for _, child := range n.Children {
		if e, ok := mapNode(child, path, opts, m); ok {
			folder.Children = append(folder.Children, e)
		}
	}
	return folder, true
}

func playlist(name string, tracks []*Track, path []string, m *Mapping) Entry {
	m.Playlists++
	m.Breakdown = append(m.Breakdown, PlaylistCount{Path: displayPath(path), Tracks: len(tracks)})
	return Entry{Kind: EntryPlaylist, Name: name, Tracks: tracks}
}

func displayPath(segments []string) string {
	return strings.Join(segments, " / ")
}
