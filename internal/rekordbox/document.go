package rekordbox

import "encoding/xml"

// Node types used in the PLAYLISTS tree.
const (
	NodeFolder   = 0
	NodePlaylist = 1
)

// Position mark types.
const (
	MarkCue  = 0
	MarkLoop = 4
)

// DocumentVersion is the DJ_PLAYLISTS schema version written.
const DocumentVersion = "1.0.0"

// Document is a Rekordbox collection export.
type Document struct {
	XMLName    xml.Name   `xml:"DJ_PLAYLISTS"`
	Version    string     `xml:"Version,attr"`
	Product    Product    `xml:"PRODUCT"`
	Collection Collection `xml:"COLLECTION"`
	Playlists  Playlists  `xml:"PLAYLISTS"`
}

type Product struct {
	Name    string `xml:"Name,attr"`
	Version string `xml:"Version,attr"`
	Company string `xml:"Company,attr"`
}

type Collection struct {
	Entries int     `xml:"Entries,attr"`
	Tracks  []Track `xml:"TRACK"`
}

type Track struct {
	TrackID  int            `xml:"TrackID,attr"`
	Name     string         `xml:"Name,attr"`
	Location string         `xml:"Location,attr"`
	Marks    []PositionMark `xml:"POSITION_MARK"`
}

// PositionMark is a cue or loop. Start and End are seconds with three
// decimals.
type PositionMark struct {
	Name  string `xml:"Name,attr"`
	Type  int    `xml:"Type,attr"`
	Start string `xml:"Start,attr"`
	End   string `xml:"End,attr,omitempty"`
	Num   int    `xml:"Num,attr"`
	Red   *uint8 `xml:"Red,attr,omitempty"`
	Green *uint8 `xml:"Green,attr,omitempty"`
	Blue  *uint8 `xml:"Blue,attr,omitempty"`
}

type Playlists struct {
	Root Node `xml:"NODE"`
}

// Node is a folder (Type 0) or a playlist (Type 1). Folders carry Count,
// playlists carry KeyType and Entries.
type Node struct {
	Type    int        `xml:"Type,attr"`
	Name    string     `xml:"Name,attr"`
	Count   *int       `xml:"Count,attr,omitempty"`
	KeyType *int       `xml:"KeyType,attr,omitempty"`
	Entries *int       `xml:"Entries,attr,omitempty"`
	Nodes   []Node     `xml:"NODE"`
	Tracks  []TrackKey `xml:"TRACK"`
}

// TrackKey references a collection track by TrackID.
type TrackKey struct {
	Key int `xml:"Key,attr"`
}

// IsFolder reports whether n is a folder node.
func (n Node) IsFolder() bool {
	return n.Type == NodeFolder
}

// Find returns the direct child named name.
func (n Node) Find(name string) (Node, bool) {
	for _, child := range n.Nodes {
		if child.Name == name {
			return child, true
		}
	}
	return Node{}, false
}

// Track returns the collection track with the given ID.
func (d *Document) Track(id int) (Track, bool) {
	for _, t := range d.Collection.Tracks {
		if t.TrackID == id {
			return t, true
		}
	}
	return Track{}, false
}
