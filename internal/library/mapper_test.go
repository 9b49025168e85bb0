package library

import (
	"reflect"
	"testing"
)

// shape renders a mapping as nested names for comparison.
func shape(entries []Entry) []string {
	var out []string
	var walk func(prefix string, es []Entry)
	walk = func(prefix string, es []Entry) {
		for _, e := range es {
			out = append(out, prefix+e.Kind.String()+":"+e.Name)
			walk(prefix+"  ", e.Children)
		}
	}
	walk("", entries)
	return out
}

func mapCrates(t *testing.T, opts MapOptions, crates ...CrateResult) Mapping {
	t.Helper()
	tree, errs := BuildTree(crates)
	if len(errs) != 0 {
		t.Fatalf("BuildTree() errors = %v", errs)
	}
	return Map(tree, opts)
}

func TestMap_OwnPlaylistBeforeChildren(t *testing.T) {
	m := mapCrates(t, MapOptions{},
		crateOf("House%%Deep", "/d1.mp3", "/d2.mp3"),
		crateOf("House", "/h1.mp3"),
	)

	want := []string{
		"folder:House",
		"  playlist:House",
		"  playlist:Deep",
	}
	if got := shape(m.Entries); !reflect.DeepEqual(got, want) {
		t.Errorf("shape = %q, want %q", got, want)
	}

	house := m.Entries[0]
	if n := len(house.Children[0].Tracks); n != 1 {
		t.Errorf("House playlist tracks = %d, want 1", n)
	}
	if n := len(house.Children[1].Tracks); n != 2 {
		t.Errorf("Deep playlist tracks = %d, want 2", n)
	}
	if m.Folders != 1 || m.Playlists != 2 {
		t.Errorf("Folders, Playlists = %d, %d, want 1, 2", m.Folders, m.Playlists)
	}
}

func TestMap_IntermediateFolder(t *testing.T) {
	m := mapCrates(t, MapOptions{}, crateOf("Genres%%Techno", "/t.mp3"))

	want := []string{"folder:Genres", "  playlist:Techno"}
	if got := shape(m.Entries); !reflect.DeepEqual(got, want) {
		t.Errorf("shape = %q, want %q", got, want)
	}
}

func TestMap_OnePlaylistPerCrateWithTracks(t *testing.T) {
	crates := []CrateResult{
		crateOf("A", "/1.mp3"),
		crateOf("A%%B", "/2.mp3"),
		crateOf("A%%B%%C", "/3.mp3"),
		crateOf("D%%E", "/4.mp3"),
		crateOf("F", "/1.mp3", "/5.mp3"),
	}
	m := mapCrates(t, MapOptions{}, crates...)

	if m.Playlists != len(crates) {
		t.Errorf("Playlists = %d, want %d", m.Playlists, len(crates))
	}
	if len(m.Breakdown) != len(crates) {
		t.Fatalf("Breakdown = %v", m.Breakdown)
	}
	if m.Breakdown[2] != (PlaylistCount{Path: "A / B / C", Tracks: 1}) {
		t.Errorf("Breakdown[2] = %+v", m.Breakdown[2])
	}
}

func TestMap_EmptyLeaf(t *testing.T) {
	crates := []CrateResult{
		crateOf("Empty"),
		crateOf("Sets%%Unused"),
		crateOf("Techno", "/t.mp3"),
	}

	t.Run("dropped by default", func(t *testing.T) {
		m := mapCrates(t, MapOptions{}, crates...)
		want := []string{"folder:Sets", "playlist:Techno"}
		if got := shape(m.Entries); !reflect.DeepEqual(got, want) {
			t.Errorf("shape = %q, want %q", got, want)
		}
		if want := []string{"Empty", "Sets / Unused"}; !reflect.DeepEqual(m.EmptyCrates, want) {
			t.Errorf("EmptyCrates = %q, want %q", m.EmptyCrates, want)
		}
	})

	t.Run("emitted when enabled", func(t *testing.T) {
		m := mapCrates(t, MapOptions{EmitEmptyPlaylists: true}, crates...)
		want := []string{"playlist:Empty", "folder:Sets", "  playlist:Unused", "playlist:Techno"}
		if got := shape(m.Entries); !reflect.DeepEqual(got, want) {
			t.Errorf("shape = %q, want %q", got, want)
		}
		if len(m.EmptyCrates) != 0 {
			t.Errorf("EmptyCrates = %q, want none", m.EmptyCrates)
		}
	})
}
