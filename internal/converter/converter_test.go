package converter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"crate-sync/internal/crate"
	"crate-sync/internal/library"
	"crate-sync/internal/rekordbox"
	"crate-sync/internal/watcher"
)

// writeCrate writes a crate file referencing the given track paths, each
// with one hot cue at the matching position.
func writeCrate(t *testing.T, path string, tracks []string, cues ...uint32) {
	t.Helper()
	records := []crate.Record{crate.TextRecord(crate.TagVersion, "1.0/Serato ScratchLive Crate")}
	for i, p := range tracks {
		children := []crate.Record{crate.TextRecord(crate.TagTrackPath, p)}
		if i < len(cues) {
			children = append(children, crate.Container(crate.TagCue,
				crate.Uint8Record(crate.TagCueIndex, 0),
				crate.Uint8Record(crate.TagCueType, 0),
				crate.Uint32Record(crate.TagCueStart, cues[i]),
			))
		}
		records = append(records, crate.Container(crate.TagTrack, children...))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, crate.MustEncode(records...), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestConverter(t *testing.T) (*Converter, string) {
	t.Helper()
	base := t.TempDir()
	crates := filepath.Join(base, "Subcrates")
	if err := os.Mkdir(crates, 0o755); err != nil {
		t.Fatal(err)
	}
	c := New(Options{
		CrateDir:    crates,
		LibraryRoot: "/",
		Output:      filepath.Join(base, "export.xml"),
		Product:     rekordbox.Product{Name: "crate-sync", Version: "test", Company: "crate-sync"},
		Stat:        func(string) (os.FileInfo, error) { return nil, os.ErrNotExist },
	})
	return c, crates
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"House.crate", "House%%Deep.crate", "Sets/2024.crate", ".hidden.crate", ".trash/Old.crate", "notes.txt"} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	var got [][]string
	for _, f := range files {
		got = append(got, f.Segments)
	}
	want := [][]string{{"House", "Deep"}, {"House"}, {"Sets", "2024"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("segments = %q, want %q", got, want)
	}
	if files[0].Size != 1 {
		t.Errorf("Size = %d, want 1", files[0].Size)
	}
}

func TestDiscover_MissingDirectory(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Discover() error = %v, want ErrNotExist", err)
	}
}

func TestConvert(t *testing.T) {
	c, dir := newTestConverter(t)
	writeCrate(t, filepath.Join(dir, "Techno.crate"), []string{"Music/a.mp3", "Music/b.mp3"}, 1000, 45231)
	writeCrate(t, filepath.Join(dir, "House.crate"), []string{"Music/h.mp3"})
	writeCrate(t, filepath.Join(dir, "House%%Deep.crate"), []string{"Music/d1.mp3", "Music/h.mp3"})

	summary, err := c.Convert(context.Background())
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if summary.RunID == "" || summary.Mode != ModeConvert || !summary.Written {
		t.Errorf("summary = %+v", summary)
	}
	if summary.CratesFound != 3 || summary.CratesDecoded != 3 {
		t.Errorf("crates found/decoded = %d/%d, want 3/3", summary.CratesFound, summary.CratesDecoded)
	}
	if summary.Playlists != 3 || summary.Folders != 1 {
		t.Errorf("playlists/folders = %d/%d, want 3/1", summary.Playlists, summary.Folders)
	}
	if summary.Tracks != 4 || summary.UnresolvedTracks != 4 {
		t.Errorf("tracks/unresolved = %d/%d, want 4/4", summary.Tracks, summary.UnresolvedTracks)
	}

	doc, err := rekordbox.ReadFile(c.opts.Output)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	techno, ok := doc.Playlists.Root.Find("Techno")
	if !ok || len(techno.Tracks) != 2 {
		t.Fatalf("Techno = %+v", techno)
	}
	a, _ := doc.Track(techno.Tracks[0].Key)
	b, _ := doc.Track(techno.Tracks[1].Key)
	if len(a.Marks) != 1 || a.Marks[0].Start != "1.000" {
		t.Errorf("track a marks = %+v", a.Marks)
	}
	if len(b.Marks) != 1 || b.Marks[0].Start != "45.231" {
		t.Errorf("track b marks = %+v", b.Marks)
	}

	house, ok := doc.Playlists.Root.Find("House")
	if !ok || !house.IsFolder() || len(house.Nodes) != 2 {
		t.Fatalf("House = %+v", house)
	}
	if house.Nodes[0].Name != "House" || house.Nodes[1].Name != "Deep" {
		t.Errorf("House children = %q, %q", house.Nodes[0].Name, house.Nodes[1].Name)
	}

	last, ok := c.LastSummary()
	if !ok || last.RunID != summary.RunID {
		t.Errorf("LastSummary() = %+v, %v", last, ok)
	}
}

func TestConvert_TruncatedCrate(t *testing.T) {
	c, dir := newTestConverter(t)
	writeCrate(t, filepath.Join(dir, "Good.crate"), []string{"a.mp3"})
	writeCrate(t, filepath.Join(dir, "Other.crate"), []string{"b.mp3"})

	broken := filepath.Join(dir, "Broken.crate")
	writeCrate(t, broken, []string{"c.mp3", "d.mp3"})
	data, err := os.ReadFile(broken)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(broken, data[:len(data)-5], 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := c.Convert(context.Background())
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if len(summary.FormatErrors) != 1 {
		t.Fatalf("FormatErrors = %+v, want 1", summary.FormatErrors)
	}
	fe := summary.FormatErrors[0]
	if fe.File != broken {
		t.Errorf("FormatError file = %q, want %q", fe.File, broken)
	}
	if !errors.Is(fe.Err, crate.ErrTruncated) {
		t.Errorf("FormatError = %v, want truncated", fe.Err)
	}

	doc, err := rekordbox.ReadFile(c.opts.Output)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Good", "Other"} {
		if _, ok := doc.Playlists.Root.Find(name); !ok {
			t.Errorf("playlist %s missing", name)
		}
	}
	if _, ok := doc.Playlists.Root.Find("Broken"); ok {
		t.Error("broken crate exported")
	}
}

func TestConvert_Idempotent(t *testing.T) {
	c, dir := newTestConverter(t)
	writeCrate(t, filepath.Join(dir, "A.crate"), []string{"x.mp3", "y.mp3"}, 10, 20)
	writeCrate(t, filepath.Join(dir, "A%%B.crate"), []string{"y.mp3", "z.mp3"})
	writeCrate(t, filepath.Join(dir, "Sets", "C.crate"), []string{"z.mp3"})

	if _, err := c.Convert(context.Background()); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(c.opts.Output)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Convert(context.Background()); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(c.opts.Output)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Error("repeated conversion produced different output")
	}
}

func TestConvert_DuplicateCratePath(t *testing.T) {
	c, dir := newTestConverter(t)
	writeCrate(t, filepath.Join(dir, "Sets%%Live.crate"), []string{"a.mp3"})
	writeCrate(t, filepath.Join(dir, "Sets", "Live.crate"), []string{"b.mp3"})

	summary, err := c.Convert(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.FormatErrors) != 1 || !errors.Is(summary.FormatErrors[0].Err, crate.ErrDuplicatePath) {
		t.Errorf("FormatErrors = %+v, want one duplicate path", summary.FormatErrors)
	}
	if summary.CratesDecoded != 1 || summary.Tracks != 1 {
		t.Errorf("decoded/tracks = %d/%d, want 1/1", summary.CratesDecoded, summary.Tracks)
	}
}

func TestConvert_EmptyCrates(t *testing.T) {
	c, dir := newTestConverter(t)
	writeCrate(t, filepath.Join(dir, "Empty.crate"), nil)
	writeCrate(t, filepath.Join(dir, "Full.crate"), []string{"a.mp3"})

	summary, err := c.Convert(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Playlists != 1 || !reflect.DeepEqual(summary.EmptyCrates, []string{"Empty"}) {
		t.Errorf("playlists = %d, empty = %q", summary.Playlists, summary.EmptyCrates)
	}

	c.opts.EmitEmptyPlaylists = true
	summary, err = c.Convert(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Playlists != 2 || len(summary.EmptyCrates) != 0 {
		t.Errorf("with empty playlists: playlists = %d, empty = %q", summary.Playlists, summary.EmptyCrates)
	}
}

func TestDryRun(t *testing.T) {
	c, dir := newTestConverter(t)
	writeCrate(t, filepath.Join(dir, "A.crate"), []string{"a.mp3"})

	summary, err := c.DryRun(context.Background())
	if err != nil {
		t.Fatalf("DryRun() error = %v", err)
	}
	if summary.Written || summary.Mode != ModeDryRun {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Bytes == 0 || summary.Playlists != 1 {
		t.Errorf("bytes/playlists = %d/%d", summary.Bytes, summary.Playlists)
	}
	if _, err := os.Stat(c.opts.Output); !os.IsNotExist(err) {
		t.Errorf("dry run touched the destination: %v", err)
	}
}

// blockOutput returns an output path whose parent is a regular file, so the
// export can never be written there.
func blockOutput(t *testing.T) string {
	t.Helper()
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return filepath.Join(blocker, "export.xml")
}

func TestConvert_DestinationError(t *testing.T) {
	c, dir := newTestConverter(t)
	writeCrate(t, filepath.Join(dir, "A.crate"), []string{"a.mp3"})
	c.opts.Output = blockOutput(t)

	summary, err := c.Convert(context.Background())
	var de *rekordbox.DestinationError
	if !errors.As(err, &de) {
		t.Fatalf("Convert() error = %v, want *DestinationError", err)
	}
	if summary.Written || !summary.Failed() || summary.Playlists != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if entries, _ := os.ReadDir(filepath.Dir(filepath.Dir(c.opts.Output))); len(entries) != 1 {
		t.Errorf("leftover files: %v", entries)
	}
}

func TestConvert_CreatesOutputDirectory(t *testing.T) {
	c, dir := newTestConverter(t)
	writeCrate(t, filepath.Join(dir, "A.crate"), []string{"a.mp3"})
	c.opts.Output = filepath.Join(t.TempDir(), "exports", "rekordbox", "export.xml")

	summary, err := c.Convert(context.Background())
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !summary.Written {
		t.Errorf("summary = %+v, want written", summary)
	}
	if _, err := rekordbox.ReadFile(c.opts.Output); err != nil {
		t.Errorf("ReadFile() error = %v", err)
	}
}

func TestDryRun_MissingOutputDirectory(t *testing.T) {
	c, dir := newTestConverter(t)
	writeCrate(t, filepath.Join(dir, "A.crate"), []string{"a.mp3"})
	missing := filepath.Join(t.TempDir(), "missing")
	c.opts.Output = filepath.Join(missing, "export.xml")

	summary, err := c.DryRun(context.Background())
	if err != nil {
		t.Fatalf("DryRun() error = %v", err)
	}
	if summary.Written || summary.Playlists != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Errorf("dry run created the output directory: %v", err)
	}
}

func TestConvert_MissingCrateDirectory(t *testing.T) {
	c, _ := newTestConverter(t)
	c.opts.CrateDir = filepath.Join(t.TempDir(), "nope")

	summary, err := c.Convert(context.Background())
	if err == nil {
		t.Fatal("Convert() succeeded without a crate directory")
	}
	if summary.RunID == "" || summary.Error == "" {
		t.Errorf("summary = %+v, want run id and error", summary)
	}
}

func TestConvert_Serialized(t *testing.T) {
	c, dir := newTestConverter(t)
	for _, name := range []string{"A", "B", "C", "D"} {
		writeCrate(t, filepath.Join(dir, name+".crate"), []string{name + ".mp3"})
	}

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Convert(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("concurrent Convert() error = %v", err)
		}
	}
}

func TestSummaryLines(t *testing.T) {
	s := Summary{
		Playlists: 2,
		Tracks:    3,
		Breakdown: []library.PlaylistCount{{Path: "House", Tracks: 1}, {Path: "House / Deep", Tracks: 2}},
	}
	want := []string{
		"Playlists exported: 2",
		"Total tracks: 3 (3 playlist entries)",
		"Breakdown:",
		"  • House (1 tracks)",
		"  • House / Deep (2 tracks)",
	}
	if got := s.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %q, want %q", got, want)
	}
}

func TestWatch(t *testing.T) {
	c, dir := newTestConverter(t)
	c.opts.QuietPeriod = 100 * time.Millisecond
	writeCrate(t, filepath.Join(dir, "A.crate"), []string{"a.mp3"})

	ctx, cancel := context.WithCancel(context.Background())
	runs := make(chan Summary, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Watch(ctx, func(s Summary, err error) {
			if err != nil {
				t.Errorf("watch run error = %v", err)
			}
			runs <- s
		})
	}()

	waitRun := func() Summary {
		select {
		case s := <-runs:
			return s
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a run")
			return Summary{}
		}
	}

	if s := waitRun(); s.Playlists != 1 {
		t.Errorf("initial run playlists = %d, want 1", s.Playlists)
	}

	writeCrate(t, filepath.Join(dir, "B.crate"), []string{"b.mp3"})
	if s := waitRun(); s.Playlists != 2 {
		t.Errorf("run after change playlists = %d, want 2", s.Playlists)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_ContinuesAfterFailure(t *testing.T) {
	c, dir := newTestConverter(t)
	c.opts.QuietPeriod = 100 * time.Millisecond
	c.opts.Output = blockOutput(t)
	writeCrate(t, filepath.Join(dir, "A.crate"), []string{"a.mp3"})

	type run struct {
		summary Summary
		err     error
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runs := make(chan run, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Watch(ctx, func(s Summary, err error) {
			runs <- run{s, err}
		})
	}()

	waitRun := func() run {
		select {
		case r := <-runs:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a run")
			return run{}
		}
	}

	first := waitRun()
	var de *rekordbox.DestinationError
	if !errors.As(first.err, &de) {
		t.Fatalf("initial run error = %v, want *DestinationError", first.err)
	}
	if first.summary.Written {
		t.Error("failed run reported as written")
	}

	blocker := filepath.Dir(c.opts.Output)
	if err := os.Remove(blocker); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(blocker, 0o755); err != nil {
		t.Fatal(err)
	}
	writeCrate(t, filepath.Join(dir, "B.crate"), []string{"b.mp3"})

	second := waitRun()
	if second.err != nil {
		t.Fatalf("run after recovery error = %v", second.err)
	}
	if !second.summary.Written || second.summary.Playlists != 2 {
		t.Errorf("run after recovery = %+v", second.summary)
	}
	if _, err := os.Stat(c.opts.Output); err != nil {
		t.Errorf("export missing after recovery: %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_StartError(t *testing.T) {
	c, _ := newTestConverter(t)
	c.opts.CrateDir = filepath.Join(t.TempDir(), "nope")

	err := c.Watch(context.Background(), nil)
	var we *watcher.WatchError
	if !errors.As(err, &we) {
		t.Errorf("Watch() error = %v, want *WatchError", err)
	}
}
