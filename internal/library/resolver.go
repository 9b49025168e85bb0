package library

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"crate-sync/internal/crate"
	"crate-sync/internal/filesystem"
	"crate-sync/internal/logging"

	"golang.org/x/text/unicode/norm"
)

// Resolver turns the track records of one crate into Tracks.
type Resolver struct {
	// Root is prepended to relative track paths. Serato stores paths
	// relative to the root of the volume holding the crate.
	Root string
	// Stat reports whether a track exists. Defaults to a retrying os.Stat.
	Stat func(name string) (os.FileInfo, error)
}

// NewResolver creates a Resolver for tracks stored relative to root.
func NewResolver(root string) *Resolver {
	return &Resolver{
		Root: root,
		Stat: func(name string) (os.FileInfo, error) {
			return filesystem.StatWithRetry(name, filesystem.DefaultRetryConfig())
		},
	}
}

// ResolveResult holds the tracks of one crate.
type ResolveResult struct {
	Tracks []Track
	// Skipped counts otrk records without a usable path.
	Skipped int
}

// Unresolved counts tracks whose file was missing.
func (r ResolveResult) Unresolved() int {
	n := 0
	for _, t := range r.Tracks {
		if !t.Resolved {
			n++
		}
	}
	return n
}

// Resolve converts every top-level otrk container in records, in order.
// Missing files are kept with Resolved=false.
func (r *Resolver) Resolve(records []crate.Record) ResolveResult {
	var result ResolveResult
	for _, rec := range crate.FindAll(records, crate.TagTrack) {
		raw := trackPath(rec)
		if raw == "" {
			result.Skipped++
			logging.Debug("skipping track record without a path")
			continue
		}

		track := Track{
			Path: r.NormalizePath(raw),
			Cues: cuePoints(rec),
		}
		if title, ok := rec.Find(crate.TagTitle); ok {
			track.Title = title.Text
		}

		if r.Stat != nil {
			if info, err := r.Stat(track.Path); err == nil && !info.IsDir() {
				track.Resolved = true
			}
		}
		if !track.Resolved {
			logging.Debug("track not found on disk: %s", track.Path)
		}

		result.Tracks = append(result.Tracks, track)
	}
	return result
}

// NormalizePath converts a stored track path into its canonical absolute
// form: forward slashes collapsed, NFC-normalized, joined to Root when
// relative, and cleaned.
func (r *Resolver) NormalizePath(raw string) string {
	p := strings.ReplaceAll(raw, `\`, "/")
	p = norm.NFC.String(p)
	if !isAbsolute(p) && r.Root != "" {
		p = path.Join(filepath.ToSlash(r.Root), p)
	}
	return filepath.FromSlash(path.Clean(p))
}

// isAbsolute accepts both POSIX paths and drive-letter paths, since crates
// written on Windows travel with the library.
func isAbsolute(p string) bool {
	if strings.HasPrefix(p, "/") {
		return true
	}
	return len(p) >= 3 && p[1] == ':' && p[2] == '/' &&
		((p[0] >= 'A' && p[0] <= 'Z') || (p[0] >= 'a' && p[0] <= 'z'))
}

func trackPath(rec crate.Record) string {
	if p, ok := rec.Find(crate.TagTrackPath); ok && strings.TrimSpace(p.Text) != "" {
		return p.Text
	}
	if p, ok := rec.Find(crate.TagFilePath); ok && strings.TrimSpace(p.Text) != "" {
		return p.Text
	}
	return ""
}

func cuePoints(track crate.Record) []CuePoint {
	var cues []CuePoint
	for _, rec := range crate.FindAll(track.Children, crate.TagCue) {
		start, ok := rec.Find(crate.TagCueStart)
		if !ok {
			logging.Debug("skipping cue without a position")
			continue
		}
		pos, _ := start.Uint()

		cue := CuePoint{Position: pos}
		if idx, ok := rec.Find(crate.TagCueIndex); ok {
			v, _ := idx.Uint()
			cue.Index = int(v)
		}
		if typ, ok := rec.Find(crate.TagCueType); ok {
			v, _ := typ.Uint()
			cue.Kind = cueKind(v)
		}
		if end, ok := rec.Find(crate.TagCueEnd); ok && cue.Kind.IsLoop() {
			cue.End, _ = end.Uint()
		}
		if col, ok := rec.Find(crate.TagCueColor); ok && len(col.Raw) == 4 {
			cue.Color = &Color{R: col.Raw[1], G: col.Raw[2], B: col.Raw[3]}
		}
		if name, ok := rec.Find(crate.TagCueName); ok {
			cue.Name = name.Text
		}
		cues = append(cues, cue)
	}
	return cues
}

func cueKind(v uint32) CueKind {
	switch v {
	case 1:
		return CueLoop
	case 2:
		return CueSavedLoop
	case 0:
		return CueHot
	default:
		logging.Debug("unknown cue type %d, treating as hot cue", v)
		return CueHot
	}
}
