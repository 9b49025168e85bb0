package converter

import (
	"errors"
	"fmt"
	"time"

	"crate-sync/internal/crate"
	"crate-sync/internal/library"
)

// Run modes.
const (
	ModeConvert = "convert"
	ModeDryRun  = "dry-run"
)

// CrateError is a crate skipped because it could not be decoded or placed.
type CrateError struct {
	File    string `json:"file"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func newCrateError(file string, err error) CrateError {
	ce := CrateError{File: file, Message: err.Error(), Err: err}
	var fe *crate.FormatError
	if errors.As(err, &fe) && fe.File != "" {
		ce.File = fe.File
	}
	return ce
}

// Summary describes one conversion run. Every run produces one, including
// runs that fail.
type Summary struct {
	RunID     string        `json:"runId"`
	Mode      string        `json:"mode"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Output    string        `json:"output"`
	Written   bool          `json:"written"`
	Bytes     int64         `json:"bytes"`

	CratesFound      int `json:"cratesFound"`
	CratesDecoded    int `json:"cratesDecoded"`
	Playlists        int `json:"playlists"`
	Folders          int `json:"folders"`
	Tracks           int `json:"tracks"`
	UnresolvedTracks int `json:"unresolvedTracks"`
	SkippedTracks    int `json:"skippedTracks"`

	EmptyCrates  []string                `json:"emptyCrates,omitempty"`
	FormatErrors []CrateError            `json:"formatErrors,omitempty"`
	Breakdown    []library.PlaylistCount `json:"breakdown,omitempty"`

	// Error is the message of the error that ended the run, if any.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the run ended with an error.
func (s Summary) Failed() bool {
	return s.Error != ""
}

// TrackReferences is the number of playlist entries across all playlists.
func (s Summary) TrackReferences() int {
	n := 0
	for _, p := range s.Breakdown {
		n += p.Tracks
	}
	return n
}

// Lines renders the summary for humans.
func (s Summary) Lines() []string {
	lines := []string{
		fmt.Sprintf("Playlists exported: %d", s.Playlists),
		fmt.Sprintf("Total tracks: %d (%d playlist entries)", s.Tracks, s.TrackReferences()),
	}
	if s.Folders > 0 {
		lines = append(lines, fmt.Sprintf("Folders: %d", s.Folders))
	}
	if s.UnresolvedTracks > 0 {
		lines = append(lines, fmt.Sprintf("Tracks not found on disk: %d", s.UnresolvedTracks))
	}
	if s.SkippedTracks > 0 {
		lines = append(lines, fmt.Sprintf("Track records without a path: %d", s.SkippedTracks))
	}
	if len(s.Breakdown) > 0 {
		lines = append(lines, "Breakdown:")
		for _, p := range s.Breakdown {
			lines = append(lines, fmt.Sprintf("  • %s (%d tracks)", p.Path, p.Tracks))
		}
	}
	if len(s.EmptyCrates) > 0 {
		lines = append(lines, "Empty crates skipped:")
		for _, name := range s.EmptyCrates {
			lines = append(lines, "  • "+name)
		}
	}
	if len(s.FormatErrors) > 0 {
		lines = append(lines, fmt.Sprintf("Crates with errors: %d", len(s.FormatErrors)))
		for _, e := range s.FormatErrors {
			lines = append(lines, "  • "+e.Message)
		}
	}
	return lines
}
