package converter

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"crate-sync/internal/library"
	"crate-sync/internal/logging"
	"crate-sync/internal/watcher"
)

// CrateFile is a crate file found in the crate directory.
type CrateFile struct {
	Path string
	// Name is the file name without extension.
	Name string
	// Segments is the hierarchy path: subdirectories of the crate
	// directory followed by the "%%"-separated parts of Name.
	Segments []string
	Size     int64
}

// Discover lists the crate files under dir in lexical order. Hidden files
// and directories are skipped.
func Discover(dir string) ([]CrateFile, error) {
	var files []CrateFile

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			logging.Warn("skipping unreadable path %s: %v", path, err)
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !watcher.IsCrateFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))

		var segments []string
		if parent := filepath.Dir(rel); parent != "." {
			segments = strings.Split(filepath.ToSlash(parent), "/")
		}
		segments = append(segments, library.SplitCrateName(name)...)

		cf := CrateFile{Path: path, Name: name, Segments: segments}
		if info, err := d.Info(); err == nil {
			cf.Size = info.Size()
		}
		files = append(files, cf)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover crates in %s: %w", dir, err)
	}
	return files, nil
}
