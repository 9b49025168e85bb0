package rekordbox

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// LocationURL converts an absolute track path into the file URL form
// Rekordbox expects.
func LocationURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Host: "localhost", Path: p}
	return u.String()
}

// LocationPath converts a Location attribute back into a path.
func LocationPath(location string) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse location: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("location %q: not a file URL", location)
	}
	p := u.Path
	// Drive-letter paths are written as /C:/...
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p), nil
}
