package rekordbox

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"crate-sync/internal/filesystem"
	"crate-sync/internal/logging"
)

// DestinationError reports that the export could not be written. The
// previous export, if any, is left as it was.
type DestinationError struct {
	Path string
	Op   string
	Err  error
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("destination %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *DestinationError) Unwrap() error {
	return e.Err
}

// Encode writes doc as indented XML with a declaration. The same document
// always encodes to the same bytes.
func Encode(w io.Writer, doc *Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Marshal returns the encoded document.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes doc and atomically replaces path with it. It returns the
// number of bytes written.
func Write(path string, doc *Document) (int64, error) {
	data, err := Marshal(doc)
	if err != nil {
		return 0, &DestinationError{Path: path, Op: "encode", Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, &DestinationError{Path: path, Op: "mkdir", Err: err}
	}

	err = filesystem.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return 0, &DestinationError{Path: path, Op: "write", Err: err}
	}

	logging.Debug("wrote %d bytes to %s", len(data), path)
	return int64(len(data)), nil
}

// Parse reads a document.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse rekordbox document: %w", err)
	}
	return &doc, nil
}

// ReadFile parses the document stored at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
