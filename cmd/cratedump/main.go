package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"crate-sync/internal/crate"

	"golang.org/x/term"
)

const (
	formatAuto = "auto"
	formatText = "text"
	formatJSON = "json"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	path := os.Args[1]
	format := formatAuto
	if len(os.Args) > 2 {
		format = os.Args[2]
	}

	if format == formatAuto {
		format = formatJSON
		if term.IsTerminal(int(os.Stdout.Fd())) {
			format = formatText
		}
	}

	if err := run(os.Stdout, path, format); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Serato Crate Inspector")
	fmt.Println("")
	fmt.Println("Usage: cratedump <file.crate> [text|json]")
	fmt.Println("")
	fmt.Println("Prints every record in the crate. Output is indented text on a")
	fmt.Println("terminal and JSON otherwise.")
}

func run(w io.Writer, path, format string) error {
	records, err := crate.DecodeFile(path)
	if err != nil {
		var fe *crate.FormatError
		if errors.As(err, &fe) {
			return fmt.Errorf("%s is not a valid crate: %w", path, err)
		}
		return err
	}

	switch format {
	case formatText:
		dumpText(w, records)
		return nil
	case formatJSON:
		return dumpJSON(w, records)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func dumpText(w io.Writer, records []crate.Record) {
	crate.Walk(records, func(depth int, r crate.Record) {
		indent := strings.Repeat("  ", depth)
		switch r.Kind {
		case crate.KindContainer:
			fmt.Fprintf(w, "%s%s\n", indent, r.Tag)
		case crate.KindText:
			fmt.Fprintf(w, "%s%s %q\n", indent, r.Tag, r.Text)
		case crate.KindFixed:
			if v, ok := r.Uint(); ok {
				fmt.Fprintf(w, "%s%s %d\n", indent, r.Tag, v)
				return
			}
			fmt.Fprintf(w, "%s%s %s\n", indent, r.Tag, hex.EncodeToString(r.Raw))
		default:
			fmt.Fprintf(w, "%s%s (%d bytes)\n", indent, r.Tag, len(r.Raw))
		}
	})
}

type recordJSON struct {
	Tag      string       `json:"tag"`
	Kind     string       `json:"kind"`
	Text     *string      `json:"text,omitempty"`
	Value    *uint32      `json:"value,omitempty"`
	Raw      string       `json:"raw,omitempty"`
	Children []recordJSON `json:"children,omitempty"`
}

func toJSON(records []crate.Record) []recordJSON {
	out := make([]recordJSON, 0, len(records))
	for _, r := range records {
		rj := recordJSON{Tag: r.Tag.String(), Kind: r.Kind.String()}
		switch r.Kind {
		case crate.KindContainer:
			rj.Children = toJSON(r.Children)
		case crate.KindText:
			text := r.Text
			rj.Text = &text
		case crate.KindFixed:
			if v, ok := r.Uint(); ok {
				rj.Value = &v
			} else {
				rj.Raw = hex.EncodeToString(r.Raw)
			}
		default:
			rj.Raw = hex.EncodeToString(r.Raw)
		}
		out = append(out, rj)
	}
	return out
}

func dumpJSON(w io.Writer, records []crate.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(records))
}
