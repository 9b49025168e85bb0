package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crate-sync/internal/crate"
)

func writeTestCrate(t *testing.T) string {
	t.Helper()
	data := crate.MustEncode(
		crate.TextRecord(crate.TagVersion, "1.0/Serato ScratchLive Crate"),
		crate.Container(crate.TagTrack,
			crate.TextRecord(crate.MakeTag("ptrk"), "Music/a.mp3"),
		),
	)
	path := filepath.Join(t.TempDir(), "House.crate")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunText(t *testing.T) {
	var buf bytes.Buffer
	if err := run(&buf, writeTestCrate(t), formatText); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`vrsn "1.0/Serato ScratchLive Crate"`,
		"otrk\n",
		`  ptrk "Music/a.mp3"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := run(&buf, writeTestCrate(t), formatJSON); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	var got []recordJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[1].Tag != "otrk" || len(got[1].Children) != 1 {
		t.Errorf("otrk record = %+v", got[1])
	}
	if text := got[1].Children[0].Text; text == nil || *text != "Music/a.mp3" {
		t.Errorf("ptrk text = %v", text)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.crate")
	if err := os.WriteFile(bad, []byte("vrs"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := run(&buf, bad, formatText); err == nil || !strings.Contains(err.Error(), "not a valid crate") {
		t.Errorf("run(truncated) error = %v", err)
	}
	if err := run(&buf, filepath.Join(dir, "missing.crate"), formatText); err == nil {
		t.Error("run(missing) expected error")
	}
	if err := run(&buf, writeTestCrate(t), "yaml"); err == nil {
		t.Error("run(yaml) expected error")
	}
}
