// Package main provides the crate-sync command, which converts a Serato DJ
// crate library into a Rekordbox XML collection.
//
// # Commands
//
//	crate-sync convert   one conversion, then exit (default)
//	crate-sync dry-run   decode and map everything, write nothing
//	crate-sync watch     convert now and after every change to the crates
//
// Every run logs a summary: playlists, folders, distinct tracks, tracks
// missing on disk and crates that could not be decoded. A crate with a
// format error is skipped; the rest of the library is still exported.
// convert exits non-zero only when the export itself cannot be written or
// the crate directory cannot be read.
//
// # Watch Mode
//
// In watch mode the crate directory is observed with fsnotify. A burst of
// changes is debounced by QUIET_PERIOD into a single conversion, and
// changes made while a conversion runs produce exactly one follow-up run.
// When STATUS_ENABLED is set a small HTTP API reports the last summary,
// accepts manual conversion requests and exposes Prometheus metrics.
//
// # Configuration
//
// All settings come from environment variables; see package startup.
package main
