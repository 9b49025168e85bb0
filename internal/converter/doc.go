// Package converter runs the crate to Rekordbox conversion pipeline.
//
// A run discovers crate files under the crate directory, decodes and
// resolves them on a worker pool, folds the results in discovery order
// into a library tree, maps it to playlists and writes the export. Each
// run returns a Summary whether or not it succeeded; the most recent one is
// kept for the status server.
//
// Watch drives runs from a watcher.Watcher. Runs never overlap: the
// converter holds a run lock, and triggers that arrive during a run
// collapse into a single follow-up run.
package converter
