// Package library builds the in-memory model of a Serato library for one
// conversion run.
//
// A Resolver turns decoded crate records into Tracks with normalized
// absolute paths. BuildTree folds the crates, in discovery order, into a
// hierarchy keyed by the "%%"-separated segments of each crate name,
// interning tracks in a Registry so every path is represented once. Map
// then derives the playlist tree written to the export:
//
//   - a node with tracks and no children becomes a playlist
//   - a node with children becomes a folder; if it also has tracks, the
//     folder's first entry is a playlist of the same name holding them
//   - a leaf crate with no tracks is dropped unless EmitEmptyPlaylists is set
package library
