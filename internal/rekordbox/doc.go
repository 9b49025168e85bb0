// Package rekordbox models and writes the Rekordbox DJ_PLAYLISTS XML
// collection format.
//
// Build turns a library tree and its playlist mapping into a Document:
// every distinct track becomes a COLLECTION entry with TrackIDs assigned in
// registry order, cue points become POSITION_MARK elements, and the mapping
// becomes the NODE tree under PLAYLISTS. Encoding is deterministic: the same
// library always produces byte-identical output.
//
// Write replaces the destination atomically through
// filesystem.WriteFileAtomic, so a failed run never leaves a truncated
// export behind.
package rekordbox
