/*
Package filesystem provides the file operations the conversion pipeline relies
on: reads and stats that survive NFS stale file handles, and atomic
replacement of the exported XML file.

# Retry Behavior

Serato libraries are often kept on network shares. When the DJ software saves
a crate it writes a new file and renames it over the old one, which can leave
readers on NFS with an ESTALE (stale file handle) error. StatWithRetry and
ReadFileWithRetry retry only on ESTALE, with exponential backoff:

  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

All other errors fail immediately.

	data, err := filesystem.ReadFileWithRetry(path, filesystem.DefaultRetryConfig())

# Atomic Writes

WriteFileAtomic streams content into a temporary file created next to the
destination, syncs it and renames it into place. A concurrent reader (for
example Rekordbox re-importing the library) sees either the previous file or
the complete new one. Every failure path removes the temporary file.

	err := filesystem.WriteFileAtomic(out, 0o644, func(w io.Writer) error {
	    return doc.Encode(w)
	})

# Metrics

Operations are reported through the Observer interface, implemented by the
metrics package and installed with SetObserver at startup. Volume labels come
from a VolumeResolver ("crates", "library", "output").
*/
package filesystem
