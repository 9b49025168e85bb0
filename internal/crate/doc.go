// Package crate decodes Serato crate files.
//
// A crate is a flat sequence of records, each a 4-byte ASCII tag, a 4-byte
// big-endian payload length and the payload. How a payload is read depends
// only on its tag, looked up in a closed decode table:
//
//   - containers (otrk, ocue, osrt, ovct) hold a nested record sequence
//   - text fields (vrsn, ptrk, pfil, pnam, cnam, tvcn, tvcw) hold UTF-16BE strings
//   - fixed fields (cpos, cend, ccol, cidx, ctyp, brev) hold big-endian values
//     of a known size
//
// Tags outside the table decode as opaque records and are skipped by their
// declared length, so files written by newer Serato versions keep decoding.
// A truncated record, a length running past its enclosing buffer or a fixed
// field of the wrong size fails the whole file with a *FormatError.
//
// Encode is the inverse of Decode and is used to build fixtures.
package crate
