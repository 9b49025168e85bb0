// Package logging provides a simple leveled logging interface for
// crate-sync.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (per-crate and per-track detail)
//   - INFO: General operational messages (run summaries, watcher triggers)
//   - WARN: Warning conditions (skipped crates, unresolved tracks)
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or
// forced to debug with DEBUG=true.
package logging
