// Package metrics provides Prometheus instrumentation for crate-sync.
//
// All metrics are prefixed with "crate_sync_" and registered with the default
// registry through promauto, so importing the package is enough to expose them
// on the status server's /metrics endpoint.
//
// # Metric Categories
//
// ## Conversion Metrics
//
//   - ConversionRunsTotal: Counter of runs by mode and status
//   - ConversionDuration: Histogram of run duration by mode
//   - ConversionIsRunning: Gauge set while a run holds the destination lock
//   - ConversionLastRunTimestamp / ConversionLastRunDuration
//   - ConversionDestinationErrors: Runs that could not write the XML file
//
// ## Crate Metrics
//
//   - CratesDecodedTotal / CrateFormatErrorsTotal
//   - CrateDecodeDuration: Per-file read, decode and resolve time
//   - DecodeWorkers: Worker pool size of the last run
//
// ## Library Metrics
//
//   - LibraryEntries: Playlists, folders, tracks and unresolved tracks in the last export
//   - LibraryCrateFiles / LibraryCrateBytes / LibraryExportBytes: refreshed by Collector
//
// ## Watcher Metrics
//
//   - WatcherEventsTotal: Filesystem events by type and relevance
//   - WatcherTriggersTotal / WatcherCoalescedTotal
//   - WatcherErrors / WatcherWatchedDirectories
//
// ## Filesystem Metrics
//
// Recorded through the filesystem.Observer implemented in observer.go:
//   - FilesystemOperationDuration / FilesystemOperationErrors
//   - FilesystemRetryAttempts / Success / Failures / Duration
//   - FilesystemStaleErrors
//
// Call InitializeMetrics once at startup so every label combination is
// present from the first scrape.
package metrics
