package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, mode := range []string{"convert", "dry-run"} {
		ConversionRunsTotal.WithLabelValues(mode, "success")
		ConversionRunsTotal.WithLabelValues(mode, "error")
		ConversionDuration.WithLabelValues(mode)
	}

	for _, kind := range []string{"playlist", "folder", "track", "unresolved_track"} {
		LibraryEntries.WithLabelValues(kind)
	}

	for _, eventType := range []string{"create", "write", "remove", "rename", "chmod", "unknown"} {
		WatcherEventsTotal.WithLabelValues(eventType, "true")
		WatcherEventsTotal.WithLabelValues(eventType, "false")
	}

	volumes := []string{"crates", "library", "output", "unknown"}
	for _, vol := range volumes {
		for _, op := range []string{"read", "write", "stat", "readdir", "rename"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
		}
		for _, op := range []string{"stat", "read"} {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}
}
