package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conversion metrics
var (
	ConversionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crate_sync_conversion_runs_total",
			Help: "Total number of conversion runs",
		},
		[]string{"mode", "status"}, // mode: "convert", "dry-run"; status: "success", "error"
	)

	ConversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crate_sync_conversion_duration_seconds",
			Help:    "Conversion run duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"mode"},
	)

	ConversionIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crate_sync_conversion_running",
			Help: "Whether a conversion is currently running (1 = running, 0 = idle)",
		},
	)

	ConversionLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crate_sync_conversion_last_run_timestamp",
			Help: "Unix timestamp of the last completed conversion run",
		},
	)

	ConversionLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crate_sync_conversion_last_run_duration_seconds",
			Help: "Duration of the last conversion run in seconds",
		},
	)

	ConversionDestinationErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crate_sync_destination_errors_total",
			Help: "Total number of runs that failed to write the destination file",
		},
	)
)

// Crate metrics
var (
	CratesDecodedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crate_sync_crates_decoded_total",
			Help: "Total number of crate files decoded successfully",
		},
	)

	CrateFormatErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crate_sync_crate_format_errors_total",
			Help: "Total number of crate files skipped because they were malformed",
		},
	)

	CrateDecodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crate_sync_crate_decode_duration_seconds",
			Help:    "Time to read, decode and resolve a single crate file",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1},
		},
	)

	DecodeWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crate_sync_decode_workers",
			Help: "Number of workers used to decode crate files in the last run",
		},
	)
)

// Library metrics, describing the last export
var (
	LibraryEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crate_sync_library_entries",
			Help: "Entries in the last export by kind",
		},
		[]string{"kind"}, // "playlist", "folder", "track", "unresolved_track"
	)

	LibraryCrateFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crate_sync_library_crate_files",
			Help: "Number of crate files currently present in the crate directory",
		},
	)

	LibraryCrateBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crate_sync_library_crate_bytes",
			Help: "Total size of crate files in the crate directory in bytes",
		},
	)

	LibraryExportBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crate_sync_library_export_bytes",
			Help: "Size of the exported XML file in bytes",
		},
	)
)

// Status server metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crate_sync_http_requests_total",
			Help: "Total number of status server requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crate_sync_http_request_duration_seconds",
			Help:    "Status server request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crate_sync_http_requests_in_flight",
			Help: "Number of status server requests currently being served",
		},
	)
)

// Watcher metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crate_sync_watcher_events_total",
			Help: "Total number of filesystem events seen by the watcher",
		},
		[]string{"type", "relevant"},
	)

	WatcherTriggersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crate_sync_watcher_triggers_total",
			Help: "Total number of conversions triggered after a quiet period",
		},
	)

	WatcherCoalescedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crate_sync_watcher_coalesced_total",
			Help: "Triggers folded into an already pending follow-up run",
		},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crate_sync_watcher_errors_total",
			Help: "Total number of filesystem watcher errors",
		},
	)

	WatcherWatchedDirectories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crate_sync_watcher_watched_directories",
			Help: "Number of directories registered with the filesystem watcher",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crate_sync_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crate_sync_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crate_sync_filesystem_retry_attempts_total",
			Help: "Total number of retries after NFS stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crate_sync_filesystem_retry_success_total",
			Help: "Operations that succeeded after at least one retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crate_sync_filesystem_retry_failures_total",
			Help: "Operations that failed after exhausting all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crate_sync_filesystem_retry_duration_seconds",
			Help:    "Total duration of retried filesystem operations including backoff",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crate_sync_filesystem_stale_errors_total",
			Help: "Total number of NFS stale file handle errors observed",
		},
		[]string{"operation", "volume"},
	)
)
