// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - CRATE_DIR: Serato crate directory (default: ~/Music/_Serato_/Subcrates)
//   - LIBRARY_ROOT: Prefix for volume-relative track paths (default: /)
//   - OUTPUT_PATH: Rekordbox XML destination (default: ~/Music/_Serato_/rekordbox-export.xml)
//   - QUIET_PERIOD: Watch mode debounce as Go duration (default: 500ms)
//   - DECODE_WORKERS: Crate decode pool size (default: 2 per CPU)
//   - PRODUCT_NAME, PRODUCT_VERSION: PRODUCT element of the export
//   - EMIT_EMPTY_PLAYLISTS: Export crates without tracks as empty playlists (default: false)
//   - STATUS_ENABLED: Serve the status API in watch mode (default: true)
//   - STATUS_PORT: Status API port (default: 9090)
//   - METRICS_INTERVAL: Crate directory statistics interval (default: 1m)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: false)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//
// The crate directory must exist. Modes that write the export call
// [PrepareOutput], which creates the directory holding OUTPUT_PATH and
// checks that it is writable; a dry run skips it.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
//   - [LogWatcherInit]: Watch mode configuration
//   - [LogHTTPRoutes]: Registered status routes (debug level)
//   - [LogServerStarted]: Status endpoints and startup duration
//   - [LogShutdownInitiated], [LogShutdownComplete]: Graceful shutdown
package startup
