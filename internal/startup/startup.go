package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"crate-sync/internal/logging"
	"crate-sync/internal/workers"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	CrateDir    string
	LibraryRoot string
	OutputPath  string

	QuietPeriod     time.Duration
	DecodeWorkers   int
	MetricsInterval time.Duration

	ProductName    string
	ProductVersion string

	EmitEmptyPlaylists bool

	StatusEnabled   bool
	StatusPort      string
	LogHealthChecks bool
}

// Defaults used when the environment leaves a setting unset.
const (
	DefaultQuietPeriod     = 500 * time.Millisecond
	DefaultMetricsInterval = time.Minute
	DefaultProductName     = "crate-sync"
	DefaultStatusPort      = "9090"
)

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	home, err := os.UserHomeDir()
	if err != nil {
		logging.Warn("  Could not determine home directory: %v", err)
		home = "."
	}
	seratoDir := filepath.Join(home, "Music", "_Serato_")

	crateDir := getEnv("CRATE_DIR", filepath.Join(seratoDir, "Subcrates"))
	libraryRoot := getEnv("LIBRARY_ROOT", "/")
	outputPath := getEnv("OUTPUT_PATH", filepath.Join(seratoDir, "rekordbox-export.xml"))
	quietPeriodStr := getEnv("QUIET_PERIOD", DefaultQuietPeriod.String())
	metricsIntervalStr := getEnv("METRICS_INTERVAL", DefaultMetricsInterval.String())
	decodeWorkers := getEnvInt(workers.OverrideEnv, 0)
	productName := getEnv("PRODUCT_NAME", DefaultProductName)
	productVersion := getEnv("PRODUCT_VERSION", Version)
	emitEmpty := getEnvBool("EMIT_EMPTY_PLAYLISTS", false)
	statusEnabled := getEnvBool("STATUS_ENABLED", true)
	statusPort := getEnv("STATUS_PORT", DefaultStatusPort)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", false)

	logging.Info("  CRATE_DIR:            %s", crateDir)
	logging.Info("  LIBRARY_ROOT:         %s", libraryRoot)
	logging.Info("  OUTPUT_PATH:          %s", outputPath)
	logging.Info("  QUIET_PERIOD:         %s", quietPeriodStr)
	logging.Info("  DECODE_WORKERS:       %s", workerString(decodeWorkers))
	logging.Info("  PRODUCT_NAME:         %s", productName)
	logging.Info("  PRODUCT_VERSION:      %s", productVersion)
	logging.Info("  EMIT_EMPTY_PLAYLISTS: %v", emitEmpty)
	logging.Info("  STATUS_ENABLED:       %v", statusEnabled)
	logging.Info("  STATUS_PORT:          %s", statusPort)
	logging.Info("  METRICS_INTERVAL:     %s", metricsIntervalStr)
	logging.Info("  LOG_HEALTH_CHECKS:    %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:            %s", logging.GetLevel())

	quietPeriod, err := time.ParseDuration(quietPeriodStr)
	if err != nil || quietPeriod <= 0 {
		logging.Warn("  Invalid QUIET_PERIOD, using default: %s", DefaultQuietPeriod)
		quietPeriod = DefaultQuietPeriod
	}

	metricsInterval, err := time.ParseDuration(metricsIntervalStr)
	if err != nil || metricsInterval <= 0 {
		logging.Warn("  Invalid METRICS_INTERVAL, using default: %s", DefaultMetricsInterval)
		metricsInterval = DefaultMetricsInterval
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	crateDir, err = filepath.Abs(crateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve crate directory path: %w", err)
	}
	logging.Info("  Crate directory (absolute): %s", crateDir)

	outputPath, err = filepath.Abs(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output path: %w", err)
	}
	logging.Info("  Output file (absolute):     %s", outputPath)

	if err := checkDirectory(crateDir, "crate"); err != nil {
		return nil, fmt.Errorf("crate directory error: %w", err)
	}

	return &Config{
		CrateDir:           crateDir,
		LibraryRoot:        libraryRoot,
		OutputPath:         outputPath,
		QuietPeriod:        quietPeriod,
		DecodeWorkers:      decodeWorkers,
		MetricsInterval:    metricsInterval,
		ProductName:        productName,
		ProductVersion:     productVersion,
		EmitEmptyPlaylists: emitEmpty,
		StatusEnabled:      statusEnabled,
		StatusPort:         statusPort,
		LogHealthChecks:    logHealthChecks,
	}, nil
}

func workerString(n int) string {
	if n <= 0 {
		return "auto"
	}
	return strconv.Itoa(n)
}

// LogWatcherInit logs watch mode initialization
func LogWatcherInit(crateDir string, quietPeriod time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("WATCHER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Crate directory: %s", crateDir)
	logging.Info("  Quiet period:    %v", quietPeriod)
	logging.Info("  Starting watcher...")
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("STATUS SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	if logHealthChecks {
		logging.Info("  Health check logging: ON")
	} else {
		logging.Info("  Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	StartupDuration time.Duration
}

// LogServerStarted logs the status server endpoints
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("STATUS SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Summary:       http://localhost:%s/api/summary", config.Port)
	logging.Info("    Convert:       POST http://localhost:%s/api/convert", config.Port)
	logging.Info("    Health:        http://localhost:%s/healthz", config.Port)
	logging.Info("    Metrics:       http://localhost:%s/metrics", config.Port)
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop watching")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
                  __
  ______________ _/ /____        _______  ______  _____
 / ___/ ___/ __ '/ __/ _ \______/ ___/ / / / __ \/ ___/
/ /__/ /  / /_/ / /_/  __/_____(__  ) /_/ / / / / /__
\___/_/   \__,_/\__/\___/     /____/\__, /_/ /_/\___/
                                   /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

// PrepareOutput creates the directory that will hold the export at
// outputPath and checks that it accepts new files. Only modes that write
// the export call it; a dry run leaves the destination alone.
func PrepareOutput(outputPath string) error {
	outputDir := filepath.Dir(outputPath)
	logging.Info("  Output directory: %s", outputDir)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("output directory error: %w", err)
	}
	if err := checkDirectory(outputDir, "output"); err != nil {
		return fmt.Errorf("output directory error: %w", err)
	}
	logging.Debug("  Testing output directory write access...")
	if err := testWriteAccess(outputDir); err != nil {
		return fmt.Errorf("output directory is not writable: %w", err)
	}
	logging.Info("  [OK] Output directory is writable")
	return nil
}

// checkDirectory verifies that path is an existing directory. The crate
// directory is never created: a missing one usually means the wrong volume
// or user.
func checkDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")

	if name == "crate" && logging.IsDebugEnabled() {
		entries, err := os.ReadDir(path)
		if err == nil {
			crates := 0
			for _, e := range entries {
				if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".crate") {
					crates++
				}
			}
			logging.Debug("    Contents: %d crate files (top level)", crates)
		}
	}

	return nil
}

func testWriteAccess(dir string) error {
	f, err := os.CreateTemp(dir, ".write-test-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		logging.Warn("failed to close write test file %s: %v", name, err)
	}
	if err := os.Remove(name); err != nil {
		logging.Warn("failed to remove write test file %s: %v", name, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
