package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"crate-sync/internal/converter"
	"crate-sync/internal/filesystem"
	"crate-sync/internal/handlers"
	"crate-sync/internal/logging"
	"crate-sync/internal/metrics"
	"crate-sync/internal/middleware"
	"crate-sync/internal/rekordbox"
	"crate-sync/internal/startup"

	"github.com/gorilla/mux"
)

const (
	modeConvert = converter.ModeConvert
	modeDryRun  = converter.ModeDryRun
	modeWatch   = "watch"
)

func main() {
	startTime := time.Now()

	mode, err := parseMode(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage()
		os.Exit(2)
	}

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	if writesOutput(mode) {
		if err := startup.PrepareOutput(config.OutputPath); err != nil {
			startup.LogFatal("Output error: %v", err)
		}
	}

	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"crates":  config.CrateDir,
		"library": config.LibraryRoot,
		"output":  filepath.Dir(config.OutputPath),
	}))
	metrics.InitializeMetrics()

	conv := converter.New(converter.Options{
		CrateDir:    config.CrateDir,
		LibraryRoot: config.LibraryRoot,
		Output:      config.OutputPath,
		Product: rekordbox.Product{
			Name:    config.ProductName,
			Version: config.ProductVersion,
			Company: config.ProductName,
		},
		Workers:            config.DecodeWorkers,
		QuietPeriod:        config.QuietPeriod,
		EmitEmptyPlaylists: config.EmitEmptyPlaylists,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		startup.LogShutdownInitiated(sig.String())
		cancel()
	}()

	switch mode {
	case modeConvert:
		if _, err := conv.Convert(ctx); err != nil {
			os.Exit(1)
		}
	case modeDryRun:
		if _, err := conv.DryRun(ctx); err != nil {
			os.Exit(1)
		}
	case modeWatch:
		if err := runWatch(ctx, conv, config, startTime); err != nil {
			startup.LogFatal("Watch error: %v", err)
		}
	}
}

func parseMode(args []string) (string, error) {
	if len(args) == 0 {
		return modeConvert, nil
	}
	switch args[0] {
	case modeConvert, modeDryRun, modeWatch:
		return args[0], nil
	default:
		return "", fmt.Errorf("unknown command: %q", args[0])
	}
}

// writesOutput reports whether mode writes the export. Dry runs never touch
// the destination.
func writesOutput(mode string) bool {
	return mode != modeDryRun
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: crate-sync [convert|dry-run|watch]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  convert   Convert Serato crates to a Rekordbox XML export (default)")
	fmt.Fprintln(os.Stderr, "  dry-run   Report what would be exported without writing")
	fmt.Fprintln(os.Stderr, "  watch     Convert on every change to the crate directory")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Configuration is read from the environment; see CRATE_DIR,")
	fmt.Fprintln(os.Stderr, "LIBRARY_ROOT and OUTPUT_PATH.")
}

func runWatch(ctx context.Context, conv *converter.Converter, config *startup.Config, startTime time.Time) error {
	collector := metrics.NewCollector(conv, config.MetricsInterval)
	collector.Start()

	var srv *http.Server
	if config.StatusEnabled {
		h := handlers.New(conv, config)
		router := setupRouter(h)
		startup.LogHTTPRoutes(router, config.LogHealthChecks)

		loggingConfig := middleware.DefaultLoggingConfig()
		loggingConfig.LogHealthChecks = config.LogHealthChecks

		srv = &http.Server{
			Addr:         ":" + config.StatusPort,
			Handler:      middleware.Logger(loggingConfig)(router),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Status server error: %v", err)
			}
		}()
		startup.LogServerStarted(startup.ServerConfig{
			Port:            config.StatusPort,
			StartupDuration: time.Since(startTime),
		})
	}

	startup.LogWatcherInit(config.CrateDir, config.QuietPeriod)
	watchErr := conv.Watch(ctx, nil)

	shutdown(srv, collector)
	return watchErr
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")
	r.Handle("/metrics", h.MetricsHandler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/summary", h.GetSummary).Methods("GET")
	api.HandleFunc("/convert", h.TriggerConvert).Methods("POST")
	api.HandleFunc("/export", h.GetExport).Methods("GET")

	return r
}

func shutdown(srv *http.Server, collector *metrics.Collector) {
	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		startup.LogShutdownStep("Shutting down status server")
		if err := srv.Shutdown(ctx); err != nil {
			logging.Warn("Server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Status server stopped")
		}
	}

	startup.LogShutdownComplete()
}
