package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"crate-sync/internal/crate"
	"crate-sync/internal/library"
	"crate-sync/internal/logging"
	"crate-sync/internal/metrics"
	"crate-sync/internal/rekordbox"
	"crate-sync/internal/watcher"
	"crate-sync/internal/workers"

	"github.com/google/uuid"
)

// Options configures a Converter.
type Options struct {
	CrateDir    string
	LibraryRoot string
	Output      string
	Product     rekordbox.Product

	// Workers caps the decode pool; zero sizes it from the CPU count.
	Workers     int
	QuietPeriod time.Duration

	EmitEmptyPlaylists bool

	// Stat overrides the track existence check.
	Stat func(name string) (os.FileInfo, error)
}

// Converter turns a Serato crate directory into a Rekordbox export. Runs
// are serialized: concurrent callers wait for the run in progress.
type Converter struct {
	opts     Options
	resolver *library.Resolver

	runMu sync.Mutex

	mu   sync.RWMutex
	last *Summary
}

// New creates a Converter.
func New(opts Options) *Converter {
	resolver := library.NewResolver(opts.LibraryRoot)
	if opts.Stat != nil {
		resolver.Stat = opts.Stat
	}
	return &Converter{opts: opts, resolver: resolver}
}

// Convert reads every crate and writes the export. Crates that cannot be
// decoded are reported in the summary and left out. A failure to write the
// export is returned as *rekordbox.DestinationError.
func (c *Converter) Convert(ctx context.Context) (Summary, error) {
	return c.run(ctx, ModeConvert)
}

// DryRun performs a conversion without touching the destination.
func (c *Converter) DryRun(ctx context.Context) (Summary, error) {
	return c.run(ctx, ModeDryRun)
}

// LastSummary returns the summary of the most recent run.
func (c *Converter) LastSummary() (Summary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return Summary{}, false
	}
	return *c.last, true
}

// Watch converts once, then again after every burst of crate changes,
// until ctx is cancelled. Conversion failures are reported to onRun and do
// not stop the loop. Only a failure to observe the crate directory ends
// Watch early, as *watcher.WatchError.
func (c *Converter) Watch(ctx context.Context, onRun func(Summary, error)) error {
	w := watcher.New(c.opts.CrateDir, watcher.Options{QuietPeriod: c.opts.QuietPeriod})
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	logging.Info("Watching %s for crate changes", c.opts.CrateDir)

	report := func() {
		summary, err := c.Convert(ctx)
		if err != nil {
			logging.Error("conversion failed: %v", err)
		}
		if onRun != nil {
			onRun(summary, err)
		}
	}

	report()
	for {
		select {
		case <-ctx.Done():
			logging.Info("Stopping crate watcher")
			return nil
		case err := <-w.Errors():
			return err
		case _, ok := <-w.Triggers():
			if !ok {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			logging.Info("Crate changes detected, converting")
			report()
		}
	}
}

type decodeResult struct {
	result   library.CrateResult
	skipped  int
	duration time.Duration
	err      error
}

func (c *Converter) run(ctx context.Context, mode string) (summary Summary, err error) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	metrics.ConversionIsRunning.Set(1)
	summary = Summary{
		RunID:     uuid.NewString(),
		Mode:      mode,
		StartedAt: time.Now(),
		Output:    c.opts.Output,
	}

	defer func() {
		summary.Duration = time.Since(summary.StartedAt)
		if err != nil {
			summary.Error = err.Error()
		}
		c.record(summary, err)
	}()

	logging.Info("Starting %s run %s from %s", mode, summary.RunID, c.opts.CrateDir)

	files, err := Discover(c.opts.CrateDir)
	if err != nil {
		return summary, err
	}
	summary.CratesFound = len(files)

	results, err := c.decodeAll(ctx, files)
	if err != nil {
		return summary, err
	}

	// Fold in discovery order so the output never depends on which worker
	// finished first.
	crates := make([]library.CrateResult, 0, len(results))
	for i, r := range results {
		metrics.CrateDecodeDuration.Observe(r.duration.Seconds())
		if r.err != nil {
			metrics.CrateFormatErrorsTotal.Inc()
			logging.Warn("skipping crate %s: %v", files[i].Path, r.err)
			summary.FormatErrors = append(summary.FormatErrors, newCrateError(files[i].Path, r.err))
			continue
		}
		metrics.CratesDecodedTotal.Inc()
		summary.CratesDecoded++
		summary.SkippedTracks += r.skipped
		crates = append(crates, r.result)
	}

	tree, treeErrs := library.BuildTree(crates)
	for _, e := range treeErrs {
		metrics.CrateFormatErrorsTotal.Inc()
		logging.Warn("skipping crate: %v", e)
		var fe *crate.FormatError
		file := ""
		if errors.As(e, &fe) {
			file = fe.File
		}
		summary.CratesDecoded--
		summary.FormatErrors = append(summary.FormatErrors, newCrateError(file, e))
	}

	mapping := library.Map(tree, library.MapOptions{EmitEmptyPlaylists: c.opts.EmitEmptyPlaylists})
	summary.Playlists = mapping.Playlists
	summary.Folders = mapping.Folders
	summary.EmptyCrates = mapping.EmptyCrates
	summary.Breakdown = mapping.Breakdown
	summary.Tracks = tree.Registry.Len()
	summary.UnresolvedTracks = tree.Registry.Unresolved()

	metrics.LibraryEntries.WithLabelValues("playlist").Set(float64(mapping.Playlists))
	metrics.LibraryEntries.WithLabelValues("folder").Set(float64(mapping.Folders))
	metrics.LibraryEntries.WithLabelValues("track").Set(float64(summary.Tracks))
	metrics.LibraryEntries.WithLabelValues("unresolved_track").Set(float64(summary.UnresolvedTracks))

	doc := rekordbox.Build(tree, mapping, c.opts.Product)

	if mode == ModeDryRun {
		data, err := rekordbox.Marshal(doc)
		if err != nil {
			return summary, fmt.Errorf("encode export: %w", err)
		}
		summary.Bytes = int64(len(data))
		return summary, nil
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	n, err := rekordbox.Write(c.opts.Output, doc)
	if err != nil {
		metrics.ConversionDestinationErrors.Inc()
		return summary, err
	}
	summary.Written = true
	summary.Bytes = n
	metrics.LibraryExportBytes.Set(float64(n))

	return summary, nil
}

// decodeAll decodes and resolves files on a worker pool. Results are
// indexed by position in files.
func (c *Converter) decodeAll(ctx context.Context, files []CrateFile) ([]decodeResult, error) {
	results := make([]decodeResult, len(files))
	if len(files) == 0 {
		return results, nil
	}

	numWorkers := workers.ForJobs(len(files), c.opts.Workers)
	metrics.DecodeWorkers.Set(float64(numWorkers))
	logging.Debug("decoding %d crates with %d workers", len(files), numWorkers)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = c.decode(files[idx])
			}
		}()
	}

	var err error
feed:
	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return results, err
}

func (c *Converter) decode(f CrateFile) decodeResult {
	start := time.Now()
	records, err := crate.DecodeFile(f.Path)
	if err != nil {
		return decodeResult{err: err, duration: time.Since(start)}
	}

	resolved := c.resolver.Resolve(records)
	logging.Debug("decoded %s (%s): %d tracks", filepath.Base(f.Path), crate.Version(records), len(resolved.Tracks))

	return decodeResult{
		result: library.CrateResult{
			File:     f.Path,
			Name:     f.Name,
			Segments: f.Segments,
			Tracks:   resolved.Tracks,
		},
		skipped:  resolved.Skipped,
		duration: time.Since(start),
	}
}

func (c *Converter) record(summary Summary, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ConversionRunsTotal.WithLabelValues(summary.Mode, status).Inc()
	metrics.ConversionDuration.WithLabelValues(summary.Mode).Observe(summary.Duration.Seconds())
	metrics.ConversionLastRunTimestamp.Set(float64(summary.StartedAt.Unix()))
	metrics.ConversionLastRunDuration.Set(summary.Duration.Seconds())
	metrics.ConversionIsRunning.Set(0)

	c.mu.Lock()
	c.last = &summary
	c.mu.Unlock()

	if err != nil {
		logging.Error("%s run %s failed after %v: %v", summary.Mode, summary.RunID, summary.Duration, err)
	} else if summary.Written {
		logging.Info("Finished writing %s in %v", summary.Output, summary.Duration)
	}
	for _, line := range summary.Lines() {
		logging.Info("%s", line)
	}
}

// GetStats reports the size of the crate directory and the current export.
func (c *Converter) GetStats() metrics.Stats {
	var stats metrics.Stats
	files, err := Discover(c.opts.CrateDir)
	if err != nil {
		logging.Debug("stats: %v", err)
	}
	stats.CrateFiles = len(files)
	for _, f := range files {
		stats.CrateBytes += f.Size
	}
	if info, err := os.Stat(c.opts.Output); err == nil {
		stats.ExportBytes = info.Size()
	}
	return stats
}
