package metrics

import (
	"time"

	"crate-sync/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current state of the crate directory and the export.
type Stats struct {
	CrateFiles  int
	CrateBytes  int64
	ExportBytes int64
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	LibraryCrateFiles.Set(float64(stats.CrateFiles))
	LibraryCrateBytes.Set(float64(stats.CrateBytes))
	LibraryExportBytes.Set(float64(stats.ExportBytes))

	logging.Debug("Metrics collected: crates=%d, crateBytes=%d, exportBytes=%d",
		stats.CrateFiles, stats.CrateBytes, stats.ExportBytes)
}
