package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockStatsProvider struct {
	stats Stats
}

func (m *mockStatsProvider) GetStats() Stats {
	return m.stats
}

func TestNewCollector(t *testing.T) {
	provider := &mockStatsProvider{}
	collector := NewCollector(provider, 5*time.Second)

	if collector == nil {
		t.Fatal("NewCollector returned nil")
	}
	if collector.interval != 5*time.Second {
		t.Errorf("interval = %v, want 5s", collector.interval)
	}
	if collector.stopChan == nil {
		t.Error("stopChan should be initialized")
	}
}

func TestCollectorCollect(t *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{
			CrateFiles:  12,
			CrateBytes:  4096,
			ExportBytes: 20480,
		},
	}

	collector := NewCollector(provider, time.Minute)
	collector.collect()

	if got := testutil.ToFloat64(LibraryCrateFiles); got != 12 {
		t.Errorf("LibraryCrateFiles = %v, want 12", got)
	}
	if got := testutil.ToFloat64(LibraryCrateBytes); got != 4096 {
		t.Errorf("LibraryCrateBytes = %v, want 4096", got)
	}
	if got := testutil.ToFloat64(LibraryExportBytes); got != 20480 {
		t.Errorf("LibraryExportBytes = %v, want 20480", got)
	}
}

func TestCollectorNilProvider(t *testing.T) {
	collector := NewCollector(nil, time.Minute)
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("collect with nil provider panicked: %v", r)
		}
	}()
	collector.collect()
}

func TestCollectorStartStop(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{CrateFiles: 3}}
	collector := NewCollector(provider, 10*time.Millisecond)

	collector.Start()
	time.Sleep(50 * time.Millisecond)
	collector.Stop()

	if got := testutil.ToFloat64(LibraryCrateFiles); got != 3 {
		t.Errorf("LibraryCrateFiles = %v, want 3", got)
	}
}
