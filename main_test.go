package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"crate-sync/internal/converter"
	"crate-sync/internal/handlers"
	"crate-sync/internal/metrics"
	"crate-sync/internal/startup"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		args    []string
		want    string
		wantErr bool
	}{
		{nil, modeConvert, false},
		{[]string{"convert"}, modeConvert, false},
		{[]string{"dry-run"}, modeDryRun, false},
		{[]string{"watch", "--ignored"}, modeWatch, false},
		{[]string{"sync"}, "", true},
	}
	for _, tt := range tests {
		got, err := parseMode(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMode(%q) error = %v, wantErr %v", tt.args, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseMode(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestWritesOutput(t *testing.T) {
	tests := []struct {
		mode string
		want bool
	}{
		{modeConvert, true},
		{modeWatch, true},
		{modeDryRun, false},
	}
	for _, tt := range tests {
		if got := writesOutput(tt.mode); got != tt.want {
			t.Errorf("writesOutput(%q) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestConverterProvidesStats(_ *testing.T) {
	var _ metrics.StatsProvider = (*converter.Converter)(nil)
	var _ handlers.Runner = (*converter.Converter)(nil)
}

func TestSetupRouter(t *testing.T) {
	dir := t.TempDir()
	conv := converter.New(converter.Options{CrateDir: dir, Output: dir + "/export.xml"})
	router := setupRouter(handlers.New(conv, &startup.Config{OutputPath: dir + "/export.xml"}))

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/livez", http.StatusOK},
		{"GET", "/healthz", http.StatusServiceUnavailable},
		{"GET", "/version", http.StatusOK},
		{"GET", "/metrics", http.StatusOK},
		{"GET", "/api/summary", http.StatusNotFound},
		{"GET", "/api/export", http.StatusNotFound},
		{"POST", "/api/convert", http.StatusOK},
		{"GET", "/api/summary", http.StatusOK},
		{"GET", "/healthz", http.StatusOK},
		{"GET", "/api/export", http.StatusOK},
		{"GET", "/api/convert", http.StatusMethodNotAllowed},
		{"GET", "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, http.NoBody))
		if w.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, w.Code, tt.want)
		}
	}

	routes, err := startup.GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}
	if len(routes) == 0 {
		t.Error("no routes registered")
	}
}
