package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"crate-sync/internal/converter"
	"crate-sync/internal/logging"
	"crate-sync/internal/rekordbox"
)

// GetSummary returns the summary of the most recent run.
func (h *Handlers) GetSummary(w http.ResponseWriter, _ *http.Request) {
	summary, ok := h.runner.LastSummary()
	if !ok {
		writeJSONError(w, "no conversion has run yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, summary)
}

// ConvertResponse is returned by TriggerConvert.
type ConvertResponse struct {
	Summary converter.Summary `json:"summary"`
	Error   string            `json:"error,omitempty"`
}

// TriggerConvert runs a conversion and waits for it. Runs started by the
// watcher and by this endpoint never overlap. The run completes even if the
// client goes away.
func (h *Handlers) TriggerConvert(w http.ResponseWriter, r *http.Request) {
	logging.Info("Conversion requested via status API")

	// A client that disconnects must not abort a run halfway.
	summary, err := h.runner.Convert(context.WithoutCancel(r.Context()))

	w.Header().Set("Content-Type", "application/json")
	response := ConvertResponse{Summary: summary}
	if err != nil {
		response.Error = err.Error()
		var de *rekordbox.DestinationError
		if errors.As(err, &de) {
			w.WriteHeader(http.StatusBadGateway)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}
	writeJSON(w, response)
}

// ExportInfo describes the export currently on disk.
type ExportInfo struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Modified  time.Time `json:"modified"`
	Version   string    `json:"version"`
	Product   string    `json:"product"`
	Tracks    int       `json:"tracks"`
	Playlists int       `json:"playlists"`
	Folders   int       `json:"folders"`
}

// GetExport parses the export file and reports what it contains.
func (h *Handlers) GetExport(w http.ResponseWriter, _ *http.Request) {
	info, err := os.Stat(h.outputPath)
	if err != nil {
		if os.IsNotExist(err) {
			writeJSONError(w, "export has not been written yet", http.StatusNotFound)
			return
		}
		writeJSONError(w, "failed to stat export", http.StatusInternalServerError)
		return
	}

	doc, err := rekordbox.ReadFile(h.outputPath)
	if err != nil {
		logging.Warn("failed to parse export %s: %v", h.outputPath, err)
		writeJSONError(w, "export is not a valid Rekordbox document", http.StatusInternalServerError)
		return
	}

	export := ExportInfo{
		Path:     h.outputPath,
		Size:     info.Size(),
		Modified: info.ModTime(),
		Version:  doc.Version,
		Product:  doc.Product.Name,
		Tracks:   doc.Collection.Entries,
	}
	countNodes(doc.Playlists.Root.Nodes, &export)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, export)
}

func countNodes(nodes []rekordbox.Node, export *ExportInfo) {
	for _, n := range nodes {
		if n.IsFolder() {
			export.Folders++
			countNodes(n.Nodes, export)
		} else {
			export.Playlists++
		}
	}
}
