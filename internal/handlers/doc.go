// Package handlers implements the status API served in watch mode.
//
// Endpoints:
//   - GET /healthz: readiness, 503 until the first conversion finished
//   - GET /livez: liveness
//   - GET /version: build information
//   - GET /api/summary: summary of the most recent run
//   - POST /api/convert: run a conversion now and return its summary
//   - GET /api/export: what the export on disk contains
//   - GET /metrics: Prometheus metrics
package handlers
