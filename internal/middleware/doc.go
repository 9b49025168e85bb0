// Package middleware provides HTTP middleware for the status server.
//
// It includes:
//   - Request logging in W3C Extended Log Format, with health probes
//     optionally filtered out
//   - Prometheus request metrics labelled by route template
package middleware
