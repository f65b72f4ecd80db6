// Package observability provides structured logging and Prometheus metrics
// for the ratchet generator and its HTTP service.
//
// # Overview
//
// Logging is JSON-structured on top of stdlib slog, with context helpers
// carrying the request ID and generation run ID. Metrics cover generation
// runs (counts, durations, shapes processed, synthetic shapes introduced),
// the artifact cache, and HTTP traffic served by ratchetd.
package observability
