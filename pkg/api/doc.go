// Package api implements the HTTP API of the ratchet generation service.
//
// # Overview
//
// The server exposes a single generation endpoint plus health and metrics
// surfaces. A request carries a schema document and per-request generation
// options; the response carries the rendered source files. Results are cached
// by schema content and options so repeated requests for the same input skip
// the pipeline entirely.
//
// # Endpoints
//
//	POST /api/v1/generate   compile a schema document into source files
//	GET  /healthz           liveness probe
//	GET  /metrics           Prometheus scrape endpoint
//
// # Related Packages
//
//   - pkg/generator: the pipeline executed per request
//   - pkg/cache: the rendered artifact cache
package api
