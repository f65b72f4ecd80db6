// Package config provides application configuration for ratchet binaries.
//
// # Overview
//
// Environment variables configure the ratchetd server, the rendered
// artifact cache and observability; a per-project ratchet.yaml file
// configures generation itself (boundary roots, visibility policy, output
// layout). All settings have sensible defaults.
//
// # Environment Variables
//
// Server: RATCHET_HOST, RATCHET_PORT, RATCHET_READ_TIMEOUT,
// RATCHET_WRITE_TIMEOUT, RATCHET_IDLE_TIMEOUT, RATCHET_SHUTDOWN_TIMEOUT.
// Cache: RATCHET_CACHE_ENABLED, RATCHET_CACHE_MAX_ENTRIES, RATCHET_CACHE_TTL.
// Observability: RATCHET_LOG_LEVEL, RATCHET_METRICS_ENABLED.
package config
