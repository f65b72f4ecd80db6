package api

import (
	json "github.com/goccy/go-json"
)

// GenerateOptions are per-request generation settings
type GenerateOptions struct {
	// Package is the package name of the emitted files.
	Package string `json:"package,omitempty"`
	// PublicSetters exposes setters accepting validated values.
	PublicSetters *bool `json:"public_setters,omitempty"`
	// Roots overrides the schema document's boundary roots.
	Roots []string `json:"roots,omitempty"`
}

// GenerateRequest is the body of POST /api/v1/generate
type GenerateRequest struct {
	// Schema is the embedded schema document.
	Schema json.RawMessage `json:"schema"`
	// Options tune the generation run.
	Options GenerateOptions `json:"options"`
}

// GeneratedFile is one emitted source file
type GeneratedFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// GenerateResponse is the body of a successful generation
type GenerateResponse struct {
	RunID  string          `json:"run_id,omitempty"`
	Cached bool            `json:"cached"`
	Files  []GeneratedFile `json:"files"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status string `json:"status"`
}
