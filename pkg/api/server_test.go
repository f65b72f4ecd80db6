package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/ratchet/pkg/config"
	"github.com/platinummonkey/ratchet/pkg/observability"
)

const sampleSchema = `{
	"roots": ["User"],
	"shapes": [
		{
			"name": "User",
			"kind": "structure",
			"members": [
				{"name": "age", "target": "Age", "required": true},
				{"name": "note", "target": "Str"}
			]
		},
		{"name": "Age", "kind": "scalar", "scalar": "integer", "range": {"min": 0, "max": 150}},
		{"name": "Str", "kind": "scalar", "scalar": "string"}
	]
}`

func newTestServer(t *testing.T, cacheEnabled bool) *Server {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0"},
		Cache:  config.CacheConfig{Enabled: cacheEnabled, MaxEntries: 16, TTL: time.Minute},
		Observability: config.ObservabilityConfig{
			LogLevel:       observability.ErrorLevel,
			MetricsEnabled: true,
		},
	}
	logger := observability.NewLogger(cfg.Observability.LogLevel, io.Discard)
	return NewServer(cfg, logger)
}

func postGenerate(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/generate", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, false)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleGenerate(t *testing.T) {
	srv := newTestServer(t, false)
	rec := postGenerate(t, srv, `{"schema": `+sampleSchema+`}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.False(t, resp.Cached)
	require.NotEmpty(t, resp.Files)

	var found bool
	for _, f := range resp.Files {
		if f.Path == "model/newtypes.go" {
			found = true
			assert.Contains(t, f.Content, "type Age int32")
			assert.Contains(t, f.Content, "func NewAge(v int32) (Age, error)")
		}
	}
	assert.True(t, found, "expected model/newtypes.go in %v", resp.Files)
}

func TestHandleGenerate_PackageOption(t *testing.T) {
	srv := newTestServer(t, false)
	rec := postGenerate(t, srv, `{"schema": `+sampleSchema+`, "options": {"package": "gen"}}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Files)
	for _, f := range resp.Files {
		assert.Contains(t, f.Content, "package gen")
	}
}

func TestHandleGenerate_Cached(t *testing.T) {
	srv := newTestServer(t, true)
	body := `{"schema": ` + sampleSchema + `}`

	first := postGenerate(t, srv, body)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	var firstResp GenerateResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))
	assert.False(t, firstResp.Cached)

	second := postGenerate(t, srv, body)
	require.Equal(t, http.StatusOK, second.Code)
	var secondResp GenerateResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondResp))
	assert.True(t, secondResp.Cached)
	assert.Equal(t, len(firstResp.Files), len(secondResp.Files))

	// Different options miss the cache.
	third := postGenerate(t, srv, `{"schema": `+sampleSchema+`, "options": {"package": "gen"}}`)
	require.Equal(t, http.StatusOK, third.Code)
	var thirdResp GenerateResponse
	require.NoError(t, json.Unmarshal(third.Body.Bytes(), &thirdResp))
	assert.False(t, thirdResp.Cached)
}

func TestHandleGenerate_Errors(t *testing.T) {
	srv := newTestServer(t, false)

	t.Run("invalid json body", func(t *testing.T) {
		rec := postGenerate(t, srv, `{broken`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing schema", func(t *testing.T) {
		rec := postGenerate(t, srv, `{"options": {}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing schema")
	})

	t.Run("invalid schema document", func(t *testing.T) {
		rec := postGenerate(t, srv, `{"schema": {"shapes": [{"name": "X", "kind": "nonsense"}]}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid schema document")
	})

	t.Run("unknown root override", func(t *testing.T) {
		rec := postGenerate(t, srv, `{"schema": `+sampleSchema+`, "options": {"roots": ["Missing"]}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unhostable constraint override", func(t *testing.T) {
		schema := `{
			"roots": ["A"],
			"shapes": [
				{
					"name": "A",
					"kind": "structure",
					"members": [{"name": "b", "target": "B", "range": {"min": 1}}]
				},
				{"name": "B", "kind": "structure", "members": []}
			]
		}`
		rec := postGenerate(t, srv, `{"schema": `+schema+`}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, false)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ratchet_")
}
