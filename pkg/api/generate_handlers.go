package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/ratchet/pkg/builder"
	"github.com/platinummonkey/ratchet/pkg/cache"
	"github.com/platinummonkey/ratchet/pkg/generator"
	"github.com/platinummonkey/ratchet/pkg/httputil"
	"github.com/platinummonkey/ratchet/pkg/normalize"
	"github.com/platinummonkey/ratchet/pkg/observability"
	"github.com/platinummonkey/ratchet/pkg/render"
	"github.com/platinummonkey/ratchet/pkg/shape"
)

// handleGenerate compiles an embedded schema document and returns the
// rendered source files
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req GenerateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if len(req.Schema) == 0 {
		httputil.WriteBadRequest(w, "missing schema document")
		return
	}

	cacheKey := cache.Key(req.Schema, cacheOptions(req.Options))
	if s.artifacts != nil {
		if files, err := s.artifacts.Get(cacheKey); err == nil {
			s.metrics.CacheHitsTotal.Inc()
			httputil.WriteJSON(w, http.StatusOK, toResponse("", true, files))
			return
		}
		s.metrics.CacheMissesTotal.Inc()
	}

	graph, err := shape.Load(req.Schema)
	if err != nil {
		s.metrics.GenerationErrorsTotal.WithLabelValues("load").Inc()
		httputil.WriteBadRequest(w, "invalid schema document: "+err.Error())
		return
	}
	if len(req.Options.Roots) > 0 {
		graph, err = shape.WithRoots(graph, req.Options.Roots)
		if err != nil {
			httputil.WriteBadRequest(w, err.Error())
			return
		}
	}

	builderConfig := builder.DefaultConfig()
	if req.Options.PublicSetters != nil {
		builderConfig.PublicSetters = *req.Options.PublicSetters
	}
	run, err := generator.NewRun(graph, &generator.Options{
		Normalize: normalize.DefaultConfig(),
		Builder:   builderConfig,
	})
	if err != nil {
		s.metrics.GenerationErrorsTotal.WithLabelValues("normalize").Inc()
		s.metrics.ObserveGeneration("http", time.Since(start), err)
		if errors.Is(err, normalize.ErrNamespaceExhausted) || errors.Is(err, normalize.ErrCannotHostConstraint) {
			httputil.WriteUnprocessable(w, err)
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}

	ctx := observability.WithRunID(r.Context(), run.ID)
	logger := s.logger.WithContext(ctx)

	renderConfig := render.DefaultConfig()
	if req.Options.Package != "" {
		renderConfig.Package = req.Options.Package
	}
	files, err := render.NewRenderer(renderConfig).RenderAll(ctx, run)
	if err != nil {
		s.metrics.GenerationErrorsTotal.WithLabelValues("render").Inc()
		s.metrics.ObserveGeneration("http", time.Since(start), err)
		logger.WithError(err).Error("render failed")
		httputil.WriteInternalError(w, err)
		return
	}

	if s.artifacts != nil {
		if err := s.artifacts.Set(cacheKey, files); err != nil {
			logger.WithError(err).Warn("failed to cache artifacts")
		}
	}

	s.metrics.ObserveGeneration("http", time.Since(start), nil)
	logger.WithField("files", len(files)).Info("generation complete")
	httputil.WriteJSON(w, http.StatusOK, toResponse(run.ID, false, files))
}

// cacheOptions flattens request options into the cache key option map
func cacheOptions(opts GenerateOptions) map[string]string {
	m := map[string]string{}
	if opts.Package != "" {
		m["package"] = opts.Package
	}
	if opts.PublicSetters != nil {
		m["public_setters"] = strconv.FormatBool(*opts.PublicSetters)
	}
	if len(opts.Roots) > 0 {
		m["roots"] = strings.Join(opts.Roots, ",")
	}
	return m
}

// toResponse converts rendered files into the wire response
func toResponse(runID string, cached bool, files []render.GeneratedFile) GenerateResponse {
	resp := GenerateResponse{
		RunID:  runID,
		Cached: cached,
		Files:  make([]GeneratedFile, 0, len(files)),
	}
	for _, f := range files {
		resp.Files = append(resp.Files, GeneratedFile{Path: f.Path, Content: string(f.Content)})
	}
	return resp
}
