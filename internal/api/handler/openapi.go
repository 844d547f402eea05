package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/ledgerline/dashboard/internal/api/middleware"
	"github.com/ledgerline/dashboard/internal/api/response"
)

// OpenAPIHandler serves the API description as JSON.
type OpenAPIHandler struct {
	rawYAML []byte
	version string

	once    sync.Once
	doc     []byte
	convErr error
}

// NewOpenAPIHandler creates a handler for yamlSpec. When version is set it
// replaces info.version so the document describes the running build.
func NewOpenAPIHandler(yamlSpec []byte, version string) *OpenAPIHandler {
	return &OpenAPIHandler{rawYAML: yamlSpec, version: version}
}

func (h *OpenAPIHandler) render() ([]byte, error) {
	raw, err := yaml.YAMLToJSON(h.rawYAML)
	if err != nil {
		return nil, fmt.Errorf("converting spec: %w", err)
	}
	if h.version == "" {
		return raw, nil
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding spec: %w", err)
	}
	info, _ := doc["info"].(map[string]any)
	if info == nil {
		info = map[string]any{}
		doc["info"] = info
	}
	info["version"] = h.version
	return json.Marshal(doc)
}

// ServeHTTP writes the document, rendering it on first use.
func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		h.doc, h.convErr = h.render()
	})

	if h.convErr != nil {
		slog.Error("failed to render OpenAPI document", "error", h.convErr)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render API description", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.doc); err != nil {
		slog.Error("failed to write OpenAPI response", "error", err)
	}
}
