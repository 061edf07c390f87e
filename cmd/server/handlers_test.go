// Copyright 2025 Content Forge, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// HTTP-level tests for the transformation endpoints: multipart parsing, the
// boundary rejections, and the error-to-status mapping.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/contentforge/forge/internal/core/model"
	"github.com/contentforge/forge/internal/core/workflow"
	"github.com/contentforge/forge/internal/providers"
	"github.com/contentforge/forge/internal/store"
	"github.com/contentforge/forge/internal/testutil"
)

// testScript is long enough to clear the quality stage's short-script floor.
var testScript = strings.TrimSpace(strings.Repeat("word ", 120))

// setupTestServer wires the global state with fakes and returns the router
// plus the generator for prompt assertions. The file-size ceiling is set low
// so oversize rejection is testable with tiny payloads.
func setupTestServer(t *testing.T) (*gin.Engine, *testutil.FakeProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testutil.TestConfig()
	cfg.Pipeline.MaxFileSizeBytes = 64

	generator := testutil.NewFakeProvider("ollama", testScript)
	registry := providers.NewRegistry("ollama")
	registry.Register(generator)
	registry.Refresh(context.Background())

	extractor := testutil.NewFakeExtractor()
	extractor.FileText["notes.txt"] = "file content"

	memStore := store.NewMemoryStore()
	pipeline, err := workflow.New(cfg, registry, nil, extractor, memStore)
	assert.NoError(t, err)

	state = &StateManager{
		config:   cfg,
		registry: registry,
		store:    memStore,
		pipeline: pipeline,
	}

	r := gin.New()
	apiV1 := r.Group("/api/v1")
	TransformRouter(apiV1)
	RegenerateRouter(apiV1)
	ProvidersRouter(apiV1)
	HealthRouter(apiV1)
	return r, generator
}

// multipartBody builds a multipart form with scalar fields and named files.
func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		assert.NoError(t, w.WriteField(k, v))
	}
	for name, data := range files {
		fw, err := w.CreateFormFile("files", name)
		assert.NoError(t, err)
		_, err = fw.Write(data)
		assert.NoError(t, err)
	}
	assert.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func doRequest(r *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestTransformEndpoint(t *testing.T) {
	r, _ := setupTestServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"text_input":    "the source text",
		"output_format": "blog_post",
	}, nil)
	rec := doRequest(r, http.MethodPost, "/api/v1/transform", body, contentType)

	assert.Equal(t, http.StatusOK, rec.Code)

	var result model.TransformationResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, model.FormatBlogPost, result.OutputFormat)
	assert.NotNil(t, result.GeneratedScript)
	assert.NotEmpty(t, result.ContentID)
}

// TestTransformEmptyRequestIs400 verifies the boundary mapping: a bundle
// with no sources is a validation failure with a detail body.
func TestTransformEmptyRequestIs400(t *testing.T) {
	r, _ := setupTestServer(t)

	body, contentType := multipartBody(t, map[string]string{}, nil)
	rec := doRequest(r, http.MethodPost, "/api/v1/transform", body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errBody map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Contains(t, errBody["detail"], "at least one")
}

func TestTransformInvalidFormatIs400(t *testing.T) {
	r, _ := setupTestServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"text_input":    "text",
		"output_format": "interpretive_dance",
	}, nil)
	rec := doRequest(r, http.MethodPost, "/api/v1/transform", body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransformBadDurationIs400(t *testing.T) {
	r, _ := setupTestServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"text_input":       "text",
		"duration_seconds": "five minutes",
	}, nil)
	rec := doRequest(r, http.MethodPost, "/api/v1/transform", body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestTransformOversizeFileIsRejectedNotFatal verifies that a file over the
// configured ceiling becomes a per-file rejection warning while the request
// succeeds on the remaining sources.
func TestTransformOversizeFileIsRejectedNotFatal(t *testing.T) {
	r, _ := setupTestServer(t)

	body, contentType := multipartBody(t,
		map[string]string{"text_input": "still have text"},
		map[string][]byte{"big.txt": bytes.Repeat([]byte("x"), 200)})
	rec := doRequest(r, http.MethodPost, "/api/v1/transform", body, contentType)

	assert.Equal(t, http.StatusOK, rec.Code)

	var result model.TransformationResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)

	ingestion := result.StageByName(model.StageIngestion)
	assert.NotNil(t, ingestion)
	assert.Equal(t, 1, len(ingestion.Warnings))
	assert.Contains(t, ingestion.Warnings[0], "big.txt")
}

// TestTransformURLsAsJSONArray verifies the FormData convention of sending
// the URL list as one JSON-encoded field.
func TestTransformURLsAsJSONArray(t *testing.T) {
	r, _ := setupTestServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"urls": `["https://example.com/a", "https://example.com/b"]`,
	}, nil)
	rec := doRequest(r, http.MethodPost, "/api/v1/transform", body, contentType)

	// Both URLs are unknown to the fake extractor, so ingestion fails, but
	// the request itself parsed: a pipeline failure result, not a 400.
	assert.Equal(t, http.StatusOK, rec.Code)

	var result model.TransformationResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, 2, len(result.StageByName(model.StageIngestion).Warnings))
}

func TestRegenerateEndpoint(t *testing.T) {
	r, generator := setupTestServer(t)

	// Seed a parent through the transform endpoint.
	body, contentType := multipartBody(t, map[string]string{"text_input": "the source"}, nil)
	rec := doRequest(r, http.MethodPost, "/api/v1/transform", body, contentType)
	assert.Equal(t, http.StatusOK, rec.Code)

	var parent model.TransformationResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parent))

	reqBody, _ := json.Marshal(map[string]string{
		"content_id": parent.ContentID,
		"feedback":   "punchier opening",
	})
	rec = doRequest(r, http.MethodPost, "/api/v1/regenerate", bytes.NewBuffer(reqBody), "application/json")

	assert.Equal(t, http.StatusOK, rec.Code)

	var child model.TransformationResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &child))
	assert.Equal(t, model.RegenerationFeedbackRevision, child.RegenerationType)
	assert.NotEqual(t, parent.ContentID, child.ContentID)
	assert.Contains(t, generator.LastPrompt(), "punchier opening")
}

func TestRegenerateUnknownIdIs404(t *testing.T) {
	r, _ := setupTestServer(t)

	reqBody, _ := json.Marshal(map[string]string{"content_id": "no-such-id"})
	rec := doRequest(r, http.MethodPost, "/api/v1/regenerate", bytes.NewBuffer(reqBody), "application/json")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegenerateMissingIdIs400(t *testing.T) {
	r, _ := setupTestServer(t)

	reqBody, _ := json.Marshal(map[string]string{"feedback": "anything"})
	rec := doRequest(r, http.MethodPost, "/api/v1/regenerate", bytes.NewBuffer(reqBody), "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProvidersEndpoint(t *testing.T) {
	r, _ := setupTestServer(t)

	rec := doRequest(r, http.MethodGet, "/api/v1/providers", bytes.NewBuffer(nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		DefaultProvider string                 `json:"default_provider"`
		Providers       []providers.Descriptor `json:"providers"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ollama", resp.DefaultProvider)
	assert.Equal(t, 1, len(resp.Providers))
	assert.True(t, resp.Providers[0].Healthy)
}

func TestHealthEndpoint(t *testing.T) {
	r, generator := setupTestServer(t)

	rec := doRequest(r, http.MethodGet, "/api/v1/health", bytes.NewBuffer(nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])

	// A failing default provider degrades the service status.
	generator.PingErr = context.DeadlineExceeded
	rec = doRequest(r, http.MethodGet, "/api/v1/health", bytes.NewBuffer(nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
}
