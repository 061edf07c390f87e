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

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/contentforge/forge/internal/core/model"
	"github.com/contentforge/forge/internal/extract"
	"github.com/contentforge/forge/internal/store"
)

// respondError maps pipeline errors to the transport contract: boundary
// violations are 400, unknown content ids are 404, everything else is 500.
// All error bodies carry a single `detail` string.
func respondError(c *gin.Context, err error) {
	var validation *model.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"detail": validation.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "content not found"})
	default:
		slog.Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}

// TransformRouter registers the transformation endpoint. The request is
// multipart form data: zero or more files plus the text, URL, and output
// configuration fields.
func TransformRouter(r *gin.RouterGroup) {
	r.POST("/transform", func(c *gin.Context) {
		bundle, err := bundleFromForm(c)
		if err != nil {
			respondError(c, err)
			return
		}

		result, err := state.pipeline.Transform(c.Request.Context(), bundle)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})
}

// regenerateRequest is the JSON body of the regeneration endpoint. Feedback
// empty or absent requests a fresh take.
type regenerateRequest struct {
	ContentID         string `json:"content_id"`
	Feedback          string `json:"feedback"`
	PreferredProvider string `json:"preferred_provider"`
}

func RegenerateRouter(r *gin.RouterGroup) {
	r.POST("/regenerate", func(c *gin.Context) {
		var req regenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "request body must be valid JSON"})
			return
		}
		if strings.TrimSpace(req.ContentID) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid content_id: content_id is required"})
			return
		}

		result, err := state.pipeline.Regenerate(c.Request.Context(), req.ContentID, req.Feedback, req.PreferredProvider)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})
}

// ProvidersRouter registers the provider listing endpoint. Listing triggers a
// health refresh so the dashboard always shows current state.
func ProvidersRouter(r *gin.RouterGroup) {
	r.GET("/providers", func(c *gin.Context) {
		state.registry.Refresh(c.Request.Context())
		defaultName, descriptors := state.registry.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"default_provider": defaultName,
			"providers":        descriptors,
		})
	})
}

// HealthRouter registers the service health endpoint: ok when the default
// provider answers its probe, degraded otherwise.
func HealthRouter(r *gin.RouterGroup) {
	r.GET("/health", func(c *gin.Context) {
		state.registry.Refresh(c.Request.Context())
		defaultName, descriptors := state.registry.Snapshot()
		status := "degraded"
		for _, d := range descriptors {
			if d.Healthy {
				status = "ok"
				break
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":           status,
			"default_provider": defaultName,
			"providers":        descriptors,
		})
	})
}

// bundleFromForm parses the multipart request into an input bundle. Oversized
// files are recorded as rejections rather than failing the request; malformed
// scalar fields fail immediately with a validation error.
func bundleFromForm(c *gin.Context) (*model.InputBundle, error) {
	maxFileSize := state.config.Pipeline.MaxFileSizeBytes
	if maxFileSize <= 0 {
		maxFileSize = model.DefaultMaxFileSizeBytes
	}

	bundle := &model.InputBundle{
		TextInput:              c.PostForm("text_input"),
		OutputFormat:           model.OutputFormat(c.PostForm("output_format")),
		OutputDescription:      c.PostForm("output_description"),
		AdditionalInstructions: c.PostForm("additional_instructions"),
		PreferredProvider:      c.PostForm("preferred_provider"),
	}

	if raw := c.PostForm("duration_seconds"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return nil, model.NewValidationError("duration_seconds", fmt.Sprintf("not a number: %q", raw))
		}
		bundle.DurationSeconds = seconds
	}

	urls, err := parseURLsField(c.PostFormArray("urls"))
	if err != nil {
		return nil, err
	}
	bundle.URLs = urls

	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, model.NewValidationError("input", "request must be multipart form data")
	}
	if form != nil {
		for _, fh := range form.File["files"] {
			if fh.Size > maxFileSize {
				bundle.RejectedFiles = append(bundle.RejectedFiles, model.RejectedFile{
					Filename: fh.Filename,
					Size:     fh.Size,
					Reason:   fmt.Sprintf("exceeds the maximum file size of %d bytes", maxFileSize),
				})
				continue
			}
			file, err := readUpload(fh)
			if err != nil {
				bundle.RejectedFiles = append(bundle.RejectedFiles, model.RejectedFile{
					Filename: fh.Filename,
					Size:     fh.Size,
					Reason:   err.Error(),
				})
				continue
			}
			bundle.Files = append(bundle.Files, file)
		}
	}

	return bundle, nil
}

// parseURLsField accepts either repeated form values or a single JSON array
// string, which is how browser FormData clients send lists.
func parseURLsField(values []string) ([]string, error) {
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var urls []string
		if err := json.Unmarshal([]byte(values[0]), &urls); err != nil {
			return nil, model.NewValidationError("urls", "not a valid JSON array of strings")
		}
		return urls, nil
	}
	var urls []string
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			urls = append(urls, s)
		}
	}
	return urls, nil
}

func readUpload(fh *multipart.FileHeader) (model.UploadedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return model.UploadedFile{}, fmt.Errorf("could not open upload: %v", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return model.UploadedFile{}, fmt.Errorf("could not read upload: %v", err)
	}

	category, mimeType := extract.Categorize(fh.Filename, data)
	return model.UploadedFile{
		Filename: fh.Filename,
		Size:     fh.Size,
		Category: category,
		MIMEType: mimeType,
		Data:     data,
	}, nil
}
