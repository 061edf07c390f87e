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

// Package model defines the core data structures for the transformation
// pipeline. This file contains the request-side types: the input bundle a
// client submits for one transformation, the uploaded-file wrappers, and the
// validation rules applied at the boundary before any pipeline stage runs.
package model

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Boundary limits for a single transformation request. The file-size ceiling
// is the default and may be raised through configuration without changing the
// request contract.
const (
	MaxURLsPerRequest        = 10
	MaxOutputDescriptionLen  = 2000
	MaxInstructionsLen       = 5000
	MaxFeedbackLen           = 5000
	MinDurationSeconds       = 5
	MaxDurationSeconds       = 7200
	DefaultMaxFileSizeBytes  = 50 << 20
)

// ValidationError describes a request rejected at the boundary, before the
// pipeline is invoked. The field name is kept so that the HTTP layer can
// produce a precise `detail` string.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given request field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UploadedFile is one file accepted into an input bundle. Category is the
// MIME-derived grouping used by the ingestion stage to pick an extractor
// (image, video, audio, text, application). Data holds the raw bytes for the
// lifetime of the request only and is never serialized.
type UploadedFile struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Category string `json:"category"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// RejectedFile records a file refused at the boundary (for example one that
// exceeds the size ceiling). Rejections are reported per file and never block
// acceptance of the remaining valid files.
type RejectedFile struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Reason   string `json:"reason"`
}

// Warning renders the rejection the way it is surfaced on the ingestion
// stage's warning list.
func (r RejectedFile) Warning() string {
	return fmt.Sprintf("file %q rejected: %s", r.Filename, r.Reason)
}

// InputBundle is the raw material for one transformation request: uploaded
// files, free text, and source URLs, plus the output configuration. A bundle
// is constructed once per request and never mutated after submission; it is
// retained with the stored result only to support later regeneration.
type InputBundle struct {
	Files                  []UploadedFile `json:"files"`
	RejectedFiles          []RejectedFile `json:"rejected_files,omitempty"`
	TextInput              string         `json:"text_input"`
	URLs                   []string       `json:"urls"`
	OutputFormat           OutputFormat   `json:"output_format"`
	OutputDescription      string         `json:"output_description,omitempty"`
	DurationSeconds        int            `json:"duration_seconds,omitempty"`
	AdditionalInstructions string         `json:"additional_instructions,omitempty"`
	PreferredProvider      string         `json:"preferred_provider,omitempty"`
}

// HasSources reports whether at least one of text, files, or URLs is present.
func (b *InputBundle) HasSources() bool {
	return strings.TrimSpace(b.TextInput) != "" || len(b.Files) > 0 || len(b.URLs) > 0
}

// SourceCount returns the number of distinct sources in the bundle.
func (b *InputBundle) SourceCount() int {
	n := len(b.Files) + len(b.URLs)
	if strings.TrimSpace(b.TextInput) != "" {
		n++
	}
	return n
}

// Validate applies the boundary rules from the request contract. It returns a
// *ValidationError describing the first violation found, or nil. Rejected
// files do not count as sources: a bundle whose only file was refused for
// size is empty unless text or URLs were also supplied.
func (b *InputBundle) Validate() error {
	if !b.HasSources() {
		return NewValidationError("input", "at least one of files, text_input, or urls is required")
	}
	if len(b.URLs) > MaxURLsPerRequest {
		return NewValidationError("urls", fmt.Sprintf("at most %d urls per request, got %d", MaxURLsPerRequest, len(b.URLs)))
	}
	for _, raw := range b.URLs {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return NewValidationError("urls", fmt.Sprintf("malformed url %q", raw))
		}
	}
	if b.OutputFormat != "" && !b.OutputFormat.Valid() {
		return NewValidationError("output_format", fmt.Sprintf("unknown format %q", b.OutputFormat))
	}
	if utf8.RuneCountInString(b.OutputDescription) > MaxOutputDescriptionLen {
		return NewValidationError("output_description", fmt.Sprintf("exceeds %d characters", MaxOutputDescriptionLen))
	}
	if utf8.RuneCountInString(b.AdditionalInstructions) > MaxInstructionsLen {
		return NewValidationError("additional_instructions", fmt.Sprintf("exceeds %d characters", MaxInstructionsLen))
	}
	if b.DurationSeconds != 0 && (b.DurationSeconds < MinDurationSeconds || b.DurationSeconds > MaxDurationSeconds) {
		return NewValidationError("duration_seconds", fmt.Sprintf("must be between %d and %d seconds", MinDurationSeconds, MaxDurationSeconds))
	}
	if b.PreferredProvider != "" && !ValidProviderName(b.PreferredProvider) {
		return NewValidationError("preferred_provider", fmt.Sprintf("unknown provider %q", b.PreferredProvider))
	}
	return nil
}

// Normalize fills contract defaults on the bundle. It is called once by the
// orchestrator after validation succeeds.
func (b *InputBundle) Normalize() {
	if b.OutputFormat == "" {
		b.OutputFormat = FormatGenericScript
	}
	b.TextInput = strings.TrimSpace(b.TextInput)
}
