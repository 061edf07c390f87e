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

package extract

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"

	"github.com/contentforge/forge/internal/core/model"
)

// File categories reported back to clients through rejection warnings and
// stage metadata.
const (
	CategoryText        = "text"
	CategoryImage       = "image"
	CategoryVideo       = "video"
	CategoryAudio       = "audio"
	CategoryApplication = "application"
)

// textualExtensions covers text formats whose magic-number sniff comes back
// unknown. Anything here is decoded as UTF-8 text.
var textualExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".rst": true,
	".csv": true, ".tsv": true, ".json": true, ".yaml": true, ".yml": true,
	".xml": true, ".html": true, ".htm": true, ".log": true, ".srt": true, ".vtt": true,
}

// Categorize sniffs the file signature and returns the category plus the
// detected MIME type. Unknown signatures with a textual extension (or content
// that decodes cleanly as UTF-8) are classified as text.
func Categorize(filename string, data []byte) (category, mimeType string) {
	kind, _ := filetype.Match(data)
	if kind != filetype.Unknown {
		switch {
		case filetype.IsImage(data):
			return CategoryImage, kind.MIME.Value
		case filetype.IsVideo(data):
			return CategoryVideo, kind.MIME.Value
		case filetype.IsAudio(data):
			return CategoryAudio, kind.MIME.Value
		case kind == matchers.TypePdf:
			return CategoryApplication, kind.MIME.Value
		default:
			return CategoryApplication, kind.MIME.Value
		}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if textualExtensions[ext] || isMostlyText(data) {
		return CategoryText, "text/plain"
	}
	return CategoryApplication, "application/octet-stream"
}

// FileExtractor pulls plain text out of uploaded files.
type FileExtractor struct{}

func NewFileExtractor() *FileExtractor { return &FileExtractor{} }

// FromFile returns the textual content of the uploaded file. HTML files are
// stripped of markup; binary media yields a per-source error describing the
// detected category.
func (e *FileExtractor) FromFile(_ context.Context, file model.UploadedFile) (string, error) {
	category := file.Category
	if category == "" {
		category, _ = Categorize(file.Filename, file.Data)
	}
	switch category {
	case CategoryText:
		text := string(bytes.TrimPrefix(file.Data, []byte{0xEF, 0xBB, 0xBF}))
		if looksLikeHTML(file.Filename, text) {
			text = StripHTML(text)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", fmt.Errorf("file %q contains no extractable text", file.Filename)
		}
		return text, nil
	default:
		return "", fmt.Errorf("file %q is %s content; text extraction is not supported", file.Filename, category)
	}
}

func looksLikeHTML(filename, text string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".html" || ext == ".htm" {
		return true
	}
	head := strings.ToLower(text)
	if len(head) > 256 {
		head = head[:256]
	}
	return strings.Contains(head, "<!doctype html") || strings.Contains(head, "<html")
}
