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

// Package extract turns raw input sources (uploaded files and remote URLs)
// into plain text for the transformation pipeline. Binary media is
// categorized so callers can report a meaningful rejection, but only textual
// content yields extractable text.
package extract

import (
	"context"
	"unicode/utf8"

	"github.com/contentforge/forge/internal/core/model"
)

// Extractor resolves individual sources to plain text. Each method reports a
// per-source error; the ingestion stage converts those to warnings so one bad
// source never sinks the request.
type Extractor interface {
	FromFile(ctx context.Context, file model.UploadedFile) (string, error)
	FromURL(ctx context.Context, url string) (string, error)
}

// isMostlyText reports whether the byte slice decodes as UTF-8 with a
// tolerable share of replacement runes. Files that pass the signature sniff as
// unknown still go through this gate before being treated as plain text.
func isMostlyText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	sample := data
	if len(sample) > 8192 {
		sample = sample[:8192]
	}
	invalid := 0
	for len(sample) > 0 {
		r, size := utf8.DecodeRune(sample)
		if r == utf8.RuneError && size == 1 {
			invalid++
		}
		sample = sample[size:]
	}
	return invalid*20 < min(len(data), 8192)
}
