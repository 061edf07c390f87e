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
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/contentforge/forge/internal/core/model"
)

const (
	defaultFetchTimeout = 30 * time.Second
	// maxFetchBytes caps how much of a remote document is read. Pages larger
	// than this are truncated, not rejected.
	maxFetchBytes = 5 << 20
	fetchUserAgent = "forge-transform/1.0"
)

// URLFetcher retrieves remote documents over HTTP and reduces them to plain
// text.
type URLFetcher struct {
	client *http.Client
}

func NewURLFetcher(timeout time.Duration) *URLFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &URLFetcher{client: &http.Client{Timeout: timeout}}
}

// FromURL fetches the document and returns its text. HTML responses are
// stripped of markup; non-textual content types yield a per-source error.
func (f *URLFetcher) FromURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("url %q is not fetchable: %w", url, err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html, text/plain, application/json;q=0.9, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetching %q: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", url, err)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	switch {
	case strings.Contains(contentType, "html"):
		text := strings.TrimSpace(StripHTML(string(body)))
		if text == "" {
			return "", fmt.Errorf("url %q produced no extractable text", url)
		}
		return text, nil
	case strings.Contains(contentType, "text/"), strings.Contains(contentType, "json"),
		strings.Contains(contentType, "xml"), contentType == "":
		if !isMostlyText(body) {
			return "", fmt.Errorf("url %q returned binary content", url)
		}
		text := strings.TrimSpace(string(body))
		if text == "" {
			return "", fmt.Errorf("url %q produced no extractable text", url)
		}
		return text, nil
	default:
		return "", fmt.Errorf("url %q returned unsupported content type %q", url, contentType)
	}
}

// DefaultExtractor is the production Extractor: file uploads via signature
// sniffing, URLs via HTTP fetch.
type DefaultExtractor struct {
	files *FileExtractor
	web   *URLFetcher
}

func NewDefaultExtractor(fetchTimeout time.Duration) *DefaultExtractor {
	return &DefaultExtractor{
		files: NewFileExtractor(),
		web:   NewURLFetcher(fetchTimeout),
	}
}

func (e *DefaultExtractor) FromFile(ctx context.Context, file model.UploadedFile) (string, error) {
	return e.files.FromFile(ctx, file)
}

func (e *DefaultExtractor) FromURL(ctx context.Context, url string) (string, error) {
	return e.web.FromURL(ctx, url)
}
