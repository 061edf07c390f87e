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

package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiSafetySettings disables the default content blocking. Input to the
// pipeline is caller-provided and trusted; blocked generations surface as
// hard-to-diagnose empty completions otherwise.
var geminiSafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
}

// GeminiProvider calls the Gemini API through the official genai SDK.
type GeminiProvider struct {
	apiKey string
	model  string
	client *genai.Client
	// Health probes go through plain HTTP so they stay cheap and carry their
	// own deadline regardless of SDK internals.
	httpClient *http.Client
}

// GeminiOptions configures the Gemini client.
type GeminiOptions struct {
	APIKey string
	Model  string
}

// NewGeminiProvider creates the SDK client. The API key is required.
func NewGeminiProvider(ctx context.Context, opts GeminiOptions) (*GeminiProvider, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(opts.APIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiProvider{
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      opts.Model,
		client:     client,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Complete runs one GenerateContent call.
func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](req.Temperature),
		MaxOutputTokens: int32(req.MaxTokens),
		SafetySettings:  geminiSafetySettings,
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: req.Prompt}}},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("gemini returned an empty completion")
	}

	out := &CompletionResult{Text: text, Model: p.model}
	if len(resp.Candidates) > 0 {
		out.FinishReason = string(resp.Candidates[0].FinishReason)
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

// Ping fetches the model's metadata from the REST surface, verifying both the
// key and model name.
func (p *GeminiProvider) Ping(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s?key=%s",
		url.PathEscape(p.model), url.QueryEscape(p.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}
	return p.model, nil
}
