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

// Package testutil provides scripted fakes for the pipeline's external
// collaborators: generation providers and source extractors.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/contentforge/forge/internal/core/model"
	"github.com/contentforge/forge/internal/providers"
)

// FakeProvider is a scripted providers.Provider. Responses are returned in
// FIFO order; once the script is exhausted the final response repeats. All
// prompts are recorded for assertion.
type FakeProvider struct {
	mu sync.Mutex

	ProviderName string
	ModelName    string

	// Responses are consumed one per Complete call. An entry with Err set
	// fails that call.
	Responses []FakeResponse
	// PingErr, when set, makes Ping fail.
	PingErr error

	Prompts   []string
	Completes int
	next      int
}

// FakeResponse is one scripted Complete outcome.
type FakeResponse struct {
	Text string
	Err  error
}

func NewFakeProvider(name, text string) *FakeProvider {
	return &FakeProvider{
		ProviderName: name,
		ModelName:    name + "-test-model",
		Responses:    []FakeResponse{{Text: text}},
	}
}

func (f *FakeProvider) Name() string { return f.ProviderName }

func (f *FakeProvider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Prompts = append(f.Prompts, req.Prompt)
	f.Completes++

	if len(f.Responses) == 0 {
		return nil, errors.New("fake provider has no scripted responses")
	}
	resp := f.Responses[f.next]
	if f.next < len(f.Responses)-1 {
		f.next++
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &providers.CompletionResult{
		Text:         resp.Text,
		Model:        f.ModelName,
		FinishReason: "stop",
		Usage:        providers.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	}, nil
}

func (f *FakeProvider) Ping(_ context.Context) (string, error) {
	if f.PingErr != nil {
		return "", f.PingErr
	}
	return f.ModelName, nil
}

// LastPrompt returns the most recent prompt, or empty.
func (f *FakeProvider) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Prompts) == 0 {
		return ""
	}
	return f.Prompts[len(f.Prompts)-1]
}

// FakeExtractor resolves files and URLs from fixed maps. Sources missing
// from the maps fail with a per-source error, the way a real fetch failure
// would.
type FakeExtractor struct {
	FileText map[string]string
	URLText  map[string]string
}

func NewFakeExtractor() *FakeExtractor {
	return &FakeExtractor{
		FileText: make(map[string]string),
		URLText:  make(map[string]string),
	}
}

func (f *FakeExtractor) FromFile(_ context.Context, file model.UploadedFile) (string, error) {
	if text, ok := f.FileText[file.Filename]; ok {
		return text, nil
	}
	return "", fmt.Errorf("file %q is not extractable", file.Filename)
}

func (f *FakeExtractor) FromURL(_ context.Context, url string) (string, error) {
	if text, ok := f.URLText[url]; ok {
		return text, nil
	}
	return "", fmt.Errorf("fetching %q: connection refused", url)
}
