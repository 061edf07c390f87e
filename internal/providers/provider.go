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

// Package providers contains the generation backends and the registry that
// tracks their health. Each backend implements the Provider interface: a
// single text-completion call plus a lightweight health probe. The pipeline's
// analysis and generation stages are written against this interface only, so
// tests substitute scripted fakes.
package providers

import "context"

// CompletionRequest is one prompt sent to a generation backend.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Usage reports the token accounting for one completion, as far as the
// backend exposes it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResult is the outcome of one completion call.
type CompletionResult struct {
	Text         string
	Model        string
	FinishReason string
	Usage        Usage
}

// Provider is one configured generation backend.
type Provider interface {
	// Name returns the registry name of the backend (ollama, openai,
	// anthropic, gemini).
	Name() string

	// Complete sends one prompt and returns the generated text with usage
	// accounting. Implementations honor ctx cancellation and deadlines.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)

	// Ping probes the backend cheaply and returns the active model name.
	// Ping is called by the registry's explicit refresh, never inline on the
	// generation path.
	Ping(ctx context.Context) (string, error)
}
