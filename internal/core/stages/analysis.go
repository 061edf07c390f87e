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

package stages

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/contentforge/forge/internal/core/cor"
	"github.com/contentforge/forge/internal/core/model"
	"github.com/contentforge/forge/internal/providers"
)

// analysisContentLimit caps how much source text is sent for semantic
// analysis. The essence of a document is in its head; sending megabytes only
// burns tokens.
const analysisContentLimit = 24_000

// AnalysisCommand asks its provider for a semantic summary of the extracted
// content. The stage takes a concrete provider, not the registry: analysis is
// a background enrichment, and the operator pins it to a predictable (usually
// cheap, local) backend rather than letting it follow the caller's provider
// preference. Any failure here is recorded but never blocks generation.
type AnalysisCommand struct {
	cor.BaseCommand
	provider  providers.Provider
	prompt    *template.Template
	maxTokens int
	timeout   time.Duration
}

type analysisPromptData struct {
	ExampleJSON string
	Content     string
}

func NewAnalysisCommand(provider providers.Provider, promptText string, maxTokens int, timeout time.Duration) (*AnalysisCommand, error) {
	tmpl, err := template.New("analysis").Parse(promptText)
	if err != nil {
		return nil, fmt.Errorf("parse analysis prompt template: %w", err)
	}
	return &AnalysisCommand{
		BaseCommand: *cor.NewBaseCommand(model.StageAnalysis),
		provider:    provider,
		prompt:      tmpl,
		maxTokens:   maxTokens,
		timeout:     timeout,
	}, nil
}

func (c *AnalysisCommand) IsExecutable(chCtx cor.Context) bool {
	return chCtx != nil && chCtx.GetContext() != nil &&
		c.provider != nil && chCtx.Get(KeyExtractedContent) != nil
}

func (c *AnalysisCommand) Execute(chCtx cor.Context) {
	name := c.GetName()
	content := chCtx.Get(KeyExtractedContent).(string)
	if len(content) > analysisContentLimit {
		content = content[:analysisContentLimit]
		chCtx.AddWarning(name, fmt.Sprintf("source content truncated to %d bytes for analysis", analysisContentLimit))
	}

	ctx := chCtx.GetContext()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	example, err := json.MarshalIndent(model.GetExampleSemanticSummary(), "", "  ")
	if err != nil {
		chCtx.AddError(name, fmt.Errorf("render example summary: %w", err))
		c.GetErrorCounter().Add(ctx, 1)
		return
	}

	var prompt bytes.Buffer
	if err := c.prompt.Execute(&prompt, analysisPromptData{
		ExampleJSON: string(example),
		Content:     content,
	}); err != nil {
		chCtx.AddError(name, fmt.Errorf("render analysis prompt: %w", err))
		c.GetErrorCounter().Add(ctx, 1)
		return
	}

	result, err := c.provider.Complete(ctx, providers.CompletionRequest{
		Prompt:      prompt.String(),
		MaxTokens:   c.maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		chCtx.AddError(name, fmt.Errorf("semantic analysis failed: %w", err))
		c.GetErrorCounter().Add(ctx, 1)
		return
	}

	summary, err := parseSemanticSummary(result.Text)
	if err != nil {
		chCtx.AddError(name, err)
		c.GetErrorCounter().Add(ctx, 1)
		return
	}

	chCtx.AddMetadata(name, "analysis_provider", c.provider.Name())
	if result.Model != "" {
		chCtx.AddMetadata(name, "analysis_model", result.Model)
	}
	chCtx.Add(KeySemanticSummary, summary)
	c.GetSuccessCounter().Add(ctx, 1)
}

// parseSemanticSummary decodes the provider's response into a summary.
// Models wrap JSON in code fences or prose often enough that the parser
// extracts the outermost object instead of trusting the raw text.
func parseSemanticSummary(text string) (*model.SemanticSummary, error) {
	raw := strings.TrimSpace(text)
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	var summary model.SemanticSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, fmt.Errorf("analysis response is not valid summary JSON: %w", err)
	}
	if strings.TrimSpace(summary.MessageEssence) == "" {
		return nil, fmt.Errorf("analysis response is missing the message essence")
	}
	return &summary, nil
}
