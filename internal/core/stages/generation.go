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
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/contentforge/forge/internal/config"
	"github.com/contentforge/forge/internal/core/cor"
	"github.com/contentforge/forge/internal/core/model"
	"github.com/contentforge/forge/internal/providers"
)

// GenerationCommand produces the output script. Unlike analysis it resolves
// its backend through the registry per execution, so the caller's provider
// preference and the current health snapshot both apply. A failure here is
// fatal to the request: with no script there is nothing to return.
type GenerationCommand struct {
	cor.BaseCommand
	registry  *providers.Registry
	prompt    *template.Template
	revision  *template.Template
	freshTake *template.Template
	maxTokens int
	timeout   time.Duration
}

type generationPromptData struct {
	FormatGuidance       string
	OutputDescription    string
	Instructions         string
	SemanticGuidance     string
	RegenerationGuidance string
	Content              string
}

func NewGenerationCommand(registry *providers.Registry, templates config.PromptTemplates, maxTokens int, timeout time.Duration) (*GenerationCommand, error) {
	prompt, err := template.New("generation").Parse(templates.GenerationPrompt)
	if err != nil {
		return nil, fmt.Errorf("parse generation prompt template: %w", err)
	}
	revision, err := template.New("revision").Parse(templates.RevisionPrompt)
	if err != nil {
		return nil, fmt.Errorf("parse revision prompt template: %w", err)
	}
	freshTake, err := template.New("fresh_take").Parse(templates.FreshTakePrompt)
	if err != nil {
		return nil, fmt.Errorf("parse fresh-take prompt template: %w", err)
	}
	return &GenerationCommand{
		BaseCommand: *cor.NewBaseCommand(model.StageGeneration),
		registry:    registry,
		prompt:      prompt,
		revision:    revision,
		freshTake:   freshTake,
		maxTokens:   maxTokens,
		timeout:     timeout,
	}, nil
}

func (c *GenerationCommand) IsExecutable(chCtx cor.Context) bool {
	return chCtx != nil && chCtx.GetContext() != nil &&
		chCtx.Get(KeyBundle) != nil && chCtx.Get(KeyExtractedContent) != nil
}

func (c *GenerationCommand) Execute(chCtx cor.Context) {
	name := c.GetName()
	bundle := chCtx.Get(KeyBundle).(*model.InputBundle)
	content := chCtx.Get(KeyExtractedContent).(string)

	ctx := chCtx.GetContext()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	provider, err := c.registry.Resolve(bundle.PreferredProvider)
	if err != nil {
		chCtx.AddError(name, err)
		c.GetErrorCounter().Add(ctx, 1)
		return
	}
	if bundle.PreferredProvider != "" && provider.Name() != bundle.PreferredProvider {
		chCtx.AddWarning(name, fmt.Sprintf(
			"preferred provider %q is unavailable; using %q", bundle.PreferredProvider, provider.Name()))
	}

	regenGuidance, regen, err := c.regenerationGuidance(chCtx)
	if err != nil {
		chCtx.AddError(name, err)
		c.GetErrorCounter().Add(ctx, 1)
		return
	}

	var prompt bytes.Buffer
	if err := c.prompt.Execute(&prompt, generationPromptData{
		FormatGuidance:       bundle.OutputFormat.Guidance(),
		OutputDescription:    bundle.OutputDescription,
		Instructions:         model.BuildInstructions(bundle.DurationSeconds, bundle.AdditionalInstructions),
		SemanticGuidance:     semanticGuidance(summaryFor(chCtx.Get)),
		RegenerationGuidance: regenGuidance,
		Content:              content,
	}); err != nil {
		chCtx.AddError(name, fmt.Errorf("render generation prompt: %w", err))
		c.GetErrorCounter().Add(ctx, 1)
		return
	}

	start := time.Now()
	result, err := provider.Complete(ctx, providers.CompletionRequest{
		Prompt:      prompt.String(),
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
	})
	elapsed := time.Since(start)
	if err != nil {
		chCtx.AddError(name, fmt.Errorf("script generation failed: %w", err))
		c.GetErrorCounter().Add(ctx, 1)
		return
	}

	script := strings.TrimSpace(result.Text)
	if script == "" {
		chCtx.AddError(name, errors.New("provider returned an empty script"))
		c.GetErrorCounter().Add(ctx, 1)
		return
	}

	meta := &model.GenerationMetadata{
		Provider:              provider.Name(),
		Model:                 result.Model,
		PromptTokens:          result.Usage.PromptTokens,
		CompletionTokens:      result.Usage.CompletionTokens,
		TotalTokens:           result.Usage.TotalTokens,
		GenerationTimeSeconds: elapsed.Seconds(),
		FinishReason:          result.FinishReason,
	}
	if regen != nil {
		meta.IsRegeneration = true
		meta.RegenerationType = regen.Type
		meta.ParentContentID = regen.ParentContentID
		meta.FeedbackText = regen.Feedback
	}

	chCtx.AddMetadata(name, "provider", provider.Name())
	if result.Model != "" {
		chCtx.AddMetadata(name, "model", result.Model)
	}
	chCtx.Add(KeyGeneratedScript, script)
	chCtx.Add(KeyGenerationMeta, meta)
	c.GetSuccessCounter().Add(ctx, 1)
}

// regenerationGuidance renders the revision or fresh-take directive when the
// context carries a regeneration order. First-time transforms return empty
// guidance.
func (c *GenerationCommand) regenerationGuidance(chCtx cor.Context) (string, *Regeneration, error) {
	v := chCtx.Get(KeyRegeneration)
	if v == nil {
		return "", nil, nil
	}
	regen, ok := v.(*Regeneration)
	if !ok {
		return "", nil, fmt.Errorf("unexpected regeneration directive type %T", v)
	}

	var buf bytes.Buffer
	switch regen.Type {
	case model.RegenerationFeedbackRevision:
		if err := c.revision.Execute(&buf, struct{ Feedback string }{Feedback: regen.Feedback}); err != nil {
			return "", nil, fmt.Errorf("render revision guidance: %w", err)
		}
	case model.RegenerationFreshTake:
		if err := c.freshTake.Execute(&buf, struct{}{}); err != nil {
			return "", nil, fmt.Errorf("render fresh-take guidance: %w", err)
		}
	default:
		return "", nil, fmt.Errorf("unknown regeneration type %q", regen.Type)
	}

	guidance := buf.String()
	if regen.PreviousScript != "" {
		guidance = guidance + "\n\nThe earlier version of the script was:\n" + regen.PreviousScript
	}
	return guidance, regen, nil
}

// semanticGuidance turns the analysis summary into prompt hints. A nil
// summary (analysis skipped or failed) yields no guidance.
func semanticGuidance(summary *model.SemanticSummary) string {
	if summary == nil {
		return ""
	}
	var lines []string
	if summary.MessageEssence != "" {
		lines = append(lines, "Core message: "+summary.MessageEssence)
	}
	if len(summary.KeyTopics) > 0 {
		lines = append(lines, "Key topics: "+strings.Join(summary.KeyTopics, ", "))
	}
	if len(summary.KeyEntities) > 0 {
		lines = append(lines, "Mention these entities where natural: "+strings.Join(summary.KeyEntities, ", "))
	}
	if summary.Sentiment != nil {
		lines = append(lines, "Overall sentiment of the source: "+*summary.Sentiment)
	}
	if summary.DominantEmotion != nil {
		lines = append(lines, "Dominant emotion: "+*summary.DominantEmotion)
	}
	return strings.Join(lines, "\n")
}
