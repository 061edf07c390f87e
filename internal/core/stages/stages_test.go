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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/contentforge/forge/internal/config"
	"github.com/contentforge/forge/internal/core/cor"
	"github.com/contentforge/forge/internal/core/model"
	"github.com/contentforge/forge/internal/providers"
	"github.com/contentforge/forge/internal/testutil"
)

func newStageContext(bundle *model.InputBundle) cor.Context {
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(context.Background())
	if bundle != nil {
		chCtx.Add(KeyBundle, bundle)
	}
	return chCtx
}

// TestIngestionCombinesSources verifies that text, files, and URLs all land
// in the combined corpus and the resolution counters are reported.
func TestIngestionCombinesSources(t *testing.T) {
	extractor := testutil.NewFakeExtractor()
	extractor.FileText["notes.txt"] = "file content"
	extractor.URLText["https://example.com/a"] = "url content"

	cmd := NewIngestionCommand(extractor, time.Second)
	chCtx := newStageContext(&model.InputBundle{
		TextInput: "typed content",
		Files:     []model.UploadedFile{{Filename: "notes.txt"}},
		URLs:      []string{"https://example.com/a"},
	})
	cmd.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	corpus := chCtx.Get(KeyExtractedContent).(string)
	assert.Contains(t, corpus, "typed content")
	assert.Contains(t, corpus, "file content")
	assert.Contains(t, corpus, "url content")
	assert.Equal(t, 3, chCtx.MetadataFor(model.StageIngestion)["sources_total"])
	assert.Equal(t, 3, chCtx.MetadataFor(model.StageIngestion)["sources_resolved"])
}

// TestIngestionPartialFailureIsAWarning verifies the core partial-failure
// rule: one dead source warns, the stage still succeeds on the rest.
func TestIngestionPartialFailureIsAWarning(t *testing.T) {
	extractor := testutil.NewFakeExtractor()
	extractor.FileText["good.txt"] = "good content"

	cmd := NewIngestionCommand(extractor, time.Second)
	chCtx := newStageContext(&model.InputBundle{
		Files: []model.UploadedFile{{Filename: "good.txt"}, {Filename: "bad.bin"}},
	})
	cmd.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	assert.Equal(t, 1, len(chCtx.WarningsFor(model.StageIngestion)))
	assert.Contains(t, chCtx.Get(KeyExtractedContent).(string), "good content")
	assert.Equal(t, 1, chCtx.MetadataFor(model.StageIngestion)["sources_resolved"])
}

// TestIngestionTotalFailureIsFatal verifies that a bundle where nothing
// resolves fails the stage, leaving no extracted content for downstream
// stages to gate on.
func TestIngestionTotalFailureIsFatal(t *testing.T) {
	cmd := NewIngestionCommand(testutil.NewFakeExtractor(), time.Second)
	chCtx := newStageContext(&model.InputBundle{
		URLs: []string{"https://dead.example.com"},
	})
	cmd.Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	assert.Error(t, chCtx.ErrorFor(model.StageIngestion))
	assert.Nil(t, chCtx.Get(KeyExtractedContent))
	// The dead source still shows up as a warning alongside the fatal error.
	assert.Equal(t, 1, len(chCtx.WarningsFor(model.StageIngestion)))
}

// TestIngestionSurfacesRejectedFiles verifies that boundary rejections are
// replayed onto the stage's warning list.
func TestIngestionSurfacesRejectedFiles(t *testing.T) {
	cmd := NewIngestionCommand(testutil.NewFakeExtractor(), time.Second)
	chCtx := newStageContext(&model.InputBundle{
		TextInput: "still have text",
		RejectedFiles: []model.RejectedFile{
			{Filename: "huge.mp4", Size: 1 << 30, Reason: "exceeds the maximum file size of 52428800 bytes"},
		},
	})
	cmd.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	warnings := chCtx.WarningsFor(model.StageIngestion)
	assert.Equal(t, 1, len(warnings))
	assert.Contains(t, warnings[0], "huge.mp4")
}

// TestAnalysisProducesSummary verifies the happy path through prompt
// rendering and response parsing.
func TestAnalysisProducesSummary(t *testing.T) {
	provider := testutil.NewFakeProvider("ollama", testutil.SummaryJSON())
	cmd, err := NewAnalysisCommand(provider, config.DefaultAnalysisPrompt, 1024, time.Second)
	assert.NoError(t, err)

	chCtx := newStageContext(nil)
	chCtx.Add(KeyExtractedContent, "the source content")
	assert.True(t, cmd.IsExecutable(chCtx))
	cmd.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	summary := chCtx.Get(KeySemanticSummary).(*model.SemanticSummary)
	assert.NotEmpty(t, summary.MessageEssence)
	assert.NotEmpty(t, summary.KeyTopics)
	// The prompt carried both the few-shot example and the content.
	assert.Contains(t, provider.LastPrompt(), "the source content")
	assert.Contains(t, provider.LastPrompt(), "message_essence")
}

// TestAnalysisParsesFencedJSON verifies tolerance for providers that wrap
// their JSON in markdown fences despite instructions.
func TestAnalysisParsesFencedJSON(t *testing.T) {
	fenced := "```json\n" + testutil.SummaryJSON() + "\n```"
	summary, err := parseSemanticSummary(fenced)
	assert.NoError(t, err)
	assert.NotEmpty(t, summary.MessageEssence)
}

func TestAnalysisRejectsGarbage(t *testing.T) {
	_, err := parseSemanticSummary("I could not analyze this content, sorry!")
	assert.Error(t, err)

	_, err = parseSemanticSummary(`{"key_topics": ["no essence"]}`)
	assert.Error(t, err)
}

// TestAnalysisFailureIsRecordedNotEscalated verifies that a provider failure
// marks the stage failed without touching the semantic summary key.
func TestAnalysisFailureIsRecordedNotEscalated(t *testing.T) {
	provider := testutil.NewFakeProvider("ollama", "")
	provider.Responses = []testutil.FakeResponse{{Err: context.DeadlineExceeded}}

	cmd, err := NewAnalysisCommand(provider, config.DefaultAnalysisPrompt, 1024, time.Second)
	assert.NoError(t, err)

	chCtx := newStageContext(nil)
	chCtx.Add(KeyExtractedContent, "the source content")
	cmd.Execute(chCtx)

	assert.Error(t, chCtx.ErrorFor(model.StageAnalysis))
	assert.Nil(t, chCtx.Get(KeySemanticSummary))
}

// TestAnalysisNotExecutableWithoutProvider verifies the nil-provider gate
// used when no default backend is configured.
func TestAnalysisNotExecutableWithoutProvider(t *testing.T) {
	cmd, err := NewAnalysisCommand(nil, config.DefaultAnalysisPrompt, 1024, time.Second)
	assert.NoError(t, err)

	chCtx := newStageContext(nil)
	chCtx.Add(KeyExtractedContent, "content")
	assert.False(t, cmd.IsExecutable(chCtx))
}

// TestGenerationUsesPreferredProvider verifies provider selection and the
// metadata the stage attaches on success.
func TestGenerationUsesPreferredProvider(t *testing.T) {
	def := testutil.NewFakeProvider("ollama", "default script output here")
	alt := testutil.NewFakeProvider("openai", "alternate script output here")
	registry := providers.NewRegistry("ollama")
	registry.Register(def)
	registry.Register(alt)
	registry.Refresh(context.Background())

	cfg := testutil.TestConfig()
	cmd, err := NewGenerationCommand(registry, cfg.PromptTemplates, 1024, time.Second)
	assert.NoError(t, err)

	bundle := &model.InputBundle{
		TextInput:         "src",
		OutputFormat:      model.FormatBlogPost,
		PreferredProvider: "openai",
		DurationSeconds:   300,
	}
	chCtx := newStageContext(bundle)
	chCtx.Add(KeyExtractedContent, "the extracted content")
	cmd.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	assert.Equal(t, "alternate script output here", chCtx.Get(KeyGeneratedScript))

	meta := chCtx.Get(KeyGenerationMeta).(*model.GenerationMetadata)
	assert.Equal(t, "openai", meta.Provider)
	assert.False(t, meta.IsRegeneration)

	// The prompt carried the format guidance and the duration directive.
	assert.Contains(t, alt.LastPrompt(), "blog post")
	assert.Contains(t, alt.LastPrompt(), "750")
	assert.Contains(t, alt.LastPrompt(), "the extracted content")
}

// TestGenerationFallbackWarns verifies that falling back from an unhealthy
// preferred provider is visible: the default runs and a warning names both
// providers.
func TestGenerationFallbackWarns(t *testing.T) {
	def := testutil.NewFakeProvider("ollama", "default script output here")
	alt := testutil.NewFakeProvider("openai", "alternate script output here")
	alt.PingErr = context.DeadlineExceeded
	registry := providers.NewRegistry("ollama")
	registry.Register(def)
	registry.Register(alt)
	registry.Refresh(context.Background())

	cfg := testutil.TestConfig()
	cmd, err := NewGenerationCommand(registry, cfg.PromptTemplates, 1024, time.Second)
	assert.NoError(t, err)

	bundle := &model.InputBundle{TextInput: "src", OutputFormat: model.FormatBlogPost, PreferredProvider: "openai"}
	chCtx := newStageContext(bundle)
	chCtx.Add(KeyExtractedContent, "content")
	cmd.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	meta := chCtx.Get(KeyGenerationMeta).(*model.GenerationMetadata)
	assert.Equal(t, "ollama", meta.Provider)

	warnings := chCtx.WarningsFor(model.StageGeneration)
	assert.Equal(t, 1, len(warnings))
	assert.Contains(t, warnings[0], "openai")
	assert.Contains(t, warnings[0], "ollama")
}

// TestGenerationEmptyScriptIsFatal verifies that a blank completion is
// treated as a generation failure, not an empty success.
func TestGenerationEmptyScriptIsFatal(t *testing.T) {
	def := testutil.NewFakeProvider("ollama", "   \n  ")
	registry := providers.NewRegistry("ollama")
	registry.Register(def)

	cfg := testutil.TestConfig()
	cmd, err := NewGenerationCommand(registry, cfg.PromptTemplates, 1024, time.Second)
	assert.NoError(t, err)

	chCtx := newStageContext(&model.InputBundle{TextInput: "src", OutputFormat: model.FormatBlogPost})
	chCtx.Add(KeyExtractedContent, "content")
	cmd.Execute(chCtx)

	assert.Error(t, chCtx.ErrorFor(model.StageGeneration))
	assert.Nil(t, chCtx.Get(KeyGeneratedScript))
}

// TestGenerationRegenerationGuidance verifies the two regeneration modes:
// feedback lands in the prompt for a revision, the fresh-take directive for
// the other, and lineage metadata is attached in both cases.
func TestGenerationRegenerationGuidance(t *testing.T) {
	def := testutil.NewFakeProvider("ollama", "regenerated script output")
	registry := providers.NewRegistry("ollama")
	registry.Register(def)

	cfg := testutil.TestConfig()
	cmd, err := NewGenerationCommand(registry, cfg.PromptTemplates, 1024, time.Second)
	assert.NoError(t, err)

	chCtx := newStageContext(&model.InputBundle{TextInput: "src", OutputFormat: model.FormatBlogPost})
	chCtx.Add(KeyExtractedContent, "content")
	chCtx.Add(KeyRegeneration, &Regeneration{
		Type:            model.RegenerationFeedbackRevision,
		Feedback:        "make it funnier",
		ParentContentID: "parent-id",
		PreviousScript:  "the old script",
	})
	cmd.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	assert.Contains(t, def.LastPrompt(), "make it funnier")
	assert.Contains(t, def.LastPrompt(), "the old script")

	meta := chCtx.Get(KeyGenerationMeta).(*model.GenerationMetadata)
	assert.True(t, meta.IsRegeneration)
	assert.Equal(t, model.RegenerationFeedbackRevision, meta.RegenerationType)
	assert.Equal(t, "parent-id", meta.ParentContentID)
	assert.Equal(t, "make it funnier", meta.FeedbackText)
}

func TestGenerationFreshTakeGuidance(t *testing.T) {
	def := testutil.NewFakeProvider("ollama", "fresh take output")
	registry := providers.NewRegistry("ollama")
	registry.Register(def)

	cfg := testutil.TestConfig()
	cmd, err := NewGenerationCommand(registry, cfg.PromptTemplates, 1024, time.Second)
	assert.NoError(t, err)

	chCtx := newStageContext(&model.InputBundle{TextInput: "src", OutputFormat: model.FormatBlogPost})
	chCtx.Add(KeyExtractedContent, "content")
	chCtx.Add(KeyRegeneration, &Regeneration{Type: model.RegenerationFreshTake, ParentContentID: "parent-id"})
	cmd.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	assert.Contains(t, def.LastPrompt(), "fresh")
	meta := chCtx.Get(KeyGenerationMeta).(*model.GenerationMetadata)
	assert.Equal(t, model.RegenerationFreshTake, meta.RegenerationType)
	assert.Empty(t, meta.FeedbackText)
}

// TestQualityNotExecutableWithoutScript pins the gating that keeps the
// quality stage out of failed runs.
func TestQualityNotExecutableWithoutScript(t *testing.T) {
	cmd := NewQualityCommand(70)
	chCtx := newStageContext(&model.InputBundle{TextInput: "src"})
	assert.False(t, cmd.IsExecutable(chCtx))

	chCtx.Add(KeyGeneratedScript, "now there is a script")
	assert.True(t, cmd.IsExecutable(chCtx))
}
