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

// Package workflow_test runs the assembled pipeline end to end against
// scripted providers and extractors, covering the stage bookkeeping the
// response contract promises and the regeneration lineage rules.
package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"

	"github.com/contentforge/forge/internal/core/model"
	"github.com/contentforge/forge/internal/core/workflow"
	"github.com/contentforge/forge/internal/providers"
	"github.com/contentforge/forge/internal/store"
	"github.com/contentforge/forge/internal/testutil"
)

const tName = "github.com/contentforge/forge/internal/core/workflow/tests"

var (
	tracer = otel.Tracer(tName)
	logger = otelslog.NewLogger(tName)
)

// harness bundles the pipeline with the fakes behind it so assertions can
// reach both sides.
type harness struct {
	pipeline  *workflow.Pipeline
	store     *store.MemoryStore
	generator *testutil.FakeProvider
	analyzer  *testutil.FakeProvider
	extractor *testutil.FakeExtractor
}

// longScript is comfortably over the quality stage's short-script floor.
var longScript = strings.TrimSpace(strings.Repeat("word ", 120))

func newHarness(t *testing.T) *harness {
	t.Helper()

	generator := testutil.NewFakeProvider("ollama", longScript)
	analyzer := testutil.NewFakeProvider("ollama", testutil.SummaryJSON())
	analyzer.ProviderName = "analysis"

	registry := providers.NewRegistry("ollama")
	registry.Register(generator)
	registry.Refresh(context.Background())

	extractor := testutil.NewFakeExtractor()
	extractor.FileText["notes.txt"] = "file content"

	memStore := store.NewMemoryStore()

	pipeline, err := workflow.New(testutil.TestConfig(), registry, analyzer, extractor, memStore)
	assert.NoError(t, err)

	return &harness{
		pipeline:  pipeline,
		store:     memStore,
		generator: generator,
		analyzer:  analyzer,
		extractor: extractor,
	}
}

func textBundle() *model.InputBundle {
	return &model.InputBundle{
		TextInput:    "the raw source material",
		OutputFormat: model.FormatBlogPost,
	}
}

// TestTransformHappyPath verifies the full four-stage run: all stages
// recorded in order, the script present, success true, and the result
// persisted under its content id.
func TestTransformHappyPath(t *testing.T) {
	h := newHarness(t)

	ctx, span := tracer.Start(context.Background(), "transform-happy-path")
	defer span.End()

	result, err := h.pipeline.Transform(ctx, textBundle())
	assert.NoError(t, err)
	logger.InfoContext(ctx, "transform finished", "content_id", result.ContentID)

	assert.True(t, result.Success)
	assert.NotEmpty(t, result.ContentID)
	assert.Equal(t, longScript, *result.GeneratedScript)
	assert.Nil(t, result.Error)
	assert.Empty(t, result.RegenerationType)

	// All four stages ran, in pipeline order.
	assert.Equal(t, 4, len(result.Stages))
	for i, name := range model.StageOrder {
		assert.Equal(t, name, result.Stages[i].Stage)
		assert.True(t, result.Stages[i].Success)
	}

	// Wall time covers the stage times.
	var stageSum float64
	for _, sr := range result.Stages {
		stageSum += sr.DurationSeconds
	}
	assert.GreaterOrEqual(t, result.TotalDurationSeconds, stageSum)

	assert.NotNil(t, result.SemanticSummary)
	assert.NotNil(t, result.Quality)
	assert.True(t, result.Quality.Passed)
	assert.Equal(t, "ollama", result.GenerationMetadata.Provider)

	// Persisted with the artifacts regeneration needs.
	rec, err := h.store.Get(context.Background(), result.ContentID)
	assert.NoError(t, err)
	assert.Contains(t, rec.ExtractedContent, "the raw source material")
	assert.NotNil(t, rec.Semantic)
	assert.Empty(t, rec.ParentID)
}

// TestTransformValidationRejected verifies that boundary violations surface
// as a typed error before any stage runs.
func TestTransformValidationRejected(t *testing.T) {
	h := newHarness(t)

	_, err := h.pipeline.Transform(context.Background(), &model.InputBundle{})
	var validation *model.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Equal(t, 0, h.generator.Completes)
}

// TestTransformIngestionFailure verifies total ingestion failure: the run
// fails, only the ingestion stage leaves a record, and the failed result is
// still persisted.
func TestTransformIngestionFailure(t *testing.T) {
	h := newHarness(t)

	bundle := &model.InputBundle{
		URLs:         []string{"https://dead.example.com/a"},
		OutputFormat: model.FormatBlogPost,
	}
	result, err := h.pipeline.Transform(context.Background(), bundle)
	assert.NoError(t, err)

	assert.False(t, result.Success)
	assert.Nil(t, result.GeneratedScript)
	assert.NotNil(t, result.Error)
	assert.Contains(t, *result.Error, model.StageIngestion)

	// Downstream stages were skipped, not failed: no records for them.
	assert.Equal(t, 1, len(result.Stages))
	assert.Equal(t, model.StageIngestion, result.Stages[0].Stage)
	assert.Nil(t, result.StageByName(model.StageQualityCheck))
	assert.Equal(t, 0, h.generator.Completes)

	// Failed runs are persisted too.
	_, err = h.store.Get(context.Background(), result.ContentID)
	assert.NoError(t, err)
}

// TestTransformAnalysisFailureIsNonFatal verifies that a broken analysis
// backend degrades the result instead of failing it.
func TestTransformAnalysisFailureIsNonFatal(t *testing.T) {
	h := newHarness(t)
	h.analyzer.Responses = []testutil.FakeResponse{{Err: errors.New("model overloaded")}}

	result, err := h.pipeline.Transform(context.Background(), textBundle())
	assert.NoError(t, err)

	assert.True(t, result.Success)
	assert.NotNil(t, result.GeneratedScript)
	assert.Nil(t, result.SemanticSummary)
	assert.Nil(t, result.Error)

	analysis := result.StageByName(model.StageAnalysis)
	assert.NotNil(t, analysis)
	assert.False(t, analysis.Success)
	assert.Contains(t, *analysis.Error, "model overloaded")
}

// TestTransformGenerationFailureIsFatal verifies that with no script there
// is no success, no quality record, and a generation-flavored top-level
// error.
func TestTransformGenerationFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	h.generator.Responses = []testutil.FakeResponse{{Err: errors.New("quota exhausted")}}

	result, err := h.pipeline.Transform(context.Background(), textBundle())
	assert.NoError(t, err)

	assert.False(t, result.Success)
	assert.Nil(t, result.GeneratedScript)
	assert.Contains(t, *result.Error, model.StageGeneration)
	assert.Contains(t, *result.Error, "quota exhausted")
	assert.Nil(t, result.StageByName(model.StageQualityCheck))
	// Ingestion and analysis still succeeded and are on the record.
	assert.True(t, result.StageByName(model.StageIngestion).Success)
	assert.True(t, result.StageByName(model.StageAnalysis).Success)
}

// TestTransformPartialIngestion verifies warning propagation onto the stage
// result for a bundle with one dead and one live source.
func TestTransformPartialIngestion(t *testing.T) {
	h := newHarness(t)

	bundle := &model.InputBundle{
		Files:        []model.UploadedFile{{Filename: "notes.txt"}, {Filename: "missing.bin"}},
		OutputFormat: model.FormatBlogPost,
	}
	result, err := h.pipeline.Transform(context.Background(), bundle)
	assert.NoError(t, err)

	assert.True(t, result.Success)
	ingestion := result.StageByName(model.StageIngestion)
	assert.True(t, ingestion.Success)
	assert.Equal(t, 1, len(ingestion.Warnings))
	assert.Contains(t, ingestion.Warnings[0], "missing.bin")
}

// TestRegenerateFeedbackRevision verifies the feedback path: generation and
// quality only, lineage metadata, the feedback in the prompt, and the new
// record linked to its parent.
func TestRegenerateFeedbackRevision(t *testing.T) {
	h := newHarness(t)

	parent, err := h.pipeline.Transform(context.Background(), textBundle())
	assert.NoError(t, err)
	promptsBefore := h.generator.Completes

	child, err := h.pipeline.Regenerate(context.Background(), parent.ContentID, "make it shorter", "")
	assert.NoError(t, err)

	assert.True(t, child.Success)
	assert.NotEqual(t, parent.ContentID, child.ContentID)
	assert.Equal(t, model.RegenerationFeedbackRevision, child.RegenerationType)

	// Only generation and quality ran; ingestion and analysis were reused.
	assert.Equal(t, 2, len(child.Stages))
	assert.Equal(t, model.StageGeneration, child.Stages[0].Stage)
	assert.Equal(t, model.StageQualityCheck, child.Stages[1].Stage)
	assert.Equal(t, promptsBefore+1, h.generator.Completes)
	assert.Contains(t, h.generator.LastPrompt(), "make it shorter")

	// Lineage metadata.
	assert.True(t, child.GenerationMetadata.IsRegeneration)
	assert.Equal(t, parent.ContentID, child.GenerationMetadata.ParentContentID)
	assert.Equal(t, "make it shorter", child.GenerationMetadata.FeedbackText)

	// The child is stored as a child; the parent record is untouched.
	children, err := h.store.Children(context.Background(), parent.ContentID)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(children))
	assert.Equal(t, child.ContentID, children[0].ContentID)

	parentRec, err := h.store.Get(context.Background(), parent.ContentID)
	assert.NoError(t, err)
	assert.Equal(t, *parent.GeneratedScript, *parentRec.Result.GeneratedScript)
}

// TestRegenerateFreshTake verifies the no-feedback path selects the fresh
// take directive and carries no feedback text.
func TestRegenerateFreshTake(t *testing.T) {
	h := newHarness(t)

	parent, err := h.pipeline.Transform(context.Background(), textBundle())
	assert.NoError(t, err)

	child, err := h.pipeline.Regenerate(context.Background(), parent.ContentID, "   ", "")
	assert.NoError(t, err)

	assert.Equal(t, model.RegenerationFreshTake, child.RegenerationType)
	assert.Equal(t, model.RegenerationFreshTake, child.GenerationMetadata.RegenerationType)
	assert.Empty(t, child.GenerationMetadata.FeedbackText)
	assert.Contains(t, h.generator.LastPrompt(), "fresh")
}

// TestRegenerateTwiceCreatesSiblings verifies that two regenerations of the
// same parent become independent siblings, not a chain.
func TestRegenerateTwiceCreatesSiblings(t *testing.T) {
	h := newHarness(t)

	parent, err := h.pipeline.Transform(context.Background(), textBundle())
	assert.NoError(t, err)

	first, err := h.pipeline.Regenerate(context.Background(), parent.ContentID, "version one", "")
	assert.NoError(t, err)
	second, err := h.pipeline.Regenerate(context.Background(), parent.ContentID, "version two", "")
	assert.NoError(t, err)

	assert.NotEqual(t, first.ContentID, second.ContentID)

	children, err := h.store.Children(context.Background(), parent.ContentID)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(children))
}

// TestRegenerateUnknownContent verifies the not-found passthrough the
// transport layer maps to 404.
func TestRegenerateUnknownContent(t *testing.T) {
	h := newHarness(t)

	_, err := h.pipeline.Regenerate(context.Background(), "no-such-id", "", "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// TestRegenerateFeedbackTooLong verifies the boundary check on feedback
// length.
func TestRegenerateFeedbackTooLong(t *testing.T) {
	h := newHarness(t)

	_, err := h.pipeline.Regenerate(context.Background(), "irrelevant",
		strings.Repeat("x", model.MaxFeedbackLen+1), "")
	var validation *model.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Equal(t, "feedback", validation.Field)
}

// TestRegenerateProviderOverride verifies that a provider override applies
// to the regeneration without mutating the stored parent bundle.
func TestRegenerateProviderOverride(t *testing.T) {
	h := newHarness(t)

	parent, err := h.pipeline.Transform(context.Background(), textBundle())
	assert.NoError(t, err)

	_, err = h.pipeline.Regenerate(context.Background(), parent.ContentID, "", "gemini")
	assert.NoError(t, err) // unknown to the registry: falls back to default

	parentRec, err := h.store.Get(context.Background(), parent.ContentID)
	assert.NoError(t, err)
	assert.Empty(t, parentRec.Bundle.PreferredProvider)
}

// TestRegenerateFromFailedParent verifies that a parent with no extracted
// content (its ingestion failed) cannot seed a regeneration.
func TestRegenerateFromFailedParent(t *testing.T) {
	h := newHarness(t)

	failed, err := h.pipeline.Transform(context.Background(), &model.InputBundle{
		URLs:         []string{"https://dead.example.com/a"},
		OutputFormat: model.FormatBlogPost,
	})
	assert.NoError(t, err)
	assert.False(t, failed.Success)

	_, err = h.pipeline.Regenerate(context.Background(), failed.ContentID, "", "")
	var validation *model.ValidationError
	assert.ErrorAs(t, err, &validation)
}
