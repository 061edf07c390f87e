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

package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/contentforge/forge/internal/core/cor"
	"github.com/contentforge/forge/internal/core/model"
	"github.com/contentforge/forge/internal/core/stages"
	"github.com/contentforge/forge/internal/store"
)

// Transform runs the full four-stage pipeline over a fresh input bundle.
// Boundary violations return a *model.ValidationError before any stage runs.
// Pipeline failures do not return an error: the failure mode is part of the
// result, which is persisted either way so a failed run remains inspectable.
func (p *Pipeline) Transform(ctx context.Context, bundle *model.InputBundle) (*model.TransformationResult, error) {
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	bundle.Normalize()

	contentID := uuid.NewString()
	slog.InfoContext(ctx, "starting transformation",
		"content_id", contentID,
		"sources", bundle.SourceCount(),
		"output_format", string(bundle.OutputFormat))

	chCtx := cor.NewBaseContext()
	chCtx.SetContext(ctx)
	chCtx.Add(stages.KeyBundle, bundle)

	start := time.Now()
	p.transformChain.Execute(chCtx)
	elapsed := time.Since(start)

	result := assembleResult(contentID, bundle.OutputFormat, chCtx, elapsed, "")

	if err := p.persist(ctx, "", bundle, chCtx, result); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "transformation finished",
		"content_id", contentID,
		"success", result.Success,
		"duration_seconds", result.TotalDurationSeconds)
	return result, nil
}

// persist writes the completed run to the content store, carrying the
// ingestion and analysis artifacts forward for later regeneration.
func (p *Pipeline) persist(ctx context.Context, parentID string, bundle *model.InputBundle, chCtx cor.Context, result *model.TransformationResult) error {
	rec := store.Record{
		ContentID: result.ContentID,
		ParentID:  parentID,
		Result:    *result,
		Bundle:    *bundle,
		CreatedAt: time.Now().UTC(),
	}
	if v := chCtx.Get(stages.KeyExtractedContent); v != nil {
		rec.ExtractedContent = v.(string)
	}
	if v := chCtx.Get(stages.KeySemanticSummary); v != nil {
		rec.Semantic = v.(*model.SemanticSummary)
	}
	if err := p.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("persisting result %q: %w", result.ContentID, err)
	}
	return nil
}

// assembleResult converts the chain's execution state into the response
// entity. Success is defined by one thing only: a script was produced.
func assembleResult(contentID string, format model.OutputFormat, chCtx cor.Context, elapsed time.Duration, regenerationType string) *model.TransformationResult {
	result := &model.TransformationResult{
		ContentID:            contentID,
		OutputFormat:         format,
		TotalDurationSeconds: elapsed.Seconds(),
		RegenerationType:     regenerationType,
	}

	for _, rec := range chCtx.Records() {
		sr := model.StageResult{
			Stage:           rec.Name,
			Success:         rec.Success,
			DurationSeconds: rec.Duration.Seconds(),
			Warnings:        rec.Warnings,
			Metadata:        rec.Metadata,
		}
		if sr.Warnings == nil {
			sr.Warnings = []string{}
		}
		if sr.Metadata == nil {
			sr.Metadata = map[string]any{}
		}
		if rec.Err != nil {
			sr.Error = model.StrPtr(rec.Err.Error())
		}
		result.Stages = append(result.Stages, sr)
	}

	if v := chCtx.Get(stages.KeyGeneratedScript); v != nil {
		result.GeneratedScript = model.StrPtr(v.(string))
		result.Success = true
	}
	if regenerationType == "" {
		if v := chCtx.Get(stages.KeySemanticSummary); v != nil {
			result.SemanticSummary = v.(*model.SemanticSummary)
		}
	}
	if v := chCtx.Get(stages.KeyQualitySummary); v != nil {
		result.Quality = v.(*model.QualitySummary)
	}
	if v := chCtx.Get(stages.KeyGenerationMeta); v != nil {
		result.GenerationMetadata = *(v.(*model.GenerationMetadata))
	}

	if !result.Success {
		result.Error = model.StrPtr(failureSummary(result.Stages))
	}
	return result
}

// failureSummary produces the top-level error string for a failed run. The
// latest failing stage is the one that sank the run: an earlier analysis
// failure is non-fatal and must not mask the generation error.
func failureSummary(stageResults []model.StageResult) string {
	for i := len(stageResults) - 1; i >= 0; i-- {
		sr := stageResults[i]
		if !sr.Success && sr.Error != nil {
			return fmt.Sprintf("pipeline failed at %s: %s", sr.Stage, *sr.Error)
		}
	}
	return "pipeline produced no script"
}
