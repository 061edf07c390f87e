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
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/contentforge/forge/internal/core/cor"
	"github.com/contentforge/forge/internal/core/model"
	"github.com/contentforge/forge/internal/core/stages"
)

// Regenerate produces a new version of an existing result. Ingestion and
// analysis are not repeated: the parent record already carries the extracted
// content and semantic summary, so only generation and quality check run.
// Feedback present selects a guided revision; absent, an independent fresh
// take. The parent record is never mutated; the new version is stored as its
// child.
//
// An unknown contentID returns store.ErrNotFound unwrapped so the transport
// layer can map it.
func (p *Pipeline) Regenerate(ctx context.Context, contentID, feedback, preferredProvider string) (*model.TransformationResult, error) {
	feedback = strings.TrimSpace(feedback)
	if utf8.RuneCountInString(feedback) > model.MaxFeedbackLen {
		return nil, model.NewValidationError("feedback",
			fmt.Sprintf("exceeds %d characters", model.MaxFeedbackLen))
	}
	if preferredProvider != "" && !model.ValidProviderName(preferredProvider) {
		return nil, model.NewValidationError("preferred_provider",
			fmt.Sprintf("unknown provider %q", preferredProvider))
	}

	parent, err := p.store.Get(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(parent.ExtractedContent) == "" {
		return nil, model.NewValidationError("content_id",
			"original transformation has no extracted content to regenerate from")
	}

	regenType := model.RegenerationFreshTake
	if feedback != "" {
		regenType = model.RegenerationFeedbackRevision
	}

	// Work on a copy of the stored bundle; a provider override applies to
	// this regeneration only.
	bundle := parent.Bundle
	if preferredProvider != "" {
		bundle.PreferredProvider = preferredProvider
	}

	newID := uuid.NewString()
	slog.InfoContext(ctx, "starting regeneration",
		"content_id", newID,
		"parent_content_id", contentID,
		"regeneration_type", regenType)

	regen := &stages.Regeneration{
		Type:            regenType,
		Feedback:        feedback,
		ParentContentID: contentID,
	}
	if parent.Result.GeneratedScript != nil {
		regen.PreviousScript = *parent.Result.GeneratedScript
	}

	chCtx := cor.NewBaseContext()
	chCtx.SetContext(ctx)
	chCtx.Add(stages.KeyBundle, &bundle)
	chCtx.Add(stages.KeyExtractedContent, parent.ExtractedContent)
	if parent.Semantic != nil {
		chCtx.Add(stages.KeySemanticSummary, parent.Semantic)
	}
	chCtx.Add(stages.KeyRegeneration, regen)

	start := time.Now()
	p.regenChain.Execute(chCtx)
	elapsed := time.Since(start)

	result := assembleResult(newID, bundle.OutputFormat, chCtx, elapsed, regenType)

	if err := p.persist(ctx, contentID, &bundle, chCtx, result); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "regeneration finished",
		"content_id", newID,
		"parent_content_id", contentID,
		"success", result.Success)
	return result, nil
}
