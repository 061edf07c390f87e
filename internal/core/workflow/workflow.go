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

// Package workflow wires the pipeline stages into the two top-level
// operations: transforming a fresh input bundle and regenerating an existing
// result. The orchestrators own everything outside the stages themselves:
// boundary validation, content id assignment, assembling the stage records
// into a TransformationResult, and persistence.
package workflow

import (
	"fmt"
	"time"

	"github.com/contentforge/forge/internal/config"
	"github.com/contentforge/forge/internal/core/cor"
	"github.com/contentforge/forge/internal/core/stages"
	"github.com/contentforge/forge/internal/extract"
	"github.com/contentforge/forge/internal/providers"
	"github.com/contentforge/forge/internal/store"
)

// Pipeline is the assembled transformation engine. Commands and chains are
// built once at startup; all per-request state lives in the chain context.
type Pipeline struct {
	store store.ContentStore

	transformChain cor.Chain
	regenChain     cor.Chain
}

// New assembles the pipeline from its collaborators. The analysis provider
// may be nil, in which case the analysis stage reports itself not executable
// and every result simply lacks a semantic summary.
func New(
	cfg *config.Config,
	registry *providers.Registry,
	analysisProvider providers.Provider,
	extractor extract.Extractor,
	contentStore store.ContentStore,
) (*Pipeline, error) {
	ingest := stages.NewIngestionCommand(extractor,
		time.Duration(cfg.Pipeline.IngestionTimeoutInSeconds)*time.Second)

	analysis, err := stages.NewAnalysisCommand(analysisProvider,
		cfg.PromptTemplates.AnalysisPrompt,
		cfg.Pipeline.MaxTokens,
		time.Duration(cfg.Pipeline.AnalysisTimeoutInSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("build analysis stage: %w", err)
	}

	generation, err := stages.NewGenerationCommand(registry,
		cfg.PromptTemplates,
		cfg.Pipeline.MaxTokens,
		time.Duration(cfg.Pipeline.GenerationTimeoutInSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("build generation stage: %w", err)
	}

	quality := stages.NewQualityCommand(cfg.Pipeline.QualityPassThreshold)

	// Both chains continue on failure: stage isolation is expressed through
	// each command's IsExecutable gate, and a failed analysis must never
	// prevent generation from running.
	transformChain := cor.NewBaseChain("transform_pipeline").ContinueOnFailure(true).
		AddCommand(ingest).
		AddCommand(analysis).
		AddCommand(generation).
		AddCommand(quality)

	regenChain := cor.NewBaseChain("regenerate_pipeline").ContinueOnFailure(true).
		AddCommand(generation).
		AddCommand(quality)

	return &Pipeline{
		store:          contentStore,
		transformChain: transformChain,
		regenChain:     regenChain,
	}, nil
}
