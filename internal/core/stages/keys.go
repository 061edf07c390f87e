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

// Package stages implements the four pipeline commands (ingestion, analysis,
// generation, quality check) on top of the chain framework. Stages exchange
// artifacts through dedicated context keys rather than the chain's default
// piping: every downstream stage needs the extracted content, not just the
// previous stage's output, and the skip gating is expressed per key.
package stages

import "github.com/contentforge/forge/internal/core/model"

// Context keys for the artifacts the stages pass to one another.
const (
	// KeyBundle holds the *model.InputBundle for the request.
	KeyBundle = "input_bundle"
	// KeyExtractedContent holds the combined source text produced by
	// ingestion. Absent when ingestion resolved nothing; its absence is what
	// skips the rest of the pipeline.
	KeyExtractedContent = "extracted_content"
	// KeySemanticSummary holds the *model.SemanticSummary from analysis.
	// Optional: generation proceeds without it.
	KeySemanticSummary = "semantic_summary"
	// KeyGeneratedScript holds the final script text from generation. Its
	// absence skips the quality check.
	KeyGeneratedScript = "generated_script"
	// KeyGenerationMeta holds the *model.GenerationMetadata from generation.
	KeyGenerationMeta = "generation_metadata"
	// KeyQualitySummary holds the *model.QualitySummary from the quality
	// check.
	KeyQualitySummary = "quality_summary"
	// KeyRegeneration holds the *Regeneration directive when the pipeline is
	// run by the regeneration orchestrator; absent on first-time transforms.
	KeyRegeneration = "regeneration"
)

// Regeneration directs the generation stage to produce a new version of an
// existing script. Type is one of the model regeneration constants; Feedback
// is set only for a feedback revision.
type Regeneration struct {
	Type            string
	Feedback        string
	ParentContentID string
	PreviousScript  string
}

// summaryFor reads the semantic summary artifact, tolerating absence.
func summaryFor(get func(string) any) *model.SemanticSummary {
	if v := get(KeySemanticSummary); v != nil {
		if s, ok := v.(*model.SemanticSummary); ok {
			return s
		}
	}
	return nil
}
