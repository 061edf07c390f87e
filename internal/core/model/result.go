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

// Package model defines the core data structures for the transformation
// pipeline. This file contains the response-side types: per-stage results,
// the semantic and quality summaries, generation metadata, and the top-level
// TransformationResult that is both persisted and returned to clients. Field
// names mirror the wire contract the dashboard consumes.
package model

import "encoding/json"

// Stage names, in fixed pipeline order.
const (
	StageIngestion    = "ingestion"
	StageAnalysis     = "analysis"
	StageGeneration   = "generation"
	StageQualityCheck = "quality_check"
)

// StageOrder is the fixed execution sequence of the pipeline.
var StageOrder = []string{StageIngestion, StageAnalysis, StageGeneration, StageQualityCheck}

// Regeneration types. Feedback present selects a revision; absent selects an
// independent fresh take.
const (
	RegenerationFeedbackRevision = "feedback_revision"
	RegenerationFreshTake        = "fresh_take"
)

// StageResult is the record of one attempted pipeline stage. Error is
// populated exactly when Success is false; a stage may succeed while still
// carrying warnings.
type StageResult struct {
	Stage           string         `json:"stage"`
	Success         bool           `json:"success"`
	DurationSeconds float64        `json:"duration_seconds"`
	Error           *string        `json:"error"`
	Warnings        []string       `json:"warnings"`
	Metadata        map[string]any `json:"metadata"`
}

// SemanticSummary is the analysis stage's derived understanding of the input.
// Every field beyond the essence and lists is optional: the stage may fail or
// be skipped without failing the pipeline, and individual labels may simply
// not be computed. Tone scores are normalized to [0,1] when present.
type SemanticSummary struct {
	MessageEssence  string   `json:"message_essence"`
	KeyTopics       []string `json:"key_topics"`
	KeyEntities     []string `json:"key_entities"`
	Sentiment       *string  `json:"sentiment"`
	Intent          *string  `json:"intent"`
	DominantEmotion *string  `json:"dominant_emotion"`
	ToneFormality   *float64 `json:"tone_formality"`
	ToneEnergy      *float64 `json:"tone_energy"`
	ToneWarmth      *float64 `json:"tone_warmth"`
	ToneHumor       *float64 `json:"tone_humor"`
	ToneAuthority   *float64 `json:"tone_authority"`
}

// QualitySummary is the quality-check stage's evaluation of the generated
// script. OverallScore is on a 0-100 scale but not strictly bounded; clients
// clamp for display. Passed is a threshold decision made by the stage and is
// assertable independently of the numeric score.
type QualitySummary struct {
	OverallScore             float64  `json:"overall_score"`
	WordCount                int      `json:"word_count"`
	EstimatedDurationMinutes float64  `json:"estimated_duration_minutes"`
	Issues                   []string `json:"issues"`
	Passed                   bool     `json:"passed"`
}

// GenerationMetadata carries the typed, known facts about a generation call
// plus an open extension map for provider-specific extras. On the wire it is
// a single flat JSON object so the known fields stay type-checked here while
// providers remain free to attach more.
type GenerationMetadata struct {
	Provider              string  `json:"generation_provider,omitempty"`
	Model                 string  `json:"generation_model,omitempty"`
	PromptTokens          int     `json:"prompt_tokens,omitempty"`
	CompletionTokens      int     `json:"completion_tokens,omitempty"`
	TotalTokens           int     `json:"total_tokens,omitempty"`
	GenerationTimeSeconds float64 `json:"generation_time_seconds,omitempty"`
	FinishReason          string  `json:"finish_reason,omitempty"`

	// Regeneration lineage. Populated only when this result was produced by
	// the regeneration orchestrator.
	IsRegeneration   bool   `json:"is_regeneration,omitempty"`
	RegenerationType string `json:"regeneration_type,omitempty"`
	ParentContentID  string `json:"parent_content_id,omitempty"`
	FeedbackText     string `json:"feedback_text,omitempty"`

	// Extra holds provider-specific keys that have no typed field. It is
	// flattened into the same JSON object; typed fields win on collision.
	Extra map[string]any `json:"-"`
}

// generationMetadataAlias avoids MarshalJSON recursion.
type generationMetadataAlias GenerationMetadata

// MarshalJSON flattens the typed fields and Extra into one object.
func (m GenerationMetadata) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(generationMetadataAlias(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return known, nil
	}
	merged := make(map[string]any, len(m.Extra)+8)
	for k, v := range m.Extra {
		merged[k] = v
	}
	var typed map[string]any
	if err := json.Unmarshal(known, &typed); err != nil {
		return nil, err
	}
	for k, v := range typed {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// UnmarshalJSON splits a flat object back into typed fields and Extra.
func (m *GenerationMetadata) UnmarshalJSON(data []byte) error {
	var alias generationMetadataAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range []string{
		"generation_provider", "generation_model", "prompt_tokens",
		"completion_tokens", "total_tokens", "generation_time_seconds",
		"finish_reason", "is_regeneration", "regeneration_type",
		"parent_content_id", "feedback_text",
	} {
		delete(raw, key)
	}
	*m = GenerationMetadata(alias)
	if len(raw) > 0 {
		m.Extra = raw
	}
	return nil
}

// TransformationResult is the top-level persisted and returned entity for one
// transformation or regeneration. A result is append-only: a regeneration
// creates a new result referencing this one as parent rather than mutating
// it. The success flag and GeneratedScript satisfy a round-trip invariant:
// the script is non-nil exactly when Success is true.
type TransformationResult struct {
	ContentID            string             `json:"content_id"`
	Success              bool               `json:"success"`
	GeneratedScript      *string            `json:"generated_script"`
	OutputFormat         OutputFormat       `json:"output_format"`
	SemanticSummary      *SemanticSummary   `json:"semantic_summary"`
	Quality              *QualitySummary    `json:"quality"`
	Stages               []StageResult      `json:"stages"`
	TotalDurationSeconds float64            `json:"total_duration_seconds"`
	GenerationMetadata   GenerationMetadata `json:"generation_metadata"`
	RegenerationType     string             `json:"regeneration_type,omitempty"`
	Error                *string            `json:"error"`
}

// StageByName returns the stage result with the given name, or nil if that
// stage was never attempted.
func (r *TransformationResult) StageByName(name string) *StageResult {
	for i := range r.Stages {
		if r.Stages[i].Stage == name {
			return &r.Stages[i]
		}
	}
	return nil
}

// StrPtr returns a pointer to s. Response types use *string for fields the
// contract declares nullable.
func StrPtr(s string) *string { return &s }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }
