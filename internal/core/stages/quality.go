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
	"fmt"
	"strings"

	"github.com/contentforge/forge/internal/core/cor"
	"github.com/contentforge/forge/internal/core/model"
)

// minUsefulWordCount is the floor below which a script is flagged as too
// short to be a meaningful deliverable.
const minUsefulWordCount = 50

// Score deductions per detected issue. The score starts at 100 and never
// drops below zero.
const (
	deductTooShort        = 30
	deductOverCeiling     = 15
	deductUnderTarget     = 10
	deductUnclosedFence   = 5
	deductPlaceholderText = 10
)

// placeholderMarkers are fragments that indicate the provider left unfinished
// scaffolding in the script.
var placeholderMarkers = []string{"[insert", "[add ", "lorem ipsum", "tbd:", "[placeholder"}

// QualityCommand evaluates the generated script with deterministic, local
// heuristics. It never calls a provider: the check must stay cheap and
// reproducible, and its verdict is advisory (a failed check does not fail the
// request).
type QualityCommand struct {
	cor.BaseCommand
	passThreshold float64
}

func NewQualityCommand(passThreshold float64) *QualityCommand {
	return &QualityCommand{
		BaseCommand:   *cor.NewBaseCommand(model.StageQualityCheck),
		passThreshold: passThreshold,
	}
}

func (c *QualityCommand) IsExecutable(chCtx cor.Context) bool {
	return chCtx != nil && chCtx.GetContext() != nil && chCtx.Get(KeyGeneratedScript) != nil
}

func (c *QualityCommand) Execute(chCtx cor.Context) {
	name := c.GetName()
	script := chCtx.Get(KeyGeneratedScript).(string)

	var durationSeconds int
	if v := chCtx.Get(KeyBundle); v != nil {
		if bundle, ok := v.(*model.InputBundle); ok {
			durationSeconds = bundle.DurationSeconds
		}
	}

	summary := EvaluateScript(script, durationSeconds, c.passThreshold)

	chCtx.AddMetadata(name, "word_count", summary.WordCount)
	chCtx.AddMetadata(name, "overall_score", summary.OverallScore)
	chCtx.AddMetadata(name, "passed", summary.Passed)
	chCtx.Add(KeyQualitySummary, summary)
	c.GetSuccessCounter().Add(chCtx.GetContext(), 1)
}

// EvaluateScript scores a script against the duration target. The score
// starts at 100 and loses a fixed deduction per issue found; passed is a
// simple threshold decision. Exposed as a pure function so the scoring is
// testable without a chain.
func EvaluateScript(script string, durationSeconds int, passThreshold float64) *model.QualitySummary {
	words := len(strings.Fields(script))
	minutes := float64(words) / float64(model.SpokenWordsPerMinute)

	issues := []string{}
	score := 100.0

	if words < minUsefulWordCount {
		issues = append(issues, fmt.Sprintf("script is very short (%d words)", words))
		score -= deductTooShort
	}

	if durationSeconds > 0 {
		target, ceiling := model.DurationWordTargets(durationSeconds)
		if words > ceiling {
			issues = append(issues, fmt.Sprintf(
				"script exceeds the word ceiling for the requested duration (%d words, ceiling %d)", words, ceiling))
			score -= deductOverCeiling
		} else if words*2 < target {
			issues = append(issues, fmt.Sprintf(
				"script is well under the duration target (%d words, target %d)", words, target))
			score -= deductUnderTarget
		}
	}

	if strings.Count(script, "```")%2 != 0 {
		issues = append(issues, "markdown code fence is never closed")
		score -= deductUnclosedFence
	}

	lower := strings.ToLower(script)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			issues = append(issues, fmt.Sprintf("script contains placeholder text (%q)", strings.TrimSpace(marker)))
			score -= deductPlaceholderText
			break
		}
	}

	if score < 0 {
		score = 0
	}

	return &model.QualitySummary{
		OverallScore:             score,
		WordCount:                words,
		EstimatedDurationMinutes: minutes,
		Issues:                   issues,
		Passed:                   score >= passThreshold,
	}
}
