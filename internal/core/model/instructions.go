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

package model

import (
	"fmt"
	"math"
	"strings"
)

// Spoken-pace assumptions used to translate a duration target into word
// counts. 2.5 words per second is 150 words per minute; the hard ceiling
// allows 15% overshoot.
const (
	SpokenWordsPerSecond = 2.5
	SpokenWordsPerMinute = 150
	WordCeilingFactor    = 1.15
)

// DurationWordTargets converts a target duration in seconds into the
// approximate spoken word target and the hard word ceiling. The translation
// is a pure function and is applied identically for first-time transforms and
// regenerations.
func DurationWordTargets(seconds int) (target, ceiling int) {
	target = int(math.Round(float64(seconds) * SpokenWordsPerSecond))
	ceiling = int(math.Round(float64(target) * WordCeilingFactor))
	return target, ceiling
}

// DurationInstruction renders the generation directive for a duration target.
func DurationInstruction(seconds int) string {
	target, ceiling := DurationWordTargets(seconds)
	minutes := float64(seconds) / 60.0
	return fmt.Sprintf(
		"Target approximately %d spoken words (about %.1f minutes at %d words per minute). Hard limit: do not exceed %d words.",
		target, minutes, SpokenWordsPerMinute, ceiling)
}

// BuildInstructions assembles the instruction block passed to generation from
// the bundle's configuration. The duration directive and any free-text
// additional instructions are concatenated, never substituted for one
// another.
func BuildInstructions(durationSeconds int, additional string) string {
	parts := make([]string, 0, 2)
	if durationSeconds > 0 {
		parts = append(parts, DurationInstruction(durationSeconds))
	}
	if s := strings.TrimSpace(additional); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n")
}
